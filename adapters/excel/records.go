package excel

import (
	"fmt"

	"gostatcheck/internal/records"
)

// TestInputs maps rows with test_type, df1, df2, test_value, operator,
// reported_p_value, epsilon and tail columns onto test inputs. Cells are kept
// as text so the reported decimal places survive.
func TestInputs(data *ExcelData) ([]records.TestInput, error) {
	if err := requireColumns(data, "test_type", "test_value", "reported_p_value"); err != nil {
		return nil, err
	}
	inputs := make([]records.TestInput, 0, len(data.Rows))
	for _, row := range data.Rows {
		inputs = append(inputs, records.TestInput{
			TestType:       row["test_type"],
			DF1:            records.Numeral(row["df1"]),
			DF2:            records.Numeral(row["df2"]),
			TestValue:      records.Numeral(row["test_value"]),
			Operator:       row["operator"],
			ReportedPValue: records.Numeral(row["reported_p_value"]),
			Epsilon:        records.Numeral(row["epsilon"]),
			Tail:           row["tail"],
		})
	}
	return inputs, nil
}

// MeanInputs maps rows with reported_mean, sample_size and an optional
// reasoning column onto mean inputs
func MeanInputs(data *ExcelData) ([]records.MeanInput, error) {
	if err := requireColumns(data, "reported_mean", "sample_size"); err != nil {
		return nil, err
	}
	inputs := make([]records.MeanInput, 0, len(data.Rows))
	for _, row := range data.Rows {
		reasoning := row["reasoning"]
		if reasoning == "" {
			reasoning = row["discrete_reasoning"]
		}
		inputs = append(inputs, records.MeanInput{
			ReportedMean: records.Numeral(row["reported_mean"]),
			SampleSize:   records.Numeral(row["sample_size"]),
			Reasoning:    reasoning,
		})
	}
	return inputs, nil
}

func requireColumns(data *ExcelData, columns ...string) error {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	for _, c := range columns {
		if !present[c] {
			return fmt.Errorf("missing required column %q", c)
		}
	}
	return nil
}
