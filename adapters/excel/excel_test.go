package excel

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gostatcheck/domain/verdict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() verdict.Table {
	return verdict.Table{
		Headers: verdict.StatcheckColumns,
		Rows: [][]string{
			{"Yes", "t(30) = 1.96", "= 0.059", "0.05873 to 0.05996", "-"},
			{"No", "F(2, 20) = 3.50", "< 0.04", "0.04920 to 0.05027", "Recalculated p-value does not match the reported p-value."},
		},
	}
}

func TestWriteFile_XLSXReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statcheck.xlsx")
	require.NoError(t, WriteFile(path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, verdict.StatcheckColumns, rows[0])
	assert.Equal(t, "t(30) = 1.96", rows[1][1])
	assert.Equal(t, "< 0.04", rows[2][2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	out := buf.String()
	assert.Contains(t, out, "Consistent,APA Reporting,Reported P-value,Valid P-value Range,Notes\n")
	assert.Contains(t, out, "Yes,t(30) = 1.96,= 0.059,0.05873 to 0.05996,-\n")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleTable()))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "No", decoded[1]["Consistent"])
	assert.Equal(t, "F(2, 20) = 3.50", decoded[1]["APA Reporting"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{"xlsx", FormatXLSX, false},
		{"xls", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	format, err := FormatFromPath("out/report.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
}

func TestDataReader_CSVTestInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tests.csv")
	body := "Test Type,df1,df2,Test Value,Operator,Reported P Value,Epsilon,Tail\n" +
		"t,30,,1.960,=,.059,,two\n" +
		",,,,,,,\n" +
		"f,2,20,3.50,<,.05,0.75,\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Contains(t, data.Headers, "reported_p_value")
	require.Len(t, data.Rows, 2, "blank rows are skipped")

	inputs, err := TestInputs(data)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "1.960", inputs[0].TestValue.String())
	assert.Equal(t, ".059", inputs[0].ReportedPValue.String())
	assert.True(t, inputs[0].DF2.Empty())
	assert.Equal(t, "0.75", inputs[1].Epsilon.String())

	rec, err := inputs[0].ToRecord()
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Decimals)
}

func TestDataReader_XLSXMeanInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "means.xlsx")
	table := verdict.Table{
		Headers: []string{"reported_mean", "sample_size", "reasoning"},
		Rows:    [][]string{{"5.22", "9", "Likert item"}, {"3.50", "28", ""}},
	}
	require.NoError(t, WriteFile(path, table))

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	inputs, err := MeanInputs(data)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "5.22", inputs[0].ReportedMean.String())
	assert.Equal(t, "Likert item", inputs[0].Reasoning)
	assert.Equal(t, "3.50", inputs[1].ReportedMean.String())
}

func TestTestInputs_MissingColumn(t *testing.T) {
	data := &ExcelData{Headers: []string{"test_type", "test_value"}}
	_, err := TestInputs(data)
	assert.ErrorContains(t, err, "reported_p_value")
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadData()
	assert.ErrorContains(t, err, "not found")
}
