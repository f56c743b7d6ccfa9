package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gostatcheck/adapters/excel"
	"gostatcheck/app"
	"gostatcheck/domain/core"
	"gostatcheck/domain/verdict"
	"gostatcheck/internal/records"

	"github.com/spf13/cobra"
)

// outputFlags are shared by every command that prints a report
type outputFlags struct {
	output string
	asJSON bool
	all    bool
}

func (o *outputFlags) register(cmd *cobra.Command, grim bool) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Also write the table to this .csv, .json or .xlsx file")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "Print the full report as JSON")
	if grim {
		cmd.Flags().BoolVar(&o.all, "all", false, "Keep means GRIM cannot test and repeated (mean, n) pairs")
	}
}

func (o *outputFlags) grimOptions() app.GrimTableOptions {
	if o.all {
		return app.GrimTableOptions{}
	}
	return app.DefaultGrimTableOptions
}

func newStatcheckCmd(flags *globalFlags) *cobra.Command {
	var runs int
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "statcheck [document]",
		Short: "Extract reported tests from a document and recompute their p-values",
		Long: `Extract every reported t, F, chi2, z and r test from a .txt, .html or .md
document and check that the reported p-value fits the test statistic.

Example: gostatcheck statcheck paper.html --runs 3 -o results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags, setupOptions{extraction: true})
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Statcheck.CheckFile(cmd.Context(), args[0], runs)
			if err != nil {
				return err
			}
			return emit(cmd, report, app.StatcheckTable(report.Statcheck), out)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1, "Repeat extraction and keep the most frequent result (1-5)")
	out.register(cmd, false)
	return cmd
}

func newGrimCmd(flags *globalFlags) *cobra.Command {
	var runs int
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "grim [document]",
		Short: "Extract reported means from a document and run the GRIM test",
		Long: `Extract the means of integer data (Likert items, counts) reported in a
document together with their sample sizes and test whether each mean is
possible. Means GRIM cannot test (n > 10^decimals) are hidden unless --all.

Example: gostatcheck grim paper.md -o grim.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags, setupOptions{extraction: true})
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.GRIM.CheckFile(cmd.Context(), args[0], runs)
			if err != nil {
				return err
			}
			return emit(cmd, report, app.GrimTable(report.GRIM, out.grimOptions()), out)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1, "Repeat extraction and keep the most frequent result (1-5)")
	out.register(cmd, true)
	return cmd
}

func newCheckTestCmd(flags *globalFlags) *cobra.Command {
	var in records.TestInput
	var df1, df2, p, epsilon string
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "check-test [type] [value]",
		Short: "Check one reported test without extraction",
		Long: `Check a single reported test. Type is one of t, F, chi2, z, r.
Write the value and p exactly as reported; their decimals set the rounding bounds.

Examples:
  gostatcheck check-test t 1.96 --df1 30 --p .059
  gostatcheck check-test F 3.50 --df1 2 --df2 20 --p .05 --operator "<" --epsilon 0.75`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags, setupOptions{})
			if err != nil {
				return err
			}
			defer c.Close()

			in.TestType = args[0]
			in.TestValue = records.Numeral(args[1])
			in.DF1, in.DF2 = records.Numeral(df1), records.Numeral(df2)
			in.ReportedPValue = records.Numeral(p)
			in.Epsilon = records.Numeral(epsilon)

			report, err := c.Statcheck.CheckRecords(cmd.Context(), "command line", []records.TestInput{in})
			if err != nil {
				return err
			}
			if o := report.Statcheck[0]; o.Err != nil {
				return o.Err
			}
			if !out.asJSON {
				printStatcheckDetail(cmd.OutOrStdout(), report.Statcheck[0])
				return nil
			}
			return emit(cmd, report, app.StatcheckTable(report.Statcheck), out)
		},
	}
	cmd.Flags().StringVar(&df1, "df1", "", "First degrees of freedom")
	cmd.Flags().StringVar(&df2, "df2", "", "Second degrees of freedom (F only)")
	cmd.Flags().StringVar(&p, "p", "", "Reported p-value, as written")
	cmd.Flags().StringVar(&in.Operator, "operator", "=", "Comparison reported with p: =, < or >")
	cmd.Flags().StringVar(&epsilon, "epsilon", "", "Huynh-Feldt epsilon (F only)")
	cmd.Flags().StringVar(&in.Tail, "tail", "two", "one or two")
	cmd.Flags().BoolVar(&out.asJSON, "json", false, "Print the full report as JSON")
	_ = cmd.MarkFlagRequired("p")
	return cmd
}

func newCheckMeanCmd(flags *globalFlags) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "check-mean [mean] [n]",
		Short: "Run the GRIM test on one reported mean",
		Long: `Run the GRIM test on a single mean. Write the mean exactly as reported;
its decimals matter ("5.20" is tested at two places).

Example: gostatcheck check-mean 5.20 9`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags, setupOptions{})
			if err != nil {
				return err
			}
			defer c.Close()

			in := records.MeanInput{ReportedMean: records.Numeral(args[0]), SampleSize: records.Numeral(args[1])}
			report, err := c.GRIM.CheckRecords(cmd.Context(), "command line", []records.MeanInput{in})
			if err != nil {
				return err
			}
			if o := report.GRIM[0]; o.Err != nil {
				return o.Err
			}
			if !out.asJSON {
				printGrimDetail(cmd.OutOrStdout(), report.GRIM[0])
				return nil
			}
			return emit(cmd, report, app.GrimTable(report.GRIM, app.GrimTableOptions{}), out)
		},
	}
	cmd.Flags().BoolVar(&out.asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func newRecordsCmd(flags *globalFlags) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "records [statcheck|grim] [file]",
		Short: "Check a batch of extracted records from a JSON, CSV or XLSX file",
		Long: `Check records that were already extracted. JSON files hold an array of
objects (or {"tests": [...]}, {"means": [...]}); CSV and XLSX files hold one
record per row with the same names as column headers:

  statcheck: test_type, df1, df2, test_value, operator, reported_p_value, epsilon, tail
  grim:      reported_mean, sample_size, reasoning

Example: gostatcheck records statcheck extracted.csv -o checked.xlsx`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"statcheck", "grim"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := strings.ToLower(args[0]), args[1]
			if kind != string(verdict.KindStatcheck) && kind != string(verdict.KindGRIM) {
				return fmt.Errorf("unknown record kind %q (want statcheck or grim)", args[0])
			}

			c, err := setup(flags, setupOptions{})
			if err != nil {
				return err
			}
			defer c.Close()

			if kind == string(verdict.KindGRIM) {
				inputs, err := loadMeanInputs(path)
				if err != nil {
					return err
				}
				report, err := c.GRIM.CheckRecords(cmd.Context(), path, inputs)
				if err != nil {
					return err
				}
				return emit(cmd, report, app.GrimTable(report.GRIM, out.grimOptions()), out)
			}

			inputs, err := loadTestInputs(path)
			if err != nil {
				return err
			}
			report, err := c.Statcheck.CheckRecords(cmd.Context(), path, inputs)
			if err != nil {
				return err
			}
			return emit(cmd, report, app.StatcheckTable(report.Statcheck), out)
		},
	}
	out.register(cmd, true)
	return cmd
}

func newRunsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and show stored reports (needs DATABASE_URL)",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(flags, setupOptions{storage: true})
			if err != nil {
				return err
			}
			defer c.Close()

			runs, err := c.Runs.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	list.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")

	var out outputFlags
	show := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}
			c, err := setup(flags, setupOptions{storage: true})
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Runs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			table := app.StatcheckTable(report.Statcheck)
			if report.Kind == verdict.KindGRIM {
				table = app.GrimTable(report.GRIM, out.grimOptions())
			}
			return emit(cmd, report, table, out)
		},
	}
	out.register(show, true)

	cmd.AddCommand(list, show)
	return cmd
}

// loadTestInputs reads test records from JSON, CSV or XLSX
func loadTestInputs(path string) ([]records.TestInput, error) {
	if isJSON(path) {
		var inputs []records.TestInput
		if err := readJSONRecords(path, "tests", &inputs); err != nil {
			return nil, err
		}
		return inputs, nil
	}
	data, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	return excel.TestInputs(data)
}

// loadMeanInputs reads mean records from JSON, CSV or XLSX
func loadMeanInputs(path string) ([]records.MeanInput, error) {
	if isJSON(path) {
		var inputs []records.MeanInput
		if err := readJSONRecords(path, "means", &inputs); err != nil {
			return nil, err
		}
		return inputs, nil
	}
	data, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	return excel.MeanInputs(data)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readJSONRecords accepts a bare array or an object holding the array under key
func readJSONRecords(path, key string, into interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "{") {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		inner, ok := wrapper[key]
		if !ok {
			inner, ok = wrapper["tests"]
		}
		if !ok {
			return fmt.Errorf("%s has no %q array", path, key)
		}
		raw = inner
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
