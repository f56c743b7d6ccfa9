package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gostatcheck/adapters/excel"
	"gostatcheck/domain/verdict"

	"github.com/spf13/cobra"
)

// emit prints the report and, with --output, writes its table to a file
func emit(cmd *cobra.Command, report *verdict.Report, table verdict.Table, out outputFlags) error {
	w := cmd.OutOrStdout()
	if out.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printTable(w, table)
		printSummary(w, report)
	}

	if out.output != "" {
		if err := excel.WriteFile(out.output, table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", table.Len(), out.output)
	}
	return nil
}

func printTable(w io.Writer, table verdict.Table) {
	if table.Len() == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Headers, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printSummary(w io.Writer, report *verdict.Report) {
	s := report.Summary
	fmt.Fprintf(w, "\n%s run %s: %d records, %d checked, %d consistent, %d inconsistent",
		report.Kind, report.ID, s.Total, s.Checked, s.Consistent, s.Inconsistent)
	switch report.Kind {
	case verdict.KindStatcheck:
		fmt.Fprintf(w, " (%d gross)", s.Gross)
		if s.NotApplicable > 0 {
			fmt.Fprintf(w, ", %d reported as ns", s.NotApplicable)
		}
	case verdict.KindGRIM:
		fmt.Fprintf(w, ", %d not testable", s.NotApplicable)
	}
	fmt.Fprintf(w, ", %d rejected\n", s.Rejected)

	if report.Runs > 1 {
		fmt.Fprintf(w, "Most frequent result: %d of %d runs\n", report.Frequency, report.Runs)
	}
	for _, o := range report.Statcheck {
		if o.Error != "" {
			fmt.Fprintf(w, "  rejected: %s\n", o.Error)
		}
	}
	for _, o := range report.GRIM {
		if o.Error != "" {
			fmt.Fprintf(w, "  rejected: %s\n", o.Error)
		}
	}
}

func printStatcheckDetail(w io.Writer, o verdict.StatcheckOutcome) {
	v := o.Verdict
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Test:\t%s\n", v.APA)
	fmt.Fprintf(tw, "Reported p:\t%s (%s)\n", v.ReportedP, v.ReportedSignificance)
	fmt.Fprintf(tw, "Valid p range:\t%s (%s)\n", v.ValidRange, v.RecomputedSignificance)
	fmt.Fprintf(tw, "Verdict:\t%s\n", v.Classification)
	for _, note := range v.Notes {
		fmt.Fprintf(tw, "Note:\t%s\n", note)
	}
	tw.Flush()
}

func printGrimDetail(w io.Writer, o verdict.GrimOutcome) {
	v := o.Verdict
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Mean:\t%s (n = %d, %d decimals)\n", v.ReportedMean, v.SampleSize, v.Decimals)
	fmt.Fprintf(tw, "Consistent:\t%s\n", yesNo(v.Consistent))
	if !v.Consistent {
		fmt.Fprintf(tw, "Nearest possible mean:\t%s\n", v.NearestMean)
	}
	if !v.Applicable {
		fmt.Fprintf(tw, "Note:\tn > 10^%d, so every mean is possible\n", v.Decimals)
	}
	tw.Flush()
}

func printRuns(w io.Writer, runs []verdict.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKind\tCreated\tChecked\tInconsistent\tSource")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Kind, r.CreatedAt.Time().Format("2006-01-02 15:04"), r.Summary.Checked, r.Summary.Inconsistent, r.Source)
	}
	tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
