package verdict

// Column sets of the exported tables
var (
	StatcheckColumns = []string{"Consistent", "APA Reporting", "Reported P-value", "Valid P-value Range", "Notes"}
	GrimColumns      = []string{"Consistent", "Reported Mean", "Sample Size", "Decimals", "Reasoning"}
)

// Table is the flat, exportable rendering of a report
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Records returns the rows keyed by header, in row order
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Rows)
}
