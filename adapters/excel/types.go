package excel

// RawRowData is one spreadsheet row keyed by its column header
type RawRowData map[string]string

// ExcelData is a spreadsheet read into header-keyed rows
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Format names an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// SheetName is the sheet tables are written to and read from
const SheetName = "Sheet1"
