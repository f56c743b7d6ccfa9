package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gostatcheck/domain/verdict"

	"github.com/xuri/excelize/v2"
)

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat accepts csv, json and xlsx (or xls), case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "xls", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type of an export format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// WriteFile exports table to path in the format its extension names
func WriteFile(path string, table verdict.Table) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Write(file, format, table); err != nil {
		return err
	}
	log.Printf("[TableWriter] wrote %d rows to %s", table.Len(), path)
	return file.Close()
}

// Write encodes table to w in the given format
func Write(w io.Writer, format Format, table verdict.Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

// WriteCSV writes a header row followed by the data rows
func WriteCSV(w io.Writer, table verdict.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteJSON writes the rows as an array of header-keyed objects
func WriteJSON(w io.Writer, table verdict.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table.Records())
}

// WriteXLSX writes the table to the first sheet of a new workbook
func WriteXLSX(w io.Writer, table verdict.Table) error {
	f, err := NewWorkbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// NewWorkbook builds an in-memory workbook holding table on SheetName
func NewWorkbook(table verdict.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(table.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, bold)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for i := range table.Headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(SheetName, col, col, columnWidth(table, i))
	}
	return f, nil
}

// columnWidth fits a column to its longest cell, within limits
func columnWidth(table verdict.Table, col int) float64 {
	longest := len(table.Headers[col])
	for _, row := range table.Rows {
		if col < len(row) && len(row[col]) > longest {
			longest = len(row[col])
		}
	}
	width := float64(longest) + 2
	if width > 80 {
		width = 80
	}
	return width
}
