// =============================================================================
// B2B-WC Converter - Catalog Reader
// =============================================================================
//
// This module reads the supplier catalog spreadsheet into structured rows.
// Two formats are supported:
//   - XLSX (the format the supplier exports): read via excelize
//   - CSV  (occasional manual re-exports): read via encoding/csv
//
// The first row is the header; every cell is treated as a string so SKUs and
// barcodes keep their exact formatting. Fully empty rows are skipped.
//
// =============================================================================

package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Data holds the raw catalog contents.
type Data struct {
	// FilePath is the source file path.
	FilePath string

	// Headers are the column names in sheet order, trimmed.
	Headers []string

	// Rows are the data rows mapped by header name. Row numbers are
	// 1-based and exclude the header row.
	Rows []Row

	// TotalRows counts every non-header row seen, including skipped
	// empty ones.
	TotalRows int
}

// Row is one catalog row.
type Row struct {
	// Number is the 1-based data row number (header row excluded).
	Number int

	// Fields maps header name to the trimmed cell value.
	Fields map[string]string
}

// Read opens the catalog at path and parses it according to its extension.
func Read(path string) (*Data, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

// =============================================================================
// XLSX READING
// =============================================================================

// readXLSX reads the first sheet of an XLSX workbook.
func readXLSX(path string) (*Data, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("catalog file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog sheet %q is empty", sheetName)
	}

	headers := cleanHeaders(rows[0])
	data := &Data{FilePath: path, Headers: headers}

	for i := 1; i < len(rows); i++ {
		data.TotalRows++
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		data.Rows = append(data.Rows, makeRow(data.TotalRows, headers, row))
	}

	return data, nil
}

// =============================================================================
// CSV READING
// =============================================================================

// readCSV reads a comma-separated catalog export. A UTF-8 BOM on the first
// header is stripped; rows with a field count different from the header are
// padded or truncated rather than rejected, matching how the supplier's
// exports actually look.
func readCSV(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	headers := cleanHeaders(header)
	data := &Data{FilePath: path, Headers: headers}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", data.TotalRows+2, err)
		}
		data.TotalRows++
		if isRowEmpty(record) {
			continue
		}
		data.Rows = append(data.Rows, makeRow(data.TotalRows, headers, record))
	}

	return data, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// cleanHeaders trims whitespace from header cells and disambiguates
// duplicates by suffixing an index, so map keys never collide.
func cleanHeaders(raw []string) []string {
	seen := make(map[string]int)
	headers := make([]string, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[h]; n > 0 {
			h = fmt.Sprintf("%s_%d", h, n+1)
		}
		seen[strings.TrimSpace(raw[i])]++
		headers[i] = h
	}

	return headers
}

func makeRow(number int, headers, cells []string) Row {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			fields[h] = strings.TrimSpace(cells[i])
		} else {
			fields[h] = ""
		}
	}
	return Row{Number: number, Fields: fields}
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// CheckColumns verifies that every required column is present in the header.
// The returned slice lists the missing ones; empty means all present.
func (d *Data) CheckColumns(required []string) []string {
	present := make(map[string]bool, len(d.Headers))
	for _, h := range d.Headers {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
