// Package importer provides CSV and Excel import of material catalogs.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Materials []model.Material
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID        int
	Name      int
	Type      int
	UnitCost  int
	Stock     int
	Threshold int
	Supplier  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":        {"id", "material id", "sku", "code"},
	"name":      {"name", "material", "material name", "description", "desc", "item"},
	"type":      {"type", "material type", "category", "kind"},
	"unitCost":  {"unit cost", "unitcost", "cost", "price", "cost per foot", "cost/ft", "price per foot"},
	"stock":     {"stock", "current stock", "currentstock", "on hand", "qty", "quantity", "feet"},
	"threshold": {"threshold", "reorder threshold", "reorderthreshold", "reorder", "reorder point", "min", "minimum"},
	"supplier":  {"supplier", "vendor", "supplied by"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// positionalMapping is used when the first row is not a recognized header:
// Name, Type, Unit Cost, Stock, Threshold, Supplier.
var positionalMapping = ColumnMapping{
	ID:        -1,
	Name:      0,
	Type:      1,
	UnitCost:  2,
	Stock:     3,
	Threshold: 4,
	Supplier:  5,
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{ID: -1, Name: -1, Type: -1, UnitCost: -1, Stock: -1, Threshold: -1, Supplier: -1}
	roles := map[string]*int{
		"id":        &mapping.ID,
		"name":      &mapping.Name,
		"type":      &mapping.Type,
		"unitCost":  &mapping.UnitCost,
		"stock":     &mapping.Stock,
		"threshold": &mapping.Threshold,
		"supplier":  &mapping.Supplier,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if idx := roles[role]; *idx == -1 {
					*idx = i
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount parses a finite number, tolerating a leading currency sign
// and thousands separators.
func parseAmount(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite amount %q", s)
	}
	return v, nil
}

// parseRow extracts a Material from a row using the given column mapping.
// Returns the material, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Material, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		return model.Material{}, fmt.Sprintf("%s: Missing material name", rowLabel), ""
	}
	supplier := getCell(row, mapping.Supplier)
	if supplier == "" {
		return model.Material{}, fmt.Sprintf("%s: Missing supplier", rowLabel), ""
	}

	var unitCost, stock, threshold float64
	numbers := []struct {
		label string
		idx   int
		dst   *float64
	}{
		{"unit cost", mapping.UnitCost, &unitCost},
		{"stock", mapping.Stock, &stock},
		{"threshold", mapping.Threshold, &threshold},
	}
	for _, n := range numbers {
		raw := getCell(row, n.idx)
		if raw == "" {
			return model.Material{}, fmt.Sprintf("%s: Missing %s value", rowLabel, n.label), ""
		}
		v, err := parseAmount(raw)
		if err != nil {
			return model.Material{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, n.label, raw), ""
		}
		if v < 0 {
			return model.Material{}, fmt.Sprintf("%s: Negative %s '%s'", rowLabel, n.label, raw), ""
		}
		*n.dst = v
	}

	var warning string
	typeStr := getCell(row, mapping.Type)
	typ, ok := model.ParseMaterialType(typeStr)
	if !ok {
		typ = model.MaterialOther
		warning = fmt.Sprintf("%s: Unknown material type '%s', defaulting to other", rowLabel, typeStr)
	}

	m := model.NewMaterial(name, typ, unitCost, stock, threshold, supplier)
	if id := getCell(row, mapping.ID); id != "" {
		m.ID = id
	}
	return m, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportFile imports a catalog from path, choosing Excel for .xlsx and
// .xlsm files and CSV otherwise.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}

// ImportCSV imports materials from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports materials from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports materials from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into materials.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Name == -1 {
			missing = append(missing, "Name")
		}
		if mapping.UnitCost == -1 {
			missing = append(missing, "Unit Cost")
		}
		if mapping.Stock == -1 {
			missing = append(missing, "Stock")
		}
		if mapping.Threshold == -1 {
			missing = append(missing, "Threshold")
		}
		if mapping.Supplier == -1 {
			missing = append(missing, "Supplier")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > positionalMapping.UnitCost {
		// An unrecognized header still has a non-numeric cost column; skip it
		// but keep the positional mapping.
		if _, err := parseAmount(rows[0][positionalMapping.UnitCost]); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	seen := map[string]bool{}
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		m, errMsg, warning := parseRow(row, mapping, rowLabel)

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if seen[m.ID] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Duplicate material id '%s', skipping", rowLabel, m.ID))
			continue
		}
		seen[m.ID] = true

		result.Materials = append(result.Materials, m)
	}

	return result
}
