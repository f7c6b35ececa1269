package fetcher

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/healthyplate/menu-cli/internal/textreg"
)

// ReadLabels loads a training-label table (CSV or XLSX by extension)
// into labeled examples. Rows without a parseable calorie value are
// dropped, mirroring the "confirmed calories only" training contract.
func ReadLabels(path string) ([]textreg.Example, error) {
	var header []string
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		header, rows, err = ReadXLSX(path)
	default:
		header, rows, err = ReadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	calIdx, ok := col["calories"]
	if !ok {
		return nil, eris.Errorf("fetcher: %s has no calories column", path)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var examples []textreg.Example
	for _, row := range rows {
		if calIdx >= len(row) {
			continue
		}
		cal, err := strconv.ParseFloat(strings.TrimSpace(row[calIdx]), 64)
		if err != nil {
			continue
		}
		examples = append(examples, textreg.Example{
			Title:       field(row, "title"),
			VendorName:  field(row, "vendor_name"),
			Description: field(row, "description"),
			Calories:    cal,
		})
	}
	return examples, nil
}
