package feed

import (
	"strings"

	"github.com/healthyplate/menu-cli/internal/model"
)

// BuildItemTable concatenates normalized rows from all sources into the
// single canonical item table. Struct rows already carry the fixed
// column superset, so a source that never populates a column still
// yields that column (as null) in every persisted artifact.
func BuildItemTable(batches ...[]model.CanonicalItem) []model.CanonicalItem {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	table := make([]model.CanonicalItem, 0, total)
	for _, b := range batches {
		table = append(table, b...)
	}
	return table
}

// CountVendors returns the number of distinct vendor ids in the table.
func CountVendors(items []model.CanonicalItem) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.VendorID] = struct{}{}
	}
	return len(seen)
}

// NormalizeText applies the whitespace/case rules shared by reference
// corpus names and fuzzy-match queries: lower-case, trim, collapse
// internal whitespace. Unlike vendor names, no noise tokens are
// stripped and empty stays empty.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
