package feed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthyplate/menu-cli/internal/model"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
}

func decodeRecords(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &recs))
	return recs
}

func TestFromVendorMenus(t *testing.T) {
	recs := decodeRecords(t, `[
		{"vendorName": "A Menus", "items": [
			{"id": 1, "title": "Paneer Wrap", "price": "150",
			 "nutrition": {"calories": 300, "protein": 12}}
		]}
	]`)

	items := NewNormalizerAt(testClock).FromVendorMenus(recs)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "a", it.VendorName)
	assert.Equal(t, "A Menus", it.SourceVendorName)
	assert.Equal(t, VendorID("A Menus"), it.VendorID)
	assert.Equal(t, model.FeedSourceVendorMenus, it.Source)
	assert.Equal(t, "1", it.ItemID)
	assert.Equal(t, "Paneer Wrap", it.Title)
	require.NotNil(t, it.PriceCents)
	assert.Equal(t, int64(150), *it.PriceCents)
	require.NotNil(t, it.Calories)
	assert.InDelta(t, 300, *it.Calories, 1e-9)
	require.NotNil(t, it.Protein)
	assert.InDelta(t, 12, *it.Protein, 1e-9)
	assert.False(t, it.CaloriesImputed)
	assert.Equal(t, testClock(), it.IngestTS)
}

func TestFromVendorMenusMalformedFields(t *testing.T) {
	recs := decodeRecords(t, `[
		{"vendorName": "Curry Palace", "items": [
			{"title": "Mystery Dish", "price": "abc", "nutrition": {"calories": "n/a"}},
			"not an object",
			{"title": "Dal Fry"}
		]}
	]`)

	items := NewNormalizerAt(testClock).FromVendorMenus(recs)
	require.Len(t, items, 2)

	// Malformed fields degrade to null, never to zero.
	assert.Nil(t, items[0].PriceCents)
	assert.Nil(t, items[0].Calories)

	// Missing ids are synthesized from vendor id and position.
	assert.Equal(t, items[0].VendorID+"-0", items[0].ItemID)
	assert.Equal(t, items[1].VendorID+"-2", items[1].ItemID)
}

func TestFromVendorMenusMissingVendorName(t *testing.T) {
	recs := decodeRecords(t, `[{"items": [{"title": "Idli"}]}]`)
	items := NewNormalizerAt(testClock).FromVendorMenus(recs)
	require.Len(t, items, 1)
	assert.Equal(t, "unknown", items[0].VendorName)
}

func TestFromPartnerMenus(t *testing.T) {
	recs := decodeRecords(t, `[
		{"hotel": "Spice Villa Menus", "name": "Dal Makhani", "price": "", "tags": ["veg", "rich"]}
	]`)

	items := NewNormalizerAt(testClock).FromPartnerMenus(recs)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, model.FeedSourcePartnerMenus, it.Source)
	assert.Equal(t, "spice villa", it.VendorName)
	assert.Equal(t, "Dal Makhani", it.Title)
	assert.Nil(t, it.PriceCents)
	assert.Equal(t, []string{"veg", "rich"}, it.Tags)

	// The same vendor seen in either feed lands in one group.
	assert.Equal(t, VendorID("spice villa"), it.VendorID)
}

func TestBuildItemTable(t *testing.T) {
	a := []model.CanonicalItem{{ItemID: "1", VendorID: "v1"}}
	b := []model.CanonicalItem{{ItemID: "2", VendorID: "v2"}, {ItemID: "3", VendorID: "v1"}}

	table := BuildItemTable(a, b)
	require.Len(t, table, 3)
	assert.Equal(t, "1", table[0].ItemID)
	assert.Equal(t, "3", table[2].ItemID)
	assert.Equal(t, 2, CountVendors(table))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "chicken biryani", NormalizeText("  Chicken  Biryani "))
	// Unlike vendor names, menu noise tokens survive and empty stays empty.
	assert.Equal(t, "menu special", NormalizeText("Menu Special"))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()

	recs, err := LoadRecords(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, recs)

	path := filepath.Join(dir, "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"vendorName": "A"}]`), 0o644))
	recs, err = LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"}`), 0o644))
	_, err = LoadRecords(path)
	assert.Error(t, err)
}
