package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVendorName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Spice Villa  ", "spice villa"},
		{"strips menu suffix", "Spice Villa Menu", "spice villa"},
		{"strips menus suffix", "A Menus", "a"},
		{"strips misspelled menues", "Taj Menues", "taj"},
		{"collapses internal whitespace", "Spice   Villa   Menu", "spice villa"},
		{"folds diacritics", "Café Bistro", "cafe bistro"},
		{"empty is unknown", "", "unknown"},
		{"whitespace only is unknown", "   ", "unknown"},
		{"pure noise is unknown", "Menu", "unknown"},
		{"already normalized is untouched", "spice villa", "spice villa"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeVendorName(tc.in))
		})
	}
}

func TestNormalizeVendorNameIdempotent(t *testing.T) {
	for _, in := range []string{"Spice Villa Menu", "A Menus", "", "Menu", "Café Bistro", "Hotel Taj Menus"} {
		once := NormalizeVendorName(in)
		assert.Equal(t, once, NormalizeVendorName(once), "input %q", in)
	}
}

func TestVendorIDMergesAcrossFeeds(t *testing.T) {
	// The same vendor appearing under feed-specific decorations must
	// resolve to one group.
	a := VendorID("Spice Villa Menu")
	b := VendorID("spice villa")
	c := VendorID("  SPICE  VILLA  ")
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Len(t, a, 8)
}

func TestVendorIDStableAcrossRuns(t *testing.T) {
	// md5("a")[:8]; pinned so published ids never drift.
	assert.Equal(t, "0cc175b9", VendorID("A Menus"))
	assert.Equal(t, VendorID("Spice Villa"), VendorID("Spice Villa"))
}

func TestVendorIDDistinctVendors(t *testing.T) {
	assert.NotEqual(t, VendorID("spice villa"), VendorID("curry palace"))
}
