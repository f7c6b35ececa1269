package feed

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// noiseTokens are stripped from vendor names as substrings, in order.
// The ordered list matters: "menus" must go before "menu".
var noiseTokens = []string{"menus", "menu", "menues", "menus ", "menu "}

// diacritic folding so "Café Menu" and "Cafe Menu" resolve to the same
// vendor identity.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeVendorName lower-cases, folds diacritics, strips menu noise
// tokens and collapses whitespace. Empty input, or input that is
// nothing but noise, normalizes to "unknown". The function is
// idempotent: normalizing a normalized name is a no-op.
func NormalizeVendorName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "unknown"
	}
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	for _, tok := range noiseTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "unknown"
	}
	return s
}

// VendorID derives the stable 8-hex-char vendor identifier from a raw
// vendor name. Identical names (after normalization) produce identical
// ids across feeds and runs, which is what lets heterogeneous sources
// merge by vendor without a lookup table. Collisions are possible on
// very large vendor sets; the id is a merge key, not a global key.
func VendorID(raw string) string {
	sum := md5.Sum([]byte(NormalizeVendorName(raw)))
	return hex.EncodeToString(sum[:])[:8]
}
