package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/healthyplate/menu-cli/internal/model"
)

// Normalizer converts raw source records into canonical item rows. The
// clock is injectable so tests get stable ingest timestamps.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer returns a Normalizer stamping rows with the current UTC time.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: func() time.Time { return time.Now().UTC() }}
}

// NewNormalizerAt returns a Normalizer with a fixed clock.
func NewNormalizerAt(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

var (
	vendorNameKeys  = []string{"vendorName", "hotel", "vendor"}
	partnerNameKeys = []string{"hotel", "vendor", "hotelName"}
	itemIDKeys      = []string{"id", "item_id", "sku"}
	titleKeys       = []string{"title", "name", "dish"}
	categoryKeys    = []string{"category", "menu_category"}
)

// FromVendorMenus converts a vendor-native feed (vendor objects with an
// "items" list) into canonical item rows. Malformed fields on a record
// degrade to null; a malformed record never aborts the batch.
func (n *Normalizer) FromVendorMenus(vendors []map[string]any) []model.CanonicalItem {
	var items []model.CanonicalItem
	for _, v := range vendors {
		vendorName := firstString(v, vendorNameKeys)
		if vendorName == "" {
			vendorName = "unknown"
		}
		rawItems, _ := v["items"].([]any)
		for i, raw := range rawItems {
			rec, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			items = append(items, n.normalizeRecord(rec, vendorName, model.FeedSourceVendorMenus, i))
		}
	}
	return items
}

// FromPartnerMenus converts a flat partner feed (each item carries its
// vendor name inline) into canonical item rows.
func (n *Normalizer) FromPartnerMenus(flat []map[string]any) []model.CanonicalItem {
	var items []model.CanonicalItem
	for i, rec := range flat {
		vendorName := firstString(rec, partnerNameKeys)
		if vendorName == "" {
			vendorName = "unknown"
		}
		items = append(items, n.normalizeRecord(rec, vendorName, model.FeedSourcePartnerMenus, i))
	}
	return items
}

func (n *Normalizer) normalizeRecord(rec map[string]any, vendorName string, source model.FeedSource, index int) model.CanonicalItem {
	vendorID := VendorID(vendorName)
	itemID := firstString(rec, itemIDKeys)
	if itemID == "" {
		itemID = fmt.Sprintf("%s-%d", vendorID, index)
	}

	macros := ExtractMacros(rec)

	return model.CanonicalItem{
		VendorID:         vendorID,
		VendorName:       NormalizeVendorName(vendorName),
		SourceVendorName: vendorName,
		Source:           source,
		SourceIndex:      index,
		ItemID:           itemID,
		Title:            firstString(rec, titleKeys),
		Description:      firstString(rec, []string{"description"}),
		Category:         firstString(rec, categoryKeys),
		Tags:             stringList(rec["tags"]),
		PriceCents:       ParsePriceCents(rec["price"]),
		Calories:         macros.Calories,
		Protein:          macros.Protein,
		Fat:              macros.Fat,
		Carbs:            macros.Carbs,
		IngestTS:         n.now(),
	}
}

// firstString returns the first present, non-empty value among the
// given keys, rendering numbers without a decimal point when integral
// (a JSON id of 1 becomes "1", not "1.000000").
func firstString(rec map[string]any, keys []string) string {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			if t == float64(int64(t)) {
				return strconv.FormatInt(int64(t), 10)
			}
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}

func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// LoadRecords reads a JSON feed file as a list of records. A missing
// file is an empty feed, not an error; a file that does not hold a JSON
// list is reported.
func LoadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "feed: read %s", path)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "feed: %s is not a JSON list of records", path)
	}
	return records, nil
}
