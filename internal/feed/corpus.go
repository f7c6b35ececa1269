package feed

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/healthyplate/menu-cli/internal/model"
)

// referenceNameKeys are the name-like keys recognized in reference
// corpus records, in priority order.
var referenceNameKeys = []string{"name", "food", "title", "product_name", "item"}

// LoadReferenceCorpus reads the reference nutrition corpus. The file
// may hold a flat list of records or a dict whose values are lists or
// single records; both shapes flatten to the same entry list. A missing
// file yields an empty corpus.
func LoadReferenceCorpus(path string) ([]model.ReferenceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "feed: read %s", path)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		var byKey map[string]json.RawMessage
		if err2 := json.Unmarshal(data, &byKey); err2 != nil {
			return nil, eris.Wrapf(err, "feed: %s is neither a list nor a dict of records", path)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			var list []map[string]any
			if err := json.Unmarshal(byKey[k], &list); err == nil {
				records = append(records, list...)
				continue
			}
			var single map[string]any
			if err := json.Unmarshal(byKey[k], &single); err == nil {
				records = append(records, single)
			}
		}
	}

	entries := make([]model.ReferenceEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, model.ReferenceEntry{
			Name:     NormalizeText(firstString(rec, referenceNameKeys)),
			Calories: ExtractReferenceCalories(rec),
			Raw:      rec,
		})
	}
	return entries, nil
}
