// Package metrics maintains the persisted data-quality record shared by
// the pipeline stages. The record is a mapping of stage name to stage
// metrics; each stage merges its own section and leaves the rest alone,
// so metrics accumulate across independently invoked stages.
package metrics

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Section names written by the pipeline stages.
const (
	SectionIngest      = "ingest"
	SectionFuzzyImpute = "local_fuzzy_impute"
	SectionModelImpute = "model_impute"
	SectionRegressor   = "text_regressor"
)

// IngestMetrics summarizes one normalization run.
type IngestMetrics struct {
	RunID            string    `json:"run_id"`
	TotalItems       int       `json:"total_items"`
	Vendors          int       `json:"vendors"`
	ItemsWithCal     int       `json:"items_with_calories"`
	ItemsWithProtein int       `json:"items_with_protein"`
	PctWithCalories  float64   `json:"pct_with_calories"`
	PctWithProtein   float64   `json:"pct_with_protein"`
	IngestTS         time.Time `json:"ingest_ts"`
}

// FuzzyImputeMetrics summarizes one fuzzy imputation run.
type FuzzyImputeMetrics struct {
	Imputed       int     `json:"imputed"`
	AvgScore      float64 `json:"avg_score"`
	BeforeMissing int     `json:"before_missing"`
	AfterMissing  int     `json:"after_missing"`
	VendorsFilter string  `json:"vendors_filtered"`
}

// ModelImputeMetrics summarizes one model imputation run.
type ModelImputeMetrics struct {
	ImputedCount   int    `json:"imputed_count"`
	CaloriesSource string `json:"calories_source"`
}

// RegressorMetrics summarizes one training run.
type RegressorMetrics struct {
	NTrain   int     `json:"n_train"`
	Alpha    float64 `json:"alpha"`
	TestMAE  float64 `json:"test_mae"`
	TestRMSE float64 `json:"test_rmse"`
}

// Recorder merges stage metrics into a single JSON file. It is an
// explicit accumulator handed to each stage rather than process-global
// state.
type Recorder struct {
	path string
}

// NewRecorder returns a Recorder persisting to the given file path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Merge writes the named section, preserving every other section
// already in the file. An unreadable or corrupt existing record is
// replaced rather than failing the stage.
func (r *Recorder) Merge(section string, payload any) error {
	record := make(map[string]json.RawMessage)
	if data, err := os.ReadFile(r.path); err == nil {
		if err := json.Unmarshal(data, &record); err != nil {
			zap.L().Warn("metrics: existing record unreadable, starting fresh",
				zap.String("path", r.path), zap.Error(err))
			record = make(map[string]json.RawMessage)
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "metrics: marshal section %s", section)
	}
	record[section] = raw

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return eris.Wrap(err, "metrics: marshal record")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return eris.Wrapf(err, "metrics: mkdir %s", filepath.Dir(r.path))
	}
	if err := os.WriteFile(r.path, out, 0o644); err != nil {
		return eris.Wrapf(err, "metrics: write %s", r.path)
	}
	return nil
}

// Read returns the current record, empty when the file is absent.
func (r *Recorder) Read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, eris.Wrapf(err, "metrics: read %s", r.path)
	}
	record := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, eris.Wrapf(err, "metrics: parse %s", r.path)
	}
	return record, nil
}

// Coverage computes 100*nonNull/total rounded to two decimals, defined
// as 0 for an empty table.
func Coverage(nonNull, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return math.Round(100*float64(nonNull)/float64(total)*100) / 100
}
