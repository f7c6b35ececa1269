package textreg

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Artifact file names under the models directory.
const (
	VectorizerFile = "tfidf_vectorizer.json"
	RegressorFile  = "ridge_regressor.json"
)

// Model bundles the two persisted artifacts of a training run.
type Model struct {
	Vectorizer *Vectorizer
	Regressor  *Ridge
}

// Predict returns calorie predictions for raw item texts.
func (m *Model) Predict(texts []string) []float64 {
	return m.Regressor.Predict(m.Vectorizer.Transform(texts))
}

// Save writes both artifacts into dir, creating it if needed.
func (m *Model) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "textreg: mkdir %s", dir)
	}
	if err := writeJSON(filepath.Join(dir, VectorizerFile), m.Vectorizer); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, RegressorFile), m.Regressor)
}

// Load reads both artifacts from dir. A missing artifact returns
// os.ErrNotExist so callers can treat absence as "stage is a no-op".
func Load(dir string) (*Model, error) {
	var vect Vectorizer
	if err := readJSON(filepath.Join(dir, VectorizerFile), &vect); err != nil {
		return nil, err
	}
	var reg Ridge
	if err := readJSON(filepath.Join(dir, RegressorFile), &reg); err != nil {
		return nil, err
	}
	return &Model{Vectorizer: &vect, Regressor: &reg}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "textreg: marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "textreg: write %s", path)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return eris.Wrapf(err, "textreg: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "textreg: parse %s", path)
	}
	return nil
}
