// Package fetcher parses the tabular inputs of the pipeline: persisted
// item tables and training-label files, in CSV or XLSX form.
package fetcher

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a headered CSV file and returns the header row and all
// data rows. Rows may have variable field counts; short rows are
// returned as-is and resolved by the caller against the header.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, eris.Errorf("fetcher: %s is empty", path)
	}
	if err != nil {
		return nil, nil, eris.Wrapf(err, "fetcher: read header of %s", path)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrapf(err, "fetcher: read %s", path)
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}
