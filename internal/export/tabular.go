// Package export persists the canonical item and vendor aggregate
// tables. CSV is the primary delimited artifact; XLSX is a secondary
// tabular mirror whose failure is logged and swallowed so a run still
// produces usable output.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/healthyplate/menu-cli/internal/model"
)

// WriteItemArtifacts writes the item table to its CSV and XLSX
// artifacts. The two writes are independent and run concurrently; only
// the CSV (primary) failure is returned.
func WriteItemArtifacts(csvPath, xlsxPath string, items []model.CanonicalItem) error {
	var g errgroup.Group
	g.Go(func() error {
		return WriteItemsCSV(csvPath, items)
	})
	g.Go(func() error {
		if err := WriteItemsXLSX(xlsxPath, items); err != nil {
			zap.L().Warn("export: secondary xlsx write failed", zap.String("path", xlsxPath), zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}

// WriteAggregateArtifacts mirrors WriteItemArtifacts for the vendor
// aggregate table.
func WriteAggregateArtifacts(csvPath, xlsxPath string, aggs []model.VendorAggregate) error {
	var g errgroup.Group
	g.Go(func() error {
		return WriteAggregatesCSV(csvPath, aggs)
	})
	g.Go(func() error {
		if err := WriteAggregatesXLSX(xlsxPath, aggs); err != nil {
			zap.L().Warn("export: secondary xlsx write failed", zap.String("path", xlsxPath), zap.Error(err))
		}
		return nil
	})
	return g.Wait()
}

// WriteItemsCSV writes the full fixed column set, one row per item.
func WriteItemsCSV(path string, items []model.CanonicalItem) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.ItemColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, it := range items {
		if err := w.Write(itemRecord(it)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return nil
}

// WriteItemsXLSX writes the item table as a single-sheet workbook.
func WriteItemsXLSX(path string, items []model.CanonicalItem) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRecord(it))
	}
	return writeSheet(path, "items", model.ItemColumns, rows)
}

// WriteAggregatesCSV writes the vendor aggregate table.
func WriteAggregatesCSV(path string, aggs []model.VendorAggregate) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.AggregateColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, a := range aggs {
		if err := w.Write(aggregateRecord(a)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return nil
}

// WriteAggregatesXLSX writes the aggregate table as a single-sheet workbook.
func WriteAggregatesXLSX(path string, aggs []model.VendorAggregate) error {
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, aggregateRecord(a))
	}
	return writeSheet(path, "vendor_aggregates", model.AggregateColumns, rows)
}

func writeSheet(path, name string, header []string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}
	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().Value = cell
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

// Null encodes as the empty cell; a genuine zero stays "0".

func itemRecord(it model.CanonicalItem) []string {
	return []string{
		it.VendorID,
		it.VendorName,
		it.SourceVendorName,
		string(it.Source),
		strconv.Itoa(it.SourceIndex),
		it.ItemID,
		it.Title,
		it.Description,
		it.Category,
		encodeTags(it.Tags),
		fmtInt(it.PriceCents),
		fmtFloat(it.Calories),
		fmtFloat(it.Protein),
		fmtFloat(it.Fat),
		fmtFloat(it.Carbs),
		strconv.FormatBool(it.CaloriesImputed),
		strconv.FormatBool(it.CaloriesImputedModel),
		string(it.CaloriesSource),
		fmtFloat(it.CaloriesConfidence),
		fmtFloat(it.LocalMatchScore),
		it.LocalMatchName,
		fmtFloat(it.ModelPredCalories),
		it.IngestTS.UTC().Format(time.RFC3339Nano),
	}
}

func aggregateRecord(a model.VendorAggregate) []string {
	return []string{
		a.VendorID,
		a.VendorName,
		strconv.Itoa(a.ItemCount),
		strconv.Itoa(a.ItemsWithNutritionCount),
		fmtF(a.PercentWithNutrition),
		fmtFloat(a.AvgCalories),
		fmtFloat(a.MedianCalories),
		fmtFloat(a.MinCalories),
		fmtFloat(a.MaxCalories),
		fmtF(a.SumProtein),
		fmtFloat(a.AvgProtein),
		fmtFloat(a.PriceAvg),
		fmtFloat(a.PriceMedian),
		fmtFloat(a.PriceStddev),
		fmtF(a.CheapPct),
		fmtF(a.MediumPct),
		fmtF(a.ExpensivePct),
		strconv.FormatBool(a.MissingNutritionFlag),
	}
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtF(*v)
}

func fmtInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(data)
}
