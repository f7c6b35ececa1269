package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/config"
	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/feed"
	"github.com/healthyplate/menu-cli/internal/metrics"
	"github.com/healthyplate/menu-cli/internal/pipeline"
	"github.com/healthyplate/menu-cli/internal/store"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Normalize feeds into the canonical item table and vendor aggregates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runETL(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(etlCmd)
}

func runETL(ctx context.Context, cfg *config.Config) error {
	log := zap.L()

	// Either feed may be absent; a feed that fails to parse is treated
	// as empty rather than aborting the batch.
	vendorRecs := loadFeed(cfg.Data.Path(cfg.Data.VendorFeed))
	partnerRecs := loadFeed(cfg.Data.Path(cfg.Data.PartnerFeed))

	norm := feed.NewNormalizer()
	items := feed.BuildItemTable(
		norm.FromVendorMenus(vendorRecs),
		norm.FromPartnerMenus(partnerRecs),
	)
	if len(items) == 0 {
		return eris.New("etl: no usable items in any feed")
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return eris.Wrapf(err, "etl: mkdir %s", cfg.Data.Dir)
	}

	if err := export.WriteItemArtifacts(
		cfg.Data.Path(cfg.Data.ItemsCSV),
		cfg.Data.Path(cfg.Data.ItemsXLSX),
		items,
	); err != nil {
		return err
	}

	withCal, withProt := 0, 0
	for _, it := range items {
		if it.Calories != nil {
			withCal++
		}
		if it.Protein != nil {
			withProt++
		}
	}
	ingest := metrics.IngestMetrics{
		RunID:            uuid.New().String(),
		TotalItems:       len(items),
		Vendors:          feed.CountVendors(items),
		ItemsWithCal:     withCal,
		ItemsWithProtein: withProt,
		PctWithCalories:  metrics.Coverage(withCal, len(items)),
		PctWithProtein:   metrics.Coverage(withProt, len(items)),
		IngestTS:         time.Now().UTC(),
	}
	rec := metrics.NewRecorder(cfg.Data.Path(cfg.Data.MetricsFile))
	if err := rec.Merge(metrics.SectionIngest, ingest); err != nil {
		return err
	}

	aggs := pipeline.ComputeVendorAggregates(items)
	if err := export.WriteAggregateArtifacts(
		cfg.Data.Path(cfg.Data.AggregatesCSV),
		cfg.Data.Path(cfg.Data.AggregatesXLSX),
		aggs,
	); err != nil {
		return err
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := st.ReplaceVendorAggregates(ctx, aggs); err != nil {
		return err
	}

	log.Info("etl complete",
		zap.Int("items", len(items)),
		zap.Int("vendors", ingest.Vendors),
		zap.Float64("pct_with_calories", ingest.PctWithCalories),
		zap.Int("aggregates", len(aggs)),
	)
	return nil
}

func loadFeed(path string) []map[string]any {
	records, err := feed.LoadRecords(path)
	if err != nil {
		zap.L().Warn("etl: feed unreadable, treating as empty", zap.String("path", path), zap.Error(err))
		return nil
	}
	return records
}
