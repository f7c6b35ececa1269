package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/config"
	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/feed"
	"github.com/healthyplate/menu-cli/internal/impute"
	"github.com/healthyplate/menu-cli/internal/metrics"
)

var imputeVendors string

var imputeCmd = &cobra.Command{
	Use:   "impute",
	Short: "Fill missing calories by fuzzy match against the reference nutrition corpus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFuzzyImpute(cmd.Context(), cfg, imputeVendors)
	},
}

func init() {
	imputeCmd.Flags().StringVar(&imputeVendors, "vendors", "", "comma-separated vendor names to restrict imputation to")
	rootCmd.AddCommand(imputeCmd)
}

// runFuzzyImpute is an independently retriable batch step: missing
// upstream artifacts produce a diagnostic and a clean exit.
func runFuzzyImpute(_ context.Context, cfg *config.Config, vendorsCSV string) error {
	log := zap.L()

	itemsPath := cfg.Data.Path(cfg.Data.ItemsCSV)
	if !export.ItemsTableExists(itemsPath) {
		log.Warn("impute: item table not found, run etl first", zap.String("path", itemsPath))
		return nil
	}

	entries, err := feed.LoadReferenceCorpus(cfg.Data.Path(cfg.Data.ReferenceCorpus))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Warn("impute: reference corpus empty or missing",
			zap.String("path", cfg.Data.Path(cfg.Data.ReferenceCorpus)))
		return nil
	}
	log.Info("impute: loaded reference corpus", zap.Int("entries", len(entries)))

	items, err := export.ReadItemsCSV(itemsPath)
	if err != nil {
		return err
	}

	var vendors []string
	if vendorsCSV != "" {
		vendors = strings.Split(vendorsCSV, ",")
	}

	before := impute.MissingCalories(items)
	res := impute.ApplyFuzzy(items, entries, impute.FuzzyOptions{
		MedThreshold:  cfg.Impute.MedThreshold,
		HighThreshold: cfg.Impute.HighThreshold,
		Vendors:       vendors,
	})
	after := impute.MissingCalories(items)

	if err := export.WriteItemArtifacts(
		cfg.Data.Path(cfg.Data.EnrichedLocalCSV),
		cfg.Data.Path(cfg.Data.EnrichedLocalXLSX),
		items,
	); err != nil {
		return err
	}

	filterLabel := "ALL"
	if vendorsCSV != "" {
		filterLabel = vendorsCSV
	}
	rec := metrics.NewRecorder(cfg.Data.Path(cfg.Data.MetricsFile))
	if err := rec.Merge(metrics.SectionFuzzyImpute, metrics.FuzzyImputeMetrics{
		Imputed:       res.Imputed,
		AvgScore:      res.AvgScore,
		BeforeMissing: before,
		AfterMissing:  after,
		VendorsFilter: filterLabel,
	}); err != nil {
		return err
	}

	log.Info("impute complete",
		zap.Int("missing_before", before),
		zap.Int("imputed", res.Imputed),
		zap.Int("missing_after", after),
		zap.Float64("avg_score", res.AvgScore),
	)
	return nil
}
