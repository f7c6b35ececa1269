package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/config"
	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/impute"
	"github.com/healthyplate/menu-cli/internal/metrics"
	"github.com/healthyplate/menu-cli/internal/model"
	"github.com/healthyplate/menu-cli/internal/textreg"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Fill remaining missing calories with the trained text regressor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runModelImpute(cfg)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
}

func runModelImpute(cfg *config.Config) error {
	log := zap.L()

	m, err := textreg.Load(cfg.Train.ModelsDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Graceful degradation: without artifacts this stage is a no-op.
			log.Warn("predict: model artifacts missing, run train first",
				zap.String("models_dir", cfg.Train.ModelsDir))
			return nil
		}
		return err
	}

	// Operate on the most enriched table available so rows the fuzzy
	// stage filled are never candidates again.
	src, err := export.FirstExisting(
		cfg.Data.Path(cfg.Data.EnrichedLocalCSV),
		cfg.Data.Path(cfg.Data.ItemsCSV),
	)
	if err != nil {
		log.Warn("predict: no item table found, run etl first")
		return nil
	}

	items, err := export.ReadItemsCSV(src)
	if err != nil {
		return err
	}

	imputed := impute.ApplyModel(items, m)

	if err := export.WriteItemArtifacts(
		cfg.Data.Path(cfg.Data.EnrichedModelCSV),
		cfg.Data.Path(cfg.Data.EnrichedModelXLSX),
		items,
	); err != nil {
		return err
	}

	rec := metrics.NewRecorder(cfg.Data.Path(cfg.Data.MetricsFile))
	if err := rec.Merge(metrics.SectionModelImpute, metrics.ModelImputeMetrics{
		ImputedCount:   imputed,
		CaloriesSource: string(model.CalorieSourceModel),
	}); err != nil {
		return err
	}

	log.Info("predict complete", zap.String("source_table", src), zap.Int("imputed", imputed))
	return nil
}
