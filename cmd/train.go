package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/config"
	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/fetcher"
	"github.com/healthyplate/menu-cli/internal/metrics"
	"github.com/healthyplate/menu-cli/internal/textreg"
)

var trainLabelsPath string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the calorie text regressor from labeled items",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTrain(cfg, trainLabelsPath)
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainLabelsPath, "labels", "", "path to training labels (CSV or XLSX; defaults to the configured file)")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cfg *config.Config, labelsPath string) error {
	log := zap.L()

	if labelsPath == "" {
		labelsPath = cfg.Data.Path(cfg.Data.TrainLabels)
	}
	if !export.ItemsTableExists(labelsPath) {
		log.Warn("train: labels file not found", zap.String("path", labelsPath))
		return nil
	}

	examples, err := fetcher.ReadLabels(labelsPath)
	if err != nil {
		return err
	}
	if len(examples) == 0 {
		log.Warn("train: no labeled rows to train on", zap.String("path", labelsPath))
		return nil
	}

	model, res, err := textreg.Train(examples, nil)
	if err != nil {
		return err
	}
	if err := model.Save(cfg.Train.ModelsDir); err != nil {
		return err
	}

	rec := metrics.NewRecorder(cfg.Data.Path(cfg.Data.MetricsFile))
	if err := rec.Merge(metrics.SectionRegressor, metrics.RegressorMetrics{
		NTrain:   res.NTrain,
		Alpha:    res.Alpha,
		TestMAE:  res.TestMAE,
		TestRMSE: res.TestRMSE,
	}); err != nil {
		return err
	}

	log.Info("train complete",
		zap.String("models_dir", cfg.Train.ModelsDir),
		zap.Float64("alpha", res.Alpha),
		zap.Float64("test_mae", res.TestMAE),
		zap.Float64("test_rmse", res.TestRMSE),
	)
	return nil
}
