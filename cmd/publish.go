package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthyplate/menu-cli/internal/export"
	"github.com/healthyplate/menu-cli/internal/store"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Batch-write the enriched item table into the keyed row store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L()

		src, err := export.FirstExisting(
			cfg.Data.Path(cfg.Data.EnrichedModelCSV),
			cfg.Data.Path(cfg.Data.EnrichedLocalCSV),
			cfg.Data.Path(cfg.Data.ItemsCSV),
		)
		if err != nil {
			log.Warn("publish: no item table found, run etl first")
			return nil
		}

		items, err := export.ReadItemsCSV(src)
		if err != nil {
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

		runID := uuid.New().String()
		written, err := st.PublishItems(ctx, runID, items)
		if err != nil {
			return err
		}

		log.Info("publish complete",
			zap.String("source_table", src),
			zap.String("run_id", runID),
			zap.Int("written", written),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
