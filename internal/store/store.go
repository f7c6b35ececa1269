package store

import (
	"context"

	"github.com/healthyplate/menu-cli/internal/model"
)

// Store is the persistence interface for the produced tables: the
// vendor aggregate relation consumed by the read-only serving layer,
// and the published item rows.
type Store interface {
	// Vendor aggregates. The table is replaced wholesale each run.
	ReplaceVendorAggregates(ctx context.Context, aggs []model.VendorAggregate) error
	ListVendorAggregates(ctx context.Context) ([]model.VendorAggregate, error)
	// GetVendorAggregate looks up one vendor by normalized name and
	// returns nil (no error) when absent.
	GetVendorAggregate(ctx context.Context, vendorName string) (*model.VendorAggregate, error)

	// Published items: batch write of the enriched item table into the
	// keyed row store.
	PublishItems(ctx context.Context, runID string, items []model.CanonicalItem) (int, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
