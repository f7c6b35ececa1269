package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/healthyplate/menu-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS vendor_aggregates (
	vendor_id                  TEXT PRIMARY KEY,
	vendor_name                TEXT NOT NULL,
	item_count                 INTEGER NOT NULL,
	items_with_nutrition_count INTEGER NOT NULL,
	percent_with_nutrition     REAL NOT NULL,
	avg_calories               REAL,
	median_calories            REAL,
	min_calories               REAL,
	max_calories               REAL,
	sum_protein                REAL NOT NULL,
	avg_protein                REAL,
	price_avg                  REAL,
	price_median               REAL,
	price_stddev               REAL,
	cheap_pct                  REAL NOT NULL,
	medium_pct                 REAL NOT NULL,
	expensive_pct              REAL NOT NULL,
	missing_nutrition_flag     INTEGER NOT NULL,
	updated_at                 DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS menu_items (
	pk           TEXT NOT NULL,
	sk           TEXT NOT NULL,
	run_id       TEXT NOT NULL,
	payload      TEXT NOT NULL,
	published_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (pk, sk)
);

CREATE INDEX IF NOT EXISTS idx_vendor_aggregates_name ON vendor_aggregates(vendor_name);
CREATE INDEX IF NOT EXISTS idx_menu_items_run_id ON menu_items(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceVendorAggregates swaps in the new aggregate table inside one
// transaction so readers never observe a half-written relation.
func (s *SQLiteStore) ReplaceVendorAggregates(ctx context.Context, aggs []model.VendorAggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace aggregates")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vendor_aggregates`); err != nil {
		return eris.Wrap(err, "sqlite: clear vendor_aggregates")
	}

	const insert = `INSERT INTO vendor_aggregates (
		vendor_id, vendor_name, item_count, items_with_nutrition_count,
		percent_with_nutrition, avg_calories, median_calories, min_calories,
		max_calories, sum_protein, avg_protein, price_avg, price_median,
		price_stddev, cheap_pct, medium_pct, expensive_pct,
		missing_nutrition_flag, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	for _, a := range aggs {
		_, err := tx.ExecContext(ctx, insert,
			a.VendorID, a.VendorName, a.ItemCount, a.ItemsWithNutritionCount,
			a.PercentWithNutrition, a.AvgCalories, a.MedianCalories, a.MinCalories,
			a.MaxCalories, a.SumProtein, a.AvgProtein, a.PriceAvg, a.PriceMedian,
			a.PriceStddev, a.CheapPct, a.MediumPct, a.ExpensivePct,
			a.MissingNutritionFlag, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert aggregate %s", a.VendorID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit replace aggregates")
}

const aggregateColumns = `vendor_id, vendor_name, item_count, items_with_nutrition_count,
	percent_with_nutrition, avg_calories, median_calories, min_calories,
	max_calories, sum_protein, avg_protein, price_avg, price_median,
	price_stddev, cheap_pct, medium_pct, expensive_pct, missing_nutrition_flag`

func (s *SQLiteStore) ListVendorAggregates(ctx context.Context) ([]model.VendorAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM vendor_aggregates ORDER BY vendor_name, vendor_id`, aggregateColumns))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list aggregates")
	}
	defer rows.Close()

	var aggs []model.VendorAggregate
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, *a)
	}
	return aggs, eris.Wrap(rows.Err(), "sqlite: iterate aggregates")
}

func (s *SQLiteStore) GetVendorAggregate(ctx context.Context, vendorName string) (*model.VendorAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM vendor_aggregates WHERE vendor_name = ?`, aggregateColumns), vendorName)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get aggregate %s", vendorName)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, eris.Wrap(rows.Err(), "sqlite: get aggregate")
	}
	return scanAggregate(rows)
}

func scanAggregate(rows *sql.Rows) (*model.VendorAggregate, error) {
	var a model.VendorAggregate
	var avgCal, medCal, minCal, maxCal, avgProt, pAvg, pMed, pStd sql.NullFloat64
	err := rows.Scan(
		&a.VendorID, &a.VendorName, &a.ItemCount, &a.ItemsWithNutritionCount,
		&a.PercentWithNutrition, &avgCal, &medCal, &minCal,
		&maxCal, &a.SumProtein, &avgProt, &pAvg, &pMed,
		&pStd, &a.CheapPct, &a.MediumPct, &a.ExpensivePct, &a.MissingNutritionFlag,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan aggregate")
	}
	a.AvgCalories = nullableFloat(avgCal)
	a.MedianCalories = nullableFloat(medCal)
	a.MinCalories = nullableFloat(minCal)
	a.MaxCalories = nullableFloat(maxCal)
	a.AvgProtein = nullableFloat(avgProt)
	a.PriceAvg = nullableFloat(pAvg)
	a.PriceMedian = nullableFloat(pMed)
	a.PriceStddev = nullableFloat(pStd)
	return &a, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// PublishItems batch-writes the enriched item table into the keyed
// menu_items relation. Rows use a FOOD#<item_id> partition key and a
// fixed META#1 sort key; re-publishing an item replaces its payload.
func (s *SQLiteStore) PublishItems(ctx context.Context, runID string, items []model.CanonicalItem) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin publish")
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO menu_items (pk, sk, run_id, payload, published_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pk, sk) DO UPDATE SET
			run_id = excluded.run_id,
			payload = excluded.payload,
			published_at = excluded.published_at`

	now := time.Now().UTC()
	written := 0
	for _, it := range items {
		payload, err := json.Marshal(it)
		if err != nil {
			return written, eris.Wrapf(err, "sqlite: marshal item %s", it.ItemID)
		}
		pk := "FOOD#" + it.ItemID
		if _, err := tx.ExecContext(ctx, upsert, pk, "META#1", runID, string(payload), now); err != nil {
			return written, eris.Wrapf(err, "sqlite: publish item %s", it.ItemID)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit publish")
	}
	return written, nil
}
