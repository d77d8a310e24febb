package usage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	sqlstore "github.com/de-tools/report-atlas/pkg/store/sql"
)

// Store supports both ingestion (Add) and the report aggregations over traffic records in DuckDB.
type Store struct {
	*sqlstore.TrafficStore
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	traffic, err := sqlstore.NewTrafficStore(db, sqlstore.DuckDB, sqlstore.DefaultTable)
	if err != nil {
		return nil, err
	}
	return &Store{
		TrafficStore: traffic,
		db:           db,
	}, nil
}

func (u *Store) Add(ctx context.Context, records []store.TrafficRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO traffic_records (
			id, entity, category, occurred_at, count, amount, is_test, is_refund
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = u.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}

	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.ID,
			record.Entity,
			record.Category,
			record.OccurredAt.UTC(),
			record.Count,
			record.Amount,
			record.IsTest,
			record.IsRefund,
		)

		if err != nil {
			return fmt.Errorf("insert record %s/%s: %w", record.Entity, record.ID, err)
		}
	}

	return nil
}

// AddAll inserts the records in a single transaction.
func (u *Store) AddAll(ctx context.Context, records []store.TrafficRecord) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := u.Add(duckdb.WithTransaction(ctx, tx), records); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
