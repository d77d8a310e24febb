package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const CacheTableSchema = `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key VARCHAR PRIMARY KEY,
		type VARCHAR NOT NULL,
		payload BLOB,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		filter_hash VARCHAR NOT NULL
	);
`

const TrafficTableSchema = `
	CREATE TABLE IF NOT EXISTS traffic_records (
		id VARCHAR NOT NULL,
		entity VARCHAR NOT NULL,
		category VARCHAR,
		occurred_at TIMESTAMP NOT NULL,
		count BIGINT NOT NULL DEFAULT 0,
		amount DOUBLE NOT NULL DEFAULT 0,
		is_test BOOLEAN NOT NULL DEFAULT FALSE,
		is_refund BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (entity, id)
	);
`

const cacheTypeIndex = `CREATE INDEX IF NOT EXISTS cache_entries_type_idx ON cache_entries (type);`

var bootQueries = []string{
	CacheTableSchema,
	cacheTypeIndex,
	TrafficTableSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
