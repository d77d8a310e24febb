package warehouse

import (
	"database/sql"
	"fmt"
	"net/url"

	dbsqllog "github.com/databricks/databricks-sql-go/logger"
	"github.com/de-tools/report-atlas/pkg/store/duckdb"
	sqlstore "github.com/de-tools/report-atlas/pkg/store/sql"
	sf "github.com/snowflakedb/gosnowflake"

	_ "github.com/databricks/databricks-sql-go"
)

const defaultDatabricksLogLevel = "warn"

// Source is an opened warehouse connection together with the SQL dialect it speaks.
type Source struct {
	DB      *sql.DB
	Dialect sqlstore.Dialect
	Table   string
}

func (s *Source) Close() error {
	return s.DB.Close()
}

// Traffic returns the aggregation store over the profile's traffic table.
func (s *Source) Traffic() (*sqlstore.TrafficStore, error) {
	return sqlstore.NewTrafficStore(s.DB, s.Dialect, s.Table)
}

func Open(p *Profile) (*Source, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)
	switch p.Kind {
	case KindSnowflake:
		dialect = sqlstore.Snowflake
		db, err = openSnowflake(p)
	case KindDatabricks:
		dialect = sqlstore.Databricks
		db, err = openDatabricks(p)
	case KindDuckDB:
		dialect = sqlstore.DuckDB
		db, err = duckdb.NewDB(duckdb.Settings{DbPath: p.Path})
	}
	if err != nil {
		return nil, fmt.Errorf("open %s warehouse %s: %w", p.Kind, p.Name, err)
	}

	table := p.Table
	if table == "" {
		table = sqlstore.DefaultTable
	}
	return &Source{DB: db, Dialect: dialect, Table: table}, nil
}

func SnowflakeDSN(p *Profile) (string, error) {
	return sf.DSN(&sf.Config{
		Account:   p.Account,
		User:      p.User,
		Password:  p.Password,
		Database:  p.Database,
		Schema:    p.Schema,
		Warehouse: p.Warehouse,
		Role:      p.Role,
	})
}

func DatabricksDSN(p *Profile) string {
	dsn := fmt.Sprintf("token:%s@%s%s", p.Token, p.Host, p.HTTPPath)
	params := url.Values{}
	if p.Catalog != "" {
		params.Set("catalog", p.Catalog)
	}
	if p.Schema != "" {
		params.Set("schema", p.Schema)
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}

func openSnowflake(p *Profile) (*sql.DB, error) {
	dsn, err := SnowflakeDSN(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create DSN: %w", err)
	}
	return sql.Open("snowflake", dsn)
}

func openDatabricks(p *Profile) (*sql.DB, error) {
	if err := dbsqllog.SetLogLevel(defaultDatabricksLogLevel); err != nil {
		return nil, err
	}
	return sql.Open("databricks", DatabricksDSN(p))
}
