package sql

import "fmt"

// Dialect renders the engine specific expressions the traffic queries need.
type Dialect struct {
	Name      string
	monthExpr string
	dayExpr   string
	weekExpr  string
}

var (
	DuckDB = Dialect{
		Name:      "duckdb",
		monthExpr: "strftime(%s, '%%Y%%m')",
		dayExpr:   "strftime(%s, '%%Y%%m%%d')",
		weekExpr:  "CAST(date_trunc('week', %s) AS TIMESTAMP)",
	}
	Snowflake = Dialect{
		Name:      "snowflake",
		monthExpr: "TO_CHAR(%s, 'YYYYMM')",
		dayExpr:   "TO_CHAR(%s, 'YYYYMMDD')",
		weekExpr:  "DATE_TRUNC('WEEK', %s)",
	}
	Databricks = Dialect{
		Name:      "databricks",
		monthExpr: "date_format(%s, 'yyyyMM')",
		dayExpr:   "date_format(%s, 'yyyyMMdd')",
		weekExpr:  "date_trunc('WEEK', %s)",
	}
)

func DialectByName(name string) (Dialect, error) {
	for _, d := range []Dialect{DuckDB, Snowflake, Databricks} {
		if d.Name == name {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
}

func (d Dialect) Month(column string) string {
	return fmt.Sprintf(d.monthExpr, column)
}

func (d Dialect) Day(column string) string {
	return fmt.Sprintf(d.dayExpr, column)
}

func (d Dialect) WeekStart(column string) string {
	return fmt.Sprintf(d.weekExpr, column)
}
