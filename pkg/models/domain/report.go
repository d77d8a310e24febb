package domain

import (
	"fmt"
	"time"
)

// AllEntities is the title of the combined page that precedes the per-entity pages.
const AllEntities = "All entities"

// SeriesPoint is one period of a dual metric series.
type SeriesPoint struct {
	Period string  `json:"period"` // YYYYMM or YYYYMMDD
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// EntitySeries is the time series of a single entity ordered by period.
type EntitySeries struct {
	Entity string        `json:"entity"`
	Points []SeriesPoint `json:"points"`
}

// MatrixCell is a single value of a pivot table.
type MatrixCell struct {
	RowKey string  `json:"row_key"`
	Column string  `json:"column"`
	Value  float64 `json:"value"`
}

// Page is one logical page of a document. Pages are transient and never persisted.
type Page struct {
	Title  string
	Points []SeriesPoint
}

// WeekLabel renders the ISO week starting at start as "2026-W05 2026-01-26..2026-02-01".
func WeekLabel(start time.Time) string {
	year, week := start.ISOWeek()
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%04d-W%02d %s..%s", year, week, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
