package store

import "time"

// TrafficRecord is one billed usage event of an entity.
type TrafficRecord struct {
	ID         string
	Entity     string
	Category   string
	OccurredAt time.Time
	Count      int64
	Amount     float64
	IsTest     bool
	IsRefund   bool
}

type PeriodAggregate struct {
	Entity string
	Period string
	Count  int64
	Amount float64
}

type WeeklyAggregate struct {
	Entity    string
	WeekStart time.Time
	Count     int64
}
