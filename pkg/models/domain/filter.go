package domain

import (
	"fmt"
	"regexp"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}(0[1-9]|1[0-2])$`)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ReportFlags are auxiliary switches narrowing which records are aggregated.
type ReportFlags struct {
	ExcludeTest    bool
	IncludeRefunds bool
}

// ReportFilter selects the records a report is built from.
// Optional fields are nil when absent. Two filters are the same filter for caching purposes when
// their fields are equal, see keys.Deriver.
type ReportFilter struct {
	FromPeriod *string // YYYYMM
	ToPeriod   *string // YYYYMM
	Entity     *string
	DateRange  *DateRange
	Flags      ReportFlags
}

// Narrowed reports whether the filter carries user supplied narrowing
// (entity, custom period bounds or a date range).
func (f ReportFilter) Narrowed() bool {
	return f.Entity != nil || f.FromPeriod != nil || f.ToPeriod != nil || f.DateRange != nil
}

func (f ReportFilter) Validate() error {
	if f.FromPeriod != nil && !monthPattern.MatchString(*f.FromPeriod) {
		return fmt.Errorf("%w: from period %q is not YYYYMM", ErrBadFilter, *f.FromPeriod)
	}
	if f.ToPeriod != nil && !monthPattern.MatchString(*f.ToPeriod) {
		return fmt.Errorf("%w: to period %q is not YYYYMM", ErrBadFilter, *f.ToPeriod)
	}
	if f.FromPeriod != nil && f.ToPeriod != nil && *f.FromPeriod > *f.ToPeriod {
		return fmt.Errorf("%w: from period %s is after to period %s", ErrBadFilter, *f.FromPeriod, *f.ToPeriod)
	}
	if f.DateRange != nil && f.DateRange.To.Before(f.DateRange.From) {
		return fmt.Errorf("%w: date range ends before it starts", ErrBadFilter)
	}
	return nil
}

// WithEntity returns a copy of the filter narrowed to a single entity.
func (f ReportFilter) WithEntity(entity string) ReportFilter {
	f.Entity = &entity
	return f
}
