package report

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

const dateLayout = "2006-01-02"

// ParseFilter builds a report filter from query parameters. Period bounds are validated later by
// the services; only the shape of dates and booleans is checked here.
func ParseFilter(q url.Values) (domain.ReportFilter, error) {
	var f domain.ReportFilter

	f.FromPeriod = optional(q, "from")
	f.ToPeriod = optional(q, "to")
	f.Entity = optional(q, "entity")

	start, end := optional(q, "start"), optional(q, "end")
	if start != nil || end != nil {
		if start == nil || end == nil {
			return f, fmt.Errorf("%w: start and end must be given together", domain.ErrBadFilter)
		}
		from, err := time.Parse(dateLayout, *start)
		if err != nil {
			return f, fmt.Errorf("%w: start %q is not YYYY-MM-DD", domain.ErrBadFilter, *start)
		}
		to, err := time.Parse(dateLayout, *end)
		if err != nil {
			return f, fmt.Errorf("%w: end %q is not YYYY-MM-DD", domain.ErrBadFilter, *end)
		}
		f.DateRange = &domain.DateRange{From: from, To: to}
	}

	var err error
	if f.Flags.ExcludeTest, err = flag(q, "exclude_test"); err != nil {
		return f, err
	}
	if f.Flags.IncludeRefunds, err = flag(q, "include_refunds"); err != nil {
		return f, err
	}
	return f, nil
}

func optional(q url.Values, name string) *string {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func flag(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrBadFilter, name)
	}
	return b, nil
}
