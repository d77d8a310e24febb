package commands

import (
	"context"
	"net/url"
	"strconv"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/spf13/cobra"
)

type Documents interface {
	Generate(ctx context.Context, f domain.ReportFilter, variant, style string) ([]byte, error)
	ClearCache(ctx context.Context) (int, error)
}

type Reports interface {
	Totals(ctx context.Context, f domain.ReportFilter) ([]domain.SeriesPoint, error)
	Invalidate(ctx context.Context, queryType string) (int64, error)
	ClearExpired(ctx context.Context) (int64, error)
}

type Ingester interface {
	AddAll(ctx context.Context, records []store.TrafficRecord) error
}

// Services are resolved lazily so that commands which fail flag validation never open a database.
type Services struct {
	Documents Documents
	Reports   Reports
	Ingester  Ingester
}

type Loader func(ctx context.Context) (*Services, error)

// filterFlags mirrors the query parameters accepted by the HTTP API.
type filterFlags struct {
	from, to, entity, start, end string
	excludeTest, includeRefunds  bool
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.from, "from", "", "First month to include (YYYYMM)")
	cmd.Flags().StringVar(&ff.to, "to", "", "Last month to include (YYYYMM)")
	cmd.Flags().StringVar(&ff.entity, "entity", "", "Restrict to a single entity")
	cmd.Flags().StringVar(&ff.start, "start", "", "First day of a date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ff.end, "end", "", "Last day of a date range (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&ff.excludeTest, "exclude-test", false, "Leave out test traffic")
	cmd.Flags().BoolVar(&ff.includeRefunds, "include-refunds", false, "Include refunded traffic")
}

func (ff *filterFlags) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("from", ff.from)
	set("to", ff.to)
	set("entity", ff.entity)
	set("start", ff.start)
	set("end", ff.end)
	q.Set("exclude_test", strconv.FormatBool(ff.excludeTest))
	q.Set("include_refunds", strconv.FormatBool(ff.includeRefunds))
	return q
}
