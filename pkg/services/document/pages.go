package document

import (
	"sort"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"golang.org/x/exp/maps"
)

// BuildPages returns the combined page followed by one page per entity in lexicographic order.
// Entities without points are skipped. No pages are returned when nothing remains.
func BuildPages(series []domain.EntitySeries) []domain.Page {
	var entities []domain.EntitySeries
	for _, s := range series {
		if len(s.Points) > 0 {
			entities = append(entities, s)
		}
	}
	if len(entities) == 0 {
		return nil
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Entity < entities[j].Entity
	})

	pages := make([]domain.Page, 0, len(entities)+1)
	pages = append(pages, Aggregate(entities))
	for _, s := range entities {
		points := append([]domain.SeriesPoint(nil), s.Points...)
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Period < points[j].Period
		})
		pages = append(pages, domain.Page{Title: s.Entity, Points: points})
	}
	return pages
}

// Aggregate sums count and amount per period across entities. Entities missing a period
// contribute nothing to it.
func Aggregate(series []domain.EntitySeries) domain.Page {
	totals := make(map[string]domain.SeriesPoint)
	for _, s := range series {
		for _, p := range s.Points {
			t := totals[p.Period]
			t.Period = p.Period
			t.Count += p.Count
			t.Amount += p.Amount
			totals[p.Period] = t
		}
	}

	periods := maps.Keys(totals)
	sort.Strings(periods)
	points := make([]domain.SeriesPoint, 0, len(periods))
	for _, period := range periods {
		points = append(points, totals[period])
	}
	return domain.Page{Title: domain.AllEntities, Points: points}
}
