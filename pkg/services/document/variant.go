package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/de-tools/report-atlas/pkg/render/chart"
)

var ErrUnknownVariant = errors.New("unknown document variant")

type Variant string

const (
	VariantTrend        Variant = "trend"
	VariantDaily        Variant = "daily"
	VariantWeeklyMatrix Variant = "weekly-matrix"
)

// StyleTable names the layout of documents that carry no chart.
const StyleTable = "table"

type variantSpec struct {
	title        string
	defaultStyle chart.Style
	chart        bool
	// cacheable reports whether a document rendered for the filter may use the byte-cache.
	cacheable func(domain.ReportFilter) bool
}

func unfiltered(f domain.ReportFilter) bool {
	return !f.Narrowed()
}

func never(domain.ReportFilter) bool {
	return false
}

var variants = map[Variant]variantSpec{
	VariantTrend: {
		title:        "Monthly traffic by entity",
		defaultStyle: chart.StyleArea,
		chart:        true,
		cacheable:    unfiltered,
	},
	VariantDaily: {
		title:        "Daily traffic by entity",
		defaultStyle: chart.StyleLine,
		chart:        true,
		cacheable:    never,
	},
	VariantWeeklyMatrix: {
		title:     "Weekly traffic by entity",
		cacheable: unfiltered,
	},
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := variants[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return v, nil
}

// Variants lists the supported variants.
func Variants() []Variant {
	return []Variant{VariantTrend, VariantDaily, VariantWeeklyMatrix}
}

func (v Variant) Title() string {
	return variants[v].title
}

// Style resolves the requested style, falling back to the variant default.
func (v Variant) Style(requested string) string {
	spec := variants[v]
	if !spec.chart {
		return StyleTable
	}
	return string(chart.ParseStyle(requested, spec.defaultStyle))
}

func (v Variant) Cacheable(f domain.ReportFilter) bool {
	return variants[v].cacheable(f)
}
