package table

import (
	"math"

	"github.com/de-tools/report-atlas/pkg/render/page"
)

// UnitsPerPoint is the resolution of the layout grid. Widths are kept in integer units so they
// add up to the content width exactly.
const UnitsPerPoint = 100

// Layout holds the column geometry shared by every page of a table.
type Layout struct {
	Left         float64
	Units        []int
	RowHeight    float64
	HeaderHeight float64
}

func ToUnits(points float64) int {
	return int(math.Round(points * UnitsPerPoint))
}

// ColumnUnits splits total units into a label column of first units followed by columns equal data
// columns. The last column absorbs the rounding remainder.
func ColumnUnits(total, first, columns int) []int {
	if columns <= 0 {
		return []int{total}
	}
	if first <= 0 || first >= total {
		first = total / (columns + 1)
	}

	rest := total - first
	each := rest / columns
	units := make([]int, columns+1)
	units[0] = first
	for i := 1; i <= columns; i++ {
		units[i] = each
	}
	units[columns] += rest - each*columns
	return units
}

func NewLayout(area page.ContentArea, firstWidth float64, columns int, rowHeight, headerHeight float64) Layout {
	return Layout{
		Left:         area.Left,
		Units:        ColumnUnits(ToUnits(area.Width()), ToUnits(firstWidth), columns),
		RowHeight:    rowHeight,
		HeaderHeight: headerHeight,
	}
}

func (l Layout) Columns() int {
	return len(l.Units)
}

func (l Layout) TotalUnits() int {
	total := 0
	for _, u := range l.Units {
		total += u
	}
	return total
}

func (l Layout) Width(i int) float64 {
	return float64(l.Units[i]) / UnitsPerPoint
}

// X is the left edge of column i.
func (l Layout) X(i int) float64 {
	offset := 0
	for _, u := range l.Units[:i] {
		offset += u
	}
	return l.Left + float64(offset)/UnitsPerPoint
}

func (l Layout) withLeft(left float64) Layout {
	l.Left = left
	return l
}
