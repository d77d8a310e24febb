package table

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"golang.org/x/exp/maps"
)

var weekPattern = regexp.MustCompile(`^(\d{4})-W(\d{1,2})\s+(\S+)\.\.(\S+)$`)

// WeekColumn is a parsed "2026-W05 2026-01-26..2026-02-01" column label.
type WeekColumn struct {
	Year int
	Week int
	From string
	To   string
}

func (w WeekColumn) Index() int {
	return w.Year*100 + w.Week
}

func ParseWeekColumn(label string) (WeekColumn, bool) {
	m := weekPattern.FindStringSubmatch(label)
	if m == nil {
		return WeekColumn{}, false
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return WeekColumn{}, false
	}
	return WeekColumn{Year: year, Week: week, From: m[3], To: m[4]}, true
}

// ByWeekIndex orders week columns by year and week. Labels that do not parse sort after
// week columns in lexicographic order.
func ByWeekIndex(a, b string) bool {
	wa, okA := ParseWeekColumn(a)
	wb, okB := ParseWeekColumn(b)
	switch {
	case okA && okB:
		if wa.Index() != wb.Index() {
			return wa.Index() < wb.Index()
		}
		return a < b
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func Lexicographic(a, b string) bool {
	return a < b
}

// OrderColumns returns the distinct labels sorted with less.
func OrderColumns(labels []string, less func(a, b string) bool) []string {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	ordered := maps.Keys(seen)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})
	return ordered
}

// headerParts splits a column label into the two rotated sub-labels and the unrotated label beneath.
func headerParts(label string) ([2]string, string) {
	if w, ok := ParseWeekColumn(label); ok {
		return [2]string{w.From, w.To}, fmt.Sprintf("W%02d", w.Week)
	}
	return [2]string{label, ""}, ""
}

// Matrix is a pivot of values by row key and column label.
type Matrix struct {
	RowHeader string
	Rows      []string
	Columns   []string
	Values    map[string]map[string]float64
	// Total is drawn above Rows. It is kept apart from Values so its title never shadows a row key.
	Total *TotalRow
}

type TotalRow struct {
	Title  string
	Values map[string]float64
}

// BuildMatrix pivots cells. Rows are ordered lexicographically and columns with less.
// Repeated row and column pairs are summed.
func BuildMatrix(rowHeader string, cells []domain.MatrixCell, less func(a, b string) bool) Matrix {
	values := make(map[string]map[string]float64)
	var columns []string
	for _, cell := range cells {
		row, ok := values[cell.RowKey]
		if !ok {
			row = make(map[string]float64)
			values[cell.RowKey] = row
		}
		row[cell.Column] += cell.Value
		columns = append(columns, cell.Column)
	}

	rows := maps.Keys(values)
	sort.Strings(rows)
	return Matrix{
		RowHeader: rowHeader,
		Rows:      rows,
		Columns:   OrderColumns(columns, less),
		Values:    values,
	}
}

func (m Matrix) Value(row, column string) (float64, bool) {
	v, ok := m.Values[row][column]
	return v, ok
}

// WithTotalRow returns a copy with a leading row holding the per column sums.
func (m Matrix) WithTotalRow(title string) Matrix {
	totals := make(map[string]float64, len(m.Columns))
	for _, row := range m.Rows {
		for column, v := range m.Values[row] {
			totals[column] += v
		}
	}
	m.Total = &TotalRow{Title: title, Values: totals}
	return m
}

// RowCount is the number of drawn rows, the total row included.
func (m Matrix) RowCount() int {
	if m.Total != nil {
		return len(m.Rows) + 1
	}
	return len(m.Rows)
}

// RowAt returns the label and values of the i-th drawn row.
func (m Matrix) RowAt(i int) (string, map[string]float64) {
	if m.Total != nil {
		if i == 0 {
			return m.Total.Title, m.Total.Values
		}
		i--
	}
	return m.Rows[i], m.Values[m.Rows[i]]
}
