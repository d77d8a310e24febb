package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/report-atlas/pkg/models/api"
)

type TableConfig struct {
	PeriodWidth int
	LabelWidth  int
	CountWidth  int
	AmountWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		PeriodWidth: 10,
		LabelWidth:  12,
		CountWidth:  12,
		AmountWidth: 16,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type totalsView struct {
	Title       string
	Rows        []api.PeriodTotal
	TotalCount  int64
	TotalAmount float64
}

// Totals prints per period totals as a fixed width table followed by the grand total.
func (c *Reporter) Totals(title string, rows []api.PeriodTotal) error {
	funcMap := template.FuncMap{
		"formatRow": func(period, label string, count, amount interface{}) string {
			return fmt.Sprintf("| %-*s | %-*s | %*v | %*v |",
				c.config.PeriodWidth, period,
				c.config.LabelWidth, label,
				c.config.CountWidth, count,
				c.config.AmountWidth, amount)
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.PeriodWidth+2),
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.CountWidth+2),
				strings.Repeat("-", c.config.AmountWidth+2))
		},
	}

	tmpl := `
{{.Title}}

{{separator}}
{{formatRow "Period" "Label" "Count" "Amount"}}
{{separator}}
{{range .Rows}}{{formatRow .Period .Label .Count (money .Amount)}}
{{end}}{{separator}}
Total: {{.TotalCount}} records, {{money .TotalAmount}}
`

	t, err := template.New("totals").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	view := totalsView{Title: title, Rows: rows}
	for _, r := range rows {
		view.TotalCount += r.Count
		view.TotalAmount += r.Amount
	}
	return t.Execute(c.writer, view)
}
