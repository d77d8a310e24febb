package commands

import (
	"fmt"

	handlers "github.com/de-tools/report-atlas/pkg/handlers/report"
	"github.com/de-tools/report-atlas/pkg/models/api"
	"github.com/de-tools/report-atlas/pkg/render/chart"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type TotalsCmd struct {
	load     Loader
	reporter *export.Reporter
	filter   filterFlags
}

func NewTotalsCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	tc := &TotalsCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Print monthly traffic totals",
		Args:  cobra.NoArgs,
		RunE:  tc.run,
	}
	tc.filter.register(cmd)
	return cmd
}

func (tc *TotalsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	f, err := handlers.ParseFilter(tc.filter.values())
	if err != nil {
		return err
	}
	services, err := tc.load(ctx)
	if err != nil {
		return err
	}
	points, err := services.Reports.Totals(ctx, f)
	if err != nil {
		return fmt.Errorf("failed to load totals: %w", err)
	}

	rows := make([]api.PeriodTotal, 0, len(points))
	for _, p := range points {
		label, err := chart.FormatPeriod(p.Period)
		if err != nil {
			label = p.Period
		}
		rows = append(rows, api.PeriodTotal{Period: p.Period, Label: label, Count: p.Count, Amount: p.Amount})
	}
	return tc.reporter.Totals("Traffic totals", rows)
}
