package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/services/config"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Open:   open,
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, configPath string) (*commands.Services, func() error, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	a, err := app.New(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	return &commands.Services{
		Documents: a.Documents,
		Reports:   a.Reports,
		Ingester:  a.Usage,
	}, a.Close, nil
}
