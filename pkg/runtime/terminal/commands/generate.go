package commands

import (
	"fmt"
	"path/filepath"
	"time"

	handlers "github.com/de-tools/report-atlas/pkg/handlers/report"
	"github.com/de-tools/report-atlas/pkg/services/document"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type GenerateCmd struct {
	load    Loader
	fs      afero.Fs
	now     func() time.Time
	filter  filterFlags
	variant string
	style   string
	output  string
}

func NewGenerateCmd(load Loader, fs afero.Fs, now func() time.Time) *cobra.Command {
	gc := &GenerateCmd{load: load, fs: fs, now: now}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a report document to a PDF file",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.variant, "variant", string(document.VariantTrend),
		fmt.Sprintf("Document variant, one of %v", document.Variants()))
	cmd.Flags().StringVar(&gc.style, "style", "", "Chart style (area, line or bar)")
	cmd.Flags().StringVarP(&gc.output, "output", "o", "", "Output file or directory")
	gc.filter.register(cmd)

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	variant, err := document.ParseVariant(gc.variant)
	if err != nil {
		return err
	}
	f, err := handlers.ParseFilter(gc.filter.values())
	if err != nil {
		return err
	}

	services, err := gc.load(ctx)
	if err != nil {
		return err
	}
	data, err := services.Documents.Generate(ctx, f, string(variant), gc.style)
	if err != nil {
		return fmt.Errorf("failed to generate %s document: %w", variant, err)
	}

	path, err := gc.path(variant)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(gc.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
	return err
}

func (gc *GenerateCmd) path(variant document.Variant) (string, error) {
	name := document.FileName(variant, gc.now())
	if gc.output == "" {
		return name, nil
	}
	isDir, err := afero.IsDir(gc.fs, gc.output)
	if err == nil && isDir {
		return filepath.Join(gc.output, name), nil
	}
	return gc.output, nil
}
