package commands

import (
	"fmt"
	"slices"

	"github.com/de-tools/report-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

func NewCacheCmd(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the query result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear-expired",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := load(cmd.Context())
			if err != nil {
				return err
			}
			n, err := services.Reports.ClearExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear expired entries: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "remove <type>",
		Short:     "Delete every cache entry of a query type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: report.Types,
		RunE: func(cmd *cobra.Command, args []string) error {
			queryType := args[0]
			if !slices.Contains(report.Types, queryType) {
				return fmt.Errorf("unknown cache type %q, expected one of %v", queryType, report.Types)
			}
			services, err := load(cmd.Context())
			if err != nil {
				return err
			}
			n, err := services.Reports.Invalidate(cmd.Context(), queryType)
			if err != nil {
				return fmt.Errorf("failed to remove %s entries: %w", queryType, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d %s entries\n", n, queryType)
			return err
		},
	})

	return cmd
}

func NewDocumentsCmd(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage cached documents",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := load(cmd.Context())
			if err != nil {
				return err
			}
			n, err := services.Documents.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached documents\n", n)
			return err
		},
	})

	return cmd
}
