package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/de-tools/report-atlas/pkg/runtime/app"
	"github.com/de-tools/report-atlas/pkg/server"
	"github.com/de-tools/report-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Report Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (defaults, .env and REPORT_ variables apply otherwise)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	a, err := app.New(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release resources")
		}
	}()

	logger.Info().
		Bool("cache_enabled", settings.Cache.Enabled).
		Dur("default_ttl", settings.Cache.DefaultTTL).
		Dur("document_max_age", settings.Documents.MaxAge).
		Bool("s3_documents", settings.UsesS3()).
		Msg("configuration loaded")

	sweeperCtx, cancelSweeper := context.WithCancel(ctx)
	sweeper := a.Sweeper()
	go sweeper.Run(sweeperCtx)
	defer func() {
		cancelSweeper()
		<-sweeper.Done()
	}()

	webAPI := server.NewWebAPI(server.Config{
		Addr:            settings.Server.Addr,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Documents: a.Documents,
			Reports:   a.Reports,
			Logger:    logger,
		},
	})

	return webAPI.Start(ctx)
}
