package terminal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/de-tools/report-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/report-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// OpenFunc resolves services from the config file given with --config. The returned close
// function is called once the command finishes.
type OpenFunc func(ctx context.Context, configPath string) (*commands.Services, func() error, error)

// CLI represents the command-line interface
type CLI struct {
	open       OpenFunc
	reporter   *export.Reporter
	fs         afero.Fs
	now        func() time.Time
	logger     zerolog.Logger
	rootCmd    *cobra.Command
	configPath string

	services *commands.Services
	closer   func() error
}

// Options contain configuration for the CLI
type Options struct {
	Open   OpenFunc
	Output io.Writer
	// Fs defaults to the OS filesystem.
	Fs     afero.Fs
	Now    func() time.Time
	Logger *zerolog.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	cli := &CLI{
		open:     opts.Open,
		reporter: export.NewReporter(opts.Output),
		fs:       opts.Fs,
		now:      opts.Now,
		logger:   logger,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	defer cli.release()
	return cli.rootCmd.ExecuteContext(cli.logger.WithContext(ctx))
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "report-atlas",
		Short:         "Traffic reports rendered to PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "",
		"Path to a config file (defaults, .env and REPORT_ variables apply otherwise)")

	cmd.AddCommand(commands.NewGenerateCmd(cli.load, cli.fs, cli.now))
	cmd.AddCommand(commands.NewTotalsCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewIngestCmd(cli.load, cli.fs))
	cmd.AddCommand(commands.NewCacheCmd(cli.load))
	cmd.AddCommand(commands.NewDocumentsCmd(cli.load))

	return cmd
}

func (cli *CLI) load(ctx context.Context) (*commands.Services, error) {
	if cli.services != nil {
		return cli.services, nil
	}
	services, closer, err := cli.open(ctx, cli.configPath)
	if err != nil {
		return nil, err
	}
	cli.services, cli.closer = services, closer
	return services, nil
}

func (cli *CLI) release() {
	if cli.closer == nil {
		return
	}
	if err := cli.closer(); err != nil {
		cli.logger.Warn().Err(err).Msg("failed to release resources")
	}
	cli.services, cli.closer = nil, nil
}
