package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical/pdf-layout/cmd/pdf-layout/ui"
	"github.com/spherical/pdf-layout/internal/config"
	"github.com/spherical/pdf-layout/internal/domain"
	"github.com/spherical/pdf-layout/internal/extract"
	"github.com/spherical/pdf-layout/internal/observability"
	"github.com/spherical/pdf-layout/internal/pdf"
	"github.com/spherical/pdf-layout/internal/report"
)

var version = "0.1.0"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errReported marks a failure whose JSON envelope is already on stdout.
var errReported = errors.New("reported")

// OpenerFactory returns the document backend used for a run.
type OpenerFactory func() (domain.Opener, error)

type options struct {
	cfgFile        string
	verbose        bool
	noColor        bool
	scale          float64
	urlPrefix      string
	includeSkipped bool
	progress       bool
}

// NewRootCmd builds the CLI. The report and error envelopes go to stdout;
// logs, progress and usage go to stderr.
func NewRootCmd(stdout, stderr io.Writer, newOpener OpenerFactory) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pdf-layout [flags] <pdf_path> <output_dir>",
		Short: "Convert a PDF into positioned page layout JSON",
		Long: `pdf-layout renders every page of a PDF to a background PNG, extracts the
positioned text spans and embedded images, and prints a JSON description of
all pages on stdout. Image assets are written to <output_dir>/images.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, stdout, stderr, newOpener, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.Float64Var(&opts.scale, "scale", 0, "background render scale relative to 72 DPI")
	flags.StringVar(&opts.urlPrefix, "url-prefix", "", "prefix of image URLs in the report")
	flags.BoolVar(&opts.includeSkipped, "include-skipped", false, "list images that could not be extracted")
	flags.BoolVar(&opts.progress, "progress", false, "show a progress bar and summary on stderr")

	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "pdf-layout version %s\n", version)
		},
	}
}

// Execute runs the CLI against the process streams and returns the exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd(os.Stdout, os.Stderr, func() (domain.Opener, error) {
		return pdf.NewBackend()
	})
	return run(ctx, cmd, os.Args[1:], os.Stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errReported):
		return exitFailure
	default:
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, cmd.UsageString())
		return exitUsage
	}
}

func runConvert(cmd *cobra.Command, opts *options, stdout, stderr io.Writer, newOpener OpenerFactory, pdfPath, outputDir string) error {
	ui.Init(opts.noColor)
	_ = godotenv.Load()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fail(stdout, nil, err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  stderr,
		NoColor: opts.noColor,
	}).WithRun(uuid.NewString())

	opener, err := newOpener()
	if err != nil {
		return fail(stdout, logger, err)
	}

	svc := extract.NewService(opener, cfg, logger)

	var stats *domain.ProcessingStats
	var progress *ui.PageProgress
	if opts.progress {
		progress = ui.NewPageProgress(stderr)
	}
	svc.OnEvent(func(event domain.Event) {
		if progress != nil {
			progress.Handle(event)
		}
		if event.Type == domain.EventComplete {
			if s, ok := event.Payload.(domain.ProcessingStats); ok {
				stats = &s
			}
		}
	})

	result, err := svc.Process(cmd.Context(), pdfPath, outputDir)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		if opts.progress {
			ui.Error(stderr, "Conversion failed: %s", errorMessage(err))
		}
		return fail(stdout, logger, err)
	}

	if err := report.Write(stdout, result, cfg.Output.Indent); err != nil {
		logger.Error().Err(err).Msg("Failed to write report")
		return errReported
	}

	if opts.progress && stats != nil {
		ui.Summary(stderr, outputDir, *stats)
	}
	return nil
}

// loadConfig layers flags over the config file and environment.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, domain.ConfigError("Invalid configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("scale") {
		cfg.Render.Scale = opts.scale
	}
	if flags.Changed("url-prefix") {
		cfg.Output.URLPrefix = opts.urlPrefix
	}
	if flags.Changed("include-skipped") {
		cfg.Output.IncludeSkipped = opts.includeSkipped
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("Invalid configuration", err)
	}
	return cfg, nil
}

// fail prints the JSON error envelope and logs the failure.
func fail(stdout io.Writer, logger *observability.Logger, err error) error {
	if logger != nil {
		logger.Error().Err(err).Msg("Conversion failed")
	}
	if writeErr := report.WriteError(stdout, errorMessage(err)); writeErr != nil {
		return errors.Join(errReported, writeErr)
	}
	return errReported
}

func errorMessage(err error) string {
	if domain.IsType(err, domain.ErrorTypeNotFound) || domain.IsType(err, domain.ErrorTypeConfig) {
		return domain.Message(err)
	}
	return err.Error()
}
