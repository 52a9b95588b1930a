// Package cmd implements the linkaudit command-line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lukemcguire/linkaudit/config"
	"github.com/lukemcguire/linkaudit/crawler"
	"github.com/lukemcguire/linkaudit/logger"
	"github.com/lukemcguire/linkaudit/report"
	"github.com/lukemcguire/linkaudit/result"
	"github.com/lukemcguire/linkaudit/site"
	"github.com/lukemcguire/linkaudit/suite"
	"github.com/lukemcguire/linkaudit/tui"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

const shutdownTimeout = 5 * time.Second

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// NewRootCommand builds the linkaudit command tree around a fresh viper
// instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "linkaudit [site]",
		Short: "Audit static pages for broken links",
		Long: `linkaudit loads each page of the suite, probes every link on it and
writes a per-page report of broken and unreachable links.

The site is either a base URL or a local directory, which is served on a
loopback port for the duration of the run.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			if len(args) == 1 {
				v.Set(config.KeySite, args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd, cfg, config.StrictFunc(v))
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./linkaudit.yaml)")

	flags := rootCmd.Flags()
	flags.String("results-dir", "results", "directory the per-page reports are written to")
	flags.Duration("timeout", crawler.DefaultProbeTimeout, "timeout for each page load and link probe")
	flags.Int("max-in-flight", 0, "concurrent probes per page (0 = unbounded)")
	flags.Int("rate-limit", 0, "probe requests per second (0 = unlimited)")
	flags.Duration("target-rtt", 0, "slow the rate limit while responses are slower than this (0 = fixed rate)")
	flags.String("user-agent", crawler.DefaultUserAgent, "user agent string")
	flags.Int("parallel", 1, "pages audited at once")
	flags.String("format", config.FormatText, "final output format: text, json or csv")
	flags.Bool("tui", false, "show live progress in a terminal UI")
	flags.String("log-level", logger.DefaultLevel, "log level: debug, info, warn or error")
	flags.Bool("strict", false, "fail pages with broken links (also LINKAUDIT_STRICT or CI)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "linkaudit version %s\n", Version)
		},
	})

	return rootCmd
}

// bindFlags binds the command-line flags to their configuration keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		config.KeyResultsDir:  "results-dir",
		config.KeyTimeout:     "timeout",
		config.KeyMaxInFlight: "max-in-flight",
		config.KeyRateLimit:   "rate-limit",
		config.KeyTargetRTT:   "target-rtt",
		config.KeyUserAgent:   "user-agent",
		config.KeyParallel:    "parallel",
		config.KeyFormat:      "format",
		config.KeyTUI:         "tui",
		config.KeyLogLevel:    "log-level",
		config.KeyStrict:      "strict",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind %s flag: %w", name, err)
		}
	}
	return nil
}

// run audits the configured suite and writes the final output.
func run(cmd *cobra.Command, cfg *config.Config, strict func() bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	siteURL, closeSite, err := resolveSite(cfg.Site, log)
	if err != nil {
		return err
	}
	defer closeSite()

	var progressCh chan crawler.Event
	if cfg.TUI {
		progressCh = make(chan crawler.Event, 100)
	}

	auditor, err := crawler.New(crawler.Config{
		SiteURL:      siteURL,
		ProbeTimeout: cfg.Timeout,
		MaxInFlight:  cfg.MaxInFlight,
		RateLimit:    cfg.RateLimit,
		TargetRTT:    cfg.TargetRTT,
		UserAgent:    cfg.UserAgent,
	}, progressCh, log)
	if err != nil {
		return err
	}

	sink := report.NewSink(cfg.ResultsDir, collaborator(cmd, cfg, log), strict, log)
	driver := suite.New(auditor, sink, suite.Config{Parallel: cfg.Parallel}, progressCh, log)

	if cfg.TUI {
		return runTUI(ctx, cmd, cfg.Format, driver, progressCh)
	}

	res, runErr := driver.Run(ctx)
	if err := writeOutput(cmd.OutOrStdout(), cfg.Format, res); err != nil {
		return err
	}
	return runErr
}

// newLogger builds the diagnostics logger. Debug runs use the console
// encoder. In TUI mode the terminal is owned by the UI, so logs go to a
// file next to the reports.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lcfg := logger.Config{
		Level:       cfg.LogLevel,
		Development: logger.ParseLevel(cfg.LogLevel) == zapcore.DebugLevel,
	}
	if cfg.TUI {
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
		}
		lcfg.OutputPaths = []string{filepath.Join(cfg.ResultsDir, "linkaudit.log")}
	}
	return logger.New(lcfg)
}

// resolveSite returns the base URL to audit. A local directory is served
// for the duration of the run; the returned func stops it.
func resolveSite(raw string, log *zap.Logger) (string, func(), error) {
	info, err := os.Stat(raw)
	if err != nil || !info.IsDir() {
		return raw, func() {}, nil
	}

	srv, err := site.Serve(raw, log)
	if err != nil {
		return "", nil, err
	}
	closeSite := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			log.Warn("Site server did not shut down cleanly", zap.Error(err))
		}
	}
	return srv.URL(), closeSite, nil
}

// collaborator picks where page summaries are logged. Plain text runs
// print them to stderr; everything else, TUI runs included, sends them to
// the zap logger.
func collaborator(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) report.Logger {
	if cfg.Format == config.FormatText && !cfg.TUI {
		return &report.WriterLogger{W: cmd.ErrOrStderr()}
	}
	return report.ZapLogger{L: log}
}

// runTUI runs the suite under the Bubble Tea UI. For json and csv the UI
// draws on stderr and the result is written to stdout once it exits.
func runTUI(ctx context.Context, cmd *cobra.Command, format string, driver *suite.Driver, progressCh <-chan crawler.Event) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	screen := cmd.OutOrStdout()
	if format != config.FormatText {
		screen = cmd.ErrOrStderr()
	}

	model := tui.NewModel(ctx, cancel, driver.Run, progressCh)
	finalModel, err := tea.NewProgram(model,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(screen),
	).Run()
	if err != nil {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	final, ok := finalModel.(tui.Model)
	if !ok {
		return fmt.Errorf("unexpected terminal UI model %T", finalModel)
	}

	if res := final.GetResult(); res != nil && format != config.FormatText {
		if err := writeOutput(cmd.OutOrStdout(), format, res); err != nil {
			return err
		}
	}
	return final.Err()
}

// writeOutput renders the suite result in the configured format.
func writeOutput(w io.Writer, format string, res *result.SuiteResult) error {
	switch format {
	case config.FormatJSON:
		return result.WriteJSON(w, res)
	case config.FormatCSV:
		return result.WriteCSV(w, res)
	default:
		result.PrintResults(w, res)
		return nil
	}
}
