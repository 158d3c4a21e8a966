package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nathannam/aau-tryouts/internal/api"
	"github.com/nathannam/aau-tryouts/internal/check"
	"github.com/nathannam/aau-tryouts/internal/config"
	"github.com/nathannam/aau-tryouts/internal/logger"
	"github.com/nathannam/aau-tryouts/internal/notifier"
	"github.com/nathannam/aau-tryouts/internal/scheduler"
	"github.com/nathannam/aau-tryouts/internal/scraper"
	"github.com/nathannam/aau-tryouts/internal/storage"
	"github.com/nathannam/aau-tryouts/internal/tryouts"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

var (
	flagConfig  string
	flagDataDir string
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aau-tryouts",
		Short: "Track AAU basketball tryouts and watch partner sites for changes",
		Long: `Serves the Bay Area AAU basketball tryout listing and watches partner
organization websites for content changes, on a daily schedule or on demand.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (defaults to built-in config)")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for results and history")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and background scheduler",
		RunE:  runServe,
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one check cycle and report detected changes",
		RunE:  runCheck,
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the retained check run history",
		RunE:  runHistory,
	}
}

// loadConfig resolves the effective configuration from the --config flag and
// built-in defaults, with --data-dir taking precedence over both.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.LoadFile(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}
	return cfg, nil
}

func newLogger() *logger.Logger {
	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)
	return log
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// buildScheduler wires the scraper, store, and notifiers into a scheduler.
func buildScheduler(cfg *config.Config, log *logger.Logger) (*scheduler.Scheduler, *storage.Store, error) {
	store, err := storage.New(cfg.Storage.DataDir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	sc := scraper.New(cfg.Scraper.Timeout, log)

	notifiers := []notifier.Notifier{notifier.NewLogNotifier(log)}
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notifier.NewWebhook(cfg.Notify.WebhookURL, log))
	}

	return scheduler.New(cfg, sc, store, log, notifiers...), store, nil
}

// runServe starts the HTTP server and the scheduler and blocks until
// interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sched, store, err := buildScheduler(cfg, log)
	if err != nil {
		return err
	}

	listings, err := tryouts.Load()
	if err != nil {
		return fmt.Errorf("loading tryout listings: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg.Server.ListenAddr, api.NewHandlers(sched, store, listings, log), log)
	serverErr := server.Start()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	select {
	case err := <-serverErr:
		sched.Stop()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down", nil)
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runCheck performs a one-shot check cycle and prints the outcome. Exits with
// code 2 when changes were detected, so cron wrappers can branch on it.
func runCheck(cmd *cobra.Command, args []string) error {
	log := newLogger()

	format, err := outputFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sched, store, err := buildScheduler(cfg, log)
	if err != nil {
		return err
	}

	run := sched.ExecuteRun(cmd.Context())

	result := &OutputResult{
		CheckedAt:    time.Now().UTC(),
		Success:      run.Success,
		Message:      run.Message,
		ChangesCount: run.ChangesCount,
	}
	if run.ChangesCount > 0 {
		result.Changes = check.ChangedResults(store.LoadPrevious())
	}

	if err := WriteOutput(os.Stdout, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !run.Success {
		os.Exit(ExitError)
	}
	if run.ChangesCount > 0 {
		os.Exit(ExitChanges)
	}
	return nil
}

// runHistory prints the retained run history.
func runHistory(cmd *cobra.Command, args []string) error {
	log := newLogger()

	format, err := outputFormat()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.Storage.DataDir, log)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	return WriteHistory(os.Stdout, store.LoadHistory(), format, flagVerbose)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
