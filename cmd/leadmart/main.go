package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/leadmart/auth"
	"github.com/use-agent/leadmart/collector"
	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/export"
	"github.com/use-agent/leadmart/extract"
	"github.com/use-agent/leadmart/models"
	"github.com/use-agent/leadmart/retry"
	"github.com/use-agent/leadmart/search"
	"github.com/use-agent/leadmart/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		keyword  string
		output   string
		minLeads int
		headless bool
		mobile   string
	)

	cmd := &cobra.Command{
		Use:          "leadmart",
		Short:        "Collect supplier leads for a product keyword",
		Long:         "leadmart logs in with an OTP, searches the marketplace for a product keyword and walks the paginated results, exporting scored supplier leads to CSV.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			// Flags beat environment, but only when actually set.
			if cmd.Flags().Changed("keyword") {
				cfg.Run.Keyword = keyword
			}
			if cmd.Flags().Changed("output") {
				cfg.Run.Output = output
			}
			if cmd.Flags().Changed("min-leads") {
				cfg.Run.MinLeads = minLeads
			}
			if cmd.Flags().Changed("headless") {
				cfg.Browser.Headless = headless
			}
			if cmd.Flags().Changed("mobile") {
				cfg.Auth.Mobile = mobile
			}

			closeLog, err := initLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer closeLog()

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "Cricket Ball", "product keyword to search for")
	cmd.Flags().StringVarP(&output, "output", "o", "leads.csv", "CSV output path")
	cmd.Flags().IntVarP(&minLeads, "min-leads", "m", 100, "stop once this many leads are collected")
	cmd.Flags().BoolVarP(&headless, "headless", "H", false, "run the browser without a window")
	cmd.Flags().StringVar(&mobile, "mobile", "", "10-digit mobile number for OTP login")

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("leadmart starting",
		"keyword", cfg.Run.Keyword,
		"output", cfg.Run.Output,
		"minLeads", cfg.Run.MinLeads,
		"headless", cfg.Browser.Headless,
	)

	// ── 1. Launch the browser session ───────────────────────────────
	// A failed launch is the only error that surfaces as a non-zero
	// exit code; everything after this point is a scraping outcome.
	sess, err := session.Launch(cfg.Browser)
	if err != nil {
		slog.Error("browser launch failed", "error", err)
		fmt.Fprintln(os.Stderr, "Could not start the browser. Check that Chrome/Chromium is installed,")
		fmt.Fprintln(os.Stderr, "or point LEADMART_BROWSER_BIN at the binary. In containers, set")
		fmt.Fprintln(os.Stderr, "LEADMART_BROWSER_NO_SANDBOX=true.")
		return err
	}
	defer sess.Shutdown()

	return finish(scrape(ctx, cfg, sess))
}

// scrape runs login, search, collection and export against a live
// session, stopping at the first failed stage.
func scrape(ctx context.Context, cfg *config.Config, sess *session.Session) error {
	// ── 2. OTP login, retried from scratch on stage failure ─────────
	err := retry.Do(ctx, "login", cfg.Auth.Attempts, cfg.Auth.RetryDelay, func(ctx context.Context) error {
		flow := &auth.Flow{Sess: sess, Cfg: cfg.Auth}
		return flow.Run(ctx)
	})
	if err != nil {
		var stageErr *models.StageError
		if errors.As(err, &stageErr) && stageErr.Code == models.ErrCodeInvalidInput {
			fmt.Fprintln(os.Stderr, "Set a valid 10-digit mobile number via --mobile or LEADMART_MOBILE.")
		}
		return fmt.Errorf("login: %w", err)
	}

	// ── 3. Product search and hand-off to the results page ──────────
	err = retry.Do(ctx, "search", cfg.Search.Attempts, cfg.Search.RetryDelay, func(ctx context.Context) error {
		nav := &search.Navigator{Sess: sess, Cfg: cfg.Search}
		return nav.Run(ctx, cfg.Run.Keyword)
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	// ── 4. Walk the result pages ────────────────────────────────────
	coll := &collector.Collector{
		Lister:         &extract.ListingScraper{Sess: sess, Cfg: cfg.Extract},
		Enricher:       extract.NewProfileEnricher(sess, cfg.Profile),
		Diag:           sess,
		Cfg:            cfg.Collector,
		Keyword:        cfg.Run.Keyword,
		MinLeads:       cfg.Run.MinLeads,
		EnrichAttempts: cfg.Profile.Attempts,
		EnrichDelay:    cfg.Profile.RetryDelay,
	}
	leads := coll.Run(ctx)

	// ── 5. Export whatever was collected ────────────────────────────
	if err := export.ToCSV(leads, cfg.Run.Output); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	slog.Info("leadmart finished", "leads", len(leads), "output", cfg.Run.Output)
	return nil
}

// finish reports the scraping outcome and always maps it to exit 0:
// failed runs are visible in the logs and artifacts, not in the exit
// code. An interrupt counts as an orderly shutdown.
func finish(err error) error {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		slog.Info("run interrupted, shutting down")
	default:
		slog.Error("scraping failed, giving up", "error", err)
	}
	return nil
}

// initLogger configures slog to write the text stream to stdout and a
// timestamped file under the log directory. The returned func closes
// the file.
func initLogger(cfg config.LogConfig) (func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(cfg.Dir, "scraper_"+time.Now().Format("20060102_150405")+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
	slog.SetDefault(slog.New(handler))

	return func() { file.Close() }, nil
}
