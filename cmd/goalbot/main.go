// Command goalbot polls football-data.org for live matches and posts goal and
// match status notifications to a Telegram channel.
//
// Usage:
//
//	goalbot                      # same as "goalbot run"
//	goalbot run --interval 30s
//	goalbot run --dry-run
//	goalbot once --dry-run
//	goalbot matches
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/goalbot/internal/api"
	"github.com/albapepper/goalbot/internal/config"
	"github.com/albapepper/goalbot/internal/match"
	"github.com/albapepper/goalbot/internal/notifications"
	"github.com/albapepper/goalbot/internal/provider/footballdata"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		logger.Error("goalbot failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "goalbot",
		Short:         "Live football notifications for Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file (env overrides it)")

	run := runCmd(&configPath)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(onceCmd(&configPath))
	root.AddCommand(matchesCmd(&configPath))
	return root
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd(configPath *string) *cobra.Command {
	var (
		interval time.Duration
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll live matches and send notifications until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSetup(*configPath, func(ctx context.Context, cfg *config.Config) error {
				if interval > 0 {
					cfg.CheckInterval = interval
				}
				notifier, err := buildNotifier(cfg, dryRun)
				if err != nil {
					return err
				}

				srv := startHealthServer(cfg, notifier)
				notifier.Run(ctx, cfg.CheckInterval)

				if srv != nil {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Error("Health server shutdown error", "error", err)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (overrides CHECK_INTERVAL)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log notifications instead of sending them")
	return cmd
}

// --------------------------------------------------------------------------
// once command
// --------------------------------------------------------------------------

func onceCmd(configPath *string) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single notification cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSetup(*configPath, func(ctx context.Context, cfg *config.Config) error {
				notifier, err := buildNotifier(cfg, dryRun)
				if err != nil {
					return err
				}
				start := time.Now()
				result, err := notifier.RunCycle(ctx)
				logger.Info("Cycle finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log notifications instead of sending them")
	return cmd
}

// --------------------------------------------------------------------------
// matches command
// --------------------------------------------------------------------------

func matchesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List the matches football-data.org currently reports as live",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSetup(*configPath, func(ctx context.Context, cfg *config.Config) error {
				matches, err := newSource(cfg).LiveMatches(ctx)
				if err != nil {
					return fmt.Errorf("fetch live matches: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(matches) == 0 {
					fmt.Fprintln(out, "No live matches.")
					return nil
				}
				for _, m := range matches {
					fmt.Fprintf(out, "%-10s %s %s %s  [%s] goals=%d\n",
						m.ID, m.HomeTeam, m.Score, m.AwayTeam,
						match.DeriveStatusLabel(m), len(match.ExtractGoals(m)))
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withSetup handles config loading, logger level, and signal cancellation.
// A config error is fatal: the command exits non-zero before doing any work.
func withSetup(configPath string, fn func(ctx context.Context, cfg *config.Config) error) error {
	if configPath == "" {
		configPath = os.Getenv("GOALBOT_CONFIG")
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return fn(ctx, cfg)
}

func newSource(cfg *config.Config) *footballdata.Client {
	return footballdata.NewClient(cfg.BaseURL, cfg.APIToken, cfg.RequestsPerMin, cfg.HTTPTimeout, logger)
}

// buildNotifier wires source, sender and store from config.
func buildNotifier(cfg *config.Config, dryRun bool) (*notifications.Notifier, error) {
	policy, err := notifications.ParsePolicy(cfg.DispatchPolicy)
	if err != nil {
		return nil, err
	}

	var sender notifications.Sender
	if dryRun {
		sender = notifications.NewLogSender(logger)
		logger.Info("Dry run: notifications will be logged, not sent")
	} else {
		tg, err := notifications.NewTelegramSender(cfg.TelegramToken, cfg.ChannelID,
			notifications.TelegramOptions{Timeout: cfg.HTTPTimeout}, logger)
		if err != nil {
			return nil, err
		}
		sender = tg
	}

	store := notifications.NewStore(cfg.PurgeAfterCycles)
	return notifications.NewNotifier(newSource(cfg), sender, store, policy, logger), nil
}

// startHealthServer serves /health when HEALTH_ADDR is set. Returns nil when
// disabled.
func startHealthServer(cfg *config.Config, notifier *notifications.Notifier) *http.Server {
	if cfg.HealthAddr == "" {
		return nil
	}
	srv := &http.Server{
		Addr:         cfg.HealthAddr,
		Handler:      api.NewRouter(notifier, cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("Starting health server", "addr", cfg.HealthAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server failed", "error", err)
		}
	}()
	return srv
}
