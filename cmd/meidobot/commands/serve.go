package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/hippu/meidobot/pkg/meidobot/bot"
	"github.com/hippu/meidobot/pkg/meidobot/channels/discord"
)

// newServeCmd creates the `meidobot serve` command that starts the bot.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and start responding",
		Long: `Start Meidobot: connect to the Discord gateway, follow
conversations and reply when triggered.

Examples:
  meidobot serve
  meidobot serve --config ./meidobot.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)

	if cfg.Discord.Token == "" {
		return fmt.Errorf("discord token not configured (set DISCORD_TOKEN or discord.token)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Channel ──
	dc := discord.New(cfg.Discord, logger)
	if err := dc.Connect(ctx); err != nil {
		return err
	}
	defer dc.Disconnect()

	// ── Dispatcher ──
	dispatcher := bot.New(cfg, logger)

	// ── Fun fact schedule ──
	if cfg.FunFact.Schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.FunFact.Schedule, func() {
			if err := dispatcher.AnnounceFunFact(ctx); err != nil {
				logger.Error("fun fact announcement failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid fun fact schedule %q: %w", cfg.FunFact.Schedule, err)
		}
		c.Start()
		defer c.Stop()
		logger.Info("fun fact schedule active", "schedule", cfg.FunFact.Schedule)
	}

	// ── Shutdown on signal ──
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	err = dispatcher.Run(ctx, dc)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveConfig loads the config file named by --config, falling back
// to ./meidobot.yaml, falling back to defaults plus environment.
func resolveConfig(cmd *cobra.Command) (*bot.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = "meidobot.yaml"
		if _, err := os.Stat(path); err != nil {
			// No file at all: run on defaults and environment secrets.
			cfg, parseErr := bot.ParseConfig(nil)
			if parseErr != nil {
				return nil, parseErr
			}
			bot.ResolveSecrets(cfg)
			return cfg, nil
		}
	}
	return bot.LoadConfigFromFile(path)
}

// newLogger builds the process logger from flags and config.
func newLogger(cmd *cobra.Command, cfg *bot.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
