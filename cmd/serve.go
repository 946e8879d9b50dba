package cmd

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pairline/internal/config"
	"github.com/nextlevelbuilder/pairline/internal/httpapi"
	"github.com/nextlevelbuilder/pairline/internal/match"
	"github.com/nextlevelbuilder/pairline/internal/metrics"
	"github.com/nextlevelbuilder/pairline/internal/rtc"
	"github.com/nextlevelbuilder/pairline/internal/topics"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matchmaking service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging)

	// Topic catalog: built-in unless a file is configured.
	selector := topics.NewSelector()
	var topicsWatcher *topics.Watcher
	if cfg.Topics.Path != "" {
		if err := selector.Load(cfg.Topics.Path); err != nil {
			return err
		}
		if cfg.Topics.Watch {
			topicsWatcher, err = topics.NewWatcher(cfg.Topics.Path, selector)
			if err != nil {
				return fmt.Errorf("failed to create topics watcher: %w", err)
			}
			if err := topicsWatcher.Start(); err != nil {
				return fmt.Errorf("failed to start topics watcher: %w", err)
			}
			defer topicsWatcher.Stop()
		}
	}

	// Credential provider: Agora when configured, placeholder-only otherwise.
	var provider rtc.Provider
	if cfg.Agora.AppID != "" && cfg.Agora.AppCertificate != "" {
		agora, err := rtc.NewAgoraProvider(cfg.Agora.AppID, cfg.Agora.AppCertificate)
		if err != nil {
			return err
		}
		provider = agora
	} else {
		slog.Warn("agora credentials not configured, all tokens will be placeholders")
		provider = rtc.ProviderFunc(func(_ context.Context, channelID string, uid uint32) (string, error) {
			return rtc.PlaceholderToken(channelID, uid), nil
		})
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	engine, err := match.NewEngine(match.Options{
		Topics:          selector,
		Credentials:     provider,
		Metrics:         m,
		WaitTimeout:     cfg.Matchmaking.WaitTimeoutDuration(),
		ChannelDuration: cfg.Matchmaking.ChannelDurationDuration(),
		MintTimeout:     cfg.Matchmaking.MintTimeoutDuration(),
	})
	if err != nil {
		return err
	}

	sweeper := match.NewSweeper(engine, cfg.Matchmaking.SweepIntervalDuration())
	sweeper.Start()
	defer sweeper.Stop()

	server := httpapi.NewServer(httpapi.Config{
		Address:      cfg.Server.Address,
		Port:         cfg.Server.Port,
		AppID:        cfg.Agora.AppID,
		RateLimitRPM: cfg.Server.RateLimitRPM,
		RateBurst:    cfg.Server.RateBurst,
	}, engine, m)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", server.Addr(), "topics", selector.Size())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func setupLogger(cfg config.LoggingConfig) {
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

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
