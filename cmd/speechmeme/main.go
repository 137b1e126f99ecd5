// Package main is the entry point for the SpeechMeme Discord bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speechmeme/config"
	"speechmeme/internal/app"
	"speechmeme/internal/logging"
	"speechmeme/internal/version"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		// Logging is not configured yet; fall back to the default handler.
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.New(logging.Options{Format: cfg.Log.Format, Level: cfg.Log.Level})

	slog.Info("starting speechmeme",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	if cfg.Discord.Token == "" {
		slog.Error("DISCORD_BOT_TOKEN is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, app.Config{AppConfig: cfg})
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	runErr := application.Run(ctx)
	if runErr != nil {
		slog.Error("application stopped", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
