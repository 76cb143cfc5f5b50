package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/client/bot"
	"github.com/slotherinee/instgbot/client/user"
	"github.com/slotherinee/instgbot/common/cache"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/database"
	"github.com/spf13/cobra"
)

func Run(cmd *cobra.Command, _ []string) error {
	ctx, err := InitAll(cmd.Context())
	if err != nil {
		return err
	}
	logger := log.FromContext(ctx)
	logger.Info("Bot is running")
	<-ctx.Done()
	logger.Info("Shutting down")
	return nil
}

// InitAll brings up every subsystem in dependency order and returns the
// context carrying the configured logger.
func InitAll(ctx context.Context) (context.Context, error) {
	if err := config.Init(); err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger()
	ctx = log.WithContext(ctx, logger)

	i18n.Init(config.C().Bot.Lang)
	cache.Init()
	database.Init(ctx)

	var stories core.StoryFetcher
	if config.C().Telegram.Userbot.Enable {
		if _, err := user.Login(ctx); err != nil {
			return ctx, fmt.Errorf("user client login failed: %w", err)
		}
		stories = user.NewStoryFetcher()
	}
	if err := bot.Init(ctx, stories); err != nil {
		return ctx, fmt.Errorf("bot init failed: %w", err)
	}
	return ctx, nil
}

func newLogger() *log.Logger {
	level, err := log.ParseLevel(config.C().Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	if path := config.C().Log.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			logger.Warn("Failed to open log file, logging to stderr only", "path", path, "err", err)
		} else {
			logger.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}
	return logger
}
