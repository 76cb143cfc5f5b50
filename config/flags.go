package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RegisterFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("config", "c", "", "config file path")
	flags.StringP("lang", "l", "", "language (ru, en)")

	flags.String("telegram-token", "", "telegram bot token")
	flags.Int("telegram-app-id", 0, "telegram app id")
	flags.String("telegram-app-hash", "", "telegram app hash")
	flags.Bool("telegram-userbot-enable", false, "enable the stories userbot session")
	flags.String("telegram-userbot-session", "", "userbot session path")
	flags.Bool("telegram-proxy-enable", false, "enable telegram proxy")
	flags.String("telegram-proxy-url", "", "telegram proxy URL")

	flags.String("db-path", "", "database path")
	flags.String("db-session", "", "session database path")

	bindFlags(cmd)
}

func bindFlags(cmd *cobra.Command) {
	bindings := map[string]string{
		"bot.lang":                 "lang",
		"telegram.token":           "telegram-token",
		"telegram.app_id":          "telegram-app-id",
		"telegram.app_hash":        "telegram-app-hash",
		"telegram.userbot.enable":  "telegram-userbot-enable",
		"telegram.userbot.session": "telegram-userbot-session",
		"telegram.proxy.enable":    "telegram-proxy-enable",
		"telegram.proxy.url":       "telegram-proxy-url",
		"db.path":                  "db-path",
		"db.session":               "db-session",
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}
