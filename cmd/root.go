package cmd

import (
	"context"
	"fmt"

	"github.com/slotherinee/instgbot/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "instgbot",
	Short: "Telegram bot that delivers media from social links",
	RunE:  Run,
}

func init() {
	config.RegisterFlags(rootCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
	}
}
