package bot

import (
	"context"
	"net/http"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/tg"
	"github.com/slotherinee/instgbot/client/bot/handlers"
	"github.com/slotherinee/instgbot/client/middleware"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/utils/tgutil"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/core/ratelimit"
	"github.com/slotherinee/instgbot/database"
	"github.com/slotherinee/instgbot/resolvers"
)

var ectx *ext.Context

func ExtContext() *ext.Context {
	return ectx
}

// Init starts the bot session and wires the delivery pipeline. stories may
// be nil when the userbot is disabled.
func Init(ctx context.Context, stories core.StoryFetcher) error {
	logger := log.FromContext(ctx)
	logger.Info("Initializing bot...")

	resolver, err := tgutil.NewConfigProxyResolver()
	if err != nil {
		return err
	}
	client, err := gotgproto.NewClient(
		config.C().Telegram.AppID,
		config.C().Telegram.AppHash,
		gotgproto.ClientTypeBot(config.C().Telegram.Token),
		&gotgproto.ClientOpts{
			Session:          sessionMaker.SqlSession(database.GetDialect(config.C().DB.Session)),
			DisableCopyright: true,
			Middlewares:      middleware.NewDefaultMiddlewares(ctx, 5*time.Minute),
			Resolver:         resolver,
			Context:          ctx,
			MaxRetries:       config.C().Telegram.RpcRetry,
			AutoFetchReply:   true,
			ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
				log.FromContext(ctx).Errorf("unhandled error: %s", s)
				return dispatcher.EndGroups
			},
		},
	)
	if err != nil {
		return err
	}
	ectx = client.CreateContext()

	messenger := NewMessenger(ectx)
	notifier := NewNotifier(messenger)
	ledger := database.Ledger{}

	limiter := ratelimit.New(ratelimit.Config{
		Requests:      config.C().RateLimit.Requests,
		Window:        config.C().RateLimit.Window(),
		StoryCooldown: config.C().RateLimit.StoryCooldown(),
	})
	go limiter.Run(ctx)

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	orch := core.NewOrchestrator(core.OrchestratorOptions{
		Deliverer:     core.NewDeliverer(messenger, notifier, ledger, httpClient),
		Messenger:     messenger,
		Notifier:      notifier,
		Ledger:        ledger,
		Gate:          limiter,
		Resolvers:     resolvers.All(httpClient),
		Stories:       stories,
		Tag:           config.C().Bot.Tag,
		StoryCooldown: config.C().RateLimit.StoryCooldown(),
		IsAdmin:       config.C().IsAdmin,
	})
	handlers.Register(client.Dispatcher, &handlers.Deps{
		Orchestrator: orch,
		Messenger:    messenger,
	})

	commands := make([]tg.BotCommand, 0, len(handlers.CommandHandlers))
	for _, info := range handlers.CommandHandlers {
		commands = append(commands, tg.BotCommand{Command: info.Cmd, Description: i18n.T(info.Desc)})
	}
	if _, err := client.API().BotsSetBotCommands(ctx, &tg.BotsSetBotCommandsRequest{
		Scope:    &tg.BotCommandScopeDefault{},
		Commands: commands,
	}); err != nil {
		logger.Warn("Failed to set bot commands", "err", err)
	}
	logger.Info("Bot initialization completed", "username", client.Self.Username)
	return nil
}
