package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"
	"github.com/celestix/gotgproto/ext"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/core"
)

// Deps holds the services the handlers dispatch into.
type Deps struct {
	Orchestrator *core.Orchestrator
	Messenger    core.Messenger
}

var deps *Deps

type DescCommandHandler struct {
	Cmd     string
	Desc    i18nk.Key
	handler func(ctx *ext.Context, u *ext.Update) error
}

// CommandHandlers lists the public commands; their descriptions are also
// pushed to Telegram via BotsSetBotCommands.
var CommandHandlers = []DescCommandHandler{
	{"start", i18nk.BotMsgCmdStart, handleStartCmd},
	{"help", i18nk.BotMsgCmdHelp, handleHelpCmd},
	{"newsletter", i18nk.BotMsgCmdNewsletter, handleNewsletterCmd},
	{"feat", i18nk.BotMsgCmdFeat, handleFeatCmd},
}

// adminCommandHandlers are not advertised in the command menu; for
// non-admins they fall through to the plain text handler.
var adminCommandHandlers = []struct {
	cmd     string
	handler func(ctx *ext.Context, u *ext.Update) error
}{
	{"ah", handleAdminHelpCmd},
	{"stats", handleStatsCmd},
	{"users", handleUsersCmd},
	{"top", handleTopCmd},
	{"errors", handleErrorsCmd},
	{"platforms", handlePlatformsCmd},
	{"announce", handleAnnounceCmd},
	{"announcecount", handleAnnounceCountCmd},
}

func Register(disp dispatcher.Dispatcher, d *Deps) {
	deps = d
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChannel), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.ChatType(filters.ChatTypeChat), func(ctx *ext.Context, u *ext.Update) error {
		return dispatcher.EndGroups
	}))
	disp.AddHandler(handlers.NewMessage(filters.Message.All, trackUser))
	for _, info := range CommandHandlers {
		disp.AddHandler(handlers.NewCommand(info.Cmd, info.handler))
	}
	for _, info := range adminCommandHandlers {
		disp.AddHandler(handlers.NewCommand(info.cmd, requireAdmin(info.handler)))
	}
	disp.AddHandler(handlers.NewMessage(filters.Message.Text, handleTextMessage))
}
