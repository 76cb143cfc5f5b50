package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/dustin/go-humanize"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
)

func handleStartCmd(ctx *ext.Context, update *ext.Update) error {
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgStart)), nil)
	return dispatcher.EndGroups
}

func handleHelpCmd(ctx *ext.Context, update *ext.Update) error {
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgHelp, map[string]any{
		"Requests": config.C().RateLimit.Requests,
		"Limit":    humanize.IBytes(tglimit.MaxFileSize),
	})), nil)
	return dispatcher.EndGroups
}
