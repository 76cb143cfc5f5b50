package handlers

import (
	"fmt"
	"strings"

	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/database"
)

func handleNewsletterCmd(ctx *ext.Context, update *ext.Update) error {
	chatID := update.EffectiveChat().GetID()
	on, err := database.ToggleNewsletter(ctx, chatID)
	if err != nil {
		log.FromContext(ctx).Errorf("toggle newsletter for %d: %s", chatID, err)
		return dispatcher.EndGroups
	}
	key := i18nk.BotMsgNewsletterOff
	if on {
		key = i18nk.BotMsgNewsletterOn
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(key)), nil)
	return dispatcher.EndGroups
}

// handleFeatCmd forwards a feature suggestion to every admin.
func handleFeatCmd(ctx *ext.Context, update *ext.Update) error {
	parts := strings.SplitN(update.EffectiveMessage.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgFeatUsage)), nil)
		return dispatcher.EndGroups
	}
	user := update.EffectiveUser()
	from := fmt.Sprintf("ID %d", user.GetID())
	if user.Username != "" {
		from = "@" + user.Username
	}
	report := fmt.Sprintf("💡 Предложение от %s:\n\n%s", from, strings.TrimSpace(parts[1]))
	for _, adminID := range config.C().Bot.Admins {
		if _, err := deps.Messenger.SendText(ctx, adminID, report); err != nil {
			log.FromContext(ctx).Warnf("relay suggestion to %d: %s", adminID, err)
		}
	}
	ctx.Reply(update, ext.ReplyTextString(i18n.T(i18nk.BotMsgFeatThanks)), nil)
	return dispatcher.EndGroups
}
