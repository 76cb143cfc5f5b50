package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/slotherinee/instgbot/core"
)

// handleTextMessage routes any plain text into the delivery pipeline.
// Classification, rate limiting and user notices all happen inside the
// orchestrator; the handler only shapes the request.
func handleTextMessage(ctx *ext.Context, update *ext.Update) error {
	user := update.EffectiveUser()
	if user == nil {
		return dispatcher.EndGroups
	}
	deps.Orchestrator.HandleRequest(ctx, core.Request{
		ChatID:   update.EffectiveChat().GetID(),
		UserID:   user.GetID(),
		Username: user.Username,
		Text:     update.EffectiveMessage.Text,
	})
	return dispatcher.EndGroups
}
