package handlers

import (
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/database"
)

// trackUser refreshes the sender's user row on every private message so
// the admin reports and the newsletter list stay current.
func trackUser(ctx *ext.Context, update *ext.Update) error {
	user := update.EffectiveUser()
	if user == nil {
		return dispatcher.EndGroups
	}
	if _, err := database.UpsertUser(ctx, user.GetID(), user.Username, user.FirstName); err != nil {
		log.FromContext(ctx).Errorf("upsert user %d: %s", user.GetID(), err)
	}
	return dispatcher.ContinueGroups
}

// requireAdmin lets admin commands fall through to the text handler for
// everyone else, where they are answered like any other unknown text.
func requireAdmin(next func(*ext.Context, *ext.Update) error) func(*ext.Context, *ext.Update) error {
	return func(ctx *ext.Context, update *ext.Update) error {
		user := update.EffectiveUser()
		if user == nil || !config.C().IsAdmin(user.GetID()) {
			return dispatcher.ContinueGroups
		}
		return next(ctx, update)
	}
}
