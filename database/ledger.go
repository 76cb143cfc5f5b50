package database

import (
	"context"

	"github.com/charmbracelet/log"
)

// Ledger adapts the database package to the delivery core's bookkeeping
// interface. Write failures are logged, never propagated: bookkeeping must
// not break delivery.
type Ledger struct{}

func (Ledger) RecordDownload(ctx context.Context, chatID int64, username, request, platform, mediaKind string, success bool) {
	if err := RecordDownload(ctx, chatID, username, "", request, platform, mediaKind, success); err != nil {
		log.FromContext(ctx).Error("Failed to record download", "chat_id", chatID, "error", err)
	}
}

func (Ledger) RecordError(ctx context.Context, chatID int64, username, errContext, message, original string) {
	if err := RecordError(ctx, chatID, username, errContext, message, original); err != nil {
		log.FromContext(ctx).Error("Failed to record error", "chat_id", chatID, "error", err)
	}
}
