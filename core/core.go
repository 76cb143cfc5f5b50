// Package core is the outbound-delivery and rate-limiting orchestration
// layer: it classifies requests, gates them through the rate limiter,
// drives resolvers, and relays the resulting media to the chat transport
// under the transport's size and grouping constraints.
package core

import (
	"context"

	"github.com/slotherinee/instgbot/pkg/media"
)

// DeliveryStatus is the outcome of one single-item delivery attempt.
type DeliveryStatus int

const (
	DeliveredOK DeliveryStatus = iota
	// DeliveredTooLarge: the resource exceeds the transport ceiling. An
	// expected, user-caused condition; never escalated to operators.
	DeliveredTooLarge
	// DeliveredBlocked: the recipient is unreachable (blocked the bot,
	// deleted the account). Expected churn; aborts silently.
	DeliveredBlocked
	DeliveredError
)

// OutMedia is one payload handed to the transport.
type OutMedia struct {
	Kind    media.Kind
	Data    []byte
	Caption string
}

// Messenger is the chat transport. Implementations return raw transport
// errors; callers classify them once via tgutil.ClassifySendError and must
// not re-parse error text elsewhere.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (msgID int, err error)
	SendMedia(ctx context.Context, chatID int64, item OutMedia) error
	// SendMediaGroup transmits all items as one album. All items share one
	// kind; only the first may carry a caption.
	SendMediaGroup(ctx context.Context, chatID int64, items []OutMedia) error
	// DeleteMessage is best-effort; callers ignore its error.
	DeleteMessage(ctx context.Context, chatID int64, msgID int) error
}

// Ledger records per-user download and error history. Implementations must
// never fail the request path: bookkeeping errors are logged and swallowed.
type Ledger interface {
	RecordDownload(ctx context.Context, chatID int64, username, request, platform, mediaKind string, success bool)
	RecordError(ctx context.Context, chatID int64, username, errContext, message, original string)
}

// Notifier escalates unexpected failures to the operators.
type Notifier interface {
	NotifyError(ctx context.Context, errContext string, chatID int64, username, request string, err error)
}

// Resolver turns a request string into zero or more media items.
type Resolver interface {
	Name() string
	CanHandle(text string) bool
	Resolve(ctx context.Context, text string) (*media.Set, error)
}

// StoryFetcher downloads a user's active stories over the authenticated
// session, returning items with bytes already attached.
type StoryFetcher interface {
	FetchStories(ctx context.Context, username string) (*media.Set, error)
}
