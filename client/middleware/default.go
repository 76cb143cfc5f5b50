package middleware

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"github.com/slotherinee/instgbot/client/middleware/recovery"
	"github.com/slotherinee/instgbot/client/middleware/retry"
	"github.com/slotherinee/instgbot/config"
	"golang.org/x/time/rate"
)

func NewDefaultMiddlewares(ctx context.Context, timeout time.Duration) []telegram.Middleware {
	return []telegram.Middleware{
		recovery.New(ctx, newBackoff(timeout)),
		retry.New(config.C().Telegram.RpcRetry),
		floodwait.NewSimpleWaiter(),
		ratelimit.New(rate.Every(100*time.Millisecond), 5),
	}
}

func newBackoff(timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.Multiplier = 1.1
	b.MaxElapsedTime = timeout
	b.MaxInterval = 10 * time.Second
	return b
}
