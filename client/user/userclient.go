package user

import (
	"context"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/dispatcher"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/sessionMaker"
	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/client/middleware"
	"github.com/slotherinee/instgbot/common/utils/tgutil"
	"github.com/slotherinee/instgbot/config"
	"github.com/slotherinee/instgbot/database"
)

var uc *gotgproto.Client
var ectx *ext.Context

func GetCtx() *ext.Context {
	if ectx != nil {
		return ectx
	}
	if uc == nil {
		return nil
	}
	ectx = uc.CreateContext()
	return ectx
}

// Login starts the user session used for story downloads. On first run it
// walks the terminal auth flow; afterwards the stored session is reused.
func Login(ctx context.Context) (*gotgproto.Client, error) {
	log.FromContext(ctx).Debug("Logging in user client")
	if uc != nil {
		return uc, nil
	}
	res := make(chan struct {
		client *gotgproto.Client
		err    error
	})
	go func() {
		resolver, err := tgutil.NewConfigProxyResolver()
		if err != nil {
			res <- struct {
				client *gotgproto.Client
				err    error
			}{nil, err}
			return
		}
		tclient, err := gotgproto.NewClient(
			config.C().Telegram.AppID,
			config.C().Telegram.AppHash,
			gotgproto.ClientTypePhone(""),
			&gotgproto.ClientOpts{
				Session:          sessionMaker.SqlSession(database.GetDialect(config.C().Telegram.Userbot.Session)),
				AuthConversator:  &terminalAuthConversator{},
				Context:          ctx,
				DisableCopyright: true,
				Resolver:         resolver,
				MaxRetries:       config.C().Telegram.RpcRetry,
				AutoFetchReply:   true,
				Middlewares:      middleware.NewDefaultMiddlewares(ctx, 5*time.Minute),
				ErrorHandler: func(ctx *ext.Context, u *ext.Update, s string) error {
					log.FromContext(ctx).Errorf("unhandled error: %s", s)
					return dispatcher.EndGroups
				},
			},
		)
		res <- struct {
			client *gotgproto.Client
			err    error
		}{tclient, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-res:
		if r.err != nil {
			return nil, r.err
		}
		uc = r.client
		log.FromContext(ctx).Infof("User client logged in successfully: %s", uc.Self.FirstName+" "+uc.Self.LastName)
		return uc, nil
	}
}
