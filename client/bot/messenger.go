package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/celestix/gotgproto/ext"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/rs/xid"
	"github.com/slotherinee/instgbot/core"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
	"github.com/slotherinee/instgbot/pkg/media"
	"golang.org/x/time/rate"
)

// Messenger sends through the bot session. All sends are silent and paced
// by a local limiter on top of the client middlewares.
type Messenger struct {
	ectx    *ext.Context
	limiter *rate.Limiter
}

var _ core.Messenger = (*Messenger)(nil)

func NewMessenger(ectx *ext.Context) *Messenger {
	return &Messenger{
		ectx:    ectx,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 3),
	}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg, err := m.ectx.SendMessage(chatID, &tg.MessagesSendMessageRequest{
		Message: text,
		Silent:  true,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, chatID int64, msgID int) error {
	return m.ectx.DeleteMessages(chatID, []int{msgID})
}

func (m *Messenger) SendMedia(ctx context.Context, chatID int64, item core.OutMedia) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	peer := m.ectx.PeerStorage.GetInputPeerById(chatID)
	if peer == nil {
		return fmt.Errorf("failed to get input peer for chat ID %d", chatID)
	}
	upler := m.newUploader()
	opt, err := m.mediaOption(ctx, upler, item)
	if err != nil {
		return err
	}
	_, err = m.ectx.Sender.WithUploader(upler).To(peer).Silent().Media(ctx, opt)
	return err
}

func (m *Messenger) SendMediaGroup(ctx context.Context, chatID int64, items []core.OutMedia) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return m.SendMedia(ctx, chatID, items[0])
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	peer := m.ectx.PeerStorage.GetInputPeerById(chatID)
	if peer == nil {
		return fmt.Errorf("failed to get input peer for chat ID %d", chatID)
	}
	upler := m.newUploader()
	opts := make([]message.MultiMediaOption, 0, len(items))
	for _, item := range items {
		opt, err := m.mediaOption(ctx, upler, item)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}
	_, err := m.ectx.Sender.WithUploader(upler).To(peer).Silent().Album(ctx, opts[0], opts[1:]...)
	return err
}

func (m *Messenger) newUploader() *uploader.Uploader {
	return uploader.NewUploader(m.ectx.Raw).WithPartSize(tglimit.MaxUploadPartSize)
}

func (m *Messenger) mediaOption(ctx context.Context, upler *uploader.Uploader, item core.OutMedia) (message.MultiMediaOption, error) {
	mtype := mimetype.Detect(item.Data)
	filename := xid.New().String() + mtype.Extension()
	file, err := upler.FromBytes(ctx, filename, item.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to telegram: %w", err)
	}
	var caption []message.StyledTextOption
	if item.Caption != "" {
		caption = append(caption, styling.Plain(item.Caption))
	}
	if item.Kind == media.KindPhoto {
		return message.UploadedPhoto(file, caption...), nil
	}
	return message.UploadedDocument(file, caption...).
		Filename(filename).
		MIME(mtype.String()).
		Video().
		SupportsStreaming(), nil
}
