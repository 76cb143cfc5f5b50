package core

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/dustin/go-humanize"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/common/utils/dlutil"
	"github.com/slotherinee/instgbot/common/utils/tgutil"
	"github.com/slotherinee/instgbot/pkg/consts/tglimit"
	"github.com/slotherinee/instgbot/pkg/media"
	"golang.org/x/sync/errgroup"
)

// Target identifies the requesting chat for one delivery.
type Target struct {
	ChatID   int64
	Username string
	// Request is the original request text, carried into escalations.
	Request string
}

// Deliverer transmits resolved media to the chat transport, enforcing the
// per-file and per-album size ceilings and falling back from grouped to
// individual sends when a group is too heavy.
type Deliverer struct {
	msg      Messenger
	notifier Notifier
	ledger   Ledger
	fetch    func(ctx context.Context, url string) ([]byte, error)

	groupDelay time.Duration
	itemDelay  time.Duration
}

func NewDeliverer(msg Messenger, notifier Notifier, ledger Ledger, client *http.Client) *Deliverer {
	return &Deliverer{
		msg:      msg,
		notifier: notifier,
		ledger:   ledger,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return dlutil.FetchBytes(ctx, client, url)
		},
		groupDelay: tglimit.GroupSendDelay,
		itemDelay:  tglimit.ItemSendDelay,
	}
}

// DeliverOne transmits exactly one media item. "Too large" and "recipient
// unreachable" are expected conditions and are never escalated; everything
// else is reported to operators.
func (d *Deliverer) DeliverOne(ctx context.Context, t Target, item media.Item, caption string) DeliveryStatus {
	if !item.Resolvable() {
		d.msg.SendText(ctx, t.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		d.escalate(ctx, t, "media check", errors.New("media item has no source url"))
		return DeliveredError
	}
	data, err := d.fetchItem(ctx, item)
	if err != nil {
		var tooLarge *dlutil.TooLargeError
		if errors.As(err, &tooLarge) {
			d.msg.SendText(ctx, t.ChatID, tooLargeText(tooLarge.Size))
			return DeliveredTooLarge
		}
		d.msg.SendText(ctx, t.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		d.escalate(ctx, t, singleContext(item.Kind), err)
		return DeliveredError
	}
	err = d.msg.SendMedia(ctx, t.ChatID, OutMedia{Kind: item.Kind, Data: data, Caption: caption})
	if err == nil {
		return DeliveredOK
	}
	switch tgutil.ClassifySendError(err) {
	case tgutil.SendErrUnreachable:
		return DeliveredBlocked
	case tgutil.SendErrTooLarge:
		d.msg.SendText(ctx, t.ChatID, tooLargeText(int64(len(data))))
		return DeliveredTooLarge
	default:
		d.escalate(ctx, t, singleContext(item.Kind), err)
		return DeliveredError
	}
}

// DeliverBatch transmits all items of one kind, in transport-sized groups
// (3 videos or 10 photos per album). A group whose downloaded bytes exceed
// the album ceiling, or whose grouped call the transport rejects as
// oversized, degrades to individual sends. Returns true when at least one
// group was transmitted by any path.
func (d *Deliverer) DeliverBatch(ctx context.Context, t Target, items []media.Item, kind media.Kind, caption string) bool {
	logger := log.FromContext(ctx)

	filtered := make([]media.Item, 0, len(items))
	for _, item := range items {
		if item.Kind == kind && item.Resolvable() {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		return false
	}

	groupSize := tglimit.PhotoGroupSize
	if kind == media.KindVideo {
		groupSize = tglimit.VideoGroupSize
	}

	sentAny := false
	for gi, group := range slice.Chunk(filtered, groupSize) {
		if gi > 0 {
			sleepCtx(ctx, d.groupDelay)
		}

		bufs := make([][]byte, len(group))
		eg, fetchCtx := errgroup.WithContext(ctx)
		for i, item := range group {
			eg.Go(func() error {
				data, err := d.fetchItem(fetchCtx, item)
				if err != nil {
					var tooLarge *dlutil.TooLargeError
					if errors.As(err, &tooLarge) {
						// Request-fatal: remaining groups are abandoned.
						return err
					}
					logger.Warn("Skipping media item", "url", item.URL, "err", err)
					return nil
				}
				bufs[i] = data
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			var tooLarge *dlutil.TooLargeError
			if errors.As(err, &tooLarge) {
				d.msg.SendText(ctx, t.ChatID, tooLargeText(tooLarge.Size))
				return sentAny
			}
			d.escalate(ctx, t, groupContext(kind), err)
			continue
		}

		sendable := make([]OutMedia, 0, len(group))
		var total int64
		for i, data := range bufs {
			if data == nil {
				continue
			}
			itemCaption := ""
			if caption != "" && gi == 0 && len(sendable) == 0 {
				itemCaption = caption
			}
			sendable = append(sendable, OutMedia{Kind: group[i].Kind, Data: data, Caption: itemCaption})
			total += int64(len(data))
		}
		if len(sendable) == 0 {
			continue
		}

		if total > tglimit.MaxAlbumSize {
			logger.Debug("Album over aggregate ceiling, sending individually",
				"kind", kind, "total", humanize.IBytes(uint64(total)))
			sent, unreachable := d.sendIndividually(ctx, t, sendable)
			sentAny = sentAny || sent
			if unreachable {
				return sentAny
			}
			continue
		}

		err := d.msg.SendMediaGroup(ctx, t.ChatID, sendable)
		if err == nil {
			sentAny = true
			continue
		}
		switch tgutil.ClassifySendError(err) {
		case tgutil.SendErrUnreachable:
			return sentAny
		case tgutil.SendErrTooLarge:
			sent, unreachable := d.sendIndividually(ctx, t, sendable)
			sentAny = sentAny || sent
			if unreachable {
				return sentAny
			}
		default:
			d.escalate(ctx, t, groupContext(kind), err)
		}
	}
	return sentAny
}

// sendIndividually is the degraded path for one group. Item-level failures
// never abort sibling items; only an unreachable recipient stops the batch.
func (d *Deliverer) sendIndividually(ctx context.Context, t Target, items []OutMedia) (sent, unreachable bool) {
	for i, item := range items {
		if i > 0 {
			sleepCtx(ctx, d.itemDelay)
		}
		err := d.msg.SendMedia(ctx, t.ChatID, item)
		if err == nil {
			sent = true
			continue
		}
		switch tgutil.ClassifySendError(err) {
		case tgutil.SendErrUnreachable:
			return sent, true
		case tgutil.SendErrTooLarge:
			log.FromContext(ctx).Warn("Skipping oversized media item", "size", len(item.Data))
		default:
			d.escalate(ctx, t, singleContext(item.Kind), err)
		}
	}
	return sent, false
}

func (d *Deliverer) fetchItem(ctx context.Context, item media.Item) ([]byte, error) {
	if len(item.Data) > 0 {
		if int64(len(item.Data)) > tglimit.MaxFileSize {
			return nil, &dlutil.TooLargeError{Size: int64(len(item.Data))}
		}
		return item.Data, nil
	}
	return d.fetch(ctx, item.URL)
}

func (d *Deliverer) escalate(ctx context.Context, t Target, errContext string, err error) {
	d.notifier.NotifyError(ctx, errContext, t.ChatID, t.Username, t.Request, err)
	d.ledger.RecordError(ctx, t.ChatID, t.Username, errContext, err.Error(), t.Request)
}

func singleContext(kind media.Kind) string {
	if kind == media.KindVideo {
		return "single video"
	}
	return "single photo"
}

func groupContext(kind media.Kind) string {
	if kind == media.KindVideo {
		return "sendMediaGroup videos"
	}
	return "sendMediaGroup photos"
}

func tooLargeText(size int64) string {
	return i18n.T(i18nk.BotMsgTooLarge, map[string]any{
		"Size":  humanize.IBytes(uint64(size)),
		"Limit": humanize.IBytes(uint64(tglimit.MaxFileSize)),
	})
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
