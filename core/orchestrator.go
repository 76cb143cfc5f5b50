package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/common/i18n"
	"github.com/slotherinee/instgbot/common/i18n/i18nk"
	"github.com/slotherinee/instgbot/core/ratelimit"
	"github.com/slotherinee/instgbot/pkg/media"
)

// RateGate is the limiter surface the orchestrator consumes.
type RateGate interface {
	AllowRequest(userID int64) ratelimit.Decision
	AllowStory(userID int64, admin bool) ratelimit.Decision
}

// Request is one inbound message to orchestrate.
type Request struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// Orchestrator drives one request through classification, the rate gate,
// resolution and delivery, and records the outcome in the ledger.
type Orchestrator struct {
	deliverer *Deliverer
	msg       Messenger
	notifier  Notifier
	ledger    Ledger
	gate      RateGate
	resolvers []Resolver
	stories   StoryFetcher

	tag           string
	storyCooldown time.Duration
	isAdmin       func(userID int64) bool
	now           func() time.Time
}

type OrchestratorOptions struct {
	Deliverer *Deliverer
	Messenger Messenger
	Notifier  Notifier
	Ledger    Ledger
	Gate      RateGate
	Resolvers []Resolver
	// Stories may be nil when no user session is configured; story requests
	// are then answered with a "stories unavailable" notice.
	Stories       StoryFetcher
	Tag           string
	StoryCooldown time.Duration
	IsAdmin       func(userID int64) bool
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	return &Orchestrator{
		deliverer: opts.Deliverer,
		msg:       opts.Messenger,
		notifier:  opts.Notifier,
		ledger:    opts.Ledger,
		gate:      opts.Gate,
		resolvers: opts.Resolvers,
		stories:   opts.Stories,

		tag:           opts.Tag,
		storyCooldown: opts.StoryCooldown,
		isAdmin:       opts.IsAdmin,
		now:           time.Now,
	}
}

// HandleRequest processes one inbound message end to end. It never returns
// an error: every failure mode ends in a user notice, an operator
// escalation, a ledger record, or some combination of the three.
func (o *Orchestrator) HandleRequest(ctx context.Context, req Request) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.FromContext(ctx).Error("Recovered in request handler", "err", err)
			o.escalate(ctx, req, "main message handler", err)
			o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		}
	}()

	admin := o.isAdmin(req.UserID)
	cls := Classify(req.Text, admin)

	switch cls.Kind {
	case RequestAdminCommand:
		// Routed by the command dispatcher, not by this layer.
		return
	case RequestUnknown:
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgUnknownInput))
		return
	}

	// A denied request terminates before resolution and is not recorded as
	// a download attempt.
	if !o.admit(ctx, req, cls, admin) {
		return
	}

	// Without a user session stories cannot be read at all; that is a
	// deployment state, not a failed download attempt.
	if cls.Kind == RequestStory && o.stories == nil {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgStoriesDisabled))
		return
	}

	set, ok := o.resolve(ctx, req, cls)
	if !ok {
		o.ledger.RecordDownload(ctx, req.ChatID, req.Username, req.Text,
			cls.Platform.String(), o.recordKind(cls, set), false)
		return
	}

	placeholderID, _ := o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgLoading))

	success := o.deliver(ctx, req, set)

	if placeholderID != 0 {
		o.msg.DeleteMessage(ctx, req.ChatID, placeholderID)
	}
	o.ledger.RecordDownload(ctx, req.ChatID, req.Username, req.Text,
		cls.Platform.String(), o.recordKind(cls, set), success)
}

func (o *Orchestrator) admit(ctx context.Context, req Request, cls Classification, admin bool) bool {
	key := req.UserID
	if key == 0 {
		key = req.ChatID
	}
	if cls.Kind == RequestStory {
		d := o.gate.AllowStory(key, admin)
		if !d.Allowed {
			o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgStoryCooldown, map[string]any{
				"Cooldown": int(o.storyCooldown.Seconds()),
				"Seconds":  o.secondsUntil(d.ResetAt),
			}))
			return false
		}
		return true
	}
	d := o.gate.AllowRequest(key)
	if !d.Allowed {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgRateLimited, map[string]any{
			"Seconds": o.secondsUntil(d.ResetAt),
		}))
		return false
	}
	return true
}

func (o *Orchestrator) resolve(ctx context.Context, req Request, cls Classification) (*media.Set, bool) {
	if cls.Kind == RequestStory {
		return o.resolveStories(ctx, req, cls)
	}
	resolver := o.pickResolver(req.Text)
	if resolver == nil {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		o.escalate(ctx, req, resolveContext(cls.Kind),
			fmt.Errorf("no resolver can handle request"))
		return nil, false
	}
	set, err := resolver.Resolve(ctx, req.Text)
	if err != nil {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		o.escalate(ctx, req, resolveContext(cls.Kind), err)
		return nil, false
	}
	if set.Empty() {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgDownloadFailed))
		o.escalate(ctx, req, resolveContext(cls.Kind),
			fmt.Errorf("resolver %s returned no media", resolver.Name()))
		return nil, false
	}
	return set, true
}

func (o *Orchestrator) resolveStories(ctx context.Context, req Request, cls Classification) (*media.Set, bool) {
	set, err := o.stories.FetchStories(ctx, cls.Username)
	if err != nil {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgStoryNotFound, map[string]any{
			"Username": "@" + cls.Username,
		}))
		o.escalate(ctx, req, "telegram stories download", err)
		return nil, false
	}
	if set.Empty() {
		o.msg.SendText(ctx, req.ChatID, i18n.T(i18nk.BotMsgStoryNotFound, map[string]any{
			"Username": "@" + cls.Username,
		}))
		return nil, false
	}
	return set, true
}

// deliver routes the video and photo subsets independently and reports
// overall success as "at least one subset delivered anything".
func (o *Orchestrator) deliver(ctx context.Context, req Request, set *media.Set) bool {
	t := Target{ChatID: req.ChatID, Username: req.Username, Request: req.Text}
	success := false
	caption := o.tag
	for _, kind := range []media.Kind{media.KindVideo, media.KindPhoto} {
		subset := set.Videos()
		if kind == media.KindPhoto {
			subset = set.Photos()
		}
		if len(subset) == 0 {
			continue
		}
		if len(subset) == 1 {
			if o.deliverer.DeliverOne(ctx, t, subset[0], caption) == DeliveredOK {
				success = true
			}
		} else if o.deliverer.DeliverBatch(ctx, t, subset, kind, caption) {
			success = true
		}
		if success {
			caption = ""
		}
	}
	return success
}

func (o *Orchestrator) pickResolver(text string) Resolver {
	for _, r := range o.resolvers {
		if r.CanHandle(text) {
			return r
		}
	}
	return nil
}

func (o *Orchestrator) recordKind(cls Classification, set *media.Set) string {
	if cls.Kind == RequestStory {
		return "story"
	}
	if set.Empty() {
		return media.KindVideo.String()
	}
	return set.DominantKind().String()
}

func (o *Orchestrator) escalate(ctx context.Context, req Request, errContext string, err error) {
	o.notifier.NotifyError(ctx, errContext, req.ChatID, req.Username, req.Text, err)
	o.ledger.RecordError(ctx, req.ChatID, req.Username, errContext, err.Error(), req.Text)
}

func (o *Orchestrator) secondsUntil(resetAt time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(o.now()).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func resolveContext(kind RequestKind) string {
	switch kind {
	case RequestYouTubeShorts:
		return "youtube mp4 check"
	case RequestThreads:
		return "threads download"
	default:
		return "snapsave download"
	}
}
