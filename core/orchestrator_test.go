package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slotherinee/instgbot/common/utils/dlutil"
	"github.com/slotherinee/instgbot/core/ratelimit"
	"github.com/slotherinee/instgbot/pkg/media"
)

type fakeGate struct {
	denyRequests bool
	denyStories  bool
	requests     int
	stories      int
}

func (g *fakeGate) AllowRequest(userID int64) ratelimit.Decision {
	g.requests++
	if g.denyRequests {
		return ratelimit.Decision{Allowed: false, ResetAt: time.Now().Add(42 * time.Second)}
	}
	return ratelimit.Decision{Allowed: true}
}

func (g *fakeGate) AllowStory(userID int64, admin bool) ratelimit.Decision {
	g.stories++
	if g.denyStories && !admin {
		return ratelimit.Decision{Allowed: false, ResetAt: time.Now().Add(90 * time.Second)}
	}
	return ratelimit.Decision{Allowed: true}
}

type fakeResolver struct {
	name  string
	set   *media.Set
	err   error
	calls int
}

func (r *fakeResolver) Name() string               { return r.name }
func (r *fakeResolver) CanHandle(text string) bool { return true }

func (r *fakeResolver) Resolve(ctx context.Context, text string) (*media.Set, error) {
	r.calls++
	return r.set, r.err
}

type fakeStories struct {
	set *media.Set
	err error
}

func (s *fakeStories) FetchStories(ctx context.Context, username string) (*media.Set, error) {
	return s.set, s.err
}

type orchFixture struct {
	msg      *fakeMessenger
	notifier *fakeNotifier
	ledger   *fakeLedger
	gate     *fakeGate
	resolver *fakeResolver
	orch     *Orchestrator
}

func newOrchFixture(resolver *fakeResolver, stories StoryFetcher, fetch func(ctx context.Context, url string) ([]byte, error)) *orchFixture {
	msg := &fakeMessenger{}
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{}
	gate := &fakeGate{}
	if fetch == nil {
		fetch = fetchFixed(1024)
	}
	f := &orchFixture{msg: msg, notifier: notifier, ledger: ledger, gate: gate, resolver: resolver}
	f.orch = NewOrchestrator(OrchestratorOptions{
		Deliverer:     newTestDeliverer(msg, notifier, ledger, fetch),
		Messenger:     msg,
		Notifier:      notifier,
		Ledger:        ledger,
		Gate:          gate,
		Resolvers:     []Resolver{resolver},
		Stories:       stories,
		Tag:           "@instg_save_bot",
		StoryCooldown: 180 * time.Second,
		IsAdmin:       func(userID int64) bool { return userID == 777 },
	})
	return f
}

var testReq = Request{ChatID: 100, UserID: 100, Username: "someone", Text: "https://www.instagram.com/reel/xyz/"}

func TestHandleRequestSingleVideo(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave", set: &media.Set{Items: videoItems(1)}}
	f := newOrchFixture(resolver, nil, nil)

	f.orch.HandleRequest(context.Background(), testReq)

	if len(f.msg.sent) != 1 || f.msg.sent[0].Kind != media.KindVideo {
		t.Fatalf("sent = %v, want exactly one video", f.msg.sent)
	}
	if f.msg.sent[0].Caption != "@instg_save_bot" {
		t.Errorf("caption = %q, want the branding tag", f.msg.sent[0].Caption)
	}
	if len(f.ledger.downloads) != 1 {
		t.Fatalf("recorded %d downloads, want 1", len(f.ledger.downloads))
	}
	rec := f.ledger.downloads[0]
	if !rec.success || rec.mediaKind != "video" || rec.platform != "instagram" {
		t.Errorf("record = %+v, want success=true kind=video platform=instagram", rec)
	}
	// Placeholder sent, then deleted best-effort.
	if len(f.msg.texts) != 1 {
		t.Errorf("sent %d texts, want only the placeholder", len(f.msg.texts))
	}
	if len(f.msg.deleted) != 1 {
		t.Errorf("deleted %d messages, want the placeholder", len(f.msg.deleted))
	}
}

func TestHandleRequestPhotoAlbums(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave", set: &media.Set{Items: photoItems(12)}}
	f := newOrchFixture(resolver, nil, nil)

	f.orch.HandleRequest(context.Background(), testReq)

	if len(f.msg.groups) != 2 || len(f.msg.groups[0]) != 10 || len(f.msg.groups[1]) != 2 {
		t.Fatalf("grouped calls = %d, want 10+2 split", len(f.msg.groups))
	}
	if len(f.ledger.downloads) != 1 || !f.ledger.downloads[0].success {
		t.Fatalf("downloads = %+v, want one success record", f.ledger.downloads)
	}
	if f.ledger.downloads[0].mediaKind != "photo" {
		t.Errorf("mediaKind = %q, want photo", f.ledger.downloads[0].mediaKind)
	}
}

func TestHandleRequestResolverFailure(t *testing.T) {
	resolver := &fakeResolver{name: "ytshorts", err: errors.New("no mp4 url in response")}
	f := newOrchFixture(resolver, nil, nil)

	f.orch.HandleRequest(context.Background(), Request{
		ChatID: 100, UserID: 100, Username: "someone",
		Text: "https://youtube.com/shorts/abc123DEF",
	})

	if len(f.notifier.escalations) != 1 || f.notifier.escalations[0].errContext != "youtube mp4 check" {
		t.Fatalf("escalations = %v, want one with context %q", f.notifier.escalations, "youtube mp4 check")
	}
	if len(f.ledger.downloads) != 1 || f.ledger.downloads[0].success {
		t.Fatalf("downloads = %+v, want one failure record", f.ledger.downloads)
	}
	if len(f.msg.texts) != 1 {
		t.Errorf("sent %d texts, want one failure notice", len(f.msg.texts))
	}
}

func TestHandleRequestRateLimited(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave", set: &media.Set{Items: videoItems(1)}}
	f := newOrchFixture(resolver, nil, nil)
	f.gate.denyRequests = true

	f.orch.HandleRequest(context.Background(), testReq)

	if resolver.calls != 0 {
		t.Error("resolver invoked for a rate-limited request")
	}
	if len(f.ledger.downloads) != 0 {
		t.Errorf("downloads = %+v, want none for a denied request", f.ledger.downloads)
	}
	if len(f.msg.texts) != 1 {
		t.Fatalf("sent %d texts, want one rate-limit notice", len(f.msg.texts))
	}
}

func TestHandleRequestOversizedVideo(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave", set: &media.Set{Items: videoItems(1)}}
	f := newOrchFixture(resolver, nil, func(ctx context.Context, url string) ([]byte, error) {
		return nil, &dlutil.TooLargeError{Size: 60000000}
	})

	f.orch.HandleRequest(context.Background(), testReq)

	if len(f.msg.sent) != 0 {
		t.Error("transport send attempted for an oversized resource")
	}
	if len(f.notifier.escalations) != 0 {
		t.Errorf("oversized resource escalated: %v", f.notifier.escalations)
	}
	if len(f.ledger.downloads) != 1 || f.ledger.downloads[0].success {
		t.Fatalf("downloads = %+v, want one failure record", f.ledger.downloads)
	}
}

func TestHandleRequestUnknownText(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave"}
	f := newOrchFixture(resolver, nil, nil)

	f.orch.HandleRequest(context.Background(), Request{ChatID: 100, UserID: 100, Text: "hello there"})

	if resolver.calls != 0 || f.gate.requests != 0 {
		t.Error("unknown text reached the gate or resolver")
	}
	if len(f.msg.texts) != 1 {
		t.Fatalf("sent %d texts, want one guidance notice", len(f.msg.texts))
	}
	if len(f.ledger.downloads) != 0 {
		t.Error("unknown text recorded as a download")
	}
}

func TestHandleRequestStories(t *testing.T) {
	stories := &fakeStories{set: &media.Set{Items: []media.Item{
		{Kind: media.KindPhoto, Data: make([]byte, 512)},
		{Kind: media.KindVideo, Data: make([]byte, 512)},
	}}}
	resolver := &fakeResolver{name: "snapsave"}
	f := newOrchFixture(resolver, stories, nil)

	f.orch.HandleRequest(context.Background(), Request{ChatID: 100, UserID: 100, Text: "@telegram story"})

	if resolver.calls != 0 {
		t.Error("link resolver invoked for a story request")
	}
	if len(f.msg.sent) != 2 {
		t.Fatalf("sent %d items, want both story media", len(f.msg.sent))
	}
	if len(f.ledger.downloads) != 1 {
		t.Fatalf("recorded %d downloads, want 1", len(f.ledger.downloads))
	}
	rec := f.ledger.downloads[0]
	if !rec.success || rec.platform != "telegram" || rec.mediaKind != "story" {
		t.Errorf("record = %+v, want success=true platform=telegram kind=story", rec)
	}
}

func TestHandleRequestStoriesUnavailable(t *testing.T) {
	resolver := &fakeResolver{name: "snapsave"}
	f := newOrchFixture(resolver, nil, nil)

	f.orch.HandleRequest(context.Background(), Request{ChatID: 100, UserID: 100, Text: "@telegram story"})

	if len(f.msg.texts) != 1 {
		t.Fatalf("sent %d texts, want one unavailability notice", len(f.msg.texts))
	}
	if len(f.ledger.downloads) != 0 {
		t.Error("unavailable stories recorded as a download attempt")
	}
}

func TestHandleRequestStoryCooldownAdminExempt(t *testing.T) {
	stories := &fakeStories{set: &media.Set{Items: []media.Item{{Kind: media.KindPhoto, Data: make([]byte, 512)}}}}
	resolver := &fakeResolver{name: "snapsave"}
	f := newOrchFixture(resolver, stories, nil)
	f.gate.denyStories = true

	f.orch.HandleRequest(context.Background(), Request{ChatID: 100, UserID: 100, Text: "@telegram story"})
	if len(f.ledger.downloads) != 0 {
		t.Fatal("cooled-down story recorded as a download")
	}

	f.orch.HandleRequest(context.Background(), Request{ChatID: 777, UserID: 777, Text: "@telegram story"})
	if len(f.ledger.downloads) != 1 {
		t.Fatal("admin story request was not admitted")
	}
}
