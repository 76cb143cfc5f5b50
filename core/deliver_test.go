package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/slotherinee/instgbot/common/utils/dlutil"
	"github.com/slotherinee/instgbot/pkg/media"
)

type fakeMessenger struct {
	mu      sync.Mutex
	texts   []string
	sent    []OutMedia
	groups  [][]OutMedia
	deleted []int

	mediaErr func(item OutMedia) error
	groupErr func(items []OutMedia) error
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return len(m.texts), nil
}

func (m *fakeMessenger) SendMedia(ctx context.Context, chatID int64, item OutMedia) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mediaErr != nil {
		if err := m.mediaErr(item); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, item)
	return nil
}

func (m *fakeMessenger) SendMediaGroup(ctx context.Context, chatID int64, items []OutMedia) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groupErr != nil {
		if err := m.groupErr(items); err != nil {
			return err
		}
	}
	m.groups = append(m.groups, items)
	return nil
}

func (m *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, msgID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, msgID)
	return nil
}

type escalation struct {
	errContext string
	err        error
}

type fakeNotifier struct {
	mu          sync.Mutex
	escalations []escalation
}

func (n *fakeNotifier) NotifyError(ctx context.Context, errContext string, chatID int64, username, request string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.escalations = append(n.escalations, escalation{errContext: errContext, err: err})
}

type downloadRecord struct {
	platform  string
	mediaKind string
	success   bool
}

type fakeLedger struct {
	mu        sync.Mutex
	downloads []downloadRecord
	errors    []string
}

func (l *fakeLedger) RecordDownload(ctx context.Context, chatID int64, username, request, platform, mediaKind string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.downloads = append(l.downloads, downloadRecord{platform: platform, mediaKind: mediaKind, success: success})
}

func (l *fakeLedger) RecordError(ctx context.Context, chatID int64, username, errContext, message, original string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, errContext)
}

func newTestDeliverer(msg *fakeMessenger, n *fakeNotifier, l *fakeLedger, fetch func(ctx context.Context, url string) ([]byte, error)) *Deliverer {
	d := NewDeliverer(msg, n, l, nil)
	d.fetch = fetch
	d.groupDelay = 0
	d.itemDelay = 0
	return d
}

func fetchFixed(size int) func(ctx context.Context, url string) ([]byte, error) {
	return func(ctx context.Context, url string) ([]byte, error) {
		return make([]byte, size), nil
	}
}

var testTarget = Target{ChatID: 100, Username: "someone", Request: "https://example.com/post"}

func videoItems(n int) []media.Item {
	items := make([]media.Item, n)
	for i := range items {
		items[i] = media.Item{Kind: media.KindVideo, URL: fmt.Sprintf("https://cdn.example.com/v%d.mp4", i)}
	}
	return items
}

func photoItems(n int) []media.Item {
	items := make([]media.Item, n)
	for i := range items {
		items[i] = media.Item{Kind: media.KindPhoto, URL: fmt.Sprintf("https://cdn.example.com/p%d.jpg", i)}
	}
	return items
}

func TestDeliverOne(t *testing.T) {
	msg := &fakeMessenger{}
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{}
	d := newTestDeliverer(msg, notifier, ledger, fetchFixed(1024))

	status := d.DeliverOne(context.Background(), testTarget, videoItems(1)[0], "@tag")
	if status != DeliveredOK {
		t.Fatalf("status = %v, want DeliveredOK", status)
	}
	if len(msg.sent) != 1 {
		t.Fatalf("sent %d media, want 1", len(msg.sent))
	}
	if msg.sent[0].Caption != "@tag" {
		t.Errorf("caption = %q, want %q", msg.sent[0].Caption, "@tag")
	}
	if len(notifier.escalations) != 0 {
		t.Errorf("unexpected escalations: %v", notifier.escalations)
	}
}

func TestDeliverOneTooLargeFetch(t *testing.T) {
	msg := &fakeMessenger{}
	notifier := &fakeNotifier{}
	d := newTestDeliverer(msg, notifier, &fakeLedger{}, func(ctx context.Context, url string) ([]byte, error) {
		return nil, &dlutil.TooLargeError{Size: 60000000}
	})

	status := d.DeliverOne(context.Background(), testTarget, videoItems(1)[0], "")
	if status != DeliveredTooLarge {
		t.Fatalf("status = %v, want DeliveredTooLarge", status)
	}
	if len(msg.sent) != 0 {
		t.Error("media sent despite oversized fetch")
	}
	if len(msg.texts) != 1 {
		t.Fatalf("sent %d texts, want 1 size notice", len(msg.texts))
	}
	// Expected condition: never escalated to operators.
	if len(notifier.escalations) != 0 {
		t.Errorf("unexpected escalations: %v", notifier.escalations)
	}
}

func TestDeliverOneBlocked(t *testing.T) {
	msg := &fakeMessenger{
		mediaErr: func(OutMedia) error { return errors.New("telegram: bot was blocked by the user") },
	}
	notifier := &fakeNotifier{}
	d := newTestDeliverer(msg, notifier, &fakeLedger{}, fetchFixed(1024))

	status := d.DeliverOne(context.Background(), testTarget, photoItems(1)[0], "")
	if status != DeliveredBlocked {
		t.Fatalf("status = %v, want DeliveredBlocked", status)
	}
	if len(msg.texts) != 0 {
		t.Error("sent a notice to an unreachable recipient")
	}
	if len(notifier.escalations) != 0 {
		t.Errorf("unexpected escalations: %v", notifier.escalations)
	}
}

func TestDeliverOneNoSource(t *testing.T) {
	msg := &fakeMessenger{}
	notifier := &fakeNotifier{}
	ledger := &fakeLedger{}
	d := newTestDeliverer(msg, notifier, ledger, fetchFixed(1024))

	status := d.DeliverOne(context.Background(), testTarget, media.Item{Kind: media.KindVideo}, "")
	if status != DeliveredError {
		t.Fatalf("status = %v, want DeliveredError", status)
	}
	if len(notifier.escalations) != 1 || notifier.escalations[0].errContext != "media check" {
		t.Fatalf("escalations = %v, want one with context %q", notifier.escalations, "media check")
	}
	if len(ledger.errors) != 1 {
		t.Errorf("recorded %d ledger errors, want 1", len(ledger.errors))
	}
}

func TestDeliverBatchChunking(t *testing.T) {
	msg := &fakeMessenger{}
	d := newTestDeliverer(msg, &fakeNotifier{}, &fakeLedger{}, fetchFixed(1024))

	ok := d.DeliverBatch(context.Background(), testTarget, videoItems(7), media.KindVideo, "@tag")
	if !ok {
		t.Fatal("DeliverBatch = false, want true")
	}
	if len(msg.groups) != 3 {
		t.Fatalf("sent %d groups, want 3", len(msg.groups))
	}
	wantSizes := []int{3, 3, 1}
	for i, g := range msg.groups {
		if len(g) != wantSizes[i] {
			t.Errorf("group %d has %d items, want %d", i, len(g), wantSizes[i])
		}
	}
	// Branding caption only on the first item of the first group.
	for gi, g := range msg.groups {
		for ii, item := range g {
			want := ""
			if gi == 0 && ii == 0 {
				want = "@tag"
			}
			if item.Caption != want {
				t.Errorf("group %d item %d caption = %q, want %q", gi, ii, item.Caption, want)
			}
		}
	}
}

func TestDeliverBatchPhotoChunking(t *testing.T) {
	msg := &fakeMessenger{}
	d := newTestDeliverer(msg, &fakeNotifier{}, &fakeLedger{}, fetchFixed(1024))

	if ok := d.DeliverBatch(context.Background(), testTarget, photoItems(12), media.KindPhoto, ""); !ok {
		t.Fatal("DeliverBatch = false, want true")
	}
	if len(msg.groups) != 2 || len(msg.groups[0]) != 10 || len(msg.groups[1]) != 2 {
		t.Fatalf("groups = %d sizes, want [10 2]", len(msg.groups))
	}
}

func TestDeliverBatchAggregateFallback(t *testing.T) {
	msg := &fakeMessenger{}
	// Three 15 MiB photos: 45 MiB aggregate exceeds the album ceiling, so
	// the group must go out as individual sends.
	d := newTestDeliverer(msg, &fakeNotifier{}, &fakeLedger{}, fetchFixed(15<<20))

	if ok := d.DeliverBatch(context.Background(), testTarget, photoItems(3), media.KindPhoto, ""); !ok {
		t.Fatal("DeliverBatch = false, want true")
	}
	if len(msg.groups) != 0 {
		t.Errorf("issued %d grouped calls over the aggregate ceiling", len(msg.groups))
	}
	if len(msg.sent) != 3 {
		t.Errorf("sent %d individual items, want 3", len(msg.sent))
	}
}

func TestDeliverBatchTransportTooLargeFallback(t *testing.T) {
	msg := &fakeMessenger{
		groupErr: func([]OutMedia) error { return errors.New("telegram: 413 Request Entity Too Large") },
	}
	notifier := &fakeNotifier{}
	d := newTestDeliverer(msg, notifier, &fakeLedger{}, fetchFixed(1024))

	if ok := d.DeliverBatch(context.Background(), testTarget, videoItems(3), media.KindVideo, ""); !ok {
		t.Fatal("DeliverBatch = false, want true after per-item fallback")
	}
	if len(msg.sent) != 3 {
		t.Errorf("fallback sent %d items, want 3", len(msg.sent))
	}
	if len(notifier.escalations) != 0 {
		t.Errorf("oversized group rejection escalated: %v", notifier.escalations)
	}
}

func TestDeliverBatchUnreachableStops(t *testing.T) {
	msg := &fakeMessenger{
		groupErr: func([]OutMedia) error { return errors.New("telegram: chat not found") },
	}
	notifier := &fakeNotifier{}
	d := newTestDeliverer(msg, notifier, &fakeLedger{}, fetchFixed(1024))

	if ok := d.DeliverBatch(context.Background(), testTarget, videoItems(6), media.KindVideo, ""); ok {
		t.Fatal("DeliverBatch = true for an unreachable recipient")
	}
	if len(msg.sent) != 0 || len(msg.texts) != 0 {
		t.Error("kept sending after recipient became unreachable")
	}
	if len(notifier.escalations) != 0 {
		t.Errorf("unreachable recipient escalated: %v", notifier.escalations)
	}
}

func TestDeliverBatchFetchTooLargeIsFatal(t *testing.T) {
	msg := &fakeMessenger{}
	notifier := &fakeNotifier{}
	d := newTestDeliverer(msg, notifier, &fakeLedger{}, func(ctx context.Context, url string) ([]byte, error) {
		return nil, &dlutil.TooLargeError{Size: 60000000}
	})

	if ok := d.DeliverBatch(context.Background(), testTarget, videoItems(6), media.KindVideo, ""); ok {
		t.Fatal("DeliverBatch = true, want false")
	}
	if len(msg.groups) != 0 || len(msg.sent) != 0 {
		t.Error("media sent despite oversized fetch")
	}
	if len(msg.texts) != 1 {
		t.Fatalf("sent %d texts, want 1 size notice", len(msg.texts))
	}
	if len(notifier.escalations) != 0 {
		t.Errorf("unexpected escalations: %v", notifier.escalations)
	}
}

func TestDeliverBatchSkipsFailedItems(t *testing.T) {
	msg := &fakeMessenger{}
	d := newTestDeliverer(msg, &fakeNotifier{}, &fakeLedger{}, func(ctx context.Context, url string) ([]byte, error) {
		if url == "https://cdn.example.com/p0.jpg" {
			return nil, errors.New("connection reset")
		}
		return make([]byte, 1024), nil
	})

	if ok := d.DeliverBatch(context.Background(), testTarget, photoItems(2), media.KindPhoto, ""); !ok {
		t.Fatal("DeliverBatch = false, want true")
	}
	if len(msg.groups) != 1 || len(msg.groups[0]) != 1 {
		t.Fatalf("groups = %v, want one group with the surviving item", msg.groups)
	}
}

func TestDeliverBatchNothingToDo(t *testing.T) {
	msg := &fakeMessenger{}
	d := newTestDeliverer(msg, &fakeNotifier{}, &fakeLedger{}, fetchFixed(1024))

	if ok := d.DeliverBatch(context.Background(), testTarget, videoItems(3), media.KindPhoto, ""); ok {
		t.Fatal("DeliverBatch = true with no items of the requested kind")
	}
	if ok := d.DeliverBatch(context.Background(), testTarget, nil, media.KindVideo, ""); ok {
		t.Fatal("DeliverBatch = true with no items at all")
	}
}
