package ratelimit

import (
	"testing"
	"time"
)

func newTestService(cfg Config) (*Service, *time.Time) {
	s := New(cfg)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestAllowRequestWindow(t *testing.T) {
	s, now := newTestService(Config{Requests: 5, Window: 60 * time.Second})

	for i := 0; i < 5; i++ {
		d := s.AllowRequest(1)
		if !d.Allowed {
			t.Fatalf("request %d denied", i+1)
		}
		if d.Remaining != 4-i {
			t.Fatalf("request %d remaining = %d, want %d", i+1, d.Remaining, 4-i)
		}
	}

	d := s.AllowRequest(1)
	if d.Allowed {
		t.Fatal("sixth request allowed inside window")
	}
	wantReset := now.Add(60 * time.Second)
	if !d.ResetAt.Equal(wantReset) {
		t.Fatalf("ResetAt = %v, want %v", d.ResetAt, wantReset)
	}

	// A denied attempt must not consume capacity or extend the window.
	*now = now.Add(61 * time.Second)
	d = s.AllowRequest(1)
	if !d.Allowed {
		t.Fatal("request denied after window expired")
	}
	if d.Remaining != 4 {
		t.Fatalf("remaining = %d after full reset, want 4", d.Remaining)
	}
}

func TestAllowRequestSlides(t *testing.T) {
	s, now := newTestService(Config{Requests: 2, Window: 60 * time.Second})

	s.AllowRequest(1)
	*now = now.Add(30 * time.Second)
	s.AllowRequest(1)

	*now = now.Add(20 * time.Second) // t=50: both still inside
	if d := s.AllowRequest(1); d.Allowed {
		t.Fatal("request allowed while window full")
	}

	*now = now.Add(15 * time.Second) // t=65: first entry expired
	d := s.AllowRequest(1)
	if !d.Allowed {
		t.Fatal("request denied after oldest entry slid out")
	}
	if d.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining)
	}
}

func TestAllowRequestPerUser(t *testing.T) {
	s, _ := newTestService(Config{Requests: 1, Window: 60 * time.Second})

	if d := s.AllowRequest(1); !d.Allowed {
		t.Fatal("first user denied")
	}
	if d := s.AllowRequest(1); d.Allowed {
		t.Fatal("first user allowed over limit")
	}
	if d := s.AllowRequest(2); !d.Allowed {
		t.Fatal("second user throttled by first user's window")
	}
}

func TestAllowStoryCooldown(t *testing.T) {
	s, now := newTestService(Config{Requests: 5, Window: time.Minute, StoryCooldown: 180 * time.Second})

	d := s.AllowStory(1, false)
	if !d.Allowed {
		t.Fatal("first story denied")
	}

	*now = now.Add(100 * time.Second)
	d = s.AllowStory(1, false)
	if d.Allowed {
		t.Fatal("story allowed inside cooldown")
	}
	wantReset := now.Add(80 * time.Second)
	if !d.ResetAt.Equal(wantReset) {
		t.Fatalf("ResetAt = %v, want %v", d.ResetAt, wantReset)
	}

	*now = now.Add(81 * time.Second)
	if d := s.AllowStory(1, false); !d.Allowed {
		t.Fatal("story denied after cooldown expired")
	}
}

func TestAllowStoryAdminExempt(t *testing.T) {
	s, _ := newTestService(Config{StoryCooldown: 180 * time.Second})

	for i := 0; i < 3; i++ {
		if d := s.AllowStory(7, true); !d.Allowed {
			t.Fatalf("admin story %d denied", i+1)
		}
	}
	// Admin admissions leave no cooldown behind.
	if _, ok := s.cooldowns[7]; ok {
		t.Fatal("admin admission recorded a cooldown")
	}
}

func TestSweep(t *testing.T) {
	s, now := newTestService(Config{Requests: 5, Window: time.Minute, StoryCooldown: 180 * time.Second})

	s.AllowRequest(1)
	s.AllowStory(2, false)

	*now = now.Add(4 * time.Minute)
	if n := s.sweep(*now); n != 1 {
		t.Fatalf("sweep evicted %d entries at 4m, want 1 (cooldown)", n)
	}

	*now = now.Add(2 * time.Minute)
	if n := s.sweep(*now); n != 1 {
		t.Fatalf("sweep evicted %d entries at 6m, want 1 (window)", n)
	}
	if len(s.windows) != 0 || len(s.cooldowns) != 0 {
		t.Fatal("state left behind after sweeps")
	}
}

func TestSweepDoesNotChangeDecisions(t *testing.T) {
	s, now := newTestService(Config{Requests: 2, Window: time.Minute, StoryCooldown: 180 * time.Second})

	s.AllowRequest(1)
	s.AllowRequest(1)

	// Entries are also dropped lazily on the next call, so sweeping early
	// must be equivalent to not sweeping at all.
	*now = now.Add(2 * time.Minute)
	s.sweep(*now)
	if d := s.AllowRequest(1); !d.Allowed {
		t.Fatal("request denied after idle eviction")
	}
}
