// Package ratelimit throttles per-user requests with two independent
// policies: a strict sliding-window count for ordinary requests and a fixed
// cooldown for story requests. State lives in process memory only and is
// swept periodically to bound growth.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	sweepInterval = 5 * time.Minute
	windowIdleTTL = 5 * time.Minute
)

type Config struct {
	Requests      int
	Window        time.Duration
	StoryCooldown time.Duration
}

type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type window struct {
	requests []time.Time
	touched  time.Time
}

type Service struct {
	cfg Config

	mu        sync.Mutex
	windows   map[int64]*window
	cooldowns map[int64]time.Time

	now func() time.Time
}

func New(cfg Config) *Service {
	return &Service{
		cfg:       cfg,
		windows:   make(map[int64]*window),
		cooldowns: make(map[int64]time.Time),
		now:       time.Now,
	}
}

// AllowRequest applies the sliding-window policy: at most cfg.Requests
// admissions inside any trailing cfg.Window. On denial ResetAt is the
// instant the oldest remaining admission leaves the window.
func (s *Service) AllowRequest(userID int64) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w := s.windows[userID]
	if w == nil {
		w = &window{}
		s.windows[userID] = w
	}
	w.touched = now

	kept := w.requests[:0]
	for _, ts := range w.requests {
		if now.Sub(ts) < s.cfg.Window {
			kept = append(kept, ts)
		}
	}
	w.requests = kept

	if len(w.requests) >= s.cfg.Requests {
		oldest := w.requests[0]
		for _, ts := range w.requests[1:] {
			if ts.Before(oldest) {
				oldest = ts
			}
		}
		return Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   oldest.Add(s.cfg.Window),
		}
	}

	w.requests = append(w.requests, now)
	return Decision{
		Allowed:   true,
		Remaining: s.cfg.Requests - len(w.requests),
		ResetAt:   now.Add(s.cfg.Window),
	}
}

// AllowStory applies the fixed-cooldown policy: one admission per
// cfg.StoryCooldown per user. Admins are always admitted and leave no state.
func (s *Service) AllowStory(userID int64, admin bool) Decision {
	if admin {
		return Decision{Allowed: true}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.cooldowns[userID]; ok && now.Sub(last) < s.cfg.StoryCooldown {
		return Decision{
			Allowed: false,
			ResetAt: last.Add(s.cfg.StoryCooldown),
		}
	}
	s.cooldowns[userID] = now
	return Decision{
		Allowed: true,
		ResetAt: now.Add(s.cfg.StoryCooldown),
	}
}

// Run sweeps stale entries until ctx is done. Eviction only bounds memory:
// it never denies a request that would otherwise be allowed.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := s.sweep(s.now())
			if evicted > 0 {
				log.FromContext(ctx).Debug("Swept rate limiter state", "evicted", evicted)
			}
		}
	}
}

func (s *Service) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, w := range s.windows {
		if now.Sub(w.touched) > windowIdleTTL {
			delete(s.windows, userID)
			evicted++
		}
	}
	for userID, last := range s.cooldowns {
		if now.Sub(last) > s.cfg.StoryCooldown {
			delete(s.cooldowns, userID)
			evicted++
		}
	}
	return evicted
}
