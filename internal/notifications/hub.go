package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/USSTM/courier-console/internal/cache"
	"github.com/USSTM/courier-console/internal/logging"
)

var ErrMissingRecipient = errors.New("notification recipient is required")

// Hub keeps one Reconciler per console user and routes pushed events to them.
// Reconcilers untouched for longer than the idle TTL are dropped by Sweep.
type Hub struct {
	backend   Backend
	store     cache.Store
	liveLimit int
	idleTTL   time.Duration
	now       func() time.Time

	mu          sync.Mutex
	reconcilers map[string]*hubEntry
}

type hubEntry struct {
	rec      *Reconciler
	lastSeen time.Time
}

type HubOption func(*Hub)

// WithLiveLimit caps each user's live set, dropping the oldest items first.
func WithLiveLimit(n int) HubOption {
	return func(h *Hub) { h.liveLimit = n }
}

// WithIdleTTL sets how long an unused reconciler survives a sweep.
func WithIdleTTL(d time.Duration) HubOption {
	return func(h *Hub) { h.idleTTL = d }
}

func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

func NewHub(backend Backend, store cache.Store, opts ...HubOption) *Hub {
	h := &Hub{
		backend:     backend,
		store:       store,
		now:         time.Now,
		reconcilers: make(map[string]*hubEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// For returns the user's reconciler, creating it on first use.
func (h *Hub) For(userID string) *Reconciler {
	h.mu.Lock()
	defer h.mu.Unlock()

	e, ok := h.reconcilers[userID]
	if !ok {
		rec := NewReconciler(userID, h.backend, h.store)
		rec.liveLimit = h.liveLimit
		e = &hubEntry{rec: rec}
		h.reconcilers[userID] = e
	}
	e.lastSeen = h.now()
	return e.rec
}

// Deliver adds a pushed notification to the recipient's live set.
func (h *Hub) Deliver(ctx context.Context, recipientID string, n Notification) error {
	if recipientID == "" {
		return ErrMissingRecipient
	}
	if err := h.For(recipientID).AddNotification(n); err != nil {
		return err
	}
	logging.Debug("live notification delivered", "user_id", recipientID, "notification_id", n.ID)
	return nil
}

// Forget drops the user's reconciler and its live set. The fetched page stays
// in the cache store until it expires.
func (h *Hub) Forget(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.reconcilers, userID)
}

// Len reports how many users currently hold a reconciler.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.reconcilers)
}

// Sweep drops reconcilers idle for longer than the idle TTL and returns how
// many were removed. It does nothing without an idle TTL.
func (h *Hub) Sweep() int {
	if h.idleTTL <= 0 {
		return 0
	}
	cutoff := h.now().Add(-h.idleTTL)

	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for userID, e := range h.reconcilers {
		if e.lastSeen.Before(cutoff) {
			delete(h.reconcilers, userID)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) error {
	if h.idleTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := h.Sweep(); n > 0 {
				logging.Info("idle notification reconcilers evicted", "count", n)
			}
		}
	}
}
