package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/USSTM/courier-console/internal/cache"
	"github.com/USSTM/courier-console/internal/logging"
)

// Reconciler owns one user's notification view: the live set fed by the push
// channel and the fetched page held in the cache.
//
// Every fetch is tagged with a sequence number. A fetch response is cached
// only when nothing newer (a later fetch, or a mutation acknowledged after the
// fetch was issued) has been applied in the meantime.
type Reconciler struct {
	userID  string
	backend Backend
	store   cache.Store
	// oldest live items are dropped beyond this; zero means no limit
	liveLimit int

	mu       sync.Mutex
	live     []Notification
	issued   uint64
	applied  uint64
	inflight map[uint64]struct{}
	// issued counter at the time each read mutation was acknowledged,
	// kept only while an older fetch is still in flight
	ackedRead map[string]uint64
	ackedAll  uint64
}

func NewReconciler(userID string, backend Backend, store cache.Store) *Reconciler {
	return &Reconciler{
		userID:    userID,
		backend:   backend,
		store:     store,
		inflight:  make(map[uint64]struct{}),
		ackedRead: make(map[string]uint64),
	}
}

func (r *Reconciler) cacheKey() string {
	return fmt.Sprintf("notifications:%s:fetched", r.userID)
}

// AddNotification accepts an item into the live set. An existing live entry
// with the same ID is replaced in place.
func (r *Reconciler) AddNotification(n Notification) error {
	if n.ID == "" {
		return ErrInvalidNotification
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.live {
		if r.live[i].ID == n.ID {
			r.live[i] = n
			return nil
		}
	}
	r.live = append(r.live, n)
	if r.liveLimit > 0 && len(r.live) > r.liveLimit {
		r.live = append([]Notification(nil), r.live[len(r.live)-r.liveLimit:]...)
	}
	return nil
}

// Live returns a copy of the live set in push order.
func (r *Reconciler) Live() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification{}, r.live...)
}

// Fetch pulls a page from the backend and stores it as the fetched set.
// When the response is older than applied state it is not cached, and the
// page is returned together with ErrSuperseded. Read marks acknowledged after
// the fetch was issued are applied to that page.
func (r *Reconciler) Fetch(ctx context.Context, page, pageSize int) (Page, error) {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.inflight[seq] = struct{}{}
	r.mu.Unlock()

	p, err := r.backend.ListNotifications(ctx, page, pageSize)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, seq)
	defer r.pruneAcked()

	if err != nil {
		return Page{}, fmt.Errorf("fetching notifications page %d: %w", page, err)
	}
	if p.Items == nil {
		p.Items = []Notification{}
	}

	if seq <= r.applied {
		logging.Debug("superseded notification page not cached",
			"user_id", r.userID, "seq", seq, "applied", r.applied)
		for i := range p.Items {
			if r.ackedAll >= seq || r.ackedRead[p.Items[i].ID] >= seq {
				p.Items[i].Read = true
			}
		}
		return p, ErrSuperseded
	}
	r.applied = seq

	if err := r.savePage(ctx, p); err != nil {
		return Page{}, err
	}
	return p, nil
}

// MergeWith returns the live set merged with items, for a page that is not
// the cached one.
func (r *Reconciler) MergeWith(items []Notification) []Notification {
	return Merge(r.Live(), items)
}

// callers hold r.mu
func (r *Reconciler) pruneAcked() {
	if len(r.inflight) == 0 {
		clear(r.ackedRead)
		r.ackedAll = 0
		return
	}
	oldest := r.issued
	for seq := range r.inflight {
		oldest = min(oldest, seq)
	}
	for id, at := range r.ackedRead {
		if at < oldest {
			delete(r.ackedRead, id)
		}
	}
}

// Fetched returns the cached page, or an empty page when nothing was fetched.
func (r *Reconciler) Fetched(ctx context.Context) (Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadPage(ctx)
}

// Merged returns the deduplicated live + fetched view.
func (r *Reconciler) Merged(ctx context.Context) ([]Notification, error) {
	live := r.Live()
	fetched, err := r.Fetched(ctx)
	if err != nil {
		return nil, err
	}
	return Merge(live, fetched.Items), nil
}

func (r *Reconciler) UnreadCount(ctx context.Context) (int, error) {
	merged, err := r.Merged(ctx)
	if err != nil {
		return 0, err
	}
	return CountUnread(merged), nil
}

// MarkAsRead sends one read mutation for id. Only after the backend
// acknowledges it is the cached fetched entry rewritten to read; on rejection
// the cache is untouched and the error returned. The live set is never
// modified here.
func (r *Reconciler) MarkAsRead(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidNotification
	}

	if err := r.backend.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}

	r.applyAcknowledged(ctx, id, func(n *Notification) bool { return n.ID == id })
	return nil
}

// MarkAllAsRead sends one bulk mutation and, once acknowledged, marks every
// cached fetched entry read.
func (r *Reconciler) MarkAllAsRead(ctx context.Context) error {
	if err := r.backend.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("marking all notifications as read: %w", err)
	}

	r.applyAcknowledged(ctx, "", func(*Notification) bool { return true })
	return nil
}

// The backend already holds the new state, so cache failures here are logged
// rather than reported as a failed mutation. An empty id means every
// notification was marked.
func (r *Reconciler) applyAcknowledged(ctx context.Context, id string, match func(*Notification) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// fetches issued before the acknowledgment may carry the old read flag
	r.applied = r.issued
	if len(r.inflight) > 0 {
		if id == "" {
			r.ackedAll = r.issued
		} else {
			r.ackedRead[id] = r.issued
		}
	}

	p, err := r.loadPage(ctx)
	if err != nil {
		logging.Warn("failed to load cached notifications after mutation", "user_id", r.userID, "error", err)
		return
	}

	changed := false
	for i := range p.Items {
		if match(&p.Items[i]) && !p.Items[i].Read {
			p.Items[i].Read = true
			changed = true
		}
	}
	if !changed {
		return
	}

	if err := r.savePage(ctx, p); err != nil {
		logging.Warn("failed to update cached notifications after mutation", "user_id", r.userID, "error", err)
	}
}

// callers hold r.mu
func (r *Reconciler) loadPage(ctx context.Context) (Page, error) {
	raw, err := r.store.Get(ctx, r.cacheKey())
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return Page{Items: []Notification{}}, nil
		}
		return Page{}, fmt.Errorf("reading notification cache: %w", err)
	}

	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return Page{}, fmt.Errorf("decoding notification cache: %w", err)
	}
	if p.Items == nil {
		p.Items = []Notification{}
	}
	return p, nil
}

// callers hold r.mu
func (r *Reconciler) savePage(ctx context.Context, p Page) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding notification cache: %w", err)
	}
	if err := r.store.Set(ctx, r.cacheKey(), raw); err != nil {
		return fmt.Errorf("writing notification cache: %w", err)
	}
	return nil
}
