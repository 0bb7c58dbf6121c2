package httpapi

import (
	"context"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/cart"
	"github.com/nikolayk812/spicecart/internal/metrics"
	"github.com/nikolayk812/spicecart/internal/notify"
	"github.com/nikolayk812/spicecart/internal/persistence"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"golang.org/x/text/currency"
	"sort"
	"sync"
	"time"
)

const (
	DefaultIdleTTL        = 30 * time.Minute
	DefaultMaxSessions    = 10000
	DefaultHydrateTimeout = 5 * time.Second
)

type SessionsParams struct {
	Store port.KVStore
	// KeyPrefix is joined with the session id to build the storage key.
	KeyPrefix string
	// Fallback, when set, is shared by every session. Left nil, each session
	// owns its own so one shopper's buffered cart never hydrates another's.
	Fallback *persistence.FallbackState
	Notifier port.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.CartMetrics
	Currency currency.Unit

	// IdleTTL drops sessions unused for longer. Their carts rehydrate from
	// the store on the next request.
	IdleTTL time.Duration
	// MaxSessions caps the registry; the least recently used idle sessions
	// go first.
	MaxSessions int
	// HydrateTimeout bounds the first store read of a session. The read
	// outlives a cancelled request.
	HydrateTimeout time.Duration
	Now            func() time.Time
}

func (p SessionsParams) currencyCode() string {
	if p.Currency == (currency.Unit{}) {
		return currency.INR.String()
	}
	return p.Currency.String()
}

// Sessions lazily creates one cart manager per shopping session. Sessions
// that are in use or still hold an unsaved fallback buffer are never evicted.
type Sessions struct {
	params SessionsParams

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id string

	// mu holds a request's operations and the notifications they produce
	// together.
	mu       sync.Mutex
	manager  *cart.Manager
	recorder *notify.Recorder
	adapter  *persistence.Adapter
	hydrated bool

	// guarded by Sessions.mu
	refs     int
	lastUsed time.Time
}

func NewSessions(params SessionsParams) (*Sessions, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if params.KeyPrefix == "" {
		params.KeyPrefix = persistence.DefaultKey
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.IdleTTL <= 0 {
		params.IdleTTL = DefaultIdleTTL
	}
	if params.MaxSessions <= 0 {
		params.MaxSessions = DefaultMaxSessions
	}
	if params.HydrateTimeout <= 0 {
		params.HydrateTimeout = DefaultHydrateTimeout
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Sessions{
		params:   params,
		sessions: make(map[string]*session),
	}, nil
}

// acquire returns the session for id, creating it when needed. It does no
// I/O; the caller locks the session, calls hydrate and finally release.
func (s *Sessions) acquire(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.params.Now()
	sess, ok := s.sessions[id]
	if !ok {
		s.evictLocked(now)

		var err error
		sess, err = s.newSession(id)
		if err != nil {
			return nil, err
		}
		s.sessions[id] = sess
	}
	sess.refs++
	sess.lastUsed = now
	return sess, nil
}

func (s *Sessions) release(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.refs--
	sess.lastUsed = s.params.Now()
}

func (s *Sessions) newSession(id string) (*session, error) {
	recorder := &notify.Recorder{}
	notifier := notify.Multi(s.params.Notifier, recorder)
	adapter := persistence.NewAdapter(s.params.Store, persistence.Options{
		Key:      s.params.KeyPrefix + ":" + id,
		Fallback: s.params.Fallback,
		Notifier: notifier,
		Logger:   s.params.Logger,
		Metrics:  s.params.Metrics,
	})
	manager, err := cart.NewManager(cart.ManagerParams{
		Persister: adapter,
		Notifier:  notifier,
		Metrics:   s.params.Metrics,
		Currency:  s.params.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("cart.NewManager: %w", err)
	}
	return &session{id: id, manager: manager, recorder: recorder, adapter: adapter}, nil
}

// hydrate loads the persisted cart once per session. It must be called with
// sess.mu held. A failed store read leaves the session unhydrated so the
// next request retries instead of overwriting the stored cart.
func (s *Sessions) hydrate(ctx context.Context, sess *session) error {
	if sess.hydrated {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.params.HydrateTimeout)
	defer cancel()

	items, err := sess.adapter.Restore(ctx)
	if err != nil && len(items) == 0 {
		return fmt.Errorf("restore session[%s]: %w", sess.id, err)
	}
	sess.manager.Restore(ctx, items)
	sess.hydrated = true
	return nil
}

// evictLocked drops idle sessions past the TTL, then the least recently used
// idle ones while the registry is at capacity.
func (s *Sessions) evictLocked(now time.Time) {
	var idle []*session
	for id, sess := range s.sessions {
		if !s.evictable(sess) {
			continue
		}
		if now.Sub(sess.lastUsed) > s.params.IdleTTL {
			delete(s.sessions, id)
			continue
		}
		idle = append(idle, sess)
	}

	if len(s.sessions) < s.params.MaxSessions {
		return
	}
	sort.Slice(idle, func(i, j int) bool {
		return idle[i].lastUsed.Before(idle[j].lastUsed)
	})
	for _, sess := range idle {
		if len(s.sessions) < s.params.MaxSessions {
			return
		}
		delete(s.sessions, sess.id)
	}
}

func (s *Sessions) evictable(sess *session) bool {
	return sess.refs == 0 && !sess.adapter.Fallback().Active()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
