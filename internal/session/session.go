// internal/session/session.go
//
// Browser sessions for the chart host.
//
// Context
//   Every browser talking to the host owns one Session: a uuid identity
//   (carried in the “charts_session” cookie), the user-seeded session State,
//   and a private widget.Registry.  Keeping the registry per session is what
//   keeps concurrent users from ever observing each other's tracked values.
//
// Workflow
//   •  Manager.Ensure returns the cookie's session or creates one and sets
//      the cookie.
//   •  Session.Exclusive serialises execution cycles and widget events for
//      one session; different sessions run in parallel.
//   •  A background evictor drops sessions idle longer than the TTL.
//
//------------------------------------------------------------------------------

package session

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/adept-charts/internal/metrics"
	"github.com/yanizio/adept-charts/internal/widget"
)

const (
	cookieName    = "charts_session"
	evictInterval = time.Minute
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is one browser's server-side state.
type Session struct {
	ID      string
	State   *State
	Widgets *widget.Registry

	runMu    sync.Mutex
	lastSeen int64 // UnixNano
}

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		State:    NewState(),
		Widgets:  widget.NewRegistry(),
		lastSeen: time.Now().UnixNano(),
	}
}

// Exclusive runs fn while holding the session's cycle lock.
func (s *Session) Exclusive(fn func() error) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.touch()
	return fn()
}

func (s *Session) touch() { atomic.StoreInt64(&s.lastSeen, time.Now().UnixNano()) }

// Manager owns every live session.
type Manager struct {
	m       sync.Map // id → *Session
	idleTTL time.Duration
	ticker  *time.Ticker
	done    chan struct{}
	once    sync.Once
}

// NewManager starts a Manager with a background idle evictor.  idleTTL <= 0
// disables eviction.
func NewManager(idleTTL time.Duration) *Manager {
	m := &Manager{idleTTL: idleTTL, done: make(chan struct{})}
	if idleTTL > 0 {
		m.ticker = time.NewTicker(evictInterval)
		go m.evictLoop()
	}
	return m
}

// Create registers a fresh session.
func (m *Manager) Create() *Session {
	s := newSession()
	m.m.Store(s.ID, s)
	metrics.ActiveSessions.Inc()
	return s
}

// Get returns the session for id.
func (m *Manager) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	v, ok := m.m.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(*Session)
	s.touch()
	return s, nil
}

// FromRequest resolves the session named by the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}
	return m.Get(c.Value)
}

// Ensure returns the request's session, creating one (and setting the
// cookie on w) when the request has none or an expired one.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	if s, err := m.FromRequest(r); err == nil {
		return s
	}
	s := m.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	zap.S().Debugw("session created", "session", s.ID)
	return s
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	n := 0
	m.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Evict drops sessions idle longer than the TTL as of now and returns how
// many were removed.
func (m *Manager) Evict(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}
	removed := 0
	m.m.Range(func(key, value any) bool {
		s := value.(*Session)
		idle := now.Sub(time.Unix(0, atomic.LoadInt64(&s.lastSeen)))
		if idle > m.idleTTL {
			m.m.Delete(key)
			removed++
			metrics.ActiveSessions.Dec()
			zap.S().Debugw("session evicted", "session", key, "idle", idle.Truncate(time.Second))
		}
		return true
	})
	return removed
}

// Close stops the evictor.
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.done)
		if m.ticker != nil {
			m.ticker.Stop()
		}
	})
}

func (m *Manager) evictLoop() {
	for {
		select {
		case <-m.done:
			return
		case now := <-m.ticker.C:
			m.Evict(now)
		}
	}
}
