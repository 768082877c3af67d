// Package session provides cookie-keyed, in-memory request sessions.
//
// Session state replaces the ambient per-request globals of the legacy
// storefront: every handler receives an explicit *Session looked up from the
// request cookie. Sessions expire after a TTL and are evicted by a background
// sweep.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpro/storefront/internal/domain/cart"
	"github.com/taskpro/storefront/internal/domain/checkout"
	"github.com/taskpro/storefront/internal/domain/order"
)

// CookieName is the session cookie set on every storefront response.
const CookieName = "storefront_session"

// Session is one browser session's mutable state.
type Session struct {
	ID string

	// Cart maps product name to quantity.
	Cart cart.Cart

	// Address is the shipping address captured at checkout.
	Address *order.Address

	// Invoice is the pre-payment snapshot produced by checkout and consumed
	// by payment confirmation.
	Invoice *checkout.Invoice

	// CustomerEmail is set after a customer login.
	CustomerEmail string

	// OwnerEmail is set after an owner-console login.
	OwnerEmail string

	expiresAt time.Time
}

// Manager owns all live sessions.
type Manager struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. Call StartCleanup to evict expired
// sessions in the background.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the request, creating one (and setting the
// cookie on w) when the request carries no valid session.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, err := r.Cookie(CookieName); err == nil {
		if s, ok := m.sessions[c.Value]; ok && now.Before(s.expiresAt) {
			s.expiresAt = now.Add(m.ttl)
			return s
		}
	}

	s := &Session{
		ID:        uuid.New().String(),
		Cart:      cart.New(),
		expiresAt: now.Add(m.ttl),
	}
	m.sessions[s.ID] = s

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Lookup returns the session for the request without creating one.
func (m *Manager) Lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[c.Value]
	if !ok || time.Now().After(s.expiresAt) {
		return nil, false
	}
	return s, true
}

// Destroy drops the request's session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return
	}

	m.mu.Lock()
	delete(m.sessions, c.Value)
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// StartCleanup launches a goroutine that evicts expired sessions every
// interval. It stops when ctx is cancelled.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.evict(now)
			}
		}
	}()
}

func (m *Manager) evict(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
