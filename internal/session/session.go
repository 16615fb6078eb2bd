package session

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const CookieName = "reviews_session"

var (
	// ErrNoSession and ErrExpired both surface to clients as 401; they are
	// distinguished only so callers can log which case occurred.
	ErrNoSession = errors.New("no active session")
	ErrExpired   = errors.New("session expired")
)

// User holds the identity claims stored for a logged-in client.
type User struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Session is the full credential bundle tracked per client: the claims plus
// a snapshot of the raw token and its validity window.
type Session struct {
	User      User
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Manager keeps sessions in process memory keyed by an opaque ID. The ID
// travels in an HMAC-signed cookie; the signing key is injected at startup,
// never embedded.
type Manager struct {
	codec  *securecookie.SecureCookie
	secure bool

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(secret []byte, secure bool) *Manager {
	return &Manager{
		codec:    securecookie.New(secret, nil),
		secure:   secure,
		sessions: make(map[string]*Session),
	}
}

// Establish overwrites any existing session for this client and sets the
// session cookie.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if id, ok := m.sessionID(r); ok {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}

	id := uuid.NewString()
	encoded, err := m.codec.Encode(CookieName, id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CurrentUser returns the claims for a live session, or nil. An expired
// session is cleared on sight and reported as absent.
func (m *Manager) CurrentUser(w http.ResponseWriter, r *http.Request) *User {
	sess, err := m.RequireUser(w, r)
	if err != nil {
		return nil
	}
	user := sess.User
	return &user
}

// RequireUser returns the full credential bundle for a live session.
// Fails with ErrNoSession or ErrExpired; both map to 401 at the handler.
func (m *Manager) RequireUser(w http.ResponseWriter, r *http.Request) (*Session, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNoSession
	}

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}

	if sess.expired(time.Now().UTC()) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		m.expireCookie(w)
		return nil, ErrExpired
	}

	return sess, nil
}

// Clear discards the session unconditionally.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if id, ok := m.sessionID(r); ok {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}
	m.expireCookie(w)
}

// Sweep drops every expired session. Called periodically by the janitor so
// abandoned sessions do not accumulate.
func (m *Manager) Sweep() int {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor sweeps on the given interval until done is closed.
func (m *Manager) Janitor(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-done:
			return
		}
	}
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	var id string
	if err := m.codec.Decode(CookieName, cookie.Value, &id); err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
