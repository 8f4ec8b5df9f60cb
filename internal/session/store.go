package session

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/client"
)

// API is the part of the appointment API the store talks to
type API interface {
	Login(ctx context.Context, username, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, payload map[string]any) (map[string]any, error)
	Logout(ctx context.Context) error
}

// cookieCarrier is implemented by APIs whose cookie jar can be persisted
type cookieCarrier interface {
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
}

// Store is the single source of truth for who is logged in. Build one
// with New at startup and hand it to everything that reads the session.
//
// Login and Logout completions are applied in the order they finish; two
// overlapping calls leave whichever result landed last.
type Store struct {
	api       API
	persister Persister
	logger    zerolog.Logger

	mu   sync.RWMutex
	user *User
}

// Option configures a Store
type Option func(*Store)

// WithPersister keeps the session across process restarts
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithLogger sets the store's logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store with no session
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open restores a persisted session, if any. Without a persister it is a
// no-op. A snapshot that cannot be read is logged and ignored.
func (s *Store) Open(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	snap, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to restore session, starting without one")
		return nil
	}
	if snap == nil {
		return nil
	}

	user := snap.User()
	if !user.complete() {
		s.logger.Warn().Msg("Discarding incomplete session snapshot")
		return nil
	}

	if cc, ok := s.api.(cookieCarrier); ok {
		cc.SetCookies(snap.httpCookies())
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Debug().Str("user_id", user.UserID).Str("role", user.Role.String()).Msg("Session restored")
	return nil
}

// Close releases the persister's resources. The in-memory session is
// dropped; a persisted snapshot is left in place.
func (s *Store) Close() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if closer, ok := s.persister.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// CurrentUser returns the logged-in user
func (s *Store) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a session exists
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// Login authenticates against the API and, on success, replaces the
// session. On failure the current session is left as it was.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		f := classify(err, MsgLoginFailed, true)
		s.logger.Warn().Err(err).Str("username", username).Str("kind", f.Kind.String()).Msg("Login failed")
		return failed(f)
	}

	user := userFromLogin(resp)
	if !user.complete() {
		s.logger.Warn().Str("username", username).Msg("Login response is missing role or account id")
		return failed(&Failure{Kind: ErrorKindMalformed, Message: MsgLoginFailed})
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.logger.Info().
		Str("user_id", user.UserID).
		Str("role", user.Role.String()).
		Msg("Logged in")

	s.persist(ctx, user)

	return succeeded(resp.Raw)
}

// Register forwards a registration payload. The session is never touched.
func (s *Store) Register(ctx context.Context, payload map[string]any) Result {
	data, err := s.api.Register(ctx, payload)
	if err != nil {
		f := classify(err, MsgRegistrationFailed, true)
		s.logger.Warn().Err(err).Str("kind", f.Kind.String()).Msg("Registration failed")
		return failed(f)
	}

	s.logger.Info().Msg("Registration accepted")
	return succeeded(data)
}

// Logout ends the remote session and clears the local one. If the remote
// call fails the local session is kept, so the client may keep showing a
// session the server has already dropped.
func (s *Store) Logout(ctx context.Context) Result {
	if err := s.api.Logout(ctx); err != nil {
		f := classify(err, MsgLogoutFailed, false)
		ev := s.logger.Warn().Err(err).Str("kind", f.Kind.String())
		if s.IsAuthenticated() {
			ev = ev.Bool("stale_session", true)
		}
		ev.Msg("Logout failed")
		return failed(f)
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear persisted session")
		}
	}

	s.logger.Info().Msg("Logged out")
	return succeeded(nil)
}

func (s *Store) persist(ctx context.Context, user User) {
	if s.persister == nil {
		return
	}

	var cookies []*http.Cookie
	if cc, ok := s.api.(cookieCarrier); ok {
		cookies = cc.Cookies()
	}

	if err := s.persister.Save(ctx, newSnapshot(user, cookies)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session")
	}
}
