package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hindibooks/storefront/internal/api/metrics"
	"github.com/hindibooks/storefront/internal/core/domain"
	"github.com/hindibooks/storefront/internal/core/ports"
	"github.com/hindibooks/storefront/internal/pkg/token"
)

// SessionService is the single owner of the client session. Readers get
// snapshots or subscribe for changes; only its own operations write.
//
// Overlapping operations are not serialized: they race and the last write
// wins. The UI is expected to block input while Loading is set.
type SessionService struct {
	api    ports.AuthAPI
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	session   domain.Session
	observers map[int]func(domain.Session)
	nextObsID int
}

// NewSessionService returns a service in the Unresolved state.
func NewSessionService(api ports.AuthAPI, logger zerolog.Logger) *SessionService {
	return &SessionService{
		api:       api,
		logger:    logger.With().Str("component", "session").Logger(),
		now:       time.Now,
		session:   domain.Session{State: domain.SessionUnresolved},
		observers: make(map[int]func(domain.Session)),
	}
}

// Snapshot returns a copy of the current session.
func (s *SessionService) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.session)
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *SessionService) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Resolve validates the persisted token, if any, and leaves the session
// Authenticated or Anonymous. Resolution failures are logged, never returned.
func (s *SessionService) Resolve(ctx context.Context) domain.Session {
	s.update(func(sess *domain.Session) { sess.Loading = true })

	raw, err := s.api.RestoreToken(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read persisted token")
		return s.becomeAnonymous("resolve", "")
	}
	if raw == "" {
		return s.becomeAnonymous("resolve", "")
	}

	if token.Expired(raw, s.now()) {
		return s.expire(ctx, fmt.Errorf("%w: token expired locally", domain.ErrAuthExpired))
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return s.expire(ctx, fmt.Errorf("%w: %w", domain.ErrAuthExpired, err))
	}

	return s.becomeAuthenticated(user, "resolve")
}

// Login authenticates with creds and resolves the resulting identity. On
// failure the error is kept on the session and returned.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) error {
	s.update(func(sess *domain.Session) {
		sess.Error = ""
		sess.Loading = true
	})
	return s.login(ctx, creds, "login")
}

// Register creates the account and then performs a full login with the same
// credentials. A successful registration followed by a failed login leaves
// the session Anonymous with the login error.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) error {
	s.update(func(sess *domain.Session) {
		sess.Error = ""
		sess.Loading = true
	})

	if _, err := s.api.Register(ctx, reg); err != nil {
		s.logger.Info().Err(err).Str("username", reg.Username).Msg("registration failed")
		s.update(func(sess *domain.Session) {
			sess.Error = err.Error()
			sess.Loading = false
		})
		return err
	}

	s.logger.Info().Str("username", reg.Username).Msg("user registered")
	return s.login(ctx, reg.Credentials(), "register")
}

// Logout clears token, user and error. It always succeeds; a failure to
// clear the durable token is only logged.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.api.SetToken(ctx, ""); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear persisted token")
	}
	s.becomeAnonymous("logout", "")
}

func (s *SessionService) login(ctx context.Context, creds domain.Credentials, reason string) error {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		if resp != nil {
			// the token reached memory but not durable storage
			s.rollbackToken(ctx)
			s.becomeAnonymous(reason, err.Error())
			return err
		}
		s.logger.Info().Err(err).Str("username", creds.Username).Msg("login rejected")
		s.update(func(sess *domain.Session) {
			sess.Error = err.Error()
			sess.Loading = false
		})
		return err
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", creds.Username).Msg("identity lookup failed after login")
		s.rollbackToken(ctx)
		s.becomeAnonymous(reason, err.Error())
		return err
	}

	s.becomeAuthenticated(user, reason)
	return nil
}

func (s *SessionService) rollbackToken(ctx context.Context) {
	if err := s.api.SetToken(ctx, ""); err != nil {
		s.logger.Error().Err(err).Msg("failed to roll back token")
	}
}

func (s *SessionService) expire(ctx context.Context, cause error) domain.Session {
	s.logger.Info().Err(cause).Msg("persisted session rejected, signing out")
	if err := s.api.SetToken(ctx, ""); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear expired token")
	}
	return s.becomeAnonymous("auth_expired", "")
}

func (s *SessionService) becomeAuthenticated(user *domain.User, reason string) domain.Session {
	u := *user
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.SessionAuthenticated), reason).Inc()
	s.logger.Info().Str("username", u.Username).Str("reason", reason).Msg("session authenticated")
	return s.update(func(sess *domain.Session) {
		sess.State = domain.SessionAuthenticated
		sess.User = &u
		sess.Error = ""
		sess.Loading = false
	})
}

func (s *SessionService) becomeAnonymous(reason, errMsg string) domain.Session {
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.SessionAnonymous), reason).Inc()
	return s.update(func(sess *domain.Session) {
		sess.State = domain.SessionAnonymous
		sess.User = nil
		sess.Error = errMsg
		sess.Loading = false
	})
}

// update applies fn under the lock and notifies observers outside it.
func (s *SessionService) update(fn func(*domain.Session)) domain.Session {
	s.mu.Lock()
	fn(&s.session)
	snap := copySession(s.session)
	observers := make([]func(domain.Session), 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o(copySession(snap))
	}
	return snap
}

func copySession(in domain.Session) domain.Session {
	out := in
	if in.User != nil {
		u := *in.User
		out.User = &u
	}
	return out
}
