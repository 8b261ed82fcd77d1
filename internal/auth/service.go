// Package auth signs administrators in and out and verifies their sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/store"
)

// Errors returned by Service.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// Session is a signed-in administrator.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

// EventKind distinguishes session events.
type EventKind int

// Session event kinds.
const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Event is delivered to OnSessionChange subscribers.
type Event struct {
	Kind    EventKind
	Session Session
}

// Service implements email/password sign-in with JWT sessions.
type Service struct {
	db     *db.DB
	secret string
	clock  clock.Clock

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewService creates an auth service.
func NewService(database *db.DB, secret string, c clock.Clock) *Service {
	return &Service{
		db:     database,
		secret: secret,
		clock:  c,
		subs:   make(map[int]func(Event)),
	}
}

// SignIn checks credentials and issues a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := store.GetUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := GenerateToken(s.secret, user.ID, user.Email, s.clock.Now())
	if err != nil {
		return nil, err
	}

	sess := Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	s.publish(Event{Kind: SignedIn, Session: sess})
	return &sess, nil
}

// Verify validates a session token, checks it has not been revoked and that
// its administrator still exists.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := ValidateToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID != "" {
		revoked, err := store.IsTokenRevoked(ctx, s.db, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidSession
		}
	}

	user, err := store.GetUser(ctx, s.db, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.DeletedAt != nil {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// SignOut revokes the session token. Invalid tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := ValidateToken(s.secret, token)
	if err != nil {
		return nil
	}
	if claims.ID != "" && claims.ExpiresAt != nil {
		if err := store.RevokeToken(ctx, s.db, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}

	sess := Session{Token: token, UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	s.publish(Event{Kind: SignedOut, Session: sess})
	return nil
}

// OnSessionChange registers fn for sign-in and sign-out events and returns a
// function that removes the subscription. fn runs synchronously on the
// signing goroutine and must not block.
func (s *Service) OnSessionChange(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) publish(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// LogSessions records session events in the audit log.
func LogSessions(s *Service) (unsubscribe func()) {
	return s.OnSessionChange(func(ev Event) {
		slog.Info("session changed", "event", ev.Kind.String(), "user", ev.Session.Email)
	})
}
