// Package session implements server-side sessions with a sliding idle
// timeout. The cookie holds a signed token pointing at a session record;
// the store is authoritative, so logout and expiry take effect immediately
// regardless of what the cookie claims.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
)

// DefaultIdleTimeout matches the reference deployment.
const DefaultIdleTimeout = 20 * time.Minute

// Session is the server-side record of an authenticated principal.
type Session struct {
	ID          string
	UserID      int64
	Name        string
	Role        models.Role
	CompanyID   *int64
	CompanyName string
	CreatedAt   time.Time
	ExpiresAt   time.Time // last activity + idle timeout
}

// Store persists sessions keyed by id. Find must return (nil, nil) for
// absent or expired sessions; callers treat both the same way.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Find(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// Manager turns login results into sessions and request tokens back into
// principals.
type Manager struct {
	store  Store
	secret string
	idle   time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewManager(store Store, secret string, idle time.Duration, log zerolog.Logger) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{store: store, secret: secret, idle: idle, log: log, now: time.Now}
}

// Establish creates a session for the user and returns the signed token to
// put in the cookie.
func (m *Manager) Establish(ctx context.Context, u *models.User) (string, error) {
	now := m.now()
	s := &Session{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		Name:        u.Name,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.idle),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", err
	}
	// The JWT lifetime is generous on purpose; the store's sliding window
	// is what actually ends the session.
	return utils.SignJWT(m.secret, s.ID, u.ID, 24*time.Hour)
}

// Principal resolves a request token to a principal. It never fails: any
// missing, invalid or expired token yields the guest principal. Valid
// lookups slide the session's expiry forward.
func (m *Manager) Principal(ctx context.Context, token string) models.Principal {
	if token == "" {
		return models.Guest()
	}
	claims, err := utils.ParseJWT(m.secret, token)
	if err != nil {
		return models.Guest()
	}
	s, err := m.store.Find(ctx, claims.SessionID)
	if err != nil {
		m.log.Error().Err(err).Msg("session lookup failed")
		return models.Guest()
	}
	if s == nil || s.UserID != claims.UserID {
		return models.Guest()
	}
	if err := m.store.Touch(ctx, s.ID, m.now().Add(m.idle)); err != nil {
		m.log.Warn().Err(err).Str("sid", s.ID).Msg("session touch failed")
	}
	return models.Principal{
		UserID:      s.UserID,
		Name:        s.Name,
		Role:        s.Role,
		CompanyID:   s.CompanyID,
		CompanyName: s.CompanyName,
	}
}

// Logout destroys the session behind the token. Idempotent: unknown or
// already-expired tokens are a no-op.
func (m *Manager) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := utils.ParseJWT(m.secret, token)
	if err != nil {
		return
	}
	if err := m.store.Delete(ctx, claims.SessionID); err != nil {
		m.log.Warn().Err(err).Msg("session delete failed")
	}
}

// IdleTimeout reports the configured idle window.
func (m *Manager) IdleTimeout() time.Duration { return m.idle }
