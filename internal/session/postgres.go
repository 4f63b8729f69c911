package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

// PostgresStore persists sessions so logins survive API restarts and can be
// shared across instances.
type PostgresStore struct{ db *pgxpool.Pool }

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, name, role, company_id, company_name, created_at, expires_at)
		VALUES ($1,$2,$3,$4::role,$5,$6,$7,$8)`,
		sess.ID, sess.UserID, sess.Name, sess.Role.String(), sess.CompanyID, sess.CompanyName,
		sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id string) (*Session, error) {
	var (
		sess    Session
		roleStr string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, role::text, company_id, company_name, created_at, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`, id).
		Scan(&sess.ID, &sess.UserID, &sess.Name, &roleStr, &sess.CompanyID, &sess.CompanyName,
			&sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}
	sess.Role = role
	return &sess, nil
}

func (s *PostgresStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE sessions SET expires_at=$1 WHERE id=$2`, expiresAt, id)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}

// PurgeExpired removes rows past their idle deadline.
func (s *PostgresStore) PurgeExpired(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	return err
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*MemoryStore)(nil)
