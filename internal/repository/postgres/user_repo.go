package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

const pgErrUniqueViolation = "23505"

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) repository.UserRepository { return &UserRepo{db: db} }

const userCols = `
	u.id, u.email, u.name, u.role::text, u.company_id, COALESCE(c.name, ''), u.active, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u       models.User
		roleStr string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &roleStr, &u.CompanyID, &u.CompanyName,
		&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}
	u.Role = role
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, name, role, company_id, password_hash)
		VALUES ($1,$2,$3::role,$4,$5)
		RETURNING id, active, created_at, updated_at`,
		u.Email, u.Name, u.Role.String(), u.CompanyID, passwordHash).
		Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return apperr.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateWithCompany runs the company upsert and the user insert in one
// transaction so a duplicate email rolls the company creation back too.
func (r *UserRepo) CreateWithCompany(ctx context.Context, u *models.User, passwordHash, companyName string) (*models.Company, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c models.Company
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, created_at`,
		companyName, models.Slugify(companyName)).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create company: %w", err)
	}

	u.CompanyID = &c.ID
	u.CompanyName = c.Name
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, name, role, company_id, password_hash)
		VALUES ($1,$2,$3::role,$4,$5)
		RETURNING id, active, created_at, updated_at`,
		u.Email, u.Name, u.Role.String(), u.CompanyID, passwordHash).
		Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &c, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, string, error) {
	var (
		u       models.User
		roleStr string
		ph      string
	)
	err := r.db.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.role::text, u.company_id, COALESCE(c.name, ''), u.active,
		       u.password_hash, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE u.email=$1`, email).
		Scan(&u.ID, &u.Email, &u.Name, &roleStr, &u.CompanyID, &u.CompanyName, &u.Active,
			&ph, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, "", err
	}
	u.Role = role
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userCols+`
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE u.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+`
		FROM users u
		LEFT JOIN companies c ON c.id = u.company_id
		WHERE u.company_id=$1
		ORDER BY u.name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		UPDATE users u
		SET role=$1::role, updated_at=now()
		FROM companies c
		WHERE u.id=$2 AND c.id = u.company_id
		RETURNING u.id, u.email, u.name, u.role::text, u.company_id, c.name, u.active, u.created_at, u.updated_at`,
		role.String(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
