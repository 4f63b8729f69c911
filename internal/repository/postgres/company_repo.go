package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

type CompanyRepo struct{ db *pgxpool.Pool }

func NewCompanyRepo(db *pgxpool.Pool) repository.CompanyRepository { return &CompanyRepo{db: db} }

func (r *CompanyRepo) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, created_at FROM companies WHERE slug=$1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, created_at FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) GetOrCreate(ctx context.Context, name string) (*models.Company, error) {
	var c models.Company
	// Upsert keyed on the unique name; RETURNING works for both branches.
	err := r.db.QueryRow(ctx, `
		INSERT INTO companies (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, slug, created_at`,
		name, models.Slugify(name)).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create company: %w", err)
	}
	return &c, nil
}

func (r *CompanyRepo) Subjects(ctx context.Context, companyID int64) ([]models.FormSubject, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_id, label, created_at
		FROM form_subjects
		WHERE company_id=$1
		ORDER BY label ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FormSubject
	for rows.Next() {
		var s models.FormSubject
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Label, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CompanyRepo) GetSubject(ctx context.Context, id int64) (*models.FormSubject, error) {
	var s models.FormSubject
	err := r.db.QueryRow(ctx, `
		SELECT id, company_id, label, created_at FROM form_subjects WHERE id=$1`, id).
		Scan(&s.ID, &s.CompanyID, &s.Label, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CompanyRepo) AddSubject(ctx context.Context, companyID int64, label string) (*models.FormSubject, error) {
	var s models.FormSubject
	err := r.db.QueryRow(ctx, `
		INSERT INTO form_subjects (company_id, label)
		VALUES ($1,$2)
		RETURNING id, company_id, label, created_at`, companyID, label).
		Scan(&s.ID, &s.CompanyID, &s.Label, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("add subject: %w", err)
	}
	return &s, nil
}

// RemoveSubject deletes the subject row only. Issues keep the label they
// copied at creation; their subject_id goes NULL via the FK.
func (r *CompanyRepo) RemoveSubject(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM form_subjects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
