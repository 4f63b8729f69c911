package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

type IssueRepo struct{ db *pgxpool.Pool }

func NewIssueRepo(db *pgxpool.Pool) repository.IssueRepository { return &IssueRepo{db: db} }

func (r *IssueRepo) Create(ctx context.Context, i *models.Issue) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO issues (company_id, subject_id, subject_label, description, submitter_id, guest_email, state)
		VALUES ($1,$2,$3,$4,$5,$6,$7::issue_state)
		RETURNING id, created_at, updated_at`,
		i.CompanyID, i.SubjectID, i.SubjectLabel, i.Description, i.SubmitterID, i.GuestEmail,
		i.State.String()).
		Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var (
		i        models.Issue
		stateStr string
	)
	if err := row.Scan(&i.ID, &i.CompanyID, &i.SubjectID, &i.SubjectLabel, &i.Description,
		&i.SubmitterID, &i.GuestEmail, &stateStr, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	state, err := models.ParseIssueState(stateStr)
	if err != nil {
		return nil, err
	}
	i.State = state
	return &i, nil
}

const issueCols = `
	id, company_id, subject_id, subject_label, description, submitter_id, guest_email, state::text, created_at, updated_at`

func (r *IssueRepo) Get(ctx context.Context, id int64) (*models.Issue, error) {
	i, err := scanIssue(r.db.QueryRow(ctx, `
		SELECT `+issueCols+` FROM issues WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT iu.id, iu.issue_id, iu.author_id, COALESCE(u.name, ''), iu.sender::text, iu.text, iu.created_at
		FROM issue_updates iu
		LEFT JOIN users u ON u.id = iu.author_id
		WHERE iu.issue_id=$1
		ORDER BY iu.created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			u         models.IssueUpdate
			senderStr string
		)
		if err := rows.Scan(&u.ID, &u.IssueID, &u.AuthorID, &u.AuthorName, &senderStr, &u.Text, &u.CreatedAt); err != nil {
			return nil, err
		}
		sender, err := models.ParseSender(senderStr)
		if err != nil {
			return nil, err
		}
		u.Sender = sender
		i.Updates = append(i.Updates, u)
	}
	return i, rows.Err()
}

func (r *IssueRepo) List(ctx context.Context, f repository.IssueFilter) ([]models.Issue, int, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	clauses := []string{"1=1"}
	args := []any{}
	if f.CompanyID != nil {
		args = append(args, *f.CompanyID)
		clauses = append(clauses, "company_id = $"+itoa(len(args)))
	}
	if f.SubmitterID != nil {
		args = append(args, *f.SubmitterID)
		clauses = append(clauses, "submitter_id = $"+itoa(len(args)))
	}
	if f.State != nil {
		args = append(args, f.State.String())
		clauses = append(clauses, "state = $"+itoa(len(args))+"::issue_state")
	}
	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM issues `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	sql := fmt.Sprintf(`
		SELECT %s
		FROM issues
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, issueCols, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *i)
	}
	return out, total, rows.Err()
}

// AddUpdate inserts the update and bumps the parent's updated_at in one
// transaction; lists and the closed-since report key off that column, so a
// half-applied pair would skew them.
func (r *IssueRepo) AddUpdate(ctx context.Context, u *models.IssueUpdate) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO issue_updates (issue_id, author_id, sender, text)
		VALUES ($1,$2,$3::sender,$4)
		RETURNING id, created_at`,
		u.IssueID, u.AuthorID, u.Sender.String(), u.Text).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("add update: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE issues SET updated_at=now() WHERE id=$1`, u.IssueID); err != nil {
		return fmt.Errorf("touch issue: %w", err)
	}
	return tx.Commit(ctx)
}

// ChangeState runs the legality check and the write in one transaction with
// the row locked, so two concurrent transitions cannot both validate
// against the same starting state.
func (r *IssueRepo) ChangeState(ctx context.Context, id int64, next models.IssueState) (*models.Issue, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stateStr string
	err = tx.QueryRow(ctx, `SELECT state::text FROM issues WHERE id=$1 FOR UPDATE`, id).Scan(&stateStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	current, err := models.ParseIssueState(stateStr)
	if err != nil {
		return nil, err
	}
	if !current.CanTransition(next) {
		return nil, fmt.Errorf("%s -> %s: %w", current, next, apperr.ErrInvalidTransition)
	}

	i, err := scanIssue(tx.QueryRow(ctx, `
		UPDATE issues SET state=$1::issue_state, updated_at=now()
		WHERE id=$2
		RETURNING `+issueCols, next.String(), id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return i, nil
}

func (r *IssueRepo) CountByState(ctx context.Context, companyID int64) (map[models.IssueState]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT state::text, COUNT(*) FROM issues WHERE company_id=$1 GROUP BY state`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.IssueState]int)
	for rows.Next() {
		var (
			stateStr string
			n        int
		)
		if err := rows.Scan(&stateStr, &n); err != nil {
			return nil, err
		}
		state, err := models.ParseIssueState(stateStr)
		if err != nil {
			return nil, err
		}
		out[state] = n
	}
	return out, rows.Err()
}

func (r *IssueRepo) CountClosedSince(ctx context.Context, companyID int64, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM issues
		WHERE company_id=$1 AND state='CLOSED' AND updated_at >= $2`, companyID, since).Scan(&n)
	return n, err
}

// small helper to avoid fmt on hot paths.
func itoa(i int) string { return strconv.Itoa(i) }
