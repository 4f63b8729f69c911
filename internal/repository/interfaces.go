package repository

import (
	"context"
	"time"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

type UserRepository interface {
	// Create persists u with the given credential hash. Returns
	// apperr.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *models.User, passwordHash string) error
	// CreateWithCompany attaches u to the named company, creating the
	// company when absent, as one atomic unit. A duplicate email leaves
	// no new company behind.
	CreateWithCompany(ctx context.Context, u *models.User, passwordHash, companyName string) (*models.Company, error)
	// GetByEmail returns (nil, "", nil) when no account matches.
	GetByEmail(ctx context.Context, email string) (*models.User, string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
}

type CompanyRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	// GetOrCreate attaches registration to an existing company by name or
	// creates a fresh one.
	GetOrCreate(ctx context.Context, name string) (*models.Company, error)
	Subjects(ctx context.Context, companyID int64) ([]models.FormSubject, error)
	GetSubject(ctx context.Context, id int64) (*models.FormSubject, error)
	AddSubject(ctx context.Context, companyID int64, label string) (*models.FormSubject, error)
	RemoveSubject(ctx context.Context, id int64) error
}

// IssueFilter narrows ListIssues. Nil fields are ignored.
type IssueFilter struct {
	CompanyID   *int64
	SubmitterID *int64
	State       *models.IssueState
	Limit       int
	Offset      int
}

type IssueRepository interface {
	Create(ctx context.Context, i *models.Issue) error
	// Get loads the issue with its full update history, or (nil, nil).
	Get(ctx context.Context, id int64) (*models.Issue, error)
	List(ctx context.Context, f IssueFilter) ([]models.Issue, int, error)
	AddUpdate(ctx context.Context, u *models.IssueUpdate) error
	// ChangeState validates and applies the transition inside a single
	// transaction so concurrent attempts serialize on the issue row.
	// Returns apperr.ErrInvalidTransition or apperr.ErrNotFound.
	ChangeState(ctx context.Context, id int64, next models.IssueState) (*models.Issue, error)
	CountByState(ctx context.Context, companyID int64) (map[models.IssueState]int, error)
	CountClosedSince(ctx context.Context, companyID int64, since time.Time) (int, error)
}
