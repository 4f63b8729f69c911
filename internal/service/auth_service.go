package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/metrics"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/notify"
	"github.com/editorjakupi/testning-av-crmsystem/internal/policy"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

// PasswordHasher is the injected one-way credential function.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hashed, pw string) bool
}

// SessionRevoker invalidates all live sessions of a user. Satisfied by the
// session stores.
type SessionRevoker interface {
	DeleteByUser(ctx context.Context, userID int64) error
}

// AuthService owns authentication and account provisioning.
type AuthService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	notifier notify.Notifier
	revoker  SessionRevoker
	stats    *metrics.Collector
	log      zerolog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	notifier notify.Notifier,
	revoker SessionRevoker,
	stats *metrics.Collector,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		notifier: notifier,
		revoker:  revoker,
		stats:    stats,
		log:      log,
	}
}

// Authenticate verifies credentials and returns the account. The same
// ErrInvalidCredentials comes back for unknown email and wrong password so
// callers cannot probe which addresses are registered.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	u, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active || !s.hasher.Verify(hash, password) {
		if s.stats != nil {
			s.stats.RecordLoginFailure()
		}
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a USER-role account, attaching to the named company or
// creating it. Registration is a tenant-public operation (policy rule 1).
func (s *AuthService) Register(ctx context.Context, name, email, password, companyName string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	companyName = strings.TrimSpace(companyName)
	switch {
	case name == "":
		return nil, apperr.Validation("name is required")
	case !strings.Contains(email, "@"):
		return nil, apperr.Validation("email is invalid")
	case len(password) < 8:
		return nil, apperr.Validation("password must be at least 8 characters")
	case companyName == "":
		return nil, apperr.Validation("company name is required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email: email,
		Name:  name,
		Role:  models.RoleUser,
	}
	// One atomic unit: a rejected registration must not leave a fresh
	// company row behind.
	company, err := s.users.CreateWithCompany(ctx, u, hash, companyName)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, notify.Message{
		To:      u.Email,
		Subject: "Welcome to " + company.Name + " support",
		Body:    "Your account has been created. You can now submit and follow issues.",
	}); err != nil {
		s.log.Warn().Err(err).Str("email", u.Email).Msg("welcome notification failed")
	}
	return u, nil
}

// ProvisionEmployee creates an account in the acting principal's own
// company. Elevated tier only; the assignable roles exclude the global
// admin (company binding is forced to the caller's company).
func (s *AuthService) ProvisionEmployee(ctx context.Context, p models.Principal, name, email, password string, role models.Role) (*models.User, error) {
	if err := policy.Authorize(p, policy.OpProvisionAccount, p.CompanyID, nil); err != nil {
		return nil, err
	}
	// Account creation is the admin's alone; employees stop at issue triage.
	if p.Role != models.RoleAdmin {
		return nil, apperr.ErrInsufficientRole
	}
	if p.CompanyID == nil {
		// The global admin has no company to provision into.
		return nil, apperr.Validation("a company scope is required to provision accounts")
	}
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	switch {
	case name == "":
		return nil, apperr.Validation("name is required")
	case !strings.Contains(email, "@"):
		return nil, apperr.Validation("email is invalid")
	case len(password) < 8:
		return nil, apperr.Validation("password must be at least 8 characters")
	case role != models.RoleUser && role != models.RoleEmployee && role != models.RoleAdmin:
		return nil, apperr.Validation("role must be USER, EMPLOYEE or ADMIN")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:       email,
		Name:        name,
		Role:        role,
		CompanyID:   p.CompanyID,
		CompanyName: p.CompanyName,
	}
	if err := s.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

// ListCompanyUsers returns the accounts of the principal's own company.
func (s *AuthService) ListCompanyUsers(ctx context.Context, p models.Principal) ([]models.User, error) {
	if err := policy.Authorize(p, policy.OpManageUsers, p.CompanyID, nil); err != nil {
		return nil, err
	}
	if p.CompanyID == nil {
		return nil, apperr.Validation("a company scope is required")
	}
	return s.users.ListByCompany(ctx, *p.CompanyID)
}

// UpdateUserRole changes a company user's role. The target must belong to
// the principal's company and the new role can never be the global admin
// (company binding is untouched).
func (s *AuthService) UpdateUserRole(ctx context.Context, p models.Principal, userID int64, role models.Role) (*models.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperr.ErrNotFound
	}
	if err := policy.Authorize(p, policy.OpManageUsers, target.CompanyID, nil); err != nil {
		return nil, err
	}
	if p.Role != models.RoleAdmin {
		return nil, apperr.ErrInsufficientRole
	}
	if role != models.RoleUser && role != models.RoleEmployee && role != models.RoleAdmin {
		return nil, apperr.Validation("role must be USER, EMPLOYEE or ADMIN")
	}
	updated, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	// Live sessions carry a role snapshot; drop them so the change takes
	// effect on the target's next login instead of hours later.
	if s.revoker != nil {
		if err := s.revoker.DeleteByUser(ctx, userID); err != nil {
			s.log.Warn().Err(err).Int64("user", userID).Msg("session revocation failed")
		}
	}
	return updated, nil
}
