package service

import (
	"context"
	"strings"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/policy"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

// FormService owns a company's public issue form: the company lookup that
// anonymous guests use, and subject management for the elevated tier.
type FormService struct {
	companies repository.CompanyRepository
}

func NewFormService(companies repository.CompanyRepository) *FormService {
	return &FormService{companies: companies}
}

// PublicForm resolves a company by its public slug and returns its active
// subjects. The only capability reachable without any session.
func (s *FormService) PublicForm(ctx context.Context, slug string) (*models.Company, []models.FormSubject, error) {
	company, err := s.companies.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, apperr.ErrNotFound
	}
	subjects, err := s.companies.Subjects(ctx, company.ID)
	if err != nil {
		return nil, nil, err
	}
	return company, subjects, nil
}

// ListSubjects returns the principal's own company's subjects.
func (s *FormService) ListSubjects(ctx context.Context, p models.Principal) ([]models.FormSubject, error) {
	if err := policy.Authorize(p, policy.OpManageSubjects, p.CompanyID, nil); err != nil {
		return nil, err
	}
	if p.CompanyID == nil {
		return nil, apperr.Validation("a company scope is required")
	}
	return s.companies.Subjects(ctx, *p.CompanyID)
}

// AddSubject creates a form subject in the principal's company.
func (s *FormService) AddSubject(ctx context.Context, p models.Principal, label string) (*models.FormSubject, error) {
	if err := policy.Authorize(p, policy.OpManageSubjects, p.CompanyID, nil); err != nil {
		return nil, err
	}
	if p.CompanyID == nil {
		return nil, apperr.Validation("a company scope is required")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperr.Validation("label is required")
	}
	return s.companies.AddSubject(ctx, *p.CompanyID, label)
}

// RemoveSubject deletes a subject from the principal's company. Issues that
// referenced it keep the label they copied at creation.
func (s *FormService) RemoveSubject(ctx context.Context, p models.Principal, subjectID int64) error {
	subject, err := s.companies.GetSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject == nil {
		return apperr.ErrNotFound
	}
	if err := policy.Authorize(p, policy.OpManageSubjects, &subject.CompanyID, nil); err != nil {
		return err
	}
	return s.companies.RemoveSubject(ctx, subjectID)
}
