package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/metrics"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/notify"
	"github.com/editorjakupi/testning-av-crmsystem/internal/policy"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

// IssueService owns the issue lifecycle: creation through the public form,
// tenant-scoped listing, the conversation history and state transitions.
type IssueService struct {
	issues    repository.IssueRepository
	companies repository.CompanyRepository
	users     repository.UserRepository
	notifier  notify.Notifier
	stats     *metrics.Collector
	log       zerolog.Logger
}

func NewIssueService(
	issues repository.IssueRepository,
	companies repository.CompanyRepository,
	users repository.UserRepository,
	notifier notify.Notifier,
	stats *metrics.Collector,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		issues:    issues,
		companies: companies,
		users:     users,
		notifier:  notifier,
		stats:     stats,
		log:       log,
	}
}

// Submitter identifies who files an issue: a registered user id or a guest
// email, exactly one of the two.
type Submitter struct {
	UserID     *int64
	GuestEmail string
}

// Create files a new issue against a company's form subject. Public
// operation: guests and registered users alike may submit.
func (s *IssueService) Create(ctx context.Context, p models.Principal, companyID, subjectID int64, description string, sub Submitter) (*models.Issue, error) {
	if err := policy.Authorize(p, policy.OpSubmitIssue, &companyID, nil); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}

	subject, err := s.companies.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil || subject.CompanyID != companyID {
		return nil, apperr.ErrUnknownSubject
	}

	issue := &models.Issue{
		CompanyID:    companyID,
		SubjectID:    &subject.ID,
		SubjectLabel: subject.Label,
		Description:  description,
		State:        models.StateNew,
	}
	switch {
	case sub.UserID != nil && sub.GuestEmail != "":
		return nil, apperr.Validation("submitter must be a user or a guest email, not both")
	case sub.UserID != nil:
		issue.SubmitterID = sub.UserID
	case strings.Contains(sub.GuestEmail, "@"):
		email := strings.TrimSpace(strings.ToLower(sub.GuestEmail))
		issue.GuestEmail = &email
	default:
		return nil, apperr.Validation("a contact email is required")
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.RecordIssueCreated(issue.GuestEmail != nil)
	}
	s.notifySubmitter(ctx, issue, "We received your issue",
		"Your issue \""+issue.SubjectLabel+"\" has been registered and will be handled shortly.")
	return issue, nil
}

// Get loads one issue, policy-gated: elevated roles of the owning company,
// the submitting user, or the global admin.
func (s *IssueService) Get(ctx context.Context, p models.Principal, id int64) (*models.Issue, error) {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, apperr.ErrNotFound
	}
	if err := policy.Authorize(p, policy.OpReadIssue, &issue.CompanyID, issue.SubmitterID); err != nil {
		s.recordDenial(err)
		return nil, err
	}
	return issue, nil
}

// List returns issues visible to the principal, newest first. The global
// admin sees everything, elevated roles see their company, and a plain
// user sees only issues they submitted.
func (s *IssueService) List(ctx context.Context, p models.Principal, state *models.IssueState, limit, offset int) ([]models.Issue, int, error) {
	f := repository.IssueFilter{State: state, Limit: limit, Offset: offset}
	switch {
	case p.GlobalAdmin():
		// no tenant filter
	case p.Role == models.RoleUser:
		f.CompanyID = p.CompanyID
		f.SubmitterID = &p.UserID
	default:
		f.CompanyID = p.CompanyID
	}

	owner := f.SubmitterID
	if err := policy.Authorize(p, policy.OpListIssues, p.CompanyID, owner); err != nil {
		s.recordDenial(err)
		return nil, 0, err
	}
	return s.issues.List(ctx, f)
}

// AddUpdate appends an immutable entry to the issue's history. It never
// changes the issue's state.
func (s *IssueService) AddUpdate(ctx context.Context, p models.Principal, issueID int64, text string) (*models.IssueUpdate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, apperr.ErrNotFound
	}
	if err := policy.Authorize(p, policy.OpCommentIssue, &issue.CompanyID, issue.SubmitterID); err != nil {
		s.recordDenial(err)
		return nil, err
	}

	sender := models.SenderCustomer
	if p.Role.Elevated() {
		sender = models.SenderSupport
	}
	update := &models.IssueUpdate{
		IssueID:    issueID,
		AuthorID:   &p.UserID,
		AuthorName: p.Name,
		Sender:     sender,
		Text:       text,
	}
	if err := s.issues.AddUpdate(ctx, update); err != nil {
		return nil, err
	}
	if sender == models.SenderSupport {
		s.notifySubmitter(ctx, issue, "New reply on your issue",
			"Support replied to your issue \""+issue.SubjectLabel+"\".")
	}
	return update, nil
}

// ChangeState applies a lifecycle transition. Elevated tier only; the
// legality check and the write happen atomically in the repository.
func (s *IssueService) ChangeState(ctx context.Context, p models.Principal, issueID int64, next models.IssueState) (*models.Issue, error) {
	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, apperr.ErrNotFound
	}
	if err := policy.Authorize(p, policy.OpChangeIssueState, &issue.CompanyID, nil); err != nil {
		s.recordDenial(err)
		return nil, err
	}

	updated, err := s.issues.ChangeState(ctx, issueID, next)
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.RecordTransition(next.String())
	}
	if next == models.StateClosed {
		s.notifySubmitter(ctx, updated, "Your issue was closed",
			"Your issue \""+updated.SubjectLabel+"\" has been resolved and closed.")
	}
	return updated, nil
}

// Summary reports per-tenant issue counts for the dashboard.
type Summary struct {
	New          int `json:"new"`
	InProgress   int `json:"inProgress"`
	Closed       int `json:"closed"`
	ClosedLast7d int `json:"closedLast7d"`
}

func (s *IssueService) Summarize(ctx context.Context, p models.Principal) (*Summary, error) {
	if err := policy.Authorize(p, policy.OpReadReports, p.CompanyID, nil); err != nil {
		s.recordDenial(err)
		return nil, err
	}
	if p.CompanyID == nil {
		return nil, apperr.Validation("a company scope is required")
	}
	counts, err := s.issues.CountByState(ctx, *p.CompanyID)
	if err != nil {
		return nil, err
	}
	closed7d, err := s.issues.CountClosedSince(ctx, *p.CompanyID, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	return &Summary{
		New:          counts[models.StateNew],
		InProgress:   counts[models.StateInProgress],
		Closed:       counts[models.StateClosed],
		ClosedLast7d: closed7d,
	}, nil
}

// notifySubmitter mails the issue's contact: the guest address when the
// issue came in anonymously, the submitter's account email otherwise.
// Fire-and-forget: failures are logged, never propagated.
func (s *IssueService) notifySubmitter(ctx context.Context, issue *models.Issue, subject, body string) {
	var to string
	switch {
	case issue.GuestEmail != nil:
		to = *issue.GuestEmail
	case issue.SubmitterID != nil:
		u, err := s.users.GetByID(ctx, *issue.SubmitterID)
		if err != nil || u == nil {
			s.log.Warn().Err(err).Int64("issue", issue.ID).Msg("submitter lookup failed")
			return
		}
		to = u.Email
	default:
		return
	}
	if err := s.notifier.Notify(ctx, notify.Message{To: to, Subject: subject, Body: body}); err != nil {
		s.log.Warn().Err(err).Int64("issue", issue.ID).Msg("submitter notification failed")
	}
}

func (s *IssueService) recordDenial(err error) {
	if s.stats == nil {
		return
	}
	s.stats.RecordAuthzDenied(apperr.Message(err))
}
