// Package memory implements the repository interfaces on in-process maps.
// It backs the test suites and mirrors the Postgres behavior contract:
// duplicate-email detection, atomic state transitions, copy-on-read.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
)

type Store struct {
	mu sync.Mutex

	users     map[int64]*userRec
	companies map[int64]*models.Company
	subjects  map[int64]*models.FormSubject
	issues    map[int64]*models.Issue
	updates   map[int64][]models.IssueUpdate

	nextID int64
	now    func() time.Time
}

type userRec struct {
	user models.User
	hash string
}

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*userRec),
		companies: make(map[int64]*models.Company),
		subjects:  make(map[int64]*models.FormSubject),
		issues:    make(map[int64]*models.Issue),
		updates:   make(map[int64][]models.IssueUpdate),
		now:       time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users returns the store's UserRepository view.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Companies returns the store's CompanyRepository view.
func (s *Store) Companies() repository.CompanyRepository { return (*companyRepo)(s) }

// Issues returns the store's IssueRepository view.
func (s *Store) Issues() repository.IssueRepository { return (*issueRepo)(s) }

// ---------------------------------------------------------------------------
// users
// ---------------------------------------------------------------------------

type userRepo Store

func (r *userRepo) Create(_ context.Context, u *models.User, passwordHash string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Email, u.Email) {
			return apperr.ErrDuplicateEmail
		}
	}
	u.ID = s.id()
	u.Active = true
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	if u.CompanyID != nil {
		if c, ok := s.companies[*u.CompanyID]; ok {
			u.CompanyName = c.Name
		}
	}
	cp := *u
	s.users[u.ID] = &userRec{user: cp, hash: passwordHash}
	return nil
}

// CreateWithCompany checks the email before touching companies; under the
// single store mutex a duplicate registration leaves no new company behind.
func (r *userRepo) CreateWithCompany(_ context.Context, u *models.User, passwordHash, companyName string) (*models.Company, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Email, u.Email) {
			return nil, apperr.ErrDuplicateEmail
		}
	}
	var c *models.Company
	for _, existing := range s.companies {
		if strings.EqualFold(existing.Name, companyName) {
			c = existing
			break
		}
	}
	if c == nil {
		c = &models.Company{ID: s.id(), Name: companyName, Slug: models.Slugify(companyName), CreatedAt: s.now()}
		s.companies[c.ID] = c
	}
	u.ID = s.id()
	u.Active = true
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	u.CompanyID = &c.ID
	u.CompanyName = c.Name
	cp := *u
	s.users[u.ID] = &userRec{user: cp, hash: passwordHash}
	cc := *c
	return &cc, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, string, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Email, email) {
			cp := rec.user
			return &cp, rec.hash, nil
		}
	}
	return nil, "", nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.users[id]; ok {
		cp := rec.user
		return &cp, nil
	}
	return nil, nil
}

func (r *userRepo) ListByCompany(_ context.Context, companyID int64) ([]models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, rec := range s.users {
		if rec.user.CompanyID != nil && *rec.user.CompanyID == companyID {
			out = append(out, rec.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *userRepo) UpdateRole(_ context.Context, id int64, role models.Role) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	rec.user.Role = role
	rec.user.UpdatedAt = s.now()
	cp := rec.user
	return &cp, nil
}

// ---------------------------------------------------------------------------
// companies and form subjects
// ---------------------------------------------------------------------------

type companyRepo Store

func (r *companyRepo) GetBySlug(_ context.Context, slug string) (*models.Company, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *companyRepo) GetByID(_ context.Context, id int64) (*models.Company, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *companyRepo) GetOrCreate(_ context.Context, name string) (*models.Company, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	c := &models.Company{ID: s.id(), Name: name, Slug: models.Slugify(name), CreatedAt: s.now()}
	s.companies[c.ID] = c
	cp := *c
	return &cp, nil
}

func (r *companyRepo) Subjects(_ context.Context, companyID int64) ([]models.FormSubject, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FormSubject
	for _, sub := range s.subjects {
		if sub.CompanyID == companyID {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *companyRepo) GetSubject(_ context.Context, id int64) (*models.FormSubject, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subjects[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (r *companyRepo) AddSubject(_ context.Context, companyID int64, label string) (*models.FormSubject, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &models.FormSubject{ID: s.id(), CompanyID: companyID, Label: label, CreatedAt: s.now()}
	s.subjects[sub.ID] = sub
	cp := *sub
	return &cp, nil
}

func (r *companyRepo) RemoveSubject(_ context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.subjects, id)
	// Issues keep their copied label; only the live reference goes away.
	for _, i := range s.issues {
		if i.SubjectID != nil && *i.SubjectID == id {
			i.SubjectID = nil
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// issues
// ---------------------------------------------------------------------------

type issueRepo Store

func (r *issueRepo) Create(_ context.Context, i *models.Issue) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.id()
	i.CreatedAt = s.now()
	i.UpdatedAt = i.CreatedAt
	cp := *i
	s.issues[i.ID] = &cp
	return nil
}

func (r *issueRepo) Get(_ context.Context, id int64) (*models.Issue, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.issues[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	cp.Updates = append([]models.IssueUpdate(nil), s.updates[id]...)
	return &cp, nil
}

func (r *issueRepo) List(_ context.Context, f repository.IssueFilter) ([]models.Issue, int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Issue
	for _, i := range s.issues {
		if f.CompanyID != nil && i.CompanyID != *f.CompanyID {
			continue
		}
		if f.SubmitterID != nil && !i.SubmittedBy(*f.SubmitterID) {
			continue
		}
		if f.State != nil && i.State != *f.State {
			continue
		}
		all = append(all, *i)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *issueRepo) AddUpdate(_ context.Context, u *models.IssueUpdate) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.issues[u.IssueID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	if u.AuthorID != nil {
		if rec, ok := s.users[*u.AuthorID]; ok {
			u.AuthorName = rec.user.Name
		}
	}
	s.updates[u.IssueID] = append(s.updates[u.IssueID], *u)
	i.UpdatedAt = u.CreatedAt
	return nil
}

func (r *issueRepo) ChangeState(_ context.Context, id int64, next models.IssueState) (*models.Issue, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.issues[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if !i.State.CanTransition(next) {
		return nil, apperr.ErrInvalidTransition
	}
	i.State = next
	i.UpdatedAt = s.now()
	cp := *i
	return &cp, nil
}

func (r *issueRepo) CountByState(_ context.Context, companyID int64) (map[models.IssueState]int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.IssueState]int)
	for _, i := range s.issues {
		if i.CompanyID == companyID {
			out[i.State]++
		}
	}
	return out, nil
}

func (r *issueRepo) CountClosedSince(_ context.Context, companyID int64, since time.Time) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, i := range s.issues {
		if i.CompanyID == companyID && i.State == models.StateClosed && !i.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

var (
	_ repository.UserRepository    = (*userRepo)(nil)
	_ repository.CompanyRepository = (*companyRepo)(nil)
	_ repository.IssueRepository   = (*issueRepo)(nil)
)
