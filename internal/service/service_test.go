package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
	"github.com/editorjakupi/testning-av-crmsystem/internal/notify"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository/memory"
)

// plainHasher keeps service tests fast; bcrypt is covered by its own
// implementation, not re-verified here.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hash:" + pw, nil }
func (plainHasher) Verify(hashed, pw string) bool  { return hashed == "hash:"+pw }

// captureNotifier records outbound messages for assertions.
type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *captureNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *captureNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

// captureRevoker records which users had their sessions dropped.
type captureRevoker struct {
	mu      sync.Mutex
	revoked []int64
}

func (r *captureRevoker) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked = append(r.revoked, userID)
	return nil
}

type fixture struct {
	store    *memory.Store
	notifier *captureNotifier
	revoker  *captureRevoker
	auth     *AuthService
	issues   *IssueService
	forms    *FormService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	notifier := &captureNotifier{}
	revoker := &captureRevoker{}
	log := zerolog.Nop()
	return &fixture{
		store:    store,
		notifier: notifier,
		revoker:  revoker,
		auth:     NewAuthService(store.Users(), plainHasher{}, notifier, revoker, nil, log),
		issues:   NewIssueService(store.Issues(), store.Companies(), store.Users(), notifier, nil, log),
		forms:    NewFormService(store.Companies()),
	}
}

// seedCompany creates a company with one form subject and returns both.
func (f *fixture) seedCompany(t *testing.T, name, subjectLabel string) (*models.Company, *models.FormSubject) {
	t.Helper()
	ctx := context.Background()
	company, err := f.store.Companies().GetOrCreate(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	subject, err := f.store.Companies().AddSubject(ctx, company.ID, subjectLabel)
	if err != nil {
		t.Fatal(err)
	}
	return company, subject
}

// seedUser creates an account directly in the store and returns its
// principal.
func (f *fixture) seedUser(t *testing.T, name, email string, role models.Role, companyID *int64) (*models.User, models.Principal) {
	t.Helper()
	u := &models.User{Email: email, Name: name, Role: role, CompanyID: companyID}
	if err := f.store.Users().Create(context.Background(), u, "hash:secret12"); err != nil {
		t.Fatal(err)
	}
	return u, models.PrincipalFor(u)
}
