package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

func TestCreateWithCompanyDuplicateLeavesNoCompany(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := &models.User{Email: "anna@x.se", Name: "Anna", Role: models.RoleUser}
	if _, err := s.Users().CreateWithCompany(ctx, first, "hash", "Acme"); err != nil {
		t.Fatal(err)
	}

	dup := &models.User{Email: "ANNA@x.se", Name: "Other", Role: models.RoleUser}
	if _, err := s.Users().CreateWithCompany(ctx, dup, "hash", "Globex"); !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("got %v, want duplicate email", err)
	}

	c, err := s.Companies().GetBySlug(ctx, "globex")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Fatalf("rejected creation left a company behind: %+v", c)
	}
}

func TestCreateWithCompanyReusesExisting(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u1 := &models.User{Email: "a@x.se", Name: "A", Role: models.RoleUser}
	c1, err := s.Users().CreateWithCompany(ctx, u1, "hash", "Acme")
	if err != nil {
		t.Fatal(err)
	}
	u2 := &models.User{Email: "b@x.se", Name: "B", Role: models.RoleUser}
	c2, err := s.Users().CreateWithCompany(ctx, u2, "hash", "acme")
	if err != nil {
		t.Fatal(err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("same company name must attach, got ids %d and %d", c1.ID, c2.ID)
	}
	if u2.CompanyID == nil || *u2.CompanyID != c1.ID {
		t.Fatalf("user not bound to the existing company: %+v", u2)
	}
}

func TestAddUpdateBumpsParent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	company, err := s.Companies().GetOrCreate(ctx, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	email := "g@x.se"
	issue := &models.Issue{CompanyID: company.ID, SubjectLabel: "Billing", Description: "broken", GuestEmail: &email, State: models.StateNew}
	if err := s.Issues().Create(ctx, issue); err != nil {
		t.Fatal(err)
	}
	before := issue.UpdatedAt

	u := &models.IssueUpdate{IssueID: issue.ID, Sender: models.SenderSupport, Text: "on it"}
	if err := s.Issues().AddUpdate(ctx, u); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Issues().Get(ctx, issue.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.UpdatedAt.Before(before) || !loaded.UpdatedAt.Equal(u.CreatedAt) {
		t.Fatalf("parent updated_at must track the update, got %v want %v", loaded.UpdatedAt, u.CreatedAt)
	}

	// An update against a missing issue changes nothing.
	if err := s.Issues().AddUpdate(ctx, &models.IssueUpdate{IssueID: 9999, Sender: models.SenderSupport, Text: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}
