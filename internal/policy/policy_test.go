package policy

import (
	"errors"
	"testing"

	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

func ptr(v int64) *int64 { return &v }

func principal(role models.Role, companyID *int64) models.Principal {
	return models.Principal{UserID: 10, Role: role, CompanyID: companyID}
}

func TestAuthorize(t *testing.T) {
	companyA := ptr(1)
	companyB := ptr(2)

	cases := []struct {
		name    string
		p       models.Principal
		op      Operation
		company *int64
		owner   *int64
		want    error
	}{
		{"guest may submit", models.Guest(), OpSubmitIssue, companyA, nil, nil},
		{"guest may view form", models.Guest(), OpViewForm, companyA, nil, nil},
		{"guest may register", models.Guest(), OpRegister, nil, nil, nil},
		{"guest may not read issues", models.Guest(), OpReadIssue, companyA, nil, apperr.ErrUnauthenticated},
		{"guest may not triage", models.Guest(), OpChangeIssueState, companyA, nil, apperr.ErrUnauthenticated},

		{"global admin reads anything", principal(models.RoleAdmin, nil), OpReadIssue, companyB, nil, nil},
		{"global admin manages anything", principal(models.RoleAdmin, nil), OpManageUsers, companyA, nil, nil},

		{"cross-tenant read denied", principal(models.RoleEmployee, companyA), OpReadIssue, companyB, nil, apperr.ErrCrossTenant},
		{"cross-tenant admin denied", principal(models.RoleAdmin, companyA), OpManageSubjects, companyB, nil, apperr.ErrCrossTenant},
		{"missing tenant scope denied", principal(models.RoleEmployee, companyA), OpReadIssue, nil, nil, apperr.ErrCrossTenant},

		{"user cannot triage own company", principal(models.RoleUser, companyA), OpChangeIssueState, companyA, nil, apperr.ErrInsufficientRole},
		{"user cannot manage subjects", principal(models.RoleUser, companyA), OpManageSubjects, companyA, nil, apperr.ErrInsufficientRole},
		{"user cannot provision", principal(models.RoleUser, companyA), OpProvisionAccount, companyA, nil, apperr.ErrInsufficientRole},

		{"user reads own issue", principal(models.RoleUser, companyA), OpReadIssue, companyA, ptr(10), nil},
		{"user cannot read another's issue", principal(models.RoleUser, companyA), OpReadIssue, companyA, ptr(11), apperr.ErrInsufficientRole},
		{"user cannot read guest issue", principal(models.RoleUser, companyA), OpReadIssue, companyA, nil, apperr.ErrInsufficientRole},

		{"employee reads any company issue", principal(models.RoleEmployee, companyA), OpReadIssue, companyA, ptr(99), nil},
		{"employee triages", principal(models.RoleEmployee, companyA), OpChangeIssueState, companyA, nil, nil},
		{"company admin provisions", principal(models.RoleAdmin, companyA), OpProvisionAccount, companyA, nil, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Authorize(c.p, c.op, c.company, c.owner)
			if c.want == nil {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if !errors.Is(err, c.want) {
				t.Fatalf("got %v, want %v", err, c.want)
			}
		})
	}
}

func TestTenantIsolationBeatsRole(t *testing.T) {
	// An elevated role in the wrong company must read as a tenant violation,
	// not a role problem.
	err := Authorize(principal(models.RoleAdmin, ptr(1)), OpChangeIssueState, ptr(2), nil)
	if !errors.Is(err, apperr.ErrCrossTenant) {
		t.Fatalf("got %v, want cross-tenant denial", err)
	}
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("cross-tenant denial must be a forbidden class error")
	}
}

func TestOperationClasses(t *testing.T) {
	if !Public(OpSubmitIssue) || Public(OpReadIssue) {
		t.Fatalf("public classification wrong")
	}
	if !Elevated(OpChangeIssueState) || Elevated(OpCommentIssue) {
		t.Fatalf("elevated classification wrong")
	}
}
