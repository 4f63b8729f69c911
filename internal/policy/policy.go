// Package policy is the single access-control decision point. Handlers and
// services never re-derive authorization; they ask Authorize and act on the
// answer. The function is pure and total: every principal/operation pair
// yields a definite allow (nil) or a typed denial.
package policy

import (
	"github.com/editorjakupi/testning-av-crmsystem/internal/apperr"
	"github.com/editorjakupi/testning-av-crmsystem/internal/models"
)

// Operation identifies what the caller is trying to do. The policy only
// cares about the operation's class (public, elevated), not its mechanics.
type Operation string

const (
	// Public operations: reachable by anyone, including anonymous guests.
	OpSubmitIssue Operation = "issue.submit"
	OpViewForm    Operation = "form.view"
	OpRegister    Operation = "account.register"

	// Authenticated operations.
	OpReadIssue    Operation = "issue.read"
	OpListIssues   Operation = "issue.list"
	OpCommentIssue Operation = "issue.comment"

	// Elevated operations: employee tier or admin.
	OpChangeIssueState Operation = "issue.state"
	OpManageSubjects   Operation = "subject.manage"
	OpProvisionAccount Operation = "account.provision"
	OpManageUsers      Operation = "user.manage"
	OpReadReports      Operation = "report.read"
)

var publicOps = map[Operation]bool{
	OpSubmitIssue: true,
	OpViewForm:    true,
	OpRegister:    true,
}

var elevatedOps = map[Operation]bool{
	OpChangeIssueState: true,
	OpManageSubjects:   true,
	OpProvisionAccount: true,
	OpManageUsers:      true,
	OpReadReports:      true,
}

// Public reports whether the operation is open to anonymous callers.
func Public(op Operation) bool { return publicOps[op] }

// Elevated reports whether the operation requires the employee tier.
func Elevated(op Operation) bool { return elevatedOps[op] }

// Authorize decides whether principal p may perform op against an entity
// owned by tenant targetCompanyID (nil for tenant-less operations) and,
// optionally, created by ownerID. Returns nil on allow, or one of
// apperr.ErrUnauthenticated / apperr.ErrCrossTenant /
// apperr.ErrInsufficientRole on deny.
//
// Rules are evaluated in order; first match wins. The result must never be
// cached across requests: role and company only change via re-auth, and a
// fresh session means a fresh decision.
func Authorize(p models.Principal, op Operation, targetCompanyID *int64, ownerID *int64) error {
	// 1. Tenant-public submission paths are open to everyone.
	if Public(op) {
		return nil
	}
	// 2. The global admin may do anything.
	if p.GlobalAdmin() {
		return nil
	}
	// 3. Everything below requires authentication.
	if !p.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	// 4. Tenant isolation beats every other consideration.
	if targetCompanyID == nil || !p.SameCompany(*targetCompanyID) {
		return apperr.ErrCrossTenant
	}
	// 5. Elevated operations are closed to the plain user tier.
	if Elevated(op) && p.Role == models.RoleUser {
		return apperr.ErrInsufficientRole
	}
	// 6. A user may act on an issue they submitted themselves.
	if ownerID != nil && *ownerID == p.UserID {
		return nil
	}
	// 7. Otherwise the employee tier and admins are allowed.
	if p.Role.Elevated() {
		return nil
	}
	return apperr.ErrInsufficientRole
}
