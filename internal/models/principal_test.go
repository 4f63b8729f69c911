package models

import "testing"

func TestGuestPrincipal(t *testing.T) {
	g := Guest()
	if g.Authenticated() {
		t.Fatalf("guest must not be authenticated")
	}
	if g.GlobalAdmin() {
		t.Fatalf("guest must not be the global admin")
	}
	if g.SameCompany(1) {
		t.Fatalf("guest belongs to no company")
	}
}

func TestGlobalAdmin(t *testing.T) {
	global := Principal{UserID: 1, Role: RoleAdmin}
	if !global.GlobalAdmin() {
		t.Fatalf("admin without company is the global admin")
	}
	cid := int64(3)
	scoped := Principal{UserID: 2, Role: RoleAdmin, CompanyID: &cid}
	if scoped.GlobalAdmin() {
		t.Fatalf("company admin is not the global admin")
	}
	if !scoped.SameCompany(3) || scoped.SameCompany(4) {
		t.Fatalf("company binding mismatch")
	}
}

func TestPrincipalFor(t *testing.T) {
	cid := int64(9)
	u := &User{ID: 5, Name: "Eva", Role: RoleEmployee, CompanyID: &cid, CompanyName: "Acme"}
	p := PrincipalFor(u)
	if p.UserID != 5 || p.Role != RoleEmployee || !p.SameCompany(9) || p.CompanyName != "Acme" {
		t.Fatalf("principal does not mirror the user: %+v", p)
	}
}
