package models

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleGuest, RoleUser, RoleEmployee, RoleAdmin} {
		got, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("parse %s: %v", r, err)
		}
		if got != r {
			t.Fatalf("parse %s: got %s", r, got)
		}
	}
	if _, err := ParseRole("SUPERUSER"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestRoleElevated(t *testing.T) {
	if RoleGuest.Elevated() || RoleUser.Elevated() {
		t.Fatalf("guest and user must not be elevated")
	}
	if !RoleEmployee.Elevated() || !RoleAdmin.Elevated() {
		t.Fatalf("employee and admin must be elevated")
	}
}

func TestRoleJSON(t *testing.T) {
	b, err := json.Marshal(RoleEmployee)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"EMPLOYEE"` {
		t.Fatalf("got %s", b)
	}
	var r Role
	if err := json.Unmarshal([]byte(`"ADMIN"`), &r); err != nil {
		t.Fatal(err)
	}
	if r != RoleAdmin {
		t.Fatalf("got %s", r)
	}
	if err := json.Unmarshal([]byte(`"NOPE"`), &r); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":      "acme-corp",
		"  TechFix AB  ": "techfix-ab",
		"weird!!name":    "weirdname",
		"Already-Slug":   "already-slug",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
