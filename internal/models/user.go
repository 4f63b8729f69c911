package models

import (
	"fmt"
	"time"
)

// Role is the account tier of a registered user. It is assigned at account
// creation and never changes except through an explicit admin role update.
type Role uint8

const (
	RoleGuest Role = iota // unauthenticated principal, never stored
	RoleUser
	RoleEmployee
	RoleAdmin
)

// roleNames are the values of the "role" Postgres enum. The storage layer
// round-trips through these; nothing else in the system sees them.
var roleNames = map[Role]string{
	RoleGuest:    "GUEST",
	RoleUser:     "USER",
	RoleEmployee: "EMPLOYEE",
	RoleAdmin:    "ADMIN",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole decodes the storage/wire representation of a role.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleGuest, fmt.Errorf("unknown role %q", s)
}

// Elevated reports whether the role may manage issues, subjects and accounts
// for its company. Plain users and guests are not elevated.
func (r Role) Elevated() bool {
	return r == RoleEmployee || r == RoleAdmin
}

func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *Role) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid role %s", b)
	}
	parsed, err := ParseRole(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	CompanyID   *int64    `json:"companyId"` // nil only for the global admin
	CompanyName string    `json:"companyName,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
