package models

// Principal is the identity a request acts as. Every request resolves to a
// valid principal; unauthenticated requests resolve to the guest principal.
type Principal struct {
	UserID      int64  `json:"userId,omitempty"`
	Name        string `json:"name,omitempty"`
	Role        Role   `json:"role"`
	CompanyID   *int64 `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Guest is the principal attached to requests without a valid session.
func Guest() Principal {
	return Principal{Role: RoleGuest}
}

// Authenticated reports whether the principal is a registered user.
func (p Principal) Authenticated() bool {
	return p.Role != RoleGuest
}

// GlobalAdmin reports whether the principal is a system-level admin, the
// only account kind without a company binding.
func (p Principal) GlobalAdmin() bool {
	return p.Role == RoleAdmin && p.CompanyID == nil
}

// SameCompany reports whether the principal belongs to the given tenant.
func (p Principal) SameCompany(companyID int64) bool {
	return p.CompanyID != nil && *p.CompanyID == companyID
}

// PrincipalFor builds the principal a user's session carries.
func PrincipalFor(u *User) Principal {
	return Principal{
		UserID:      u.ID,
		Name:        u.Name,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName,
	}
}
