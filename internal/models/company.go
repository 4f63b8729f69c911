package models

import (
	"strings"
	"time"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"` // public URL segment for the issue form
	CreatedAt time.Time `json:"createdAt"`
}

// FormSubject classifies incoming issues on a company's public form.
type FormSubject struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// Slugify derives the public form slug from a company name.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
