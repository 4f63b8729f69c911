package utils

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// BcryptHasher is the production credential hasher. Services depend on the
// service.PasswordHasher interface so tests can swap in a cheap fake.
type BcryptHasher struct{}

func (BcryptHasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func (BcryptHasher) Verify(hashed, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
