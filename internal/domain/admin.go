// File: internal/domain/admin.go
package domain

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Admin is the single operator account of the settings API. Its password
// hash comes from configuration.
type Admin struct {
	ID           uint
	Username     string
	PasswordHash string
}

// AdminID is the subject placed in admin tokens.
const AdminID uint = 1

var ErrInvalidCredentials = errors.New("invalid username or password")

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Authenticate checks a login attempt against the account.
func (a *Admin) Authenticate(username, password string) error {
	if a.PasswordHash == "" || username != a.Username {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
