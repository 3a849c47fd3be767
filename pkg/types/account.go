package types

import (
	"errors"
	"time"
)

// Account is a registered user on this device.
type Account struct {
	ID         string    `json:"id"`          // UUID v7, generated on creation.
	Email      string    `json:"email"`       // Unique, compared byte for byte.
	SecretHash string    `json:"secret_hash"` // bcrypt hash of the secret.
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is the projection of the signed-in account. At most one session is
// active per device.
type Session struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Token    string    `json:"token,omitempty"` // Signed proof of the projection.
	IssuedAt time.Time `json:"issued_at"`
}

// Session returns the session projection of the account.
func (a Account) Session() Session {
	return Session{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
	}
}

// Credential errors.
var (
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAccount     = errors.New("invalid account details")
	ErrInvalidSession     = errors.New("invalid session")
)
