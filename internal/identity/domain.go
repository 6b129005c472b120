// internal/identity/domain.go
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the coarse permission level attached to a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User represents a store account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	DocumentNumber string    `json:"document_number,omitempty"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Credential holds the stored password material for a user. The plaintext
// password is never persisted or readable.
type Credential struct {
	UserID       uuid.UUID
	PasswordHash string
	Salt         string
}

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
