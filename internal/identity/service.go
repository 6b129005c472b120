// internal/identity/service.go
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the identity service.
type Service interface {
	Register(ctx context.Context, name, email, document, password string, role Role) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}
