// internal/identity/implementation.go
package identity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"phstore/internal/platform/apperr"
	"phstore/internal/platform/postgres"
)

// service implements the Service interface.
type service struct {
	db          *sql.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new identity service instance.
func NewService(db *sql.DB) Service {
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
	}
}

// Register creates a new user with a hashed credential.
func (s *service) Register(ctx context.Context, name, email, document, password string, role Role) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, apperr.New(apperr.KindInvalidState, "rate limit exceeded")
	}
	if name == "" || email == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "name and email are required")
	}
	if password == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "password cannot be empty")
	}
	if role != RoleAdmin && role != RoleCustomer {
		role = RoleCustomer
	}

	passwordHash, salt, err := hashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:             uuid.New(),
		Name:           name,
		Email:          email,
		DocumentNumber: document,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	credential := &Credential{
		UserID:       user.ID,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	err = postgres.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		userQuery := `
			INSERT INTO users (id, name, email, document_number, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, userQuery, user.ID, user.Name, user.Email, user.DocumentNumber, user.Role, user.CreatedAt); err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperr.New(apperr.KindConflict, "a user with this email already exists")
			}
			return err
		}

		credQuery := `
			INSERT INTO credentials (user_id, password_hash, salt)
			VALUES ($1, $2, $3)
		`
		_, err := tx.ExecContext(ctx, credQuery, credential.UserID, credential.PasswordHash, credential.Salt)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	return user, nil
}

// Authenticate verifies a user's credentials and returns the user if successful.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, apperr.New(apperr.KindInvalidState, "rate limit exceeded")
	}

	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return nil, apperr.New(apperr.KindForbidden, "invalid credentials")
	}

	credential, err := s.getCredential(ctx, user.ID)
	if err != nil {
		return nil, apperr.New(apperr.KindForbidden, "invalid credentials")
	}

	ok, err := verifySecret(password, credential.Salt, credential.PasswordHash)
	if err != nil || !ok {
		return nil, apperr.New(apperr.KindForbidden, "invalid credentials")
	}

	return user, nil
}

func (s *service) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, document_number, role, created_at
		FROM users
		WHERE email = $1
	`
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.DocumentNumber,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) getCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	query := `
		SELECT user_id, password_hash, salt
		FROM credentials
		WHERE user_id = $1
	`
	credential := &Credential{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&credential.UserID,
		&credential.PasswordHash,
		&credential.Salt,
	)
	if err != nil {
		return nil, err
	}
	return credential, nil
}

// GetUser retrieves a user by ID.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, name, email, document_number, role, created_at
		FROM users
		WHERE id = $1
	`
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.DocumentNumber,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.Newf(apperr.KindNotFound, "user %s not found", id)
		}
		return nil, apperr.Internal(err)
	}

	return user, nil
}
