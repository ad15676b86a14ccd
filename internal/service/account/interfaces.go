package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer mints and parses access tokens.
type TokenIssuer interface {
	Issue(u *user.User) (string, error)
}
