package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// Service manages accounts: registration, login, and profiles.
type Service interface {
	// Register creates an account and returns it with an access token.
	Register(ctx context.Context, req RegisterRequest) (*user.User, string, error)
	// Login checks credentials and returns the user with a token.
	Login(ctx context.Context, email, password string) (*user.User, string, error)
	// Get returns a user's public profile.
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	// UpdateProfile edits the caller's own profile.
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*user.User, error)
	// ChangePassword rotates the caller's password.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	// Deactivate soft-deletes the caller's own account.
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	UserType user.Type
	Phone    string
	Location string
}

// UpdateProfileRequest carries profile edits; nil fields are unchanged.
type UpdateProfileRequest struct {
	Name         *string
	Phone        *string
	Location     *string
	Bio          *string
	Website      *string
	ProfileImage *string
	Specialties  []string
}

const minPasswordLength = 8

type service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewService wires the account use case.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*user.User, string, error) {
	if len(req.Password) < minPasswordLength {
		return nil, "", domainerrors.NewValidationError("WEAK_PASSWORD",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", domainerrors.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := user.NewUser(req.Name, email, hash, req.UserType)
	if err != nil {
		return nil, "", domainerrors.NewValidationError("INVALID_USER", err.Error())
	}
	u.Phone = req.Phone
	u.Location = req.Location

	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", u.ID.String()),
		slog.String("user_type", u.Type.String()),
	)
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, "", domainerrors.NewUnauthorizedError("invalid email or password")
	}
	if !u.IsActive() {
		return nil, "", domainerrors.NewUnauthorizedError("account is not active")
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, "", domainerrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return u, token, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 3 || len(name) > 100 {
			return nil, domainerrors.NewValidationError("INVALID_NAME", "name must be between 3 and 100 characters")
		}
		u.Name = name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Location != nil {
		u.Location = *req.Location
	}
	if req.Bio != nil {
		if len(*req.Bio) > 2000 {
			return nil, domainerrors.NewValidationError("INVALID_BIO", "bio must not exceed 2000 characters")
		}
		u.Bio = *req.Bio
	}
	if req.Website != nil {
		u.Website = *req.Website
	}
	if req.ProfileImage != nil {
		u.ProfileImage = *req.ProfileImage
	}
	if req.Specialties != nil {
		u.Specialties = req.Specialties
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLength {
		return domainerrors.NewValidationError("WEAK_PASSWORD",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(u.PasswordHash, current); err != nil {
		return domainerrors.NewUnauthorizedError("current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *service) Deactivate(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}
