package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// UserRepository implements the user repositories of the account,
// negotiation, reputation, and verification services.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, user_type, status,
	phone, location, profile_image, bio, website, specialties,
	rating_average, rating_count, completed_deals,
	is_verified, verification_level,
	created_at, updated_at, deleted_at`

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Type.String(), u.Status.String(),
		u.Phone, u.Location, u.ProfileImage, u.Bio, u.Website, pq.Array(u.Specialties),
		u.Rating.Average(), u.Rating.Count(), u.CompletedDeals,
		u.Verified, u.VerificationLevel,
		u.CreatedAt, u.UpdatedAt, u.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	return r.get(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return r.get(ctx, query, email)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(querierFrom(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, status = $5,
		    phone = $6, location = $7, profile_image = $8, bio = $9, website = $10,
		    specialties = $11, rating_average = $12, rating_count = $13,
		    completed_deals = $14, is_verified = $15, verification_level = $16,
		    updated_at = $17
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Status.String(),
		u.Phone, u.Location, u.ProfileImage, u.Bio, u.Website,
		pq.Array(u.Specialties), u.Rating.Average(), u.Rating.Count(),
		u.CompletedDeals, u.Verified, u.VerificationLevel,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u             user.User
		userType      string
		status        string
		specialties   pq.StringArray
		ratingAverage float64
		ratingCount   int
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &userType, &status,
		&u.Phone, &u.Location, &u.ProfileImage, &u.Bio, &u.Website, &specialties,
		&ratingAverage, &ratingCount, &u.CompletedDeals,
		&u.Verified, &u.VerificationLevel,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := user.ParseType(userType)
	if err != nil {
		return nil, fmt.Errorf("invalid stored user type: %w", err)
	}
	u.Type = parsed
	u.Status = user.ParseStatus(status)
	u.Specialties = specialties

	rating, err := values.NewRating(ratingAverage, ratingCount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored rating: %w", err)
	}
	u.Rating = rating
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
