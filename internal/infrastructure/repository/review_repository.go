package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/review"
)

// ReviewRepository implements reputation.ReviewRepository.
type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, offer_id, reviewer_id, reviewee_id, score, comment,
	response, responded_at, created_at, updated_at`

func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		rev.ID, rev.OfferID, rev.ReviewerID, rev.RevieweeID, rev.Score, rev.Comment,
		rev.Response, rev.RespondedAt, rev.CreatedAt, rev.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// (offer_id, reviewer_id) is unique
			return domainerrors.NewConflictError("review already exists for this offer")
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rev, err := scanReview(querierFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rev, nil
}

func (r *ReviewRepository) Update(ctx context.Context, rev *review.Review) error {
	query := `
		UPDATE reviews
		SET response = $2, responded_at = $3, updated_at = $4
		WHERE id = $1`

	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		rev.ID, rev.Response, rev.RespondedAt, rev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	return r.list(ctx, "reviewee_id", revieweeID, limit, offset)
}

func (r *ReviewRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	return r.list(ctx, "reviewer_id", reviewerID, limit, offset)
}

func (r *ReviewRepository) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*review.Review, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` + column + ` = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := querierFrom(ctx, r.db).QueryContext(ctx, query, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*review.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func scanReview(row rowScanner) (*review.Review, error) {
	var rev review.Review
	err := row.Scan(
		&rev.ID, &rev.OfferID, &rev.ReviewerID, &rev.RevieweeID, &rev.Score, &rev.Comment,
		&rev.Response, &rev.RespondedAt, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}
