package reputation

import (
	"context"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/review"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// ReviewRepository persists reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *review.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*review.Review, error)
	Update(ctx context.Context, r *review.Review) error
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]*review.Review, error)
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]*review.Review, error)
}

// OfferRepository loads and updates the offer a review is attached to.
type OfferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	Update(ctx context.Context, o *offer.Offer) error
}

// UserRepository loads and updates the reviewee's rating aggregate.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActivityRecorder appends feed entries, best-effort.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.Entry)
}
