package negotiation

import (
	"context"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// OfferRepository persists offers.
type OfferRepository interface {
	Create(ctx context.Context, o *offer.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	Update(ctx context.Context, o *offer.Offer) error
	ListByAnnouncement(ctx context.Context, announcementID uuid.UUID, filter Filter) ([]*offer.Offer, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]*offer.Offer, error)
	// HasPendingFromBuyer reports whether the buyer already has a
	// pending offer on the announcement.
	HasPendingFromBuyer(ctx context.Context, announcementID, buyerID uuid.UUID) (bool, error)
	// RejectOtherPending bulk-rejects every pending offer on the
	// announcement except the one given, returning how many changed.
	RejectOtherPending(ctx context.Context, announcementID, exceptOfferID uuid.UUID) (int64, error)
}

// AnnouncementRepository reads and updates listings during negotiation.
type AnnouncementRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*announcement.Announcement, error)
	Update(ctx context.Context, a *announcement.Announcement) error
}

// UserRepository updates deal counters on completion.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// TransactionManager runs a function inside a database transaction.
// Repository calls made with the callback's context share that
// transaction.
type TransactionManager interface {
	ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActivityRecorder appends feed entries. Recording is best-effort and
// must never fail the operation it describes.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.Entry)
}

// Filter narrows and pages offer listings.
type Filter struct {
	Status *offer.Status
	Limit  int
	Offset int
}
