package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// AnnouncementRepository persists listings.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *announcement.Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*announcement.Announcement, error)
	Update(ctx context.Context, a *announcement.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter SearchFilter) ([]*announcement.Announcement, int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// Cache holds hot announcement reads. Implementations must tolerate
// being down: a cache miss and a cache error look the same to callers.
type Cache interface {
	GetAnnouncement(ctx context.Context, id uuid.UUID) (*announcement.Announcement, bool)
	SetAnnouncement(ctx context.Context, a *announcement.Announcement, ttl time.Duration)
	InvalidateAnnouncement(ctx context.Context, id uuid.UUID)
}

// ActivityRecorder appends feed entries, best-effort.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.Entry)
}

// SearchFilter narrows and pages announcement searches.
type SearchFilter struct {
	Query    string
	Category *announcement.Category
	Location string
	SellerID *uuid.UUID
	Status   *announcement.Status
	MinPrice *values.Money
	MaxPrice *values.Money
	Limit    int
	Offset   int
}
