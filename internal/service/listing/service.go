package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

const cacheTTL = 5 * time.Minute

// Service manages marketplace announcements.
type Service interface {
	// Create publishes a new listing for the seller.
	Create(ctx context.Context, sellerID uuid.UUID, req CreateRequest) (*announcement.Announcement, error)
	// Get returns a listing and counts the view.
	Get(ctx context.Context, id uuid.UUID) (*announcement.Announcement, error)
	// Update edits a listing on behalf of its owner.
	Update(ctx context.Context, requesterID, id uuid.UUID, req UpdateRequest) (*announcement.Announcement, error)
	// Delete soft-deletes a listing on behalf of its owner.
	Delete(ctx context.Context, requesterID, id uuid.UUID) error
	// SetStatus pauses or resumes a listing on behalf of its owner.
	SetStatus(ctx context.Context, requesterID, id uuid.UUID, status announcement.Status) (*announcement.Announcement, error)
	// Search pages through listings matching the filter, returning the
	// page and the total match count.
	Search(ctx context.Context, filter SearchFilter) ([]*announcement.Announcement, int64, error)
	// Close drains pending view counts and stops the writer.
	Close()
}

// CreateRequest carries a new listing's fields.
type CreateRequest struct {
	Title       string
	Description string
	Category    announcement.Category
	Price       values.Money
	PriceType   announcement.PriceType
	Location    string
	Images      []string
	Tags        []string
	ExpiresAt   *time.Time
}

// UpdateRequest carries edits; nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string
	Description *string
	Price       *values.Money
	PriceType   *announcement.PriceType
	Location    *string
	Images      []string
	Tags        []string
}

type service struct {
	announcements AnnouncementRepository
	cache         Cache
	activities    ActivityRecorder
	logger        *slog.Logger

	views   chan uuid.UUID
	done    chan struct{}
	closeFn sync.Once
}

// View counts are approximate: bumps queue up behind a single writer
// and are dropped when the queue is full.
const viewQueueSize = 128

// NewService wires the listing use case and starts the view-count
// writer. The cache may be nil.
func NewService(announcements AnnouncementRepository, cache Cache, activities ActivityRecorder, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		announcements: announcements,
		cache:         cache,
		activities:    activities,
		logger:        logger,
		views:         make(chan uuid.UUID, viewQueueSize),
		done:          make(chan struct{}),
	}
	go s.viewWriter()
	return s
}

func (s *service) viewWriter() {
	defer close(s.done)
	for id := range s.views {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.announcements.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("failed to count view", slog.String("announcement_id", id.String()))
		}
		cancel()
	}
}

func (s *service) Close() {
	s.closeFn.Do(func() {
		close(s.views)
		<-s.done
	})
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, req CreateRequest) (*announcement.Announcement, error) {
	a, err := announcement.NewAnnouncement(sellerID, req.Title, req.Description, req.Category, req.Price, req.PriceType)
	if err != nil {
		return nil, domainerrors.NewValidationError("INVALID_ANNOUNCEMENT", err.Error())
	}
	a.Location = req.Location
	a.Images = req.Images
	a.Tags = req.Tags
	a.ExpiresAt = req.ExpiresAt

	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	s.record(ctx, sellerID, activity.TypeAnnouncementCreated, a.ID, map[string]any{"title": a.Title})
	s.logger.InfoContext(ctx, "announcement created",
		slog.String("announcement_id", a.ID.String()),
		slog.String("seller_id", sellerID.String()),
	)
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*announcement.Announcement, error) {
	if s.cache != nil {
		if a, ok := s.cache.GetAnnouncement(ctx, id); ok {
			s.countView(id)
			return a, nil
		}
	}

	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.countView(id)

	if s.cache != nil {
		s.cache.SetAnnouncement(ctx, a, cacheTTL)
	}
	return a, nil
}

func (s *service) countView(id uuid.UUID) {
	select {
	case s.views <- id:
	default:
		// a full queue loses the count, never blocks the read
	}
}

func (s *service) Update(ctx context.Context, requesterID, id uuid.UUID, req UpdateRequest) (*announcement.Announcement, error) {
	a, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == announcement.StatusSold {
		return nil, domainerrors.NewBusinessError("ANNOUNCEMENT_SOLD", "sold announcements cannot be edited")
	}

	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, domainerrors.NewValidationError("INVALID_PRICE", "price cannot be negative")
		}
		a.Price = *req.Price
	}
	if req.PriceType != nil {
		a.PriceType = *req.PriceType
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.Images != nil {
		a.Images = req.Images
	}
	if req.Tags != nil {
		a.Tags = req.Tags
	}
	a.UpdatedAt = time.Now()

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	s.invalidate(ctx, id)
	s.record(ctx, requesterID, activity.TypeAnnouncementUpdated, a.ID, nil)
	return a, nil
}

func (s *service) Delete(ctx context.Context, requesterID, id uuid.UUID) error {
	if _, err := s.owned(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.announcements.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *service) SetStatus(ctx context.Context, requesterID, id uuid.UUID, status announcement.Status) (*announcement.Announcement, error) {
	a, err := s.owned(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case announcement.StatusPaused:
		err = a.Pause()
	case announcement.StatusActive:
		err = a.Resume()
	default:
		return nil, domainerrors.NewValidationError("INVALID_STATUS",
			fmt.Sprintf("announcements can only be paused or resumed, got %s", status))
	}
	if err != nil {
		return nil, domainerrors.NewBusinessError("INVALID_STATE", err.Error())
	}

	if err := s.announcements.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	s.invalidate(ctx, id)
	return a, nil
}

func (s *service) Search(ctx context.Context, filter SearchFilter) ([]*announcement.Announcement, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.announcements.Search(ctx, filter)
}

func (s *service) owned(ctx context.Context, requesterID, id uuid.UUID) (*announcement.Announcement, error) {
	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.SellerID != requesterID {
		return nil, domainerrors.NewForbiddenError("only the announcement owner can modify it")
	}
	return a, nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateAnnouncement(ctx, id)
	}
}

func (s *service) record(ctx context.Context, userID uuid.UUID, activityType activity.Type, entityID uuid.UUID, metadata map[string]any) {
	if s.activities == nil {
		return
	}
	entry, err := activity.NewEntry(userID, activityType, activity.EntityAnnouncement, entityID, metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build activity entry", slog.String("error", err.Error()))
		return
	}
	s.activities.Record(ctx, entry)
}
