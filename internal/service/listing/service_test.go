package listing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
	"github.com/agroconnect/marketplace-backend/internal/service/listing"
	"github.com/agroconnect/marketplace-backend/internal/testutil/fixtures"
	"github.com/agroconnect/marketplace-backend/internal/testutil/mocks"
)

func newService(t *testing.T) (listing.Service, *mocks.AnnouncementRepository, *mocks.ActivityRecorder) {
	t.Helper()
	repo := new(mocks.AnnouncementRepository)
	recorder := new(mocks.ActivityRecorder)
	return listing.NewService(repo, nil, recorder, nil), repo, recorder
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes an active listing", func(t *testing.T) {
		svc, repo, recorder := newService(t)
		sellerID := uuid.New()
		repo.On("Create", ctx, mock.AnythingOfType("*announcement.Announcement")).Return(nil)

		a, err := svc.Create(ctx, sellerID, listing.CreateRequest{
			Title:       "Drone spraying for 100ha",
			Description: "Licensed drone operator, herbicide application",
			Category:    announcement.CategoryService,
			Price:       values.MustNewMoneyFromFloat(3500.00, "BRL"),
			PriceType:   announcement.PriceFixed,
			Location:    "Sorriso, MT",
		})
		require.NoError(t, err)
		assert.Equal(t, announcement.StatusActive, a.Status)
		assert.Equal(t, sellerID, a.SellerID)
		assert.Len(t, recorder.Entries, 1)
	})

	t.Run("rejects a short title", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.Create(ctx, uuid.New(), listing.CreateRequest{
			Title:    "ab",
			Price:    values.MustNewMoneyFromFloat(100, "BRL"),
			Category: announcement.CategoryService,
		})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner edits fields", func(t *testing.T) {
		svc, repo, _ := newService(t)
		a := fixtures.NewAnnouncementBuilder(t).Build()
		repo.On("GetByID", ctx, a.ID).Return(a, nil)
		repo.On("Update", ctx, a).Return(nil)

		title := "Soil analysis for 80ha of soy"
		got, err := svc.Update(ctx, a.SellerID, a.ID, listing.UpdateRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		svc, repo, _ := newService(t)
		a := fixtures.NewAnnouncementBuilder(t).Build()
		repo.On("GetByID", ctx, a.ID).Return(a, nil)

		_, err := svc.Update(ctx, uuid.New(), a.ID, listing.UpdateRequest{})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeForbidden))
	})

	t.Run("sold listings cannot be edited", func(t *testing.T) {
		svc, repo, _ := newService(t)
		a := fixtures.NewAnnouncementBuilder(t).WithStatus(announcement.StatusSold).Build()
		repo.On("GetByID", ctx, a.ID).Return(a, nil)

		_, err := svc.Update(ctx, a.SellerID, a.ID, listing.UpdateRequest{})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeBusiness))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	a := fixtures.NewAnnouncementBuilder(t).Build()
	repo.On("GetByID", ctx, a.ID).Return(a, nil)
	repo.On("Update", ctx, a).Return(nil)

	got, err := svc.SetStatus(ctx, a.SellerID, a.ID, announcement.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, announcement.StatusPaused, got.Status)

	got, err = svc.SetStatus(ctx, a.SellerID, a.ID, announcement.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, announcement.StatusActive, got.Status)

	_, err = svc.SetStatus(ctx, a.SellerID, a.ID, announcement.StatusSold)
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	// defaults are applied before the repository sees the filter
	repo.On("Search", ctx, listing.SearchFilter{Limit: 10}).
		Return([]*announcement.Announcement{}, int64(0), nil)

	_, total, err := svc.Search(ctx, listing.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	repo.AssertExpectations(t)

	repo.On("Search", ctx, listing.SearchFilter{Limit: 100}).
		Return([]*announcement.Announcement{}, int64(0), nil)
	_, _, err = svc.Search(ctx, listing.SearchFilter{Limit: 500})
	require.NoError(t, err)
}

type stubCache struct {
	hit *announcement.Announcement
}

func (c *stubCache) GetAnnouncement(_ context.Context, id uuid.UUID) (*announcement.Announcement, bool) {
	if c.hit != nil && c.hit.ID == id {
		return c.hit, true
	}
	return nil, false
}

func (c *stubCache) SetAnnouncement(_ context.Context, a *announcement.Announcement, _ time.Duration) {
	c.hit = a
}

func (c *stubCache) InvalidateAnnouncement(_ context.Context, id uuid.UUID) {
	if c.hit != nil && c.hit.ID == id {
		c.hit = nil
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("counts the view through the bounded queue", func(t *testing.T) {
		svc, repo, _ := newService(t)
		a := fixtures.NewAnnouncementBuilder(t).Build()
		repo.On("GetByID", ctx, a.ID).Return(a, nil)
		repo.On("IncrementViews", mock.Anything, a.ID).Return(nil)

		got, err := svc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		// Close drains the queue, so the bump has landed by now.
		svc.Close()
		repo.AssertCalled(t, "IncrementViews", mock.Anything, a.ID)
	})

	t.Run("cache hit skips the database read but still counts", func(t *testing.T) {
		repo := new(mocks.AnnouncementRepository)
		a := fixtures.NewAnnouncementBuilder(t).Build()
		svc := listing.NewService(repo, &stubCache{hit: a}, nil, nil)
		repo.On("IncrementViews", mock.Anything, a.ID).Return(nil)

		got, err := svc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		svc.Close()
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		repo.AssertCalled(t, "IncrementViews", mock.Anything, a.ID)
	})

	t.Run("repeated closes are safe", func(t *testing.T) {
		svc, _, _ := newService(t)
		svc.Close()
		svc.Close()
	})
}
