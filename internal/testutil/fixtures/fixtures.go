// Package fixtures provides builders for domain objects in tests.
package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// UserBuilder builds test users.
type UserBuilder struct {
	t *testing.T
	u *user.User
}

func NewUserBuilder(t *testing.T) *UserBuilder {
	t.Helper()
	u, err := user.NewUser("Test Producer", "producer@test.agro", "$2a$10$testhash", user.TypeProducer)
	require.NoError(t, err)
	return &UserBuilder{t: t, u: u}
}

func (b *UserBuilder) WithType(userType user.Type) *UserBuilder {
	b.u.Type = userType
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.u.Email = email
	return b
}

func (b *UserBuilder) WithRating(average float64, count int) *UserBuilder {
	b.u.Rating = values.MustNewRating(average, count)
	return b
}

func (b *UserBuilder) Build() *user.User {
	return b.u
}

// AnnouncementBuilder builds test announcements.
type AnnouncementBuilder struct {
	t *testing.T
	a *announcement.Announcement
}

func NewAnnouncementBuilder(t *testing.T) *AnnouncementBuilder {
	t.Helper()
	a, err := announcement.NewAnnouncement(
		uuid.New(),
		"Soil analysis for 50ha of soy",
		"Full soil analysis with recommendations",
		announcement.CategoryService,
		values.MustNewMoneyFromFloat(1500.00, "BRL"),
		announcement.PriceNegotiable,
	)
	require.NoError(t, err)
	return &AnnouncementBuilder{t: t, a: a}
}

func (b *AnnouncementBuilder) WithSeller(sellerID uuid.UUID) *AnnouncementBuilder {
	b.a.SellerID = sellerID
	return b
}

func (b *AnnouncementBuilder) WithStatus(status announcement.Status) *AnnouncementBuilder {
	b.a.Status = status
	return b
}

func (b *AnnouncementBuilder) WithPrice(amount float64) *AnnouncementBuilder {
	b.a.Price = values.MustNewMoneyFromFloat(amount, "BRL")
	return b
}

func (b *AnnouncementBuilder) Expired() *AnnouncementBuilder {
	past := time.Now().Add(-24 * time.Hour)
	b.a.ExpiresAt = &past
	return b
}

func (b *AnnouncementBuilder) Build() *announcement.Announcement {
	return b.a
}

// OfferBuilder builds test offers.
type OfferBuilder struct {
	t *testing.T
	o *offer.Offer
}

func NewOfferBuilder(t *testing.T) *OfferBuilder {
	t.Helper()
	o, err := offer.NewOffer(uuid.New(), uuid.New(), uuid.New(),
		values.MustNewMoneyFromFloat(1200.00, "BRL"), "available next week")
	require.NoError(t, err)
	return &OfferBuilder{t: t, o: o}
}

func (b *OfferBuilder) WithAnnouncement(announcementID uuid.UUID) *OfferBuilder {
	b.o.AnnouncementID = announcementID
	return b
}

func (b *OfferBuilder) WithParties(buyerID, sellerID uuid.UUID) *OfferBuilder {
	b.o.BuyerID = buyerID
	b.o.SellerID = sellerID
	return b
}

func (b *OfferBuilder) WithAmount(amount float64) *OfferBuilder {
	b.o.Amount = values.MustNewMoneyFromFloat(amount, "BRL")
	return b
}

// Accepted moves the offer to accepted as the seller would.
func (b *OfferBuilder) Accepted() *OfferBuilder {
	require.NoError(b.t, b.o.Transition(b.o.SellerID, offer.StatusAccepted))
	return b
}

// Completed moves the offer through accepted to completed.
func (b *OfferBuilder) Completed() *OfferBuilder {
	if b.o.Status == offer.StatusPending {
		require.NoError(b.t, b.o.Transition(b.o.SellerID, offer.StatusAccepted))
	}
	require.NoError(b.t, b.o.Transition(b.o.BuyerID, offer.StatusCompleted))
	return b
}

func (b *OfferBuilder) Build() *offer.Offer {
	return b.o
}
