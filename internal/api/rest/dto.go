package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/review"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// moneyDTO is the wire shape for amounts.
type moneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type userResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	UserType          string    `json:"user_type"`
	Phone             string    `json:"phone,omitempty"`
	Location          string    `json:"location,omitempty"`
	ProfileImage      string    `json:"profile_image,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	Website           string    `json:"website,omitempty"`
	Specialties       []string  `json:"specialties,omitempty"`
	RatingAverage     float64   `json:"rating_average"`
	RatingCount       int       `json:"rating_count"`
	CompletedDeals    int       `json:"completed_deals"`
	Verified          bool      `json:"is_verified"`
	VerificationLevel int       `json:"verification_level"`
	CreatedAt         time.Time `json:"created_at"`
}

// toUserResponse renders a profile. Email is only included for the
// owner's own profile.
func toUserResponse(u *user.User, includeEmail bool) userResponse {
	resp := userResponse{
		ID:                u.ID,
		Name:              u.Name,
		UserType:          u.Type.String(),
		Phone:             u.Phone,
		Location:          u.Location,
		ProfileImage:      u.ProfileImage,
		Bio:               u.Bio,
		Website:           u.Website,
		Specialties:       u.Specialties,
		RatingAverage:     u.Rating.Average(),
		RatingCount:       u.Rating.Count(),
		CompletedDeals:    u.CompletedDeals,
		Verified:          u.Verified,
		VerificationLevel: u.VerificationLevel,
		CreatedAt:         u.CreatedAt,
	}
	if includeEmail {
		resp.Email = u.Email
	}
	return resp
}

type announcementResponse struct {
	ID          uuid.UUID  `json:"id"`
	SellerID    uuid.UUID  `json:"seller_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Price       moneyDTO   `json:"price"`
	PriceType   string     `json:"price_type"`
	Location    string     `json:"location,omitempty"`
	Images      []string   `json:"images,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Status      string     `json:"status"`
	ViewCount   int        `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toAnnouncementResponse(a *announcement.Announcement) announcementResponse {
	return announcementResponse{
		ID:          a.ID,
		SellerID:    a.SellerID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category.String(),
		Price:       moneyDTO{Amount: a.Price.Amount().StringFixed(2), Currency: a.Price.Currency()},
		PriceType:   a.PriceType.String(),
		Location:    a.Location,
		Images:      a.Images,
		Tags:        a.Tags,
		Status:      a.Status.String(),
		ViewCount:   a.ViewCount,
		CreatedAt:   a.CreatedAt,
		ExpiresAt:   a.ExpiresAt,
	}
}

func toAnnouncementResponses(list []*announcement.Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAnnouncementResponse(a))
	}
	return out
}

type offerResponse struct {
	ID             uuid.UUID  `json:"id"`
	AnnouncementID uuid.UUID  `json:"announcement_id"`
	BuyerID        uuid.UUID  `json:"buyer_id"`
	SellerID       uuid.UUID  `json:"seller_id"`
	Amount         moneyDTO   `json:"amount"`
	Message        string     `json:"message,omitempty"`
	Status         string     `json:"status"`
	CounterBy      *uuid.UUID `json:"counter_by,omitempty"`
	BuyerReviewed  bool       `json:"buyer_reviewed"`
	SellerReviewed bool       `json:"seller_reviewed"`
	CreatedAt      time.Time  `json:"created_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func toOfferResponse(o *offer.Offer) offerResponse {
	return offerResponse{
		ID:             o.ID,
		AnnouncementID: o.AnnouncementID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		Amount:         moneyDTO{Amount: o.Amount.Amount().StringFixed(2), Currency: o.Amount.Currency()},
		Message:        o.Message,
		Status:         o.Status.String(),
		CounterBy:      o.CounterBy,
		BuyerReviewed:  o.BuyerReviewed,
		SellerReviewed: o.SellerReviewed,
		CreatedAt:      o.CreatedAt,
		AcceptedAt:     o.AcceptedAt,
		CompletedAt:    o.CompletedAt,
	}
}

func toOfferResponses(list []*offer.Offer) []offerResponse {
	out := make([]offerResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOfferResponse(o))
	}
	return out
}

type reviewResponse struct {
	ID          uuid.UUID  `json:"id"`
	OfferID     uuid.UUID  `json:"offer_id"`
	ReviewerID  uuid.UUID  `json:"reviewer_id"`
	RevieweeID  uuid.UUID  `json:"reviewee_id"`
	Score       int        `json:"score"`
	Comment     string     `json:"comment,omitempty"`
	Response    string     `json:"response,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toReviewResponse(r *review.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		OfferID:     r.OfferID,
		ReviewerID:  r.ReviewerID,
		RevieweeID:  r.RevieweeID,
		Score:       r.Score,
		Comment:     r.Comment,
		Response:    r.Response,
		RespondedAt: r.RespondedAt,
		CreatedAt:   r.CreatedAt,
	}
}

func toReviewResponses(list []*review.Review) []reviewResponse {
	out := make([]reviewResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReviewResponse(r))
	}
	return out
}

type documentResponse struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Type            string     `json:"type"`
	FileURL         string     `json:"file_url"`
	FileName        string     `json:"file_name,omitempty"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toDocumentResponse(d *document.Document) documentResponse {
	return documentResponse{
		ID:              d.ID,
		UserID:          d.UserID,
		Type:            string(d.Type),
		FileURL:         d.FileURL,
		FileName:        d.FileName,
		Status:          d.Status.String(),
		RejectionReason: d.RejectionReason,
		ReviewedAt:      d.ReviewedAt,
		CreatedAt:       d.CreatedAt,
	}
}

func toDocumentResponses(list []*document.Document) []documentResponse {
	out := make([]documentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDocumentResponse(d))
	}
	return out
}

type activityResponse struct {
	ID         uuid.UUID      `json:"id"`
	Type       string         `json:"type"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toActivityResponses(list []*activity.Entry) []activityResponse {
	out := make([]activityResponse, 0, len(list))
	for _, e := range list {
		out = append(out, activityResponse{
			ID:         e.ID,
			Type:       string(e.Type),
			EntityType: string(e.EntityType),
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
