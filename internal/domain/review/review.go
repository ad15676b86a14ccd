package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// Review is one party's rating of the other after a completed offer.
// A pair (offer, reviewer) is unique: each side reviews once.
type Review struct {
	ID         uuid.UUID `json:"id"`
	OfferID    uuid.UUID `json:"offer_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`

	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`

	// Response is an optional public reply from the reviewee.
	Response    string     `json:"response,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReview creates a review of reviewee by reviewer for an offer.
func NewReview(offerID, reviewerID, revieweeID uuid.UUID, score int, comment string) (*Review, error) {
	if offerID == uuid.Nil {
		return nil, fmt.Errorf("offer ID is required")
	}
	if reviewerID == uuid.Nil || revieweeID == uuid.Nil {
		return nil, fmt.Errorf("reviewer and reviewee IDs are required")
	}
	if reviewerID == revieweeID {
		return nil, fmt.Errorf("cannot review yourself")
	}
	if err := values.ValidateScore(score); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 2000 {
		return nil, fmt.Errorf("comment must not exceed 2000 characters")
	}

	now := time.Now()
	return &Review{
		ID:         uuid.New(),
		OfferID:    offerID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Score:      score,
		Comment:    comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Respond attaches the reviewee's public reply. Only the reviewee may
// respond, and only once.
func (r *Review) Respond(userID uuid.UUID, response string) error {
	if userID != r.RevieweeID {
		return fmt.Errorf("only the reviewed party can respond to a review")
	}
	if r.RespondedAt != nil {
		return fmt.Errorf("review already has a response")
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return fmt.Errorf("response cannot be empty")
	}
	if len(response) > 2000 {
		return fmt.Errorf("response must not exceed 2000 characters")
	}

	now := time.Now()
	r.Response = response
	r.RespondedAt = &now
	r.UpdatedAt = now
	return nil
}
