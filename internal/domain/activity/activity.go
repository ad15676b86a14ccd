package activity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one item in a user's activity feed. Entries are append-only
// and recorded best-effort alongside the operation they describe.
type Entry struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Type   Type      `json:"type"`

	// Entity points at the object the activity is about.
	EntityType EntityType `json:"entity_type"`
	EntityID   uuid.UUID  `json:"entity_id"`

	// Metadata carries small type-specific details, stored as JSONB.
	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Type string

const (
	TypeAnnouncementCreated Type = "announcement_created"
	TypeAnnouncementUpdated Type = "announcement_updated"
	TypeOfferCreated        Type = "offer_created"
	TypeOfferCountered      Type = "offer_countered"
	TypeOfferAccepted       Type = "offer_accepted"
	TypeOfferRejected       Type = "offer_rejected"
	TypeOfferCompleted      Type = "offer_completed"
	TypeReviewReceived      Type = "review_received"
	TypeReviewResponded     Type = "review_responded"
	TypeDocumentSubmitted   Type = "document_submitted"
	TypeDocumentVerified    Type = "document_verified"
)

func (t Type) Valid() bool {
	switch t {
	case TypeAnnouncementCreated, TypeAnnouncementUpdated,
		TypeOfferCreated, TypeOfferCountered, TypeOfferAccepted,
		TypeOfferRejected, TypeOfferCompleted,
		TypeReviewReceived, TypeReviewResponded,
		TypeDocumentSubmitted, TypeDocumentVerified:
		return true
	}
	return false
}

type EntityType string

const (
	EntityAnnouncement EntityType = "announcement"
	EntityOffer        EntityType = "offer"
	EntityReview       EntityType = "review"
	EntityDocument     EntityType = "document"
)

// NewEntry creates a feed entry for the given user and entity.
func NewEntry(userID uuid.UUID, activityType Type, entityType EntityType, entityID uuid.UUID, metadata map[string]any) (*Entry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if !activityType.Valid() {
		return nil, fmt.Errorf("invalid activity type: %q", activityType)
	}
	if entityID == uuid.Nil {
		return nil, fmt.Errorf("entity ID is required")
	}
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       activityType,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}, nil
}
