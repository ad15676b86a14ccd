package announcement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// Announcement is a published listing a producer or technician puts on
// the marketplace. Offers are negotiated against an announcement.
type Announcement struct {
	ID       uuid.UUID `json:"id"`
	SellerID uuid.UUID `json:"seller_id"`

	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    Category       `json:"category"`
	Price       values.Money   `json:"price"`
	PriceType   PriceType      `json:"price_type"`
	Location    string         `json:"location,omitempty"`
	Images      []string       `json:"images,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Status      Status         `json:"status"`

	ViewCount int `json:"view_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type Category int

const (
	CategoryService Category = iota
	CategoryEquipment
	CategorySupplies
	CategoryConsulting
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryService:
		return "service"
	case CategoryEquipment:
		return "equipment"
	case CategorySupplies:
		return "supplies"
	case CategoryConsulting:
		return "consulting"
	default:
		return "other"
	}
}

// ParseCategory converts a wire string to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "service":
		return CategoryService, nil
	case "equipment":
		return CategoryEquipment, nil
	case "supplies":
		return CategorySupplies, nil
	case "consulting":
		return CategoryConsulting, nil
	case "other":
		return CategoryOther, nil
	default:
		return 0, fmt.Errorf("invalid category: %q", s)
	}
}

type PriceType int

const (
	PriceFixed PriceType = iota
	PriceNegotiable
	PriceHourly
	PriceDaily
)

func (p PriceType) String() string {
	switch p {
	case PriceFixed:
		return "fixed"
	case PriceNegotiable:
		return "negotiable"
	case PriceHourly:
		return "hourly"
	case PriceDaily:
		return "daily"
	default:
		return "unknown"
	}
}

func ParsePriceType(s string) (PriceType, error) {
	switch s {
	case "fixed":
		return PriceFixed, nil
	case "negotiable":
		return PriceNegotiable, nil
	case "hourly":
		return PriceHourly, nil
	case "daily":
		return PriceDaily, nil
	default:
		return 0, fmt.Errorf("invalid price type: %q", s)
	}
}

type Status int

const (
	StatusActive Status = iota
	StatusPaused
	StatusSold
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusSold:
		return "sold"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

func ParseStatus(s string) Status {
	switch s {
	case "paused":
		return StatusPaused
	case "sold":
		return StatusSold
	case "expired":
		return StatusExpired
	default:
		return StatusActive
	}
}

// NewAnnouncement creates an active listing for the given seller.
func NewAnnouncement(sellerID uuid.UUID, title, description string, category Category, price values.Money, priceType PriceType) (*Announcement, error) {
	title = strings.TrimSpace(title)
	if len(title) < 5 || len(title) > 150 {
		return nil, fmt.Errorf("title must be between 5 and 150 characters")
	}
	if len(description) > 5000 {
		return nil, fmt.Errorf("description must not exceed 5000 characters")
	}
	if sellerID == uuid.Nil {
		return nil, fmt.Errorf("seller ID is required")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}

	now := time.Now()
	return &Announcement{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		PriceType:   priceType,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOpen reports whether the listing can still receive offers.
func (a *Announcement) IsOpen() bool {
	if a.Status != StatusActive || a.DeletedAt != nil {
		return false
	}
	if a.ExpiresAt != nil && time.Now().After(*a.ExpiresAt) {
		return false
	}
	return true
}

// MarkSold closes the listing after a completed negotiation.
func (a *Announcement) MarkSold() {
	a.Status = StatusSold
	a.UpdatedAt = time.Now()
}

// Pause takes the listing off the market without deleting it.
func (a *Announcement) Pause() error {
	if a.Status != StatusActive {
		return fmt.Errorf("only active announcements can be paused, current status is %s", a.Status)
	}
	a.Status = StatusPaused
	a.UpdatedAt = time.Now()
	return nil
}

// Resume puts a paused listing back on the market.
func (a *Announcement) Resume() error {
	if a.Status != StatusPaused {
		return fmt.Errorf("only paused announcements can be resumed, current status is %s", a.Status)
	}
	a.Status = StatusActive
	a.UpdatedAt = time.Now()
	return nil
}
