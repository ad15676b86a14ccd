package offer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// Offer is a negotiation between a buyer and the seller of an
// announcement. It moves through a fixed lifecycle: pending until the
// announcement owner accepts or rejects it, then completed once either
// party confirms the deal happened. A counter-offer replaces the amount
// and flips who has to respond, but stays pending.
type Offer struct {
	ID             uuid.UUID `json:"id"`
	AnnouncementID uuid.UUID `json:"announcement_id"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	SellerID       uuid.UUID `json:"seller_id"`

	Amount  values.Money `json:"amount"`
	Message string       `json:"message,omitempty"`
	Status  Status       `json:"status"`

	// CounterBy identifies which party made the last counter-offer,
	// i.e. whose amount is currently on the table. Nil means the
	// original buyer amount stands.
	CounterBy *uuid.UUID `json:"counter_by,omitempty"`

	// Review bookkeeping. Each side reviews the other exactly once,
	// and only after the offer is completed.
	BuyerReviewed  bool `json:"buyer_reviewed"`
	SellerReviewed bool `json:"seller_reviewed"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Status int

const (
	StatusPending Status = iota
	StatusAccepted
	StatusRejected
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a wire string to a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	case "rejected":
		return StatusRejected, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return 0, fmt.Errorf("invalid offer status: %q", s)
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// Role is who the requester is relative to an offer.
type Role int

const (
	RoleNone Role = iota
	RoleBuyer
	RoleSeller
)

func (r Role) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleSeller:
		return "seller"
	default:
		return "none"
	}
}

// RoleOf classifies a user against the offer's two parties.
func (o *Offer) RoleOf(userID uuid.UUID) Role {
	switch userID {
	case o.BuyerID:
		return RoleBuyer
	case o.SellerID:
		return RoleSeller
	default:
		return RoleNone
	}
}

// transition describes one legal status change and who may request it.
type transition struct {
	from, to Status
	allowed  func(r Role) bool
}

// transitions is the complete lifecycle table. Anything not listed is
// an invalid transition regardless of who asks.
var transitions = []transition{
	{StatusPending, StatusAccepted, func(r Role) bool { return r == RoleSeller }},
	{StatusPending, StatusRejected, func(r Role) bool { return r == RoleSeller || r == RoleBuyer }},
	{StatusAccepted, StatusRejected, func(r Role) bool { return r == RoleSeller }},
	{StatusAccepted, StatusCompleted, func(r Role) bool { return r == RoleSeller || r == RoleBuyer }},
}

var (
	ErrNotParty          = errors.New("user is not a party to this offer")
	ErrInvalidTransition = errors.New("invalid offer status transition")
	ErrNotPending        = errors.New("offer is not pending")
	ErrNotCompleted      = errors.New("offer is not completed")
	ErrAlreadyReviewed   = errors.New("party has already reviewed this offer")
)

// NewOffer creates a pending offer from buyer to the announcement's
// seller. A buyer cannot make an offer on their own announcement.
func NewOffer(announcementID, buyerID, sellerID uuid.UUID, amount values.Money, message string) (*Offer, error) {
	if announcementID == uuid.Nil {
		return nil, fmt.Errorf("announcement ID is required")
	}
	if buyerID == uuid.Nil || sellerID == uuid.Nil {
		return nil, fmt.Errorf("buyer and seller IDs are required")
	}
	if buyerID == sellerID {
		return nil, fmt.Errorf("cannot make an offer on your own announcement")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("offer amount must be positive, got %s", amount)
	}
	if len(message) > 1000 {
		return nil, fmt.Errorf("message must not exceed 1000 characters")
	}

	now := time.Now()
	return &Offer{
		ID:             uuid.New(),
		AnnouncementID: announcementID,
		BuyerID:        buyerID,
		SellerID:       sellerID,
		Amount:         amount,
		Message:        message,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Transition moves the offer to the target status on behalf of
// requester, consulting the lifecycle table. It returns ErrNotParty
// when the requester is neither buyer nor seller and
// ErrInvalidTransition when the table has no matching row or the
// requester's role may not drive it.
func (o *Offer) Transition(requester uuid.UUID, to Status) error {
	role := o.RoleOf(requester)
	if role == RoleNone {
		return ErrNotParty
	}
	for _, t := range transitions {
		if t.from != o.Status || t.to != to {
			continue
		}
		if !t.allowed(role) {
			return fmt.Errorf("%w: %s cannot move offer from %s to %s", ErrInvalidTransition, role, o.Status, to)
		}
		o.apply(to)
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
}

func (o *Offer) apply(to Status) {
	now := time.Now()
	o.Status = to
	o.UpdatedAt = now
	switch to {
	case StatusAccepted:
		o.AcceptedAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	}
}

// Counter replaces the amount on the table with a counter-offer from
// the given party. Only pending offers can be countered, only by a
// party, and not twice in a row by the same party.
func (o *Offer) Counter(requester uuid.UUID, amount values.Money, message string) error {
	role := o.RoleOf(requester)
	if role == RoleNone {
		return ErrNotParty
	}
	if o.Status != StatusPending {
		return fmt.Errorf("%w: cannot counter an offer in status %s", ErrNotPending, o.Status)
	}
	if o.CounterBy != nil && *o.CounterBy == requester {
		return fmt.Errorf("waiting for the other party to respond to your counter-offer")
	}
	if o.CounterBy == nil && role == RoleBuyer {
		return fmt.Errorf("the original offer amount is yours, wait for the seller to respond")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("counter-offer amount must be positive, got %s", amount)
	}
	if len(message) > 1000 {
		return fmt.Errorf("message must not exceed 1000 characters")
	}

	o.Amount = amount
	o.Message = message
	o.CounterBy = &requester
	o.UpdatedAt = time.Now()
	return nil
}

// MarkReviewed records that one side has submitted its review. The
// flag goes from false to true exactly once, and only while the offer
// is completed.
func (o *Offer) MarkReviewed(reviewer uuid.UUID) error {
	if o.Status != StatusCompleted {
		return fmt.Errorf("%w: reviews require a completed offer, status is %s", ErrNotCompleted, o.Status)
	}
	switch o.RoleOf(reviewer) {
	case RoleBuyer:
		if o.BuyerReviewed {
			return ErrAlreadyReviewed
		}
		o.BuyerReviewed = true
	case RoleSeller:
		if o.SellerReviewed {
			return ErrAlreadyReviewed
		}
		o.SellerReviewed = true
	default:
		return ErrNotParty
	}
	o.UpdatedAt = time.Now()
	return nil
}

// HasReviewed reports whether the given party already reviewed.
func (o *Offer) HasReviewed(userID uuid.UUID) bool {
	switch o.RoleOf(userID) {
	case RoleBuyer:
		return o.BuyerReviewed
	case RoleSeller:
		return o.SellerReviewed
	default:
		return false
	}
}

// Counterparty returns the other side of the offer relative to userID.
func (o *Offer) Counterparty(userID uuid.UUID) (uuid.UUID, error) {
	switch o.RoleOf(userID) {
	case RoleBuyer:
		return o.SellerID, nil
	case RoleSeller:
		return o.BuyerID, nil
	default:
		return uuid.Nil, ErrNotParty
	}
}
