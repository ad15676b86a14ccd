package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// User is a marketplace participant: a producer posting announcements
// or a technician offering services, or both sides at different times.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Type         Type      `json:"user_type"`
	Status       Status    `json:"status"`

	Phone        string  `json:"phone,omitempty"`
	Location     string  `json:"location,omitempty"`
	ProfileImage string  `json:"profile_image,omitempty"`
	Bio          string  `json:"bio,omitempty"`
	Website      string  `json:"website,omitempty"`
	Specialties  []string `json:"specialties,omitempty"`

	// Reputation
	Rating         values.Rating `json:"rating"`
	CompletedDeals int           `json:"completed_deals"`

	// Verification
	Verified          bool `json:"is_verified"`
	VerificationLevel int  `json:"verification_level"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type Type int

const (
	TypeProducer Type = iota
	TypeTechnician
	// TypeAdmin reviews verification documents. Admin accounts are
	// provisioned directly, never through registration.
	TypeAdmin
)

func (t Type) String() string {
	switch t {
	case TypeProducer:
		return "producer"
	case TypeTechnician:
		return "technician"
	case TypeAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseType converts a wire string to a user Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "producer":
		return TypeProducer, nil
	case "technician":
		return TypeTechnician, nil
	case "admin":
		return TypeAdmin, nil
	default:
		return 0, fmt.Errorf("invalid user type: %q", s)
	}
}

type Status int

const (
	StatusActive Status = iota
	StatusSuspended
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSuspended:
		return "suspended"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored string to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "suspended":
		return StatusSuspended
	case "closed":
		return StatusClosed
	default:
		return StatusActive
	}
}

// Verification levels mirror the document verification ladder.
const (
	VerificationNone     = 0
	VerificationEmail    = 1
	VerificationPhone    = 2
	VerificationDocument = 3
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NewUser creates an active, unverified user with a zero rating.
// The password hash is supplied by the auth layer; the domain never
// sees plaintext passwords.
func NewUser(name, email, passwordHash string, userType Type) (*User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 100 {
		return nil, fmt.Errorf("name must be between 3 and 100 characters")
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("invalid email: %q", email)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	switch userType {
	case TypeProducer, TypeTechnician, TypeAdmin:
	default:
		return nil, fmt.Errorf("invalid user type")
	}

	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Type:         userType,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyReview folds a received review score into the reputation
// aggregate. The running mean is rounded to one decimal place.
func (u *User) ApplyReview(score int) error {
	rating, err := u.Rating.Apply(score)
	if err != nil {
		return err
	}
	u.Rating = rating
	u.UpdatedAt = time.Now()
	return nil
}

// RecordCompletedDeal increments the completed negotiation counter.
func (u *User) RecordCompletedDeal() {
	u.CompletedDeals++
	u.UpdatedAt = time.Now()
}

// RaiseVerification bumps the verification level; levels never go down.
func (u *User) RaiseVerification(level int) {
	if level > u.VerificationLevel {
		u.VerificationLevel = level
		u.Verified = u.VerificationLevel >= VerificationDocument
		u.UpdatedAt = time.Now()
	}
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DeletedAt == nil
}
