package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is an identity or credential file a user submits for
// verification. An admin reviews it and approves or rejects it.
type Document struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	Type     Type   `json:"type"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name,omitempty"`

	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Type string

const (
	TypeCPF         Type = "cpf"
	TypeCNPJ        Type = "cnpj"
	TypeRG          Type = "rg"
	TypeCREA        Type = "crea"
	TypeDiploma     Type = "diploma"
	TypeCertificate Type = "certificate"
	TypeOther       Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCPF, TypeCNPJ, TypeRG, TypeCREA, TypeDiploma, TypeCertificate, TypeOther:
		return true
	}
	return false
}

type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func ParseStatus(s string) Status {
	switch s {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}

// NewDocument creates a pending submission for manual review.
func NewDocument(userID uuid.UUID, docType Type, fileURL, fileName string) (*Document, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user ID is required")
	}
	if !docType.Valid() {
		return nil, fmt.Errorf("invalid document type: %q", docType)
	}
	if fileURL == "" {
		return nil, fmt.Errorf("file URL is required")
	}

	now := time.Now()
	return &Document{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      docType,
		FileURL:   fileURL,
		FileName:  fileName,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Approve marks the document verified by the given reviewer.
func (d *Document) Approve(reviewerID uuid.UUID) error {
	if d.Status != StatusPending {
		return fmt.Errorf("only pending documents can be reviewed, status is %s", d.Status)
	}
	now := time.Now()
	d.Status = StatusApproved
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}

// Reject marks the document rejected with a reason for the submitter.
func (d *Document) Reject(reviewerID uuid.UUID, reason string) error {
	if d.Status != StatusPending {
		return fmt.Errorf("only pending documents can be reviewed, status is %s", d.Status)
	}
	if reason == "" {
		return fmt.Errorf("rejection reason is required")
	}
	now := time.Now()
	d.Status = StatusRejected
	d.RejectionReason = reason
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &now
	d.UpdatedAt = now
	return nil
}
