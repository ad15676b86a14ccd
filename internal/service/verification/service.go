package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// Service handles identity and credential verification.
type Service interface {
	// Submit files a document for manual review.
	Submit(ctx context.Context, userID uuid.UUID, docType document.Type, fileURL, fileName string) (*document.Document, error)
	// Approve verifies a pending document and raises the submitter's
	// verification level in the same transaction.
	Approve(ctx context.Context, reviewerID, documentID uuid.UUID) (*document.Document, error)
	// Reject declines a pending document with a reason.
	Reject(ctx context.Context, reviewerID, documentID uuid.UUID, reason string) (*document.Document, error)
	// ListForUser returns a user's own submissions.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*document.Document, error)
	// ListPending returns the review queue.
	ListPending(ctx context.Context, limit, offset int) ([]*document.Document, error)
}

type service struct {
	documents  DocumentRepository
	users      UserRepository
	txManager  TransactionManager
	activities ActivityRecorder
	logger     *slog.Logger
}

// NewService wires the verification use case.
func NewService(documents DocumentRepository, users UserRepository, txManager TransactionManager, activities ActivityRecorder, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		documents:  documents,
		users:      users,
		txManager:  txManager,
		activities: activities,
		logger:     logger,
	}
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, docType document.Type, fileURL, fileName string) (*document.Document, error) {
	d, err := document.NewDocument(userID, docType, fileURL, fileName)
	if err != nil {
		return nil, domainerrors.NewValidationError("INVALID_DOCUMENT", err.Error())
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.record(ctx, userID, activity.TypeDocumentSubmitted, d.ID, map[string]any{"type": string(docType)})
	return d, nil
}

func (s *service) Approve(ctx context.Context, reviewerID, documentID uuid.UUID) (*document.Document, error) {
	d, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.UserID == reviewerID {
		return nil, domainerrors.NewForbiddenError("cannot review your own document")
	}
	if err := d.Approve(reviewerID); err != nil {
		return nil, domainerrors.NewBusinessError("INVALID_STATE", err.Error())
	}

	err = s.txManager.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		if err := s.documents.Update(ctx, d); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		u, err := s.users.GetByID(ctx, d.UserID)
		if err != nil {
			return err
		}
		u.RaiseVerification(user.VerificationDocument)
		if err := s.users.Update(ctx, u); err != nil {
			return fmt.Errorf("failed to update user verification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, d.UserID, activity.TypeDocumentVerified, d.ID, nil)
	s.logger.InfoContext(ctx, "document approved",
		slog.String("document_id", d.ID.String()),
		slog.String("user_id", d.UserID.String()),
	)
	return d, nil
}

func (s *service) Reject(ctx context.Context, reviewerID, documentID uuid.UUID, reason string) (*document.Document, error) {
	d, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.UserID == reviewerID {
		return nil, domainerrors.NewForbiddenError("cannot review your own document")
	}
	if err := d.Reject(reviewerID, reason); err != nil {
		return nil, domainerrors.NewBusinessError("INVALID_STATE", err.Error())
	}
	if err := s.documents.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return d, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*document.Document, error) {
	return s.documents.ListByUser(ctx, userID)
}

func (s *service) ListPending(ctx context.Context, limit, offset int) ([]*document.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.documents.ListPending(ctx, limit, offset)
}

func (s *service) record(ctx context.Context, userID uuid.UUID, activityType activity.Type, entityID uuid.UUID, metadata map[string]any) {
	if s.activities == nil {
		return
	}
	entry, err := activity.NewEntry(userID, activityType, activity.EntityDocument, entityID, metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build activity entry", slog.String("error", err.Error()))
		return
	}
	s.activities.Record(ctx, entry)
}
