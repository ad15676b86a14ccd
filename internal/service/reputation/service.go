package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/review"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// Eligibility explains whether a user may review an offer and, when
// they may not, why. CounterpartyID names who the review would be
// about; it is nil only when the requester is not a party at all.
type Eligibility struct {
	Allowed        bool       `json:"allowed"`
	CounterpartyID *uuid.UUID `json:"counterparty_id,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

const (
	ReasonNotParty        = "you are not a party to this offer"
	ReasonNotCompleted    = "the offer is not completed yet"
	ReasonAlreadyReviewed = "you have already reviewed this offer"
)

// Service manages mutual post-deal reviews and the rating aggregates
// they feed.
type Service interface {
	// CanReview reports whether reviewer may review the offer.
	CanReview(ctx context.Context, reviewerID, offerID uuid.UUID) (Eligibility, error)
	// RecordReview stores the review, marks the reviewer's side of the
	// offer as reviewed, and folds the score into the reviewee's
	// rating, all in one transaction.
	RecordReview(ctx context.Context, reviewerID, offerID uuid.UUID, score int, comment string) (*review.Review, error)
	// RespondToReview attaches the reviewee's public reply.
	RespondToReview(ctx context.Context, userID, reviewID uuid.UUID, response string) (*review.Review, error)
	// ListForUser returns the reviews received by a user, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*review.Review, error)
	// ListGiven returns the reviews a user has written, newest first.
	ListGiven(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*review.Review, error)
	// GetUserRating returns a user's current rating aggregate.
	GetUserRating(ctx context.Context, userID uuid.UUID) (values.Rating, error)
}

type service struct {
	reviews    ReviewRepository
	offers     OfferRepository
	users      UserRepository
	txManager  TransactionManager
	activities ActivityRecorder
	logger     *slog.Logger
}

// NewService wires the reputation use case.
func NewService(
	reviews ReviewRepository,
	offers OfferRepository,
	users UserRepository,
	txManager TransactionManager,
	activities ActivityRecorder,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		reviews:    reviews,
		offers:     offers,
		users:      users,
		txManager:  txManager,
		activities: activities,
		logger:     logger,
	}
}

func (s *service) CanReview(ctx context.Context, reviewerID, offerID uuid.UUID) (Eligibility, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return Eligibility{}, err
	}
	return eligibility(o, reviewerID), nil
}

// eligibility checks the gate conditions in order: party first, then
// completion, then the one-review-per-side flag.
func eligibility(o *offer.Offer, reviewerID uuid.UUID) Eligibility {
	counterparty, err := o.Counterparty(reviewerID)
	if err != nil {
		return Eligibility{Reason: ReasonNotParty}
	}
	if o.Status != offer.StatusCompleted {
		return Eligibility{CounterpartyID: &counterparty, Reason: ReasonNotCompleted}
	}
	if o.HasReviewed(reviewerID) {
		return Eligibility{CounterpartyID: &counterparty, Reason: ReasonAlreadyReviewed}
	}
	return Eligibility{Allowed: true, CounterpartyID: &counterparty}
}

func (s *service) RecordReview(ctx context.Context, reviewerID, offerID uuid.UUID, score int, comment string) (*review.Review, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	elig := eligibility(o, reviewerID)
	if !elig.Allowed {
		if elig.Reason == ReasonNotParty {
			return nil, domainerrors.NewForbiddenError(elig.Reason)
		}
		return nil, domainerrors.NewBusinessError("REVIEW_NOT_ALLOWED", elig.Reason)
	}
	revieweeID := *elig.CounterpartyID

	r, err := review.NewReview(o.ID, reviewerID, revieweeID, score, comment)
	if err != nil {
		return nil, domainerrors.NewValidationError("INVALID_REVIEW", err.Error())
	}

	// One transaction covers all three writes: the review row, the
	// reviewed flag on the offer, and the reviewee's rating. A crash
	// between them must not leave the aggregate out of sync.
	err = s.txManager.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		if err := s.reviews.Create(ctx, r); err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		if err := o.MarkReviewed(reviewerID); err != nil {
			return mapReviewError(err)
		}
		if err := s.offers.Update(ctx, o); err != nil {
			return fmt.Errorf("failed to update offer: %w", err)
		}

		reviewee, err := s.users.GetByID(ctx, revieweeID)
		if err != nil {
			return err
		}
		if err := reviewee.ApplyReview(score); err != nil {
			return domainerrors.NewValidationError("INVALID_SCORE", err.Error())
		}
		if err := s.users.Update(ctx, reviewee); err != nil {
			return fmt.Errorf("failed to update reviewee rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, revieweeID, activity.TypeReviewReceived, r.ID, map[string]any{
		"score":    score,
		"offer_id": o.ID.String(),
	})
	s.logger.InfoContext(ctx, "review recorded",
		slog.String("review_id", r.ID.String()),
		slog.String("offer_id", o.ID.String()),
		slog.Int("score", score),
	)
	return r, nil
}

func (s *service) RespondToReview(ctx context.Context, userID, reviewID uuid.UUID, response string) (*review.Review, error) {
	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if userID != r.RevieweeID {
		return nil, domainerrors.NewForbiddenError("only the reviewed party can respond to a review")
	}
	if err := r.Respond(userID, response); err != nil {
		return nil, domainerrors.NewBusinessError("INVALID_RESPONSE", err.Error())
	}
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.record(ctx, r.ReviewerID, activity.TypeReviewResponded, r.ID, nil)
	return r, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	return s.reviews.ListByReviewee(ctx, userID, limit, offset)
}

func (s *service) ListGiven(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*review.Review, error) {
	return s.reviews.ListByReviewer(ctx, userID, limit, offset)
}

func (s *service) GetUserRating(ctx context.Context, userID uuid.UUID) (values.Rating, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return values.Rating{}, err
	}
	return u.Rating, nil
}

func (s *service) record(ctx context.Context, userID uuid.UUID, activityType activity.Type, entityID uuid.UUID, metadata map[string]any) {
	if s.activities == nil {
		return
	}
	entry, err := activity.NewEntry(userID, activityType, activity.EntityReview, entityID, metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build activity entry", slog.String("error", err.Error()))
		return
	}
	s.activities.Record(ctx, entry)
}

func mapReviewError(err error) error {
	switch {
	case errors.Is(err, offer.ErrNotParty):
		return domainerrors.NewForbiddenError(ReasonNotParty)
	case errors.Is(err, offer.ErrNotCompleted):
		return domainerrors.NewBusinessError("REVIEW_NOT_ALLOWED", ReasonNotCompleted)
	case errors.Is(err, offer.ErrAlreadyReviewed):
		return domainerrors.NewBusinessError("REVIEW_NOT_ALLOWED", ReasonAlreadyReviewed)
	default:
		return err
	}
}
