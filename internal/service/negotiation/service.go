package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

// Service drives the offer lifecycle between buyers and sellers.
type Service interface {
	// CreateOffer opens a pending negotiation on an announcement on
	// behalf of the buyer.
	CreateOffer(ctx context.Context, buyerID uuid.UUID, req CreateOfferRequest) (*offer.Offer, error)
	// CounterOffer replaces the amount on the table. The offer stays
	// pending and the other party has to respond.
	CounterOffer(ctx context.Context, requesterID, offerID uuid.UUID, amount values.Money, message string) (*offer.Offer, error)
	// UpdateOfferStatus moves the offer through its lifecycle on
	// behalf of the requester. Accepting also rejects every other
	// pending offer on the same announcement atomically.
	UpdateOfferStatus(ctx context.Context, requesterID, offerID uuid.UUID, to offer.Status) (*offer.Offer, error)
	// GetOffer returns an offer to one of its parties.
	GetOffer(ctx context.Context, requesterID, offerID uuid.UUID) (*offer.Offer, error)
	// ListByAnnouncement returns the offers on an announcement to its
	// seller.
	ListByAnnouncement(ctx context.Context, requesterID, announcementID uuid.UUID, filter Filter) ([]*offer.Offer, error)
	// ListByUser returns the offers the user participates in, as
	// buyer or seller.
	ListByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]*offer.Offer, error)
}

// CreateOfferRequest carries the buyer's opening bid.
type CreateOfferRequest struct {
	AnnouncementID uuid.UUID
	Amount         values.Money
	Message        string
}

type service struct {
	offers        OfferRepository
	announcements AnnouncementRepository
	users         UserRepository
	txManager     TransactionManager
	activities    ActivityRecorder
	logger        *slog.Logger
}

// NewService wires the negotiation use case.
func NewService(
	offers OfferRepository,
	announcements AnnouncementRepository,
	users UserRepository,
	txManager TransactionManager,
	activities ActivityRecorder,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		offers:        offers,
		announcements: announcements,
		users:         users,
		txManager:     txManager,
		activities:    activities,
		logger:        logger,
	}
}

func (s *service) CreateOffer(ctx context.Context, buyerID uuid.UUID, req CreateOfferRequest) (*offer.Offer, error) {
	ann, err := s.announcements.GetByID(ctx, req.AnnouncementID)
	if err != nil {
		return nil, err
	}
	if ann.SellerID == buyerID {
		return nil, domainerrors.NewBusinessError("OWN_ANNOUNCEMENT", "cannot make an offer on your own announcement")
	}
	if !ann.IsOpen() {
		return nil, domainerrors.NewBusinessError("ANNOUNCEMENT_CLOSED",
			fmt.Sprintf("announcement is not accepting offers, status is %s", ann.Status))
	}

	o, err := offer.NewOffer(ann.ID, buyerID, ann.SellerID, req.Amount, req.Message)
	if err != nil {
		return nil, domainerrors.NewValidationError("INVALID_OFFER", err.Error())
	}

	// The pending-offer check and the insert share a transaction so
	// concurrent submissions from the same buyer cannot both pass the
	// check. The partial unique index on pending offers backstops it.
	err = s.txManager.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		pending, err := s.offers.HasPendingFromBuyer(ctx, ann.ID, buyerID)
		if err != nil {
			return fmt.Errorf("failed to check pending offers: %w", err)
		}
		if pending {
			return domainerrors.NewConflictError("you already have a pending offer on this announcement")
		}
		if err := s.offers.Create(ctx, o); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ann.SellerID, activity.TypeOfferCreated, o, map[string]any{
		"amount":          o.Amount.String(),
		"announcement_id": ann.ID.String(),
	})
	s.logger.InfoContext(ctx, "offer created",
		slog.String("offer_id", o.ID.String()),
		slog.String("announcement_id", ann.ID.String()),
		slog.String("buyer_id", buyerID.String()),
	)
	return o, nil
}

func (s *service) CounterOffer(ctx context.Context, requesterID, offerID uuid.UUID, amount values.Money, message string) (*offer.Offer, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := o.Counter(requesterID, amount, message); err != nil {
		return nil, mapOfferError(err)
	}
	if err := s.offers.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	other, _ := o.Counterparty(requesterID)
	s.record(ctx, other, activity.TypeOfferCountered, o, map[string]any{
		"amount": o.Amount.String(),
	})
	return o, nil
}

func (s *service) UpdateOfferStatus(ctx context.Context, requesterID, offerID uuid.UUID, to offer.Status) (*offer.Offer, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := o.Transition(requesterID, to); err != nil {
		return nil, mapOfferError(err)
	}

	switch to {
	case offer.StatusAccepted:
		err = s.acceptTx(ctx, o)
	case offer.StatusCompleted:
		err = s.completeTx(ctx, o)
	default:
		err = s.offers.Update(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	other, _ := o.Counterparty(requesterID)
	s.record(ctx, other, activityForStatus(to), o, nil)
	s.logger.InfoContext(ctx, "offer status updated",
		slog.String("offer_id", o.ID.String()),
		slog.String("status", to.String()),
		slog.String("requester_id", requesterID.String()),
	)
	return o, nil
}

// acceptTx persists the acceptance and rejects every competing pending
// offer in the same transaction, so an announcement never ends up with
// two live deals.
func (s *service) acceptTx(ctx context.Context, o *offer.Offer) error {
	return s.txManager.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		if err := s.offers.Update(ctx, o); err != nil {
			return fmt.Errorf("failed to update offer: %w", err)
		}
		rejected, err := s.offers.RejectOtherPending(ctx, o.AnnouncementID, o.ID)
		if err != nil {
			return fmt.Errorf("failed to reject competing offers: %w", err)
		}
		if rejected > 0 {
			s.logger.InfoContext(ctx, "competing offers rejected",
				slog.String("announcement_id", o.AnnouncementID.String()),
				slog.Int64("count", rejected),
			)
		}
		return nil
	})
}

// completeTx persists the completion, closes the announcement, and
// bumps both parties' deal counters in one transaction.
func (s *service) completeTx(ctx context.Context, o *offer.Offer) error {
	return s.txManager.ExecuteInTransaction(ctx, func(ctx context.Context) error {
		if err := s.offers.Update(ctx, o); err != nil {
			return fmt.Errorf("failed to update offer: %w", err)
		}

		ann, err := s.announcements.GetByID(ctx, o.AnnouncementID)
		if err != nil {
			return err
		}
		if ann.Status != announcement.StatusSold {
			ann.MarkSold()
			if err := s.announcements.Update(ctx, ann); err != nil {
				return fmt.Errorf("failed to close announcement: %w", err)
			}
		}

		for _, id := range []uuid.UUID{o.BuyerID, o.SellerID} {
			u, err := s.users.GetByID(ctx, id)
			if err != nil {
				return err
			}
			u.RecordCompletedDeal()
			if err := s.users.Update(ctx, u); err != nil {
				return fmt.Errorf("failed to update user %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *service) GetOffer(ctx context.Context, requesterID, offerID uuid.UUID) (*offer.Offer, error) {
	o, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.RoleOf(requesterID) == offer.RoleNone {
		return nil, domainerrors.NewForbiddenError("only the buyer or seller can view this offer")
	}
	return o, nil
}

func (s *service) ListByAnnouncement(ctx context.Context, requesterID, announcementID uuid.UUID, filter Filter) ([]*offer.Offer, error) {
	ann, err := s.announcements.GetByID(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if ann.SellerID != requesterID {
		return nil, domainerrors.NewForbiddenError("only the announcement owner can list its offers")
	}
	return s.offers.ListByAnnouncement(ctx, announcementID, filter)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, filter Filter) ([]*offer.Offer, error) {
	return s.offers.ListByUser(ctx, userID, filter)
}

// record appends a feed entry for userID, logging instead of failing
// when the entry cannot be built or stored.
func (s *service) record(ctx context.Context, userID uuid.UUID, activityType activity.Type, o *offer.Offer, metadata map[string]any) {
	if s.activities == nil {
		return
	}
	entry, err := activity.NewEntry(userID, activityType, activity.EntityOffer, o.ID, metadata)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build activity entry", slog.String("error", err.Error()))
		return
	}
	s.activities.Record(ctx, entry)
}

func activityForStatus(to offer.Status) activity.Type {
	switch to {
	case offer.StatusAccepted:
		return activity.TypeOfferAccepted
	case offer.StatusRejected:
		return activity.TypeOfferRejected
	case offer.StatusCompleted:
		return activity.TypeOfferCompleted
	default:
		return activity.TypeOfferCreated
	}
}

// mapOfferError translates domain sentinel errors into the API error
// taxonomy: not-a-party is forbidden, everything else about the
// lifecycle is an invalid-state business error.
func mapOfferError(err error) error {
	switch {
	case errors.Is(err, offer.ErrNotParty):
		return domainerrors.NewForbiddenError("you are not a party to this offer")
	case errors.Is(err, offer.ErrInvalidTransition),
		errors.Is(err, offer.ErrNotPending),
		errors.Is(err, offer.ErrNotCompleted),
		errors.Is(err, offer.ErrAlreadyReviewed):
		return domainerrors.NewBusinessError("INVALID_STATE", err.Error())
	default:
		return domainerrors.NewValidationError("INVALID_ARGUMENT", err.Error())
	}
}
