package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
	"github.com/agroconnect/marketplace-backend/internal/service/negotiation"
)

// OfferRepository implements negotiation.OfferRepository over
// PostgreSQL.
type OfferRepository struct {
	db *sql.DB
}

func NewOfferRepository(db *sql.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, announcement_id, buyer_id, seller_id, amount, currency, message,
	status, counter_by, buyer_reviewed, seller_reviewed,
	created_at, updated_at, accepted_at, completed_at`

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	amount, _ := o.Amount.Value()
	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		o.ID, o.AnnouncementID, o.BuyerID, o.SellerID,
		amount, o.Amount.Currency(), o.Message,
		o.Status.String(), o.CounterBy, o.BuyerReviewed, o.SellerReviewed,
		o.CreatedAt, o.UpdatedAt, o.AcceptedAt, o.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.NewConflictError("a pending offer already exists on this announcement")
		}
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(querierFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return o, nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	query := `
		UPDATE offers
		SET amount = $2, currency = $3, message = $4, status = $5, counter_by = $6,
		    buyer_reviewed = $7, seller_reviewed = $8,
		    updated_at = $9, accepted_at = $10, completed_at = $11
		WHERE id = $1`

	amount, _ := o.Amount.Value()
	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		o.ID, amount, o.Amount.Currency(), o.Message, o.Status.String(), o.CounterBy,
		o.BuyerReviewed, o.SellerReviewed,
		o.UpdatedAt, o.AcceptedAt, o.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepository) ListByAnnouncement(ctx context.Context, announcementID uuid.UUID, filter negotiation.Filter) ([]*offer.Offer, error) {
	return r.list(ctx, "announcement_id = $1", []any{announcementID}, filter)
}

func (r *OfferRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter negotiation.Filter) ([]*offer.Offer, error) {
	return r.list(ctx, "(buyer_id = $1 OR seller_id = $1)", []any{userID}, filter)
}

func (r *OfferRepository) list(ctx context.Context, where string, args []any, filter negotiation.Filter) ([]*offer.Offer, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + offerColumns + ` FROM offers WHERE ` + where)

	if filter.Status != nil {
		args = append(args, filter.Status.String())
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := querierFrom(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var offers []*offer.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *OfferRepository) HasPendingFromBuyer(ctx context.Context, announcementID, buyerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM offers
			WHERE announcement_id = $1 AND buyer_id = $2 AND status = 'pending'
		)`

	var exists bool
	err := querierFrom(ctx, r.db).QueryRowContext(ctx, query, announcementID, buyerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending offers: %w", err)
	}
	return exists, nil
}

func (r *OfferRepository) RejectOtherPending(ctx context.Context, announcementID, exceptOfferID uuid.UUID) (int64, error) {
	query := `
		UPDATE offers
		SET status = 'rejected', updated_at = NOW()
		WHERE announcement_id = $1 AND id <> $2 AND status = 'pending'`

	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query, announcementID, exceptOfferID)
	if err != nil {
		return 0, fmt.Errorf("failed to reject competing offers: %w", err)
	}
	return result.RowsAffected()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*offer.Offer, error) {
	var (
		o        offer.Offer
		amount   string
		currency string
		status   string
	)
	err := row.Scan(
		&o.ID, &o.AnnouncementID, &o.BuyerID, &o.SellerID,
		&amount, &currency, &o.Message,
		&status, &o.CounterBy, &o.BuyerReviewed, &o.SellerReviewed,
		&o.CreatedAt, &o.UpdatedAt, &o.AcceptedAt, &o.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	money, err := values.NewMoneyFromString(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount: %w", err)
	}
	o.Amount = money

	parsed, err := offer.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("invalid stored status: %w", err)
	}
	o.Status = parsed
	return &o, nil
}
