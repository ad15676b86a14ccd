package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
	"github.com/agroconnect/marketplace-backend/internal/service/listing"
)

// AnnouncementRepository implements listing.AnnouncementRepository and
// the announcement reads of the negotiation service.
type AnnouncementRepository struct {
	db *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

const announcementColumns = `id, seller_id, title, description, category, price, currency,
	price_type, location, images, tags, status, view_count,
	created_at, updated_at, expires_at, deleted_at`

func (r *AnnouncementRepository) Create(ctx context.Context, a *announcement.Announcement) error {
	query := `
		INSERT INTO announcements (` + announcementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	price, _ := a.Price.Value()
	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		a.ID, a.SellerID, a.Title, a.Description, a.Category.String(), price, a.Price.Currency(),
		a.PriceType.String(), a.Location, pq.Array(a.Images), pq.Array(a.Tags),
		a.Status.String(), a.ViewCount,
		a.CreatedAt, a.UpdatedAt, a.ExpiresAt, a.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) GetByID(ctx context.Context, id uuid.UUID) (*announcement.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1 AND deleted_at IS NULL`
	a, err := scanAnnouncement(querierFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return a, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, a *announcement.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $2, description = $3, category = $4, price = $5, currency = $6,
		    price_type = $7, location = $8, images = $9, tags = $10, status = $11,
		    updated_at = $12, expires_at = $13
		WHERE id = $1 AND deleted_at IS NULL`

	price, _ := a.Price.Value()
	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		a.ID, a.Title, a.Description, a.Category.String(), price, a.Price.Currency(),
		a.PriceType.String(), a.Location, pq.Array(a.Images), pq.Array(a.Tags),
		a.Status.String(), a.UpdatedAt, a.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE announcements SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrAnnouncementNotFound
	}
	return nil
}

func (r *AnnouncementRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE announcements SET view_count = view_count + 1 WHERE id = $1`
	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query, id)
	return err
}

func (r *AnnouncementRepository) Search(ctx context.Context, filter listing.SearchFilter) ([]*announcement.Announcement, int64, error) {
	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Query != "" {
		add("(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')", filter.Query)
	}
	if filter.Category != nil {
		add("category = $%d", filter.Category.String())
	}
	if filter.Location != "" {
		add("location ILIKE '%%' || $%d || '%%'", filter.Location)
	}
	if filter.SellerID != nil {
		add("seller_id = $%d", *filter.SellerID)
	}
	if filter.Status != nil {
		add("status = $%d", filter.Status.String())
	} else {
		conds = append(conds, "status = 'active'")
	}
	if filter.MinPrice != nil {
		v, _ := filter.MinPrice.Value()
		add("price >= $%d", v)
	}
	if filter.MaxPrice != nil {
		v, _ := filter.MaxPrice.Value()
		add("price <= $%d", v)
	}

	where := strings.Join(conds, " AND ")
	q := querierFrom(ctx, r.db)

	var total int64
	countQuery := `SELECT COUNT(*) FROM announcements WHERE ` + where
	if err := q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count announcements: %w", err)
	}

	args = append(args, filter.Limit)
	limitClause := fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	limitClause += fmt.Sprintf(" OFFSET $%d", len(args))

	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE ` + where +
		` ORDER BY created_at DESC` + limitClause

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search announcements: %w", err)
	}
	defer rows.Close()

	var results []*announcement.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, a)
	}
	return results, total, rows.Err()
}

func scanAnnouncement(row rowScanner) (*announcement.Announcement, error) {
	var (
		a         announcement.Announcement
		category  string
		price     string
		currency  string
		priceType string
		status    string
		images    pq.StringArray
		tags      pq.StringArray
	)
	err := row.Scan(
		&a.ID, &a.SellerID, &a.Title, &a.Description, &category, &price, &currency,
		&priceType, &a.Location, &images, &tags, &status, &a.ViewCount,
		&a.CreatedAt, &a.UpdatedAt, &a.ExpiresAt, &a.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedCategory, err := announcement.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("invalid stored category: %w", err)
	}
	a.Category = parsedCategory

	parsedPriceType, err := announcement.ParsePriceType(priceType)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price type: %w", err)
	}
	a.PriceType = parsedPriceType
	a.Status = announcement.ParseStatus(status)
	a.Images = images
	a.Tags = tags

	money, err := values.NewMoneyFromString(price, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price: %w", err)
	}
	a.Price = money
	return &a, nil
}
