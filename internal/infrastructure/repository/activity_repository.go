package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
)

// ActivityRepository implements activityfeed.Repository. Metadata is
// stored as JSONB.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, e *activity.Entry) error {
	var metadata []byte
	if e.Metadata != nil {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activities (id, user_id, type, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		e.ID, e.UserID, string(e.Type), string(e.EntityType), e.EntityID, metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*activity.Entry, error) {
	query := `
		SELECT id, user_id, type, entity_type, entity_id, metadata, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := querierFrom(ctx, r.db).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var entries []*activity.Entry
	for rows.Next() {
		var (
			e          activity.Entry
			entryType  string
			entityType string
			metadata   []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &entryType, &entityType, &e.EntityID, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = activity.Type(entryType)
		e.EntityType = activity.EntityType(entityType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal activity metadata: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
