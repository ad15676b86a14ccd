package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
)

// DocumentRepository implements verification.DocumentRepository.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, user_id, type, file_url, file_name, status,
	rejection_reason, reviewed_by, reviewed_at, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, d *document.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		d.ID, d.UserID, string(d.Type), d.FileURL, d.FileName, d.Status.String(),
		d.RejectionReason, d.ReviewedBy, d.ReviewedAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(querierFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainerrors.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) Update(ctx context.Context, d *document.Document) error {
	query := `
		UPDATE documents
		SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1`

	result, err := querierFrom(ctx, r.db).ExecContext(ctx, query,
		d.ID, d.Status.String(), d.RejectionReason, d.ReviewedBy, d.ReviewedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domainerrors.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *DocumentRepository) ListPending(ctx context.Context, limit, offset int) ([]*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *DocumentRepository) list(ctx context.Context, query string, args ...any) ([]*document.Document, error) {
	rows, err := querierFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func scanDocument(row rowScanner) (*document.Document, error) {
	var (
		d       document.Document
		docType string
		status  string
	)
	err := row.Scan(
		&d.ID, &d.UserID, &docType, &d.FileURL, &d.FileName, &status,
		&d.RejectionReason, &d.ReviewedBy, &d.ReviewedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Type = document.Type(docType)
	d.Status = document.ParseStatus(status)
	return &d, nil
}
