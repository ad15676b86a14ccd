package verification

import (
	"context"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
)

// DocumentRepository persists verification documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *document.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error)
	Update(ctx context.Context, d *document.Document) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*document.Document, error)
	ListPending(ctx context.Context, limit, offset int) ([]*document.Document, error)
}

// UserRepository raises verification levels on approval.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	ExecuteInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ActivityRecorder appends feed entries, best-effort.
type ActivityRecorder interface {
	Record(ctx context.Context, entry *activity.Entry)
}
