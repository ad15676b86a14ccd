package activityfeed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agroconnect/marketplace-backend/internal/domain/activity"
)

// Repository persists feed entries.
type Repository interface {
	Create(ctx context.Context, e *activity.Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*activity.Entry, error)
}

// Service records and serves per-user activity feeds. Recording is
// asynchronous: entries go through a buffered channel and a background
// writer, so the operations that emit them never wait on the feed.
type Service interface {
	Record(ctx context.Context, entry *activity.Entry)
	Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*activity.Entry, error)
	// Close drains the queue and stops the writer.
	Close()
}

type service struct {
	repo    Repository
	logger  *slog.Logger
	queue   chan *activity.Entry
	done    chan struct{}
	closeFn sync.Once
}

const queueSize = 256

// NewService starts the background writer.
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		repo:   repo,
		logger: logger,
		queue:  make(chan *activity.Entry, queueSize),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *service) Record(_ context.Context, entry *activity.Entry) {
	if entry == nil {
		return
	}
	select {
	case s.queue <- entry:
	default:
		// A full queue drops the entry rather than blocking callers.
		s.logger.Warn("activity queue full, dropping entry",
			slog.String("type", string(entry.Type)),
			slog.String("user_id", entry.UserID.String()),
		)
	}
}

func (s *service) run() {
	defer close(s.done)
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to persist activity entry",
				slog.String("type", string(entry.Type)),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

func (s *service) Feed(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*activity.Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) Close() {
	s.closeFn.Do(func() {
		close(s.queue)
		<-s.done
	})
}
