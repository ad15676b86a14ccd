// Package cache provides the Redis-backed read cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
)

// Redis caches hot announcement reads. All operations are best-effort:
// a broken Redis degrades to database reads, never to request errors.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, url string, poolSize int, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}, nil
}

// NewWithClient wraps an existing client; used by tests.
func NewWithClient(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func announcementKey(id uuid.UUID) string {
	return "announcement:" + id.String()
}

func (r *Redis) GetAnnouncement(ctx context.Context, id uuid.UUID) (*announcement.Announcement, bool) {
	data, err := r.client.Get(ctx, announcementKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WarnContext(ctx, "cache read failed", slog.String("error", err.Error()))
		}
		return nil, false
	}

	var a announcement.Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		r.logger.WarnContext(ctx, "cache entry corrupt, dropping", slog.String("key", announcementKey(id)))
		r.client.Del(ctx, announcementKey(id))
		return nil, false
	}
	return &a, true
}

func (r *Redis) SetAnnouncement(ctx context.Context, a *announcement.Announcement, ttl time.Duration) {
	data, err := json.Marshal(a)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal announcement for cache", slog.String("error", err.Error()))
		return
	}
	if err := r.client.Set(ctx, announcementKey(a.ID), data, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache write failed", slog.String("error", err.Error()))
	}
}

func (r *Redis) InvalidateAnnouncement(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, announcementKey(id)).Err(); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}
