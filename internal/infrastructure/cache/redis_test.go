package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

func newTestCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, nil), mr
}

func testAnnouncement(t *testing.T) *announcement.Announcement {
	t.Helper()
	a, err := announcement.NewAnnouncement(
		uuid.New(),
		"Harvest support, 200ha of corn",
		"Two operators with combine experience",
		announcement.CategoryService,
		values.MustNewMoneyFromFloat(8000.00, "BRL"),
		announcement.PriceDaily,
	)
	require.NoError(t, err)
	return a
}

func TestAnnouncementRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	a := testAnnouncement(t)

	_, ok := c.GetAnnouncement(ctx, a.ID)
	assert.False(t, ok, "miss before set")

	c.SetAnnouncement(ctx, a, time.Minute)

	got, ok := c.GetAnnouncement(ctx, a.ID)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Title, got.Title)
	assert.True(t, a.Price.Equal(got.Price))
}

func TestInvalidateAnnouncement(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	a := testAnnouncement(t)

	c.SetAnnouncement(ctx, a, time.Minute)
	c.InvalidateAnnouncement(ctx, a.ID)

	_, ok := c.GetAnnouncement(ctx, a.ID)
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	a := testAnnouncement(t)

	c.SetAnnouncement(ctx, a, time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetAnnouncement(ctx, a.ID)
	assert.False(t, ok)
}

func TestCorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, mr.Set("announcement:"+id.String(), "{not json"))

	_, ok := c.GetAnnouncement(ctx, id)
	assert.False(t, ok)
	assert.False(t, mr.Exists("announcement:"+id.String()), "corrupt entry must be deleted")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")

	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")
}
