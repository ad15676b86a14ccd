package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	offerID := uuid.New()
	reviewerID := uuid.New()
	revieweeID := uuid.New()

	tests := []struct {
		name       string
		offerID    uuid.UUID
		reviewerID uuid.UUID
		revieweeID uuid.UUID
		score      int
		wantErr    bool
	}{
		{name: "valid", offerID: offerID, reviewerID: reviewerID, revieweeID: revieweeID, score: 5},
		{name: "minimum score", offerID: offerID, reviewerID: reviewerID, revieweeID: revieweeID, score: 1},
		{name: "score too low", offerID: offerID, reviewerID: reviewerID, revieweeID: revieweeID, score: 0, wantErr: true},
		{name: "score too high", offerID: offerID, reviewerID: reviewerID, revieweeID: revieweeID, score: 6, wantErr: true},
		{name: "self review", offerID: offerID, reviewerID: reviewerID, revieweeID: reviewerID, score: 5, wantErr: true},
		{name: "missing offer", offerID: uuid.Nil, reviewerID: reviewerID, revieweeID: revieweeID, score: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReview(tt.offerID, tt.reviewerID, tt.revieweeID, tt.score, "great work")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.score, r.Score)
			assert.Nil(t, r.RespondedAt)
		})
	}
}

func TestReview_Respond(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), uuid.New(), 4, "solid job")
	require.NoError(t, err)

	t.Run("only the reviewee can respond", func(t *testing.T) {
		assert.Error(t, r.Respond(r.ReviewerID, "thanks"))
		assert.Error(t, r.Respond(uuid.New(), "thanks"))
	})

	t.Run("reviewee responds once", func(t *testing.T) {
		require.NoError(t, r.Respond(r.RevieweeID, "thanks, pleasure working with you"))
		assert.NotNil(t, r.RespondedAt)

		assert.Error(t, r.Respond(r.RevieweeID, "again"), "second response must fail")
	})

	t.Run("empty response rejected", func(t *testing.T) {
		fresh, err := NewReview(uuid.New(), uuid.New(), uuid.New(), 4, "")
		require.NoError(t, err)
		assert.Error(t, fresh.Respond(fresh.RevieweeID, "   "))
	})
}
