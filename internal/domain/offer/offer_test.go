package offer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroconnect/marketplace-backend/internal/domain/values"
)

func newTestOffer(t *testing.T) *Offer {
	t.Helper()
	o, err := NewOffer(uuid.New(), uuid.New(), uuid.New(), values.MustNewMoneyFromFloat(500.00, "BRL"), "can start next week")
	require.NoError(t, err)
	return o
}

func TestNewOffer(t *testing.T) {
	announcementID := uuid.New()
	buyerID := uuid.New()
	sellerID := uuid.New()
	amount := values.MustNewMoneyFromFloat(1200.00, "BRL")

	tests := []struct {
		name           string
		announcementID uuid.UUID
		buyerID        uuid.UUID
		sellerID       uuid.UUID
		amount         values.Money
		wantErr        string
	}{
		{
			name:           "valid offer",
			announcementID: announcementID, buyerID: buyerID, sellerID: sellerID,
			amount: amount,
		},
		{
			name:           "missing announcement",
			announcementID: uuid.Nil, buyerID: buyerID, sellerID: sellerID,
			amount:  amount,
			wantErr: "announcement ID is required",
		},
		{
			name:           "buyer is seller",
			announcementID: announcementID, buyerID: buyerID, sellerID: buyerID,
			amount:  amount,
			wantErr: "own announcement",
		},
		{
			name:           "zero amount",
			announcementID: announcementID, buyerID: buyerID, sellerID: sellerID,
			amount:  values.Zero("BRL"),
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOffer(tt.announcementID, tt.buyerID, tt.sellerID, tt.amount, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, o.Status)
			assert.False(t, o.BuyerReviewed)
			assert.False(t, o.SellerReviewed)
			assert.Nil(t, o.AcceptedAt)
		})
	}
}

func TestOffer_Transition(t *testing.T) {
	tests := []struct {
		name      string
		from      Status
		to        Status
		requester func(o *Offer) uuid.UUID
		wantErr   error
	}{
		{
			name: "seller accepts pending",
			from: StatusPending, to: StatusAccepted,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
		},
		{
			name: "buyer cannot accept own offer",
			from: StatusPending, to: StatusAccepted,
			requester: func(o *Offer) uuid.UUID { return o.BuyerID },
			wantErr:   ErrInvalidTransition,
		},
		{
			name: "seller rejects pending",
			from: StatusPending, to: StatusRejected,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
		},
		{
			name: "buyer withdraws pending",
			from: StatusPending, to: StatusRejected,
			requester: func(o *Offer) uuid.UUID { return o.BuyerID },
		},
		{
			name: "buyer completes accepted",
			from: StatusAccepted, to: StatusCompleted,
			requester: func(o *Offer) uuid.UUID { return o.BuyerID },
		},
		{
			name: "seller completes accepted",
			from: StatusAccepted, to: StatusCompleted,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
		},
		{
			name: "seller cancels accepted",
			from: StatusAccepted, to: StatusRejected,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
		},
		{
			name: "buyer cannot cancel accepted",
			from: StatusAccepted, to: StatusRejected,
			requester: func(o *Offer) uuid.UUID { return o.BuyerID },
			wantErr:   ErrInvalidTransition,
		},
		{
			name: "pending cannot jump to completed",
			from: StatusPending, to: StatusCompleted,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
			wantErr:   ErrInvalidTransition,
		},
		{
			name: "rejected is terminal",
			from: StatusRejected, to: StatusAccepted,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
			wantErr:   ErrInvalidTransition,
		},
		{
			name: "completed is terminal",
			from: StatusCompleted, to: StatusRejected,
			requester: func(o *Offer) uuid.UUID { return o.SellerID },
			wantErr:   ErrInvalidTransition,
		},
		{
			name: "stranger cannot transition",
			from: StatusPending, to: StatusAccepted,
			requester: func(o *Offer) uuid.UUID { return uuid.New() },
			wantErr:   ErrNotParty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOffer(t)
			o.Status = tt.from

			err := o.Transition(tt.requester(o), tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, o.Status, "failed transition must not change status")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, o.Status)
		})
	}
}

func TestOffer_TransitionTimestamps(t *testing.T) {
	o := newTestOffer(t)

	require.NoError(t, o.Transition(o.SellerID, StatusAccepted))
	require.NotNil(t, o.AcceptedAt)
	assert.Nil(t, o.CompletedAt)

	require.NoError(t, o.Transition(o.BuyerID, StatusCompleted))
	require.NotNil(t, o.CompletedAt)
}

func TestOffer_Counter(t *testing.T) {
	t.Run("seller counters then buyer counters back", func(t *testing.T) {
		o := newTestOffer(t)
		sellerAmount := values.MustNewMoneyFromFloat(650.00, "BRL")

		require.NoError(t, o.Counter(o.SellerID, sellerAmount, "that covers travel"))
		assert.Equal(t, StatusPending, o.Status, "countering keeps the offer pending")
		assert.True(t, o.Amount.Equal(sellerAmount))
		require.NotNil(t, o.CounterBy)
		assert.Equal(t, o.SellerID, *o.CounterBy)

		buyerAmount := values.MustNewMoneyFromFloat(600.00, "BRL")
		require.NoError(t, o.Counter(o.BuyerID, buyerAmount, "meet in the middle"))
		assert.True(t, o.Amount.Equal(buyerAmount))
		assert.Equal(t, o.BuyerID, *o.CounterBy)
	})

	t.Run("buyer cannot counter the original offer", func(t *testing.T) {
		o := newTestOffer(t)
		err := o.Counter(o.BuyerID, values.MustNewMoneyFromFloat(450.00, "BRL"), "")
		require.Error(t, err)
	})

	t.Run("same party cannot counter twice in a row", func(t *testing.T) {
		o := newTestOffer(t)
		require.NoError(t, o.Counter(o.SellerID, values.MustNewMoneyFromFloat(650.00, "BRL"), ""))
		err := o.Counter(o.SellerID, values.MustNewMoneyFromFloat(700.00, "BRL"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "other party")
	})

	t.Run("cannot counter a non-pending offer", func(t *testing.T) {
		o := newTestOffer(t)
		require.NoError(t, o.Transition(o.SellerID, StatusAccepted))
		err := o.Counter(o.SellerID, values.MustNewMoneyFromFloat(650.00, "BRL"), "")
		require.ErrorIs(t, err, ErrNotPending)
	})

	t.Run("stranger cannot counter", func(t *testing.T) {
		o := newTestOffer(t)
		err := o.Counter(uuid.New(), values.MustNewMoneyFromFloat(650.00, "BRL"), "")
		require.ErrorIs(t, err, ErrNotParty)
	})
}

func TestOffer_MarkReviewed(t *testing.T) {
	completed := func(t *testing.T) *Offer {
		o := newTestOffer(t)
		require.NoError(t, o.Transition(o.SellerID, StatusAccepted))
		require.NoError(t, o.Transition(o.BuyerID, StatusCompleted))
		return o
	}

	t.Run("both sides review once", func(t *testing.T) {
		o := completed(t)

		require.NoError(t, o.MarkReviewed(o.BuyerID))
		assert.True(t, o.BuyerReviewed)
		assert.False(t, o.SellerReviewed)

		require.NoError(t, o.MarkReviewed(o.SellerID))
		assert.True(t, o.SellerReviewed)
	})

	t.Run("second review by the same side fails", func(t *testing.T) {
		o := completed(t)
		require.NoError(t, o.MarkReviewed(o.BuyerID))
		require.ErrorIs(t, o.MarkReviewed(o.BuyerID), ErrAlreadyReviewed)
	})

	t.Run("cannot review before completion", func(t *testing.T) {
		o := newTestOffer(t)
		require.ErrorIs(t, o.MarkReviewed(o.BuyerID), ErrNotCompleted)

		require.NoError(t, o.Transition(o.SellerID, StatusAccepted))
		require.ErrorIs(t, o.MarkReviewed(o.BuyerID), ErrNotCompleted)
	})

	t.Run("stranger cannot review", func(t *testing.T) {
		o := completed(t)
		require.ErrorIs(t, o.MarkReviewed(uuid.New()), ErrNotParty)
	})
}

func TestOffer_Counterparty(t *testing.T) {
	o := newTestOffer(t)

	other, err := o.Counterparty(o.BuyerID)
	require.NoError(t, err)
	assert.Equal(t, o.SellerID, other)

	other, err = o.Counterparty(o.SellerID)
	require.NoError(t, err)
	assert.Equal(t, o.BuyerID, other)

	_, err = o.Counterparty(uuid.New())
	require.ErrorIs(t, err, ErrNotParty)
}
