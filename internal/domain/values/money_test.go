package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  bool
	}{
		{name: "valid BRL", amount: "1500.00", currency: "BRL"},
		{name: "valid USD", amount: "0.01", currency: "USD"},
		{name: "negative allowed for adjustments", amount: "-10.00", currency: "BRL"},
		{name: "unsupported currency", amount: "10.00", currency: "GBP", wantErr: true},
		{name: "empty currency", amount: "10.00", currency: "", wantErr: true},
		{name: "garbage amount", amount: "abc", currency: "BRL", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestMoney_Compare(t *testing.T) {
	a := MustNewMoneyFromFloat(100.50, "BRL")
	b := MustNewMoneyFromFloat(200.00, "BRL")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))

	assert.True(t, a.IsPositive())
	assert.False(t, a.IsZero())

	usd := MustNewMoneyFromFloat(100.50, "USD")
	assert.Panics(t, func() { a.Compare(usd) })
}

func TestMoney_Add(t *testing.T) {
	a := MustNewMoneyFromFloat(10.10, "BRL")
	b := MustNewMoneyFromFloat(0.20, "BRL")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.30 BRL", sum.String())

	usd := MustNewMoneyFromFloat(1.00, "USD")
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestMoney_DatabaseRoundTrip(t *testing.T) {
	m := MustNewMoneyFromFloat(1234.56, "BRL")

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "1234.56", v)

	var scanned Money
	require.NoError(t, scanned.Scan("1234.56"))
	assert.True(t, m.Equal(scanned))
}
