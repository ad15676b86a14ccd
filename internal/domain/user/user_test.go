package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		hash     string
		userType Type
		wantErr  bool
	}{
		{name: "valid producer", userName: "João Silva", email: "joao@fazenda.com.br", hash: "$2a$10$x", userType: TypeProducer},
		{name: "valid technician", userName: "Maria Santos", email: "maria@agro.tec", hash: "$2a$10$x", userType: TypeTechnician},
		{name: "name too short", userName: "Jo", email: "jo@x.com", hash: "$2a$10$x", userType: TypeProducer, wantErr: true},
		{name: "bad email", userName: "João Silva", email: "not-an-email", hash: "$2a$10$x", userType: TypeProducer, wantErr: true},
		{name: "missing hash", userName: "João Silva", email: "joao@x.com", hash: "", userType: TypeProducer, wantErr: true},
		{name: "unknown type", userName: "João Silva", email: "joao@x.com", hash: "$2a$10$x", userType: Type(9), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.userName, tt.email, tt.hash, tt.userType)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusActive, u.Status)
			assert.True(t, u.IsActive())
			assert.True(t, u.Rating.IsZero())
			assert.Equal(t, 0, u.CompletedDeals)
			assert.False(t, u.Verified)
		})
	}
}

func TestUser_NormalizesEmail(t *testing.T) {
	u, err := NewUser("João Silva", "Joao.Silva@Fazenda.COM", "$2a$10$x", TypeProducer)
	require.NoError(t, err)
	assert.Equal(t, "joao.silva@fazenda.com", u.Email)
}

func TestUser_ApplyReview(t *testing.T) {
	u, err := NewUser("João Silva", "joao@fazenda.com.br", "$2a$10$x", TypeProducer)
	require.NoError(t, err)

	require.NoError(t, u.ApplyReview(4))
	require.NoError(t, u.ApplyReview(5))
	assert.Equal(t, 2, u.Rating.Count())
	assert.InDelta(t, 4.5, u.Rating.Average(), 0.001)

	assert.Error(t, u.ApplyReview(0))
	assert.Equal(t, 2, u.Rating.Count(), "invalid score must not change the aggregate")
}

func TestUser_RaiseVerification(t *testing.T) {
	u, err := NewUser("Maria Santos", "maria@agro.tec", "$2a$10$x", TypeTechnician)
	require.NoError(t, err)

	u.RaiseVerification(VerificationEmail)
	assert.Equal(t, VerificationEmail, u.VerificationLevel)
	assert.False(t, u.Verified)

	u.RaiseVerification(VerificationDocument)
	assert.True(t, u.Verified)

	// levels never go down
	u.RaiseVerification(VerificationPhone)
	assert.Equal(t, VerificationDocument, u.VerificationLevel)
	assert.True(t, u.Verified)
}

func TestParseType(t *testing.T) {
	got, err := ParseType("producer")
	require.NoError(t, err)
	assert.Equal(t, TypeProducer, got)

	got, err = ParseType("technician")
	require.NoError(t, err)
	assert.Equal(t, TypeTechnician, got)

	_, err = ParseType("admin")
	assert.Error(t, err)
}
