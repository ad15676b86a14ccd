package account_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
	"github.com/agroconnect/marketplace-backend/internal/service/account"
	"github.com/agroconnect/marketplace-backend/internal/testutil/fixtures"
	"github.com/agroconnect/marketplace-backend/internal/testutil/mocks"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakeTokens struct{}

func (fakeTokens) Issue(u *user.User) (string, error) { return "token-" + u.ID.String(), nil }

func newService(t *testing.T) (account.Service, *mocks.UserRepository) {
	t.Helper()
	users := new(mocks.UserRepository)
	return account.NewService(users, fakeHasher{}, fakeTokens{}, nil), users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account and issues a token", func(t *testing.T) {
		svc, users := newService(t)
		users.On("GetByEmail", ctx, "joao@fazenda.com.br").Return(nil, domainerrors.ErrUserNotFound)
		users.On("Create", ctx, mock.AnythingOfType("*user.User")).Return(nil)

		u, token, err := svc.Register(ctx, account.RegisterRequest{
			Name:     "João Silva",
			Email:    "Joao@Fazenda.com.br",
			Password: "long-enough-password",
			UserType: user.TypeProducer,
		})
		require.NoError(t, err)
		assert.Equal(t, "joao@fazenda.com.br", u.Email)
		assert.Equal(t, "hashed:long-enough-password", u.PasswordHash)
		assert.NotEmpty(t, token)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, users := newService(t)
		existing := fixtures.NewUserBuilder(t).Build()
		users.On("GetByEmail", ctx, "producer@test.agro").Return(existing, nil)

		_, _, err := svc.Register(ctx, account.RegisterRequest{
			Name:     "Someone Else",
			Email:    "producer@test.agro",
			Password: "long-enough-password",
			UserType: user.TypeProducer,
		})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeConflict))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc, _ := newService(t)
		_, _, err := svc.Register(ctx, account.RegisterRequest{
			Name:     "João Silva",
			Email:    "joao@fazenda.com.br",
			Password: "short",
			UserType: user.TypeProducer,
		})
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeValidation))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, users := newService(t)
		u := fixtures.NewUserBuilder(t).Build()
		u.PasswordHash = "hashed:correct-password"
		users.On("GetByEmail", ctx, u.Email).Return(u, nil)

		got, token, err := svc.Login(ctx, u.Email, "correct-password")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users := newService(t)
		u := fixtures.NewUserBuilder(t).Build()
		u.PasswordHash = "hashed:correct-password"
		users.On("GetByEmail", ctx, u.Email).Return(u, nil)

		_, _, err := svc.Login(ctx, u.Email, "wrong")
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeUnauthorized))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		svc, users := newService(t)
		users.On("GetByEmail", ctx, "nobody@test.agro").Return(nil, domainerrors.ErrUserNotFound)

		_, _, err := svc.Login(ctx, "nobody@test.agro", "whatever")
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeUnauthorized))
	})

	t.Run("suspended account cannot log in", func(t *testing.T) {
		svc, users := newService(t)
		u := fixtures.NewUserBuilder(t).Build()
		u.Status = user.StatusSuspended
		u.PasswordHash = "hashed:correct-password"
		users.On("GetByEmail", ctx, u.Email).Return(u, nil)

		_, _, err := svc.Login(ctx, u.Email, "correct-password")
		assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeUnauthorized))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newService(t)
	u := fixtures.NewUserBuilder(t).Build()
	u.PasswordHash = "hashed:old-password-1"
	users.On("GetByID", ctx, u.ID).Return(u, nil)
	users.On("Update", ctx, u).Return(nil)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old-password-1", "new-password-22"))
	assert.Equal(t, "hashed:new-password-22", u.PasswordHash)

	err := svc.ChangePassword(ctx, u.ID, "not-the-current", "another-password")
	assert.True(t, domainerrors.IsType(err, domainerrors.ErrorTypeUnauthorized))
}
