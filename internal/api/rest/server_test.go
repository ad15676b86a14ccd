package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/auth"
	"github.com/agroconnect/marketplace-backend/internal/service/negotiation"
	"github.com/agroconnect/marketplace-backend/internal/service/reputation"
	"github.com/agroconnect/marketplace-backend/internal/service/verification"
	"github.com/agroconnect/marketplace-backend/internal/testutil/fixtures"
	"github.com/agroconnect/marketplace-backend/internal/testutil/mocks"
)

type testEnv struct {
	server *Server
	tokens *auth.TokenService

	offers        *mocks.OfferRepository
	announcements *mocks.AnnouncementRepository
	users         *mocks.UserRepository
	reviews       *mocks.ReviewRepository
	documents     *mocks.DocumentRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tokens:        auth.NewTokenService("test-secret", time.Hour),
		offers:        new(mocks.OfferRepository),
		announcements: new(mocks.AnnouncementRepository),
		users:         new(mocks.UserRepository),
		reviews:       new(mocks.ReviewRepository),
		documents:     new(mocks.DocumentRepository),
	}

	tx := new(mocks.TransactionManager)
	recorder := new(mocks.ActivityRecorder)

	services := Services{
		Negotiations: negotiation.NewService(env.offers, env.announcements, env.users, tx, recorder, nil),
		Reputation:   reputation.NewService(env.reviews, env.offers, env.users, tx, recorder, nil),
		Verification: verification.NewService(env.documents, env.users, tx, recorder, nil),
	}
	env.server = NewServer(services, env.tokens, nil, Options{})
	return env
}

func (e *testEnv) request(t *testing.T, method, path string, body any, as *user.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		token, err := e.tokens.Issue(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func userWithID(t *testing.T, id uuid.UUID) *user.User {
	t.Helper()
	u := fixtures.NewUserBuilder(t).Build()
	u.ID = id
	return u
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/api/v1/offers", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/offers", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		rec := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreateOfferEndpoint(t *testing.T) {
	t.Run("creates an offer", func(t *testing.T) {
		env := newTestEnv(t)
		ann := fixtures.NewAnnouncementBuilder(t).Build()
		buyer := userWithID(t, uuid.New())

		env.announcements.On("GetByID", mock.Anything, ann.ID).Return(ann, nil)
		env.offers.On("HasPendingFromBuyer", mock.Anything, ann.ID, buyer.ID).Return(false, nil)
		env.offers.On("Create", mock.Anything, mock.Anything).Return(nil)

		rec := env.request(t, http.MethodPost, "/api/v1/offers", map[string]any{
			"announcement_id": ann.ID,
			"amount":          "1200.00",
			"currency":        "BRL",
			"message":         "can start monday",
		}, buyer)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Data struct {
				Status string `json:"status"`
				Amount struct {
					Amount string `json:"amount"`
				} `json:"amount"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp.Data.Status)
		assert.Equal(t, "1200.00", resp.Data.Amount.Amount)
	})

	t.Run("unknown announcement is 404", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.announcements.On("GetByID", mock.Anything, id).Return(nil, domainerrors.ErrAnnouncementNotFound)

		rec := env.request(t, http.MethodPost, "/api/v1/offers", map[string]any{
			"announcement_id": id,
			"amount":          "1200.00",
			"currency":        "BRL",
		}, userWithID(t, uuid.New()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodPost, "/api/v1/offers", map[string]any{
			"amount": "1200.00",
		}, userWithID(t, uuid.New()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateOfferStatusEndpoint(t *testing.T) {
	t.Run("seller accepts", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Build()
		seller := userWithID(t, o.SellerID)

		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)
		env.offers.On("Update", mock.Anything, o).Return(nil)
		env.offers.On("RejectOtherPending", mock.Anything, o.AnnouncementID, o.ID).Return(int64(0), nil)

		rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/offers/%s/status", o.ID),
			map[string]any{"status": "accepted"}, seller)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("invalid transition is 422", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Build()
		seller := userWithID(t, o.SellerID)
		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)

		rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/offers/%s/status", o.ID),
			map[string]any{"status": "completed"}, seller)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("stranger is 403", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Build()
		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)

		rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/offers/%s/status", o.ID),
			map[string]any{"status": "accepted"}, userWithID(t, uuid.New()))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("a status outside the enum is 400", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Build()

		rec := env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/offers/%s/status", o.ID),
			map[string]any{"status": "cancelled"}, userWithID(t, o.SellerID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReviewEndpoints(t *testing.T) {
	t.Run("can-review reports eligibility", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Completed().Build()
		buyer := userWithID(t, o.BuyerID)
		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)

		rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/offers/%s/can-review", o.ID), nil, buyer)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data reputation.Eligibility `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Allowed)
		require.NotNil(t, resp.Data.CounterpartyID)
		assert.Equal(t, o.SellerID, *resp.Data.CounterpartyID)
	})

	t.Run("record review on a completed offer", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Completed().Build()
		buyer := userWithID(t, o.BuyerID)
		seller := userWithID(t, o.SellerID)

		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)
		env.reviews.On("Create", mock.Anything, mock.Anything).Return(nil)
		env.offers.On("Update", mock.Anything, o).Return(nil)
		env.users.On("GetByID", mock.Anything, o.SellerID).Return(seller, nil)
		env.users.On("Update", mock.Anything, seller).Return(nil)

		rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/offers/%s/reviews", o.ID),
			map[string]any{"score": 5, "comment": "great work"}, buyer)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 1, seller.Rating.Count())
	})

	t.Run("review before completion is 422", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Build()
		env.offers.On("GetByID", mock.Anything, o.ID).Return(o, nil)

		rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/offers/%s/reviews", o.ID),
			map[string]any{"score": 5}, userWithID(t, o.BuyerID))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("score outside 1..5 is 400", func(t *testing.T) {
		env := newTestEnv(t)
		o := fixtures.NewOfferBuilder(t).Completed().Build()

		rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/offers/%s/reviews", o.ID),
			map[string]any{"score": 7}, userWithID(t, o.BuyerID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminDocumentEndpoints(t *testing.T) {
	pendingDoc := func(t *testing.T, submitterID uuid.UUID) *document.Document {
		t.Helper()
		d, err := document.NewDocument(submitterID, document.TypeCREA, "https://files.test/crea.pdf", "crea.pdf")
		require.NoError(t, err)
		return d
	}
	adminUser := func(t *testing.T) *user.User {
		t.Helper()
		u := fixtures.NewUserBuilder(t).WithType(user.TypeAdmin).Build()
		return u
	}

	t.Run("non-admin cannot reach the review queue", func(t *testing.T) {
		env := newTestEnv(t)
		doc := pendingDoc(t, uuid.New())

		rec := env.request(t, http.MethodPost,
			fmt.Sprintf("/api/v1/admin/documents/%s/approve", doc.ID), nil, userWithID(t, doc.UserID))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		env.documents.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("admin approves a pending document", func(t *testing.T) {
		env := newTestEnv(t)
		submitter := userWithID(t, uuid.New())
		doc := pendingDoc(t, submitter.ID)
		admin := adminUser(t)

		env.documents.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
		env.documents.On("Update", mock.Anything, doc).Return(nil)
		env.users.On("GetByID", mock.Anything, submitter.ID).Return(submitter, nil)
		env.users.On("Update", mock.Anything, submitter).Return(nil)

		rec := env.request(t, http.MethodPost,
			fmt.Sprintf("/api/v1/admin/documents/%s/approve", doc.ID), nil, admin)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data documentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "approved", resp.Data.Status)
		assert.True(t, submitter.Verified)
	})

	t.Run("listing the queue requires admin", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.request(t, http.MethodGet, "/api/v1/admin/documents", nil, userWithID(t, uuid.New()))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
