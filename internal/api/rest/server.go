// Package rest exposes the marketplace over HTTP.
package rest

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/auth"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/cache"
	"github.com/agroconnect/marketplace-backend/internal/infrastructure/config"
	"github.com/agroconnect/marketplace-backend/internal/metrics"
	"github.com/agroconnect/marketplace-backend/internal/service/account"
	"github.com/agroconnect/marketplace-backend/internal/service/activityfeed"
	"github.com/agroconnect/marketplace-backend/internal/service/listing"
	"github.com/agroconnect/marketplace-backend/internal/service/negotiation"
	"github.com/agroconnect/marketplace-backend/internal/service/reputation"
	"github.com/agroconnect/marketplace-backend/internal/service/verification"
)

var errMissingToken = domainerrors.NewUnauthorizedError("missing bearer token")

// Services groups the use cases the server exposes.
type Services struct {
	Accounts     account.Service
	Listings     listing.Service
	Negotiations negotiation.Service
	Reputation   reputation.Service
	Verification verification.Service
	Activities   activityfeed.Service
}

// Server is the HTTP front of the marketplace.
type Server struct {
	services   Services
	tokens     *auth.TokenService
	logger     *slog.Logger
	metrics    *metrics.Registry
	limiter    *cache.RateLimiter
	db         *sql.DB
	pagination config.PaginationConfig

	httpServer *http.Server
}

// Options configures NewServer. Metrics, Limiter, and DB may be nil.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Pagination   config.PaginationConfig
	Metrics      *metrics.Registry
	Limiter      *cache.RateLimiter
	DB           *sql.DB
}

// NewServer wires routes and middleware.
func NewServer(services Services, tokens *auth.TokenService, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Pagination.DefaultLimit <= 0 {
		opts.Pagination = config.PaginationConfig{DefaultLimit: 10, MaxLimit: 100}
	}

	s := &Server{
		services:   services,
		tokens:     tokens,
		logger:     logger,
		metrics:    opts.Metrics,
		limiter:    opts.Limiter,
		db:         opts.DB,
		pagination: opts.Pagination,
	}

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}
	return s
}

// Handler builds the routed handler with the middleware stack applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// public
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/announcements", s.handleSearchAnnouncements)
	mux.HandleFunc("GET /api/v1/announcements/{id}", s.handleGetAnnouncement)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("GET /api/v1/users/{id}/reviews", s.handleListUserReviews)
	mux.HandleFunc("GET /api/v1/users/{id}/rating", s.handleGetUserRating)

	// authenticated
	authed := func(h http.HandlerFunc) http.Handler { return s.authenticate(h) }
	mux.Handle("GET /api/v1/users/me", authed(s.handleMe))
	mux.Handle("PUT /api/v1/users/me", authed(s.handleUpdateProfile))
	mux.Handle("PUT /api/v1/users/me/password", authed(s.handleChangePassword))
	mux.Handle("DELETE /api/v1/users/me", authed(s.handleDeactivate))

	mux.Handle("POST /api/v1/announcements", authed(s.handleCreateAnnouncement))
	mux.Handle("PUT /api/v1/announcements/{id}", authed(s.handleUpdateAnnouncement))
	mux.Handle("DELETE /api/v1/announcements/{id}", authed(s.handleDeleteAnnouncement))
	mux.Handle("PATCH /api/v1/announcements/{id}/status", authed(s.handleSetAnnouncementStatus))
	mux.Handle("GET /api/v1/announcements/{id}/offers", authed(s.handleListAnnouncementOffers))

	mux.Handle("POST /api/v1/offers", authed(s.handleCreateOffer))
	mux.Handle("GET /api/v1/offers", authed(s.handleListMyOffers))
	mux.Handle("GET /api/v1/offers/{id}", authed(s.handleGetOffer))
	mux.Handle("POST /api/v1/offers/{id}/counter", authed(s.handleCounterOffer))
	mux.Handle("PATCH /api/v1/offers/{id}/status", authed(s.handleUpdateOfferStatus))
	mux.Handle("GET /api/v1/offers/{id}/can-review", authed(s.handleCanReview))
	mux.Handle("POST /api/v1/offers/{id}/reviews", authed(s.handleRecordReview))

	mux.Handle("GET /api/v1/reviews/given", authed(s.handleListGivenReviews))
	mux.Handle("POST /api/v1/reviews/{id}/response", authed(s.handleRespondToReview))

	mux.Handle("POST /api/v1/documents", authed(s.handleSubmitDocument))
	mux.Handle("GET /api/v1/documents", authed(s.handleListMyDocuments))
	admin := func(h http.HandlerFunc) http.Handler { return s.authenticate(s.requireAdmin(h)) }
	mux.Handle("GET /api/v1/admin/documents", admin(s.handleListPendingDocuments))
	mux.Handle("POST /api/v1/admin/documents/{id}/approve", admin(s.handleApproveDocument))
	mux.Handle("POST /api/v1/admin/documents/{id}/reject", admin(s.handleRejectDocument))

	mux.Handle("GET /api/v1/activities", authed(s.handleActivityFeed))

	return chain(mux,
		recoverPanics(s.logger),
		requestID,
		logging(s.logger),
		rateLimit(s.limiter),
	)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope{Error: &errorBody{
				Type:    "unavailable",
				Message: "database unreachable",
			}})
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}
