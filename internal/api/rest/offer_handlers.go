package rest

import (
	"net/http"

	"github.com/google/uuid"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/offer"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
	"github.com/agroconnect/marketplace-backend/internal/service/negotiation"
)

type createOfferRequest struct {
	AnnouncementID uuid.UUID `json:"announcement_id" validate:"required"`
	Amount         string    `json:"amount" validate:"required"`
	Currency       string    `json:"currency" validate:"required,oneof=BRL USD EUR"`
	Message        string    `json:"message" validate:"omitempty,max=1000"`
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req createOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	amount, err := values.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_AMOUNT", err.Error()))
		return
	}

	o, err := s.services.Negotiations.CreateOffer(r.Context(), userID, negotiation.CreateOfferRequest{
		AnnouncementID: req.AnnouncementID,
		Amount:         amount,
		Message:        req.Message,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.metrics.OfferCreated(r.Context(), o.Amount.ToFloat64())
	writeData(w, http.StatusCreated, toOfferResponse(o))
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	o, err := s.services.Negotiations.GetOffer(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toOfferResponse(o))
}

func (s *Server) handleListMyOffers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	limit, offset := s.pageParams(r)

	filter := negotiation.Filter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := offer.ParseStatus(v)
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_STATUS", err.Error()))
			return
		}
		filter.Status = &status
	}

	offers, err := s.services.Negotiations.ListByUser(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toOfferResponses(offers), int64(len(offers)), limit, offset)
}

func (s *Server) handleListAnnouncementOffers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	limit, offset := s.pageParams(r)

	offers, err := s.services.Negotiations.ListByAnnouncement(r.Context(), userID, id,
		negotiation.Filter{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toOfferResponses(offers), int64(len(offers)), limit, offset)
}

type counterOfferRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,oneof=BRL USD EUR"`
	Message  string `json:"message" validate:"omitempty,max=1000"`
}

func (s *Server) handleCounterOffer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req counterOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	amount, err := values.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_AMOUNT", err.Error()))
		return
	}

	o, err := s.services.Negotiations.CounterOffer(r.Context(), userID, id, amount, req.Message)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toOfferResponse(o))
}

type updateOfferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected completed"`
}

func (s *Server) handleUpdateOfferStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req updateOfferStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	status, err := offer.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_STATUS", err.Error()))
		return
	}

	o, err := s.services.Negotiations.UpdateOfferStatus(r.Context(), userID, id, status)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.metrics.OfferTransition(r.Context(), status.String())
	writeData(w, http.StatusOK, toOfferResponse(o))
}

func (s *Server) handleCanReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	elig, err := s.services.Reputation.CanReview(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, elig)
}

type recordReviewRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req recordReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	rev, err := s.services.Reputation.RecordReview(r.Context(), userID, id, req.Score, req.Comment)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.metrics.ReviewRecorded(r.Context(), req.Score)
	writeData(w, http.StatusCreated, toReviewResponse(rev))
}

type respondToReviewRequest struct {
	Response string `json:"response" validate:"required,max=2000"`
}

func (s *Server) handleRespondToReview(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req respondToReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	rev, err := s.services.Reputation.RespondToReview(r.Context(), userID, id, req.Response)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toReviewResponse(rev))
}
