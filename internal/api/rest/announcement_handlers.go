package rest

import (
	"net/http"
	"time"

	"github.com/agroconnect/marketplace-backend/internal/domain/announcement"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/values"
	"github.com/agroconnect/marketplace-backend/internal/service/listing"
)

type createAnnouncementRequest struct {
	Title       string     `json:"title" validate:"required,min=5,max=150"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Category    string     `json:"category" validate:"required,oneof=service equipment supplies consulting other"`
	Amount      string     `json:"amount" validate:"required"`
	Currency    string     `json:"currency" validate:"required,oneof=BRL USD EUR"`
	PriceType   string     `json:"price_type" validate:"required,oneof=fixed negotiable hourly daily"`
	Location    string     `json:"location" validate:"omitempty,max=150"`
	Images      []string   `json:"images" validate:"omitempty,max=10,dive,url"`
	Tags        []string   `json:"tags" validate:"omitempty,max=10,dive,min=2,max=40"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (s *Server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req createAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	category, err := announcement.ParseCategory(req.Category)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_CATEGORY", err.Error()))
		return
	}
	priceType, err := announcement.ParsePriceType(req.PriceType)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE_TYPE", err.Error()))
		return
	}
	price, err := values.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE", err.Error()))
		return
	}

	a, err := s.services.Listings.Create(r.Context(), userID, listing.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Price:       price,
		PriceType:   priceType,
		Location:    req.Location,
		Images:      req.Images,
		Tags:        req.Tags,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, toAnnouncementResponse(a))
}

func (s *Server) handleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	a, err := s.services.Listings.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toAnnouncementResponse(a))
}

func (s *Server) handleSearchAnnouncements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := s.pageParams(r)
	filter := listing.SearchFilter{
		Query:    q.Get("q"),
		Location: q.Get("location"),
		Limit:    limit,
		Offset:   offset,
	}

	if v := q.Get("category"); v != "" {
		category, err := announcement.ParseCategory(v)
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_CATEGORY", err.Error()))
			return
		}
		filter.Category = &category
	}
	if v := q.Get("min_price"); v != "" {
		price, err := values.NewMoneyFromString(v, "BRL")
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE", err.Error()))
			return
		}
		filter.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := values.NewMoneyFromString(v, "BRL")
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE", err.Error()))
			return
		}
		filter.MaxPrice = &price
	}

	results, total, err := s.services.Listings.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toAnnouncementResponses(results), total, limit, offset)
}

type updateAnnouncementRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=5,max=150"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Amount      *string  `json:"amount"`
	Currency    *string  `json:"currency" validate:"omitempty,oneof=BRL USD EUR"`
	PriceType   *string  `json:"price_type" validate:"omitempty,oneof=fixed negotiable hourly daily"`
	Location    *string  `json:"location" validate:"omitempty,max=150"`
	Images      []string `json:"images" validate:"omitempty,max=10,dive,url"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=2,max=40"`
}

func (s *Server) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req updateAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	update := listing.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Images:      req.Images,
		Tags:        req.Tags,
	}
	if req.Amount != nil {
		currency := "BRL"
		if req.Currency != nil {
			currency = *req.Currency
		}
		price, err := values.NewMoneyFromString(*req.Amount, currency)
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE", err.Error()))
			return
		}
		update.Price = &price
	}
	if req.PriceType != nil {
		priceType, err := announcement.ParsePriceType(*req.PriceType)
		if err != nil {
			writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_PRICE_TYPE", err.Error()))
			return
		}
		update.PriceType = &priceType
	}

	a, err := s.services.Listings.Update(r.Context(), userID, id, update)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toAnnouncementResponse(a))
}

func (s *Server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.services.Listings.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAnnouncementStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active paused"`
}

func (s *Server) handleSetAnnouncementStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req setAnnouncementStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	a, err := s.services.Listings.SetStatus(r.Context(), userID, id, announcement.ParseStatus(req.Status))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toAnnouncementResponse(a))
}
