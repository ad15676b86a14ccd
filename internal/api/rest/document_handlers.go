package rest

import (
	"net/http"

	"github.com/agroconnect/marketplace-backend/internal/domain/document"
	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
)

type submitDocumentRequest struct {
	Type     string `json:"type" validate:"required,oneof=cpf cnpj rg crea diploma certificate other"`
	FileURL  string `json:"file_url" validate:"required,url"`
	FileName string `json:"file_name" validate:"omitempty,max=255"`
}

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req submitDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	d, err := s.services.Verification.Submit(r.Context(), userID, document.Type(req.Type), req.FileURL, req.FileName)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, toDocumentResponse(d))
}

func (s *Server) handleListMyDocuments(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	docs, err := s.services.Verification.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toDocumentResponses(docs))
}

func (s *Server) handleListPendingDocuments(w http.ResponseWriter, r *http.Request) {
	limit, offset := s.pageParams(r)
	docs, err := s.services.Verification.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toDocumentResponses(docs), int64(len(docs)), limit, offset)
}

func (s *Server) handleApproveDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	d, err := s.services.Verification.Approve(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toDocumentResponse(d))
}

type rejectDocumentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (s *Server) handleRejectDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var req rejectDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if req.Reason == "" {
		writeError(w, r, s.logger, domainerrors.NewValidationError("MISSING_REASON", "rejection reason is required"))
		return
	}

	d, err := s.services.Verification.Reject(r.Context(), userID, id, req.Reason)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toDocumentResponse(d))
}

func (s *Server) handleActivityFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	limit, offset := s.pageParams(r)

	entries, err := s.services.Activities.Feed(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toActivityResponses(entries), int64(len(entries)), limit, offset)
}
