package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
)

var validate = validator.New()

// envelope is the uniform response shape.
type envelope struct {
	Data  any        `json:"data,omitempty"`
	Meta  *meta      `json:"meta,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type meta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type errorBody struct {
	Type    string         `json:"type"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

func writePage(w http.ResponseWriter, data any, total int64, limit, offset int) {
	writeJSON(w, http.StatusOK, envelope{
		Data: data,
		Meta: &meta{Total: total, Limit: limit, Offset: offset},
	})
}

// writeError maps application errors onto HTTP statuses. Unknown
// errors become opaque 500s; the real cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode >= 500 {
			logger.ErrorContext(r.Context(), "request failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		writeJSON(w, appErr.StatusCode, envelope{Error: &errorBody{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}})
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]any, len(validationErrs))
		for _, fe := range validationErrs {
			details[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, envelope{Error: &errorBody{
			Type:    string(domainerrors.ErrorTypeValidation),
			Code:    "INVALID_REQUEST",
			Message: "request validation failed",
			Details: details,
		}})
		return
	}

	logger.ErrorContext(r.Context(), "unhandled error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, envelope{Error: &errorBody{
		Type:    string(domainerrors.ErrorTypeInternal),
		Message: "internal server error",
	}})
}

// decodeJSON parses and validates a request body.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domainerrors.NewValidationError("INVALID_JSON", "request body is not valid JSON: "+err.Error())
	}
	return validate.Struct(dst)
}
