package rest

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	domainerrors "github.com/agroconnect/marketplace-backend/internal/domain/errors"
	"github.com/agroconnect/marketplace-backend/internal/domain/user"
	"github.com/agroconnect/marketplace-backend/internal/service/account"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domainerrors.NewValidationError("INVALID_ID", "id must be a UUID")
	}
	return id, nil
}

// pageParams reads limit/offset query parameters with configured
// defaults.
func (s *Server) pageParams(r *http.Request) (limit, offset int) {
	limit = s.pagination.DefaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > s.pagination.MaxLimit {
		limit = s.pagination.MaxLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	UserType string `json:"user_type" validate:"required,oneof=producer technician"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Location string `json:"location" validate:"omitempty,max=150"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	userType, err := user.ParseType(req.UserType)
	if err != nil {
		writeError(w, r, s.logger, domainerrors.NewValidationError("INVALID_USER_TYPE", err.Error()))
		return
	}

	u, token, err := s.services.Accounts.Register(r.Context(), account.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		UserType: userType,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, authResponse{User: toUserResponse(u, true), Token: token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	u, token, err := s.services.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, authResponse{User: toUserResponse(u, true), Token: token})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	u, err := s.services.Accounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toUserResponse(u, false))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	u, err := s.services.Accounts.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toUserResponse(u, true))
}

type updateProfileRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=3,max=100"`
	Phone        *string  `json:"phone" validate:"omitempty,max=30"`
	Location     *string  `json:"location" validate:"omitempty,max=150"`
	Bio          *string  `json:"bio" validate:"omitempty,max=2000"`
	Website      *string  `json:"website" validate:"omitempty,url"`
	ProfileImage *string  `json:"profile_image" validate:"omitempty,url"`
	Specialties  []string `json:"specialties" validate:"omitempty,dive,min=2,max=60"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	u, err := s.services.Accounts.UpdateProfile(r.Context(), userID, account.UpdateProfileRequest{
		Name:         req.Name,
		Phone:        req.Phone,
		Location:     req.Location,
		Bio:          req.Bio,
		Website:      req.Website,
		ProfileImage: req.ProfileImage,
		Specialties:  req.Specialties,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, toUserResponse(u, true))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	if err := s.services.Accounts.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	if err := s.services.Accounts.Deactivate(r.Context(), userID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUserReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	limit, offset := s.pageParams(r)

	reviews, err := s.services.Reputation.ListForUser(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toReviewResponses(reviews), int64(len(reviews)), limit, offset)
}

func (s *Server) handleListGivenReviews(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFrom(r.Context())
	limit, offset := s.pageParams(r)

	reviews, err := s.services.Reputation.ListGiven(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writePage(w, toReviewResponses(reviews), int64(len(reviews)), limit, offset)
}

func (s *Server) handleGetUserRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	rating, err := s.services.Reputation.GetUserRating(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"average": rating.Average(),
		"count":   rating.Count(),
	})
}
