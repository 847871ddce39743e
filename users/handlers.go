package users

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/auth"
)

// UserHandlers exposes user endpoints over HTTP.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates a new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user routes onto the given router.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers())
	r.Get("/me", h.HandleGetProfile())
	r.Put("/me", h.HandleUpdateProfile())
}

// HandleListUsers godoc
// @Summary List users
// @Description Returns the public directory of registered users.
// @Tags users
// @Produce json
// @Success 200 {array} UserSummary
// @Failure 500 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandlers) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := h.service.ListUsers(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

// HandleGetProfile godoc
// @Summary Get own profile
// @Description Returns the profile of the authenticated user.
// @Tags users
// @Produce json
// @Success 200 {object} UserProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		profile, err := h.service.GetUserProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateProfile godoc
// @Summary Update own profile
// @Description Updates fields of the authenticated user's profile.
// @Tags users
// @Accept json
// @Produce json
// @Param profile body UpdateUserProfileRequest true "Fields to update"
// @Success 200 {object} UserProfileResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (h *UserHandlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		var req UpdateUserProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		profile, err := h.service.UpdateUserProfile(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}
