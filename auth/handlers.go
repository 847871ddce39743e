package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/kkcos-go/apperror"
)

// Handlers wraps the AuthService to provide HTTP handlers for the /auth routes.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary User Registration
// @Description Registers a new user in the system.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.User "User created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - Username or email already registered"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" || req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("username, email, and password are required", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary User Login
// @Description Logs in an existing user and returns access and refresh tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.TokenResponse "Login successful, tokens provided"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Login == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("login and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRefreshToken godoc
// @Summary Refresh Access Token
// @Description Provides a new access token using a valid refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest true "Refresh token details"
// @Success 200 {object} auth.TokenResponse "Tokens refreshed successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Missing refresh token"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or expired refresh token"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()
		if req.RefreshToken == "" {
			WriteError(w, r, apperror.NewBadRequestError("refresh_token is required", nil))
			return
		}

		resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRecoverPassword godoc
// @Summary Recover Password
// @Description Issues a temporary password for the account registered under the given email. The response is identical whether or not the email exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param recoverBody body auth.RecoverPasswordRequest true "Account email"
// @Success 200 {object} auth.MessageResponse "Recovery initiated"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Missing email"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/recover-password [post]
func (h *Handlers) HandleRecoverPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecoverPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()
		if req.Email == "" {
			WriteError(w, r, apperror.NewBadRequestError("email is required", nil))
			return
		}

		if err := h.service.RecoverPassword(r.Context(), req.Email); err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "If this email is registered, you will receive instructions."})
	}
}

// HandleChangePassword godoc
// @Summary Change Password
// @Description Replaces the user's password after verifying the current one.
// @Tags Auth
// @Accept json
// @Produce json
// @Param changeBody body auth.ChangePasswordRequest true "Password change details"
// @Success 200 {object} auth.MessageResponse "Password updated"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Incorrect current password or missing fields"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /auth/change-password [post]
func (h *Handlers) HandleChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()
		if req.Username == "" || req.CurrentPassword == "" || req.NewPassword == "" {
			WriteError(w, r, apperror.NewBadRequestError("username, current_password, and new_password are required", nil))
			return
		}

		if err := h.service.ChangePassword(r.Context(), req); err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
	}
}

// writeJSON serializes data to JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standardized JSON error response.
// Non-AppError values are wrapped as internal errors so clients always see
// the same shape.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred: "+err.Error(), err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
