// Package auth provides authentication for the habit tracker: registration,
// login, JWT issuance and validation, and password recovery.
// This file defines the request and response payloads of the /auth endpoints.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the login request payload. Login may be a username
// or an email address.
type LoginRequest struct {
	Login    string `json:"login" example:"alice"`
	Password string `json:"password" example:"strongpassword123"`
}

// TokenResponse is returned on successful login or token refresh. UserID and
// Username identify the authenticated user so clients do not need a second
// round-trip after logging in.
type TokenResponse struct {
	UserID       int    `json:"user_id" example:"1"`
	Username     string `json:"username" example:"alice"`
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"3600"` // access token expiry, unix seconds
}

// RefreshTokenRequest represents the token refresh request payload.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RecoverPasswordRequest asks for a temporary password to be issued for the
// account registered under the given email.
type RecoverPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

// ChangePasswordRequest replaces a user's password after verifying the
// current one.
type ChangePasswordRequest struct {
	Username        string `json:"username" example:"alice"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MessageResponse is a generic informational response.
type MessageResponse struct {
	Message string `json:"message" example:"Password updated successfully"`
}
