// Package users provides the user directory and profile management. The
// directory is the read-only reference data joined into rankings and chat;
// profile endpoints let an authenticated user see and update their own
// record.
package users

import "time"

// UserSummary is the public directory view of a user.
type UserSummary struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
}

// UserProfileResponse is the authenticated user's own profile.
type UserProfileResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// UpdateUserProfileRequest carries the updatable profile fields. Pointers
// allow partial updates: a nil field is left untouched.
type UpdateUserProfileRequest struct {
	Email *string `json:"email,omitempty" example:"alice.new@example.com"`
}
