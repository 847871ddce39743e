package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/auth"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// UserService provides user directory and profile operations.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// ListUsers returns the public directory of all users, ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	rows, err := s.db.Query(ctx, `SELECT id, username FROM users ORDER BY id`)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	defer rows.Close()

	summaries := make([]UserSummary, 0)
	for rows.Next() {
		var summary UserSummary
		if err := rows.Scan(&summary.ID, &summary.Username); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list users", err)
	}
	return summaries, nil
}

// GetUserProfile retrieves a user's profile by id.
func (s *UserService) GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error) {
	query := `SELECT id, username, email, created_at FROM users WHERE id = $1`
	var profile UserProfileResponse
	err := s.db.QueryRow(ctx, query, userID).Scan(&profile.ID, &profile.Username, &profile.Email, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &profile, nil
}

// UpdateUserProfile updates the caller's profile. Only provided fields are
// changed; an update to an email already held by another user is a conflict.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID int, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	if req.Email == nil || *req.Email == "" {
		return s.GetUserProfile(ctx, userID)
	}
	if !auth.ValidEmail(*req.Email) {
		return nil, apperror.NewValidationError("invalid email format", nil)
	}

	query := `UPDATE users
              SET email = $1
              WHERE id = $2
              RETURNING id, username, email, created_at`
	var profile UserProfileResponse
	err := s.db.QueryRow(ctx, query, strings.ToLower(*req.Email), userID).Scan(
		&profile.ID, &profile.Username, &profile.Email, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", userID), nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError(fmt.Sprintf("email '%s' already exists", *req.Email), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user profile", err)
	}
	return &profile, nil
}
