package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/kkcos-go/apperror"
	"github.com/user/kkcos-go/config"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"

	tempPasswordLength   = 8
	tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidEmail reports whether email is well-formed. Every code path that
// stores an email address applies this same check.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// AuthService provides authentication-related services.
type AuthService struct {
	dbPool     *pgxpool.Pool
	authConfig config.AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(dbPool *pgxpool.Pool, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		dbPool:     dbPool,
		authConfig: authConfig,
	}
}

// CustomClaims is the JWT payload: the standard registered claims plus the
// user id and the token's role (access or refresh).
type CustomClaims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if !ValidEmail(req.Email) {
		return nil, apperror.NewValidationError("invalid email format", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashedPassword),
	}

	createdUser, err := s.createUser(ctx, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already registered", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already registered", nil)
			}
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return createdUser, nil
}

// Login authenticates a user and returns tokens.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.getUserByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Do not reveal whether the username or the password was wrong.
			return nil, apperror.NewAuthError("incorrect username or password", nil)
		}
		log.Printf("Database error during login lookup: %v", err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("incorrect username or password", nil)
	}

	return s.generateTokens(user)
}

// RefreshToken validates a refresh token and issues a fresh access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenResponse, error) {
	claims, err := s.validateToken(refreshTokenString, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError(fmt.Sprintf("invalid refresh token: %s", err.Error()), err)
	}

	user, err := s.getUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid refresh token: user no longer exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	newAccessToken, newAccessExpiresAt, err := s.generateSpecificToken(user.ID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	// The refresh token is reused until it expires; rotation is not required
	// at this scale.
	return &TokenResponse{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  newAccessToken,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    newAccessExpiresAt.Unix(),
	}, nil
}

// RecoverPassword issues a temporary password for the account registered
// under email. The outcome is the same whether or not the email exists, so
// the endpoint cannot be used to probe for accounts. Delivery is a log line
// standing in for an outbound email.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}

	tempPassword, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		return apperror.NewInternalError("failed to generate temporary password", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash temporary password", err)
	}

	if err := s.updatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}

	log.Printf("[MOCK EMAIL] To: %s | Subject: Password Recovery | Hello %s, your new temporary password is: %s",
		user.Email, user.Username, tempPassword)
	return nil
}

// ChangePassword replaces a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	user, err := s.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return apperror.NewBadRequestError("incorrect current password", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	if err := s.updatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return apperror.NewDatabaseError("failed to update password", err)
	}
	return nil
}

// generateTokens creates an access and a refresh token for the user.
func (s *AuthService) generateTokens(user *User) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.generateSpecificToken(user.ID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.generateSpecificToken(user.ID, tokenTypeRefresh, s.authConfig.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenResponse{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    accessExpiresAt.Unix(),
	}, nil
}

// generateSpecificToken creates a signed JWT of the given type and duration.
func (s *AuthService) generateSpecificToken(userID int, tokenType string, duration time.Duration) (string, time.Time, error) {
	expirationTime := time.Now().Add(duration)
	claims := &CustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "kkcos",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// validateToken parses and validates a JWT string, checking the signature,
// expiry, and expected token type.
func (s *AuthService) validateToken(tokenString string, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}

// generateTempPassword draws n characters uniformly from the alphanumeric
// alphabet using crypto/rand.
func generateTempPassword(n int) (string, error) {
	result := make([]byte, n)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range result {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = tempPasswordAlphabet[idx.Int64()]
	}
	return string(result), nil
}

// --- Database helpers ---

func (s *AuthService) createUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, password)
              VALUES ($1, $2, $3)
              RETURNING id, created_at`
	err := s.dbPool.QueryRow(ctx, query, user.Username, user.Email, user.HashedPassword).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) getUserByLogin(ctx context.Context, login string) (*User, error) {
	var user User
	var query string
	var arg interface{}

	if strings.Contains(login, "@") {
		query = `SELECT id, username, email, password, created_at FROM users WHERE email = $1`
		arg = strings.ToLower(login)
	} else {
		query = `SELECT id, username, email, password, created_at FROM users WHERE username = $1`
		arg = login
	}

	err := s.dbPool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) getUserByID(ctx context.Context, userID int) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE id = $1`
	err := s.dbPool.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) updatePassword(ctx context.Context, userID int, hashedPassword string) error {
	_, err := s.dbPool.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hashedPassword, userID)
	return err
}

// GetUserByUsername retrieves a user by their username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE username = $1`
	err := s.dbPool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with username '%s' not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE email = $1`
	err := s.dbPool.QueryRow(ctx, query, strings.ToLower(email)).Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with email '%s' not found", email), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return &user, nil
}
