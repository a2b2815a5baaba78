// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hookstash/hookstash/internal/auth"
	"github.com/hookstash/hookstash/internal/metrics"
	"github.com/hookstash/hookstash/internal/model"
	"github.com/hookstash/hookstash/internal/repository"
)

// Auth service errors.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameTooLong  = errors.New("username exceeds maximum length")

	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrRefreshTokenInvalid  = errors.New("invalid refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// UserStore is the persistence gateway for users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UserExistsByUsername(ctx context.Context, username string) (bool, error)
}

// RefreshTokenStore is the persistence gateway for refresh tokens.
type RefreshTokenStore interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// TokenPair is a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult carries the authenticated user and issued tokens.
type LoginResult struct {
	User   *model.User
	Tokens TokenPair
}

// AuthService handles registration, login and refresh-token rotation.
type AuthService struct {
	users   UserStore
	tokens  RefreshTokenStore
	tm      *auth.TokenManager
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens RefreshTokenStore, tm *auth.TokenManager, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		tm:      tm,
		logger:  logger.With("service", "auth"),
		metrics: recorder,
	}
}

// Register creates a new user with a hashed password. Fails with
// ErrUsernameTaken if the username is already registered; the database
// unique constraint backs the pre-check, so a concurrent duplicate still
// surfaces as ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	// Fast path; the unique constraint is the authority.
	exists, err := s.users.UserExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return nil
}

// Login verifies credentials and issues an access/refresh token pair.
// User absence and password mismatch are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.metrics.IncLoginFailure()
			s.logger.Warn("login failed", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLoginSuccess()
	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)

	return &LoginResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh token: the presented token is verified,
// consumed (deleted) and replaced by a brand-new pair. A token can be
// refreshed at most once; a second presentation fails with
// ErrRefreshTokenNotFound.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tm.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.metrics.IncTokenRefreshRejected()
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return nil, ErrRefreshTokenExpired
		case errors.Is(err, auth.ErrWrongTokenType):
			return nil, fmt.Errorf("%w: wrong token type", ErrRefreshTokenInvalid)
		default:
			return nil, ErrRefreshTokenInvalid
		}
	}

	stored, err := s.tokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			s.metrics.IncTokenRefreshRejected()
			s.logger.Warn("refresh rejected", "reason", "token_not_found", "user_id", claims.UserID)
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if stored.Expired(time.Now()) {
		// Stale row; remove it as a side effect of the rejection.
		if err := s.tokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
			s.logger.Error("failed to delete stale refresh token", "error", err)
		}
		s.metrics.IncTokenRefreshRejected()
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.users.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncTokenRefreshRejected()
			return nil, fmt.Errorf("%w: user not found", ErrRefreshTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	// One-time use: consume before reissuing.
	if err := s.tokens.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncTokenRefreshed()
	s.logger.Info("tokens rotated", "user_id", user.ID)

	return &tokens, nil
}

// Logout revokes every refresh token owned by the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteRefreshTokensByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// CleanupExpiredTokens removes refresh tokens whose stored expiry has
// passed, returning the number removed. Run once at startup; there are no
// background workers.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	count, err := s.tokens.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return count, nil
}

// ValidateAccessToken verifies an access token and returns the embedded
// identity. Refresh tokens are rejected here.
func (s *AuthService) ValidateAccessToken(token string) (*model.AuthContext, error) {
	claims, err := s.tm.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return &model.AuthContext{UserID: claims.UserID, Username: claims.Username}, nil
}

// issueTokens signs a new access/refresh pair and persists the refresh
// token row. The stored expiry derives from the same configured lifetime
// that signs the refresh token, so claim and row cannot disagree.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (TokenPair, error) {
	accessToken, err := s.tm.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	if err := s.tokens.SaveRefreshToken(ctx, &model.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tm.RefreshTTL()),
		CreatedAt: now,
	}); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) > model.MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
