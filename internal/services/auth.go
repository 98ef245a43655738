package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/pkg/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	db  *database.DB
	cfg *config.Config
	log *zap.SugaredLogger
	now func() time.Time
}

func NewAuthService(db *database.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg, log: logger.GetLogger("auth"), now: time.Now}
}

// Request/Response types
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login checks credentials and issues an access/refresh token pair. Only the
// refresh token digest is stored.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		Take(&user).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	accessToken, err := s.accessToken(&user)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := auth.GenerateRefreshToken(user.ID, s.cfg.JWTSecretKey, s.refreshTTL())
	if err != nil {
		return nil, err
	}
	record := models.RefreshToken{
		TokenHash: auth.TokenDigest(refreshToken),
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh issues a new access token for a stored, unrevoked refresh token.
// The refresh token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken, s.cfg.JWTSecretKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var record models.RefreshToken
	err = s.db.WithContext(ctx).Preload("User").Preload("User.Role").
		Where("token_hash = ?", auth.TokenDigest(refreshToken)).
		Take(&record).Error
	if err != nil {
		return nil, ErrInvalidToken
	}
	if record.RevokedAt != nil || s.now().After(record.ExpiresAt) || record.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	if !record.User.IsActive {
		return nil, ErrInactiveUser
	}

	accessToken, err := s.accessToken(&record.User)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	now := s.now()
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", auth.TokenDigest(refreshToken)).
		Update("revoked_at", &now).Error
}

// PurgeExpiredTokens deletes refresh tokens past their expiry.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (s *AuthService) accessToken(user *models.User) (string, error) {
	return auth.GenerateAccessToken(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.RoleName(),
	}, s.cfg.JWTSecretKey, time.Duration(s.cfg.JWTAccessTokenExpireMin)*time.Minute)
}

func (s *AuthService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.JWTRefreshTokenExpireDays) * 24 * time.Hour
}
