package services

import (
	"context"
	"errors"
	"time"

	"todo-api/backend/internal/config"
	"todo-api/backend/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

type AuthService interface {
	LoginUser(db *gorm.DB, username, password string) (*models.User, error)
	GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error)
	RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error)
	RevokeToken(db *gorm.DB, refreshToken string) error
}

type AuthServiceImpl struct {
	cfg    config.AuthConfig
	tokens *TokenStore
}

// NewAuthService builds the auth service. tokens may be nil, in which case
// revocation only removes the database row.
func NewAuthService(cfg config.AuthConfig, tokens *TokenStore) *AuthServiceImpl {
	return &AuthServiceImpl{cfg: cfg, tokens: tokens}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) LoginUser(db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GenerateToken issues a signed access token and persists a fresh refresh
// token for the user.
func (s *AuthServiceImpl) GenerateToken(db *gorm.DB, userID uuid.UUID) (string, string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"iss":     s.cfg.Issuer,
		"exp":     time.Now().Add(s.cfg.AccessTokenTTL).Unix(),
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenUUID, err := uuid.NewV4()
	if err != nil {
		return "", "", err
	}

	token := models.Token{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		RefreshToken: refreshTokenUUID,
		ExpiresAt:    time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := db.Create(&token).Error; err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenUUID.String(), nil
}

// RefreshToken rotates the refresh token: the consumed row is deleted and a
// new access/refresh pair is issued.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (string, string, int64, error) {
	if s.tokens != nil {
		revoked, err := s.tokens.IsRevoked(context.Background(), refreshToken)
		if err == nil && revoked {
			return "", "", 0, ErrInvalidRefreshToken
		}
	}

	var token models.Token
	err := db.Where("refresh_token = ? AND expires_at > ?", refreshToken, time.Now()).First(&token).Error
	if err != nil {
		return "", "", 0, ErrInvalidRefreshToken
	}

	accessToken, newRefreshToken, err := s.GenerateToken(db, token.UserID)
	if err != nil {
		return "", "", 0, err
	}

	db.Delete(&token)

	return accessToken, newRefreshToken, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// RevokeToken drops the refresh token row and denylists the value until it
// would have expired anyway.
func (s *AuthServiceImpl) RevokeToken(db *gorm.DB, refreshToken string) error {
	var token models.Token
	err := db.Where("refresh_token = ?", refreshToken).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if s.tokens != nil {
		ttl := time.Until(token.ExpiresAt)
		if ttl > 0 {
			if err := s.tokens.Revoke(context.Background(), refreshToken, ttl); err != nil {
				return err
			}
		}
	}

	return db.Delete(&token).Error
}
