package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/config"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// ErrInvalidToken is returned for any token that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Claims are the bearer token claims. The subject is the user id.
type Claims struct {
	Role models.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService verifies HS256 bearer tokens minted by the auth service
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a token service from auth configuration
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Parse verifies signature and expiry and returns the subject user id.
// Every failure collapses to ErrInvalidToken.
func (s *TokenService) Parse(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
