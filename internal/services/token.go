package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"task-tracker/internal/config"
)

// TokenService issues and verifies the signed access tokens that carry a
// user's identity. It is a pure function of the configured secret and the
// claims; no state is kept between calls.
type TokenService struct {
	cfg *config.AuthConfig
}

func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueToken signs a token embedding the user's email. The expiry claim is
// now + ttl; a zero ttl falls back to the configured access token TTL.
func (s *TokenService) IssueToken(email string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.cfg.AccessTokenTTL
	}

	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken validates the signature and expiry of a token and returns the
// embedded email. Every decode failure maps to the same generic credential
// error so the caller cannot tell which check rejected the token; expiry is
// additionally distinguishable via errors.Is(err, ErrTokenExpired).
func (s *TokenService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}

	return email, nil
}
