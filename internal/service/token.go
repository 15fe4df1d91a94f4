package service

import (
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the authenticated user id inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenService mints and verifies stateless HS256 session tokens. There is no
// server-side token registry; rotating the secret invalidates everything
// outstanding at once.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token asserting userID until the TTL elapses.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
	})
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning the user id it asserts.
// Failures are distinguished so callers can phrase the response: expired
// tokens should prompt a re-login, the rest are rejected outright.
func (s *TokenService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, domain.ErrTokenSignature
		default:
			return uuid.Nil, domain.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return uuid.Nil, domain.ErrTokenMalformed
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, domain.ErrTokenMalformed
	}
	return userID, nil
}
