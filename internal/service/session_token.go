package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lshigami/quizx/config"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionTokenService issues the token a browser context presents on every
// request. The subject is the client namespace.
type SessionTokenService interface {
	Issue() (token, clientID string, err error)
	Parse(token string) (clientID string, err error)
}

type sessionTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokenService(cfg *config.Config) SessionTokenService {
	return newSessionTokenService(cfg.Session.Secret, cfg.Session.TokenTTL, time.Now)
}

func newSessionTokenService(secret string, ttl time.Duration, now func() time.Time) *sessionTokenService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &sessionTokenService{secret: []byte(secret), ttl: ttl, now: now}
}

func (s *sessionTokenService) Issue() (string, string, error) {
	clientID := uuid.NewString()
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Issuer:    "quizx",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, clientID, nil
}

func (s *sessionTokenService) Parse(tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("quizx"),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	return claims.Subject, nil
}
