package http

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/yanqian/breatheeasy/pkg/errors"
)

const (
	defaultTokenTTL   = 12 * time.Hour
	sessionTokenType  = "session"
	codeInvalidToken  = "invalid_token"
	codeTokenSignFail = "token_error"
)

// TokenIssuer signs and checks the bearer tokens that bind a client to its session.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// NewTokenIssuer builds an HS256 issuer. An empty secret gets a random one,
// so tokens do not survive a restart.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for sessionID.
func (t *TokenIssuer) Issue(sessionID string) (string, error) {
	now := t.now()
	claims := sessionClaims{
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(codeTokenSignFail, "failed to sign token", err)
	}
	return signed, nil
}

// SessionID validates token and returns the session it was issued for.
func (t *TokenIssuer) SessionID(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", apperrors.Wrap(codeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", apperrors.Wrap(codeInvalidToken, "token invalid", nil)
	}
	if claims.TokenType != sessionTokenType || claims.Subject == "" {
		return "", apperrors.Wrap(codeInvalidToken, "token is not a session token", nil)
	}
	return claims.Subject, nil
}
