package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad structure, bad signature, wrong algorithm or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by a session token.
type Claims struct {
	UserID  string `json:"_id"`
	Purpose string `json:"access"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens with a shared secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec creates a codec. A ttl of zero issues tokens without expiry.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return newTokenCodec(secret, ttl, time.Now)
}

func newTokenCodec(secret []byte, ttl time.Duration, now func() time.Time) *TokenCodec {
	return &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(now),
		),
	}
}

// Issue signs a token for userID with the given purpose.
func (c *TokenCodec) Issue(userID, purpose string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       ulid.Make().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" || claims.Purpose == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
