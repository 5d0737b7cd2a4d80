package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 2 * time.Hour

// Tokens issues and validates HS256 bearer tokens. Tokens are stateless:
// they are never stored and expire by clock only.
type Tokens struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokens constructs a token issuer. An empty audience defaults to the issuer
// and a non-positive ttl defaults to DefaultTTL.
func NewTokens(key []byte, issuer, audience string, ttl time.Duration) *Tokens {
	if audience == "" {
		audience = issuer
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{key: key, issuer: issuer, audience: audience, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	cp := *t
	cp.now = now
	return &cp
}

// TTL returns the configured token lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue returns a signed token whose subject is username, together with its expiry.
func (t *Tokens) Issue(username string) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        jti.String(),
		Issuer:    t.issuer,
		Audience:  jwt.ClaimStrings{t.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates signature, issuer, audience and expiry and returns the claims.
func (t *Tokens) Parse(token string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("parse token: invalid")
	}
	if claims.Subject == "" {
		return nil, errors.New("parse token: missing subject")
	}
	return &claims, nil
}
