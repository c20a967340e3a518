package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/characters-analyzer/backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned for well-signed tokens whose exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other decode failure.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrWrongTokenKind is returned when an access token is presented as a refresh token or the reverse.
	ErrWrongTokenKind = fmt.Errorf("%w: unexpected token type", ErrTokenInvalid)
)

// IssuePair mints an access and a refresh token for subject.
func IssuePair(cfg config.JWTConfig, now time.Time, subject string) (TokenPair, error) {
	access, accessExp, err := Mint(cfg, now, subject, KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := Mint(cfg, now, subject, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Mint issues a single signed JWT of the requested kind.
func Mint(cfg config.JWTConfig, now time.Time, subject string, kind TokenKind) (string, time.Time, error) {
	if cfg.Secret == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	}
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, fmt.Errorf("jwt subject is required")
	}
	if !kind.IsValid() {
		return "", time.Time{}, fmt.Errorf("invalid token kind %q", kind)
	}
	method, err := cfg.SigningMethod()
	if err != nil {
		return "", time.Time{}, err
	}

	ttl := cfg.AccessTokenTTL()
	if kind == KindRefresh {
		ttl = cfg.RefreshTokenTTL()
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%s token lifetime must be positive", kind)
	}
	expiry := now.Add(ttl)

	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, expiry, nil
}

// Decode validates signature, algorithm and expiry and returns typed claims.
func Decode(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	method, err := cfg.SigningMethod()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != method {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}

// DecodeKind is Decode plus a check that the token is of the expected kind.
func DecodeKind(cfg config.JWTConfig, tokenString string, kind TokenKind) (*Claims, error) {
	claims, err := Decode(cfg, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}
