package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

func (k TokenKind) IsValid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims represents the typed JWT issued to clients. The subject is the username.
type Claims struct {
	Kind TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful sign-in or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
