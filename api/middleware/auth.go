package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/characters-analyzer/backend/api/responses"
	pkgAuth "github.com/characters-analyzer/backend/pkg/auth"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/characters-analyzer/backend/pkg/logger"
)

// Authenticator resolves the user behind a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, kind pkgAuth.TokenKind) (*models.User, error)
}

// Auth validates a bearer access token and seeds the request context with the user.
func Auth(authn Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
				return
			}

			user, err := authn.Authenticate(r.Context(), token, pkgAuth.KindAccess)
			if err != nil {
				if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  user.ID.String(),
					"username": user.Username,
				})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an `Authorization: Bearer <token>` header.
func BearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(raw, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
