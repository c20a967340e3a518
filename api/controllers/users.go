package controllers

import (
	"net/http"

	"github.com/characters-analyzer/backend/api/middleware"
	"github.com/characters-analyzer/backend/api/responses"
	"github.com/characters-analyzer/backend/internal/users"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/characters-analyzer/backend/pkg/logger"
)

func currentUser(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*models.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeAuthError(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
		return nil, false
	}
	return user, true
}

// UsersMe returns the authenticated user's profile.
func UsersMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, users.FromModel(user))
	}
}
