package controllers

import (
	"context"
	"net/http"

	"github.com/characters-analyzer/backend/api/middleware"
	"github.com/characters-analyzer/backend/api/responses"
	"github.com/characters-analyzer/backend/api/validators"
	"github.com/characters-analyzer/backend/internal/auth"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/characters-analyzer/backend/pkg/logger"
)

const signUpMessage = "User created successfully."

type authEventRecorder interface {
	IncAuthEvent(event string, success bool)
}

func recordAuth(rec authEventRecorder, event string, err error) {
	if rec != nil {
		rec.IncAuthEvent(event, err == nil)
	}
}

func authUnavailable(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
}

// AuthSignUp registers a new account.
func AuthSignUp(svc auth.Service, rec authEventRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			authUnavailable(r.Context(), logg, w)
			return
		}

		var body auth.SignUpRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, err := svc.SignUp(r.Context(), body)
		recordAuth(rec, "sign_up", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, signUpMessage)
	}
}

// AuthSignIn exchanges credentials, sent as an OAuth2 password form or JSON, for a token pair.
func AuthSignIn(svc auth.Service, rec authEventRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			authUnavailable(r.Context(), logg, w)
			return
		}

		var body auth.SignInRequest
		if err := validators.DecodeFormOrJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tokens, err := svc.SignIn(r.Context(), body)
		recordAuth(rec, "sign_in", err)
		if err != nil {
			writeAuthError(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, tokens)
	}
}

// AuthRefresh rotates the token pair using the refresh token from the Authorization header.
func AuthRefresh(svc auth.Service, rec authEventRecorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			authUnavailable(r.Context(), logg, w)
			return
		}

		token, ok := middleware.BearerToken(r)
		if !ok {
			writeAuthError(w, r, logg, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
			return
		}

		tokens, err := svc.Refresh(r.Context(), token)
		recordAuth(rec, "refresh", err)
		if err != nil {
			writeAuthError(w, r, logg, err)
			return
		}
		responses.WriteSuccess(w, tokens)
	}
}

// AuthSignOut revokes the caller's refresh token. Requires middleware.Auth.
func AuthSignOut(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			authUnavailable(r.Context(), logg, w)
			return
		}
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		if err := svc.SignOut(r.Context(), user.Username); err != nil {
			writeAuthError(w, r, logg, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Signed out successfully.")
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	responses.WriteError(r.Context(), logg, w, err)
}
