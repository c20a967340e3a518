package controllers

import (
	"net/http"

	"github.com/characters-analyzer/backend/api/responses"
	"github.com/characters-analyzer/backend/api/validators"
	"github.com/characters-analyzer/backend/internal/artifacts"
	"github.com/characters-analyzer/backend/pkg/logger"
)

func ArtifactsAppend(svc artifacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		var body artifacts.AddArtifactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := svc.Add(r.Context(), user.ID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, artifact)
	}
}

func ArtifactsList(svc artifacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.ListForUser(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, artifacts.ListResponse{Artifacts: list})
	}
}
