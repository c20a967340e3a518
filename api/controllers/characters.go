package controllers

import (
	"net/http"

	"github.com/characters-analyzer/backend/api/responses"
	"github.com/characters-analyzer/backend/api/validators"
	"github.com/characters-analyzer/backend/internal/characters"
	"github.com/characters-analyzer/backend/pkg/logger"
)

const characterDeletedMessage = "Character removed successfully."

// CharactersList returns every build owned by the caller.
func CharactersList(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), user.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, characters.ListResponse{Characters: list})
	}
}

// CharactersCatalog returns the reference character list.
func CharactersCatalog(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Catalog(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, characters.CatalogResponse{Characters: list})
	}
}

func CharactersAppend(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		var body characters.AppendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		build, err := svc.Append(r.Context(), user.ID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, build)
	}
}

func CharactersUpdate(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body characters.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		build, err := svc.Update(r.Context(), user.ID, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, build)
	}
}

func CharactersDelete(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.URLParamUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), user.ID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, characterDeletedMessage)
	}
}
