package controllers

import (
	"net/http"

	"github.com/characters-analyzer/backend/api/responses"
	"github.com/characters-analyzer/backend/pkg/config"
)

type adminContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type appInfo struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Admin       adminContact `json:"admin"`
}

// RootInfo describes the running application.
func RootInfo(cfg *config.Config) http.HandlerFunc {
	info := appInfo{
		Name:        cfg.App.Name,
		Version:     cfg.App.Version,
		Description: cfg.App.Description,
		Summary:     cfg.App.Summary,
		Admin:       adminContact{Name: cfg.Admin.Name, Email: cfg.Admin.Email},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, info)
	}
}
