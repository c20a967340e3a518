package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/characters-analyzer/backend/api/middleware"
	"github.com/characters-analyzer/backend/pkg/db/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "ember_fan"}
}

func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body=%s", err, resp.Body.String())
	}
	return env
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	env := decodeEnvelope(t, resp)
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data: %v; body=%s", err, resp.Body.String())
	}
}
