package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/characters-analyzer/backend/internal/artifacts"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/google/uuid"
)

type stubArtifactService struct {
	req  artifacts.AddArtifactRequest
	list []artifacts.ArtifactDTO
	err  error
}

func (s *stubArtifactService) Add(_ context.Context, _ uuid.UUID, req artifacts.AddArtifactRequest) (*artifacts.ArtifactDTO, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &artifacts.ArtifactDTO{ID: uuid.New(), MainStatValue: req.MainStatValue}, nil
}

func (s *stubArtifactService) ListForUser(context.Context, uuid.UUID) ([]artifacts.ArtifactDTO, error) {
	return s.list, s.err
}

func artifactPayload(subStats int) string {
	var parts []string
	for i := 0; i < subStats; i++ {
		parts = append(parts, `{"stat_id":"`+uuid.NewString()+`","value":3.5}`)
	}
	return `{"set_id":"` + uuid.NewString() + `","main_stat_id":"` + uuid.NewString() + `","main_stat_value":46.6,"sub_stats":[` + strings.Join(parts, ",") + `]}`
}

func TestArtifactsAppendCreated(t *testing.T) {
	svc := &stubArtifactService{}
	req := withUser(httptest.NewRequest(http.MethodPost, "/artifacts/append", strings.NewReader(artifactPayload(4))), testUser())
	resp := httptest.NewRecorder()
	ArtifactsAppend(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.req.SubStats) != 4 || svc.req.MainStatValue != 46.6 {
		t.Fatalf("unexpected request %+v", svc.req)
	}
}

func TestArtifactsAppendRejectsTooManySubStats(t *testing.T) {
	svc := &stubArtifactService{}
	req := withUser(httptest.NewRequest(http.MethodPost, "/artifacts/append", strings.NewReader(artifactPayload(5))), testUser())
	resp := httptest.NewRecorder()
	ArtifactsAppend(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestArtifactsAppendServiceErrors(t *testing.T) {
	for code, status := range map[pkgerrors.Code]int{
		pkgerrors.CodeNotFound:  http.StatusNotFound,
		pkgerrors.CodeForbidden: http.StatusForbidden,
	} {
		svc := &stubArtifactService{err: pkgerrors.New(code, "rejected")}
		req := withUser(httptest.NewRequest(http.MethodPost, "/artifacts/append", strings.NewReader(artifactPayload(1))), testUser())
		resp := httptest.NewRecorder()
		ArtifactsAppend(svc, nil).ServeHTTP(resp, req)
		if resp.Code != status {
			t.Fatalf("%s: expected %d got %d", code, status, resp.Code)
		}
	}
}

func TestArtifactsList(t *testing.T) {
	set := "Crimson Witch of Flames"
	svc := &stubArtifactService{list: []artifacts.ArtifactDTO{{ID: uuid.New(), Set: &set}}}
	resp := httptest.NewRecorder()
	ArtifactsList(svc, nil).ServeHTTP(resp, withUser(httptest.NewRequest(http.MethodGet, "/artifacts/get", nil), testUser()))

	var body artifacts.ListResponse
	decodeData(t, resp, &body)
	if len(body.Artifacts) != 1 || body.Artifacts[0].Set == nil || *body.Artifacts[0].Set != set {
		t.Fatalf("unexpected body %+v", body)
	}
}
