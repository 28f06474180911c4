package scoring_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/scoring"
	"github.com/modwarden/warden-api/internal/pkg/classifier"
)

type fakeMembers struct {
	users map[string]*member.User
}

func (f *fakeMembers) GetByDiscordID(ctx context.Context, discordID string) (*member.User, error) {
	return f.users[discordID], nil
}

func (f *fakeMembers) List(ctx context.Context, limit, offset int) ([]*member.User, error) {
	out := make([]*member.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeMembers) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func performRequest(t *testing.T, handler http.Handler, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return env
}

func newTestRouter(t *testing.T, repo *fakeRepo, cls *fakeClassifier, members *fakeMembers) chi.Router {
	t.Helper()
	svc, _ := newTestService(repo, &fakeExecutor{})
	pipeline := newTestPipeline(repo, cls)
	h := scoring.NewHandler(svc, pipeline, members)

	r := chi.NewRouter()
	r.Mount("/api/v1/ingest", h.IngestRoutes("ingest-secret"))
	r.Mount("/api/v1", h.Routes())
	return r
}

func TestIngestRequiresToken(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, &fakeClassifier{}, &fakeMembers{})

	body := map[string]string{"discord_id": "42", "username": "alice", "content": "hi"}

	rec := performRequest(t, r, http.MethodPost, "/api/v1/ingest/message", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = performRequest(t, r, http.MethodPost, "/api/v1/ingest/message", body, http.Header{
		"Authorization": []string{"Bearer wrong"},
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestIngestMessage(t *testing.T) {
	repo := &fakeRepo{user: &member.User{DiscordID: "42", TotalPoints: 1}}
	cls := &fakeClassifier{verdict: &classifier.Verdict{
		ViolationDetected: true,
		LevelName:         "Yellow",
		Explanation:       "spam",
	}}
	r := newTestRouter(t, repo, cls, &fakeMembers{})

	rec := performRequest(t, r, http.MethodPost, "/api/v1/ingest/message", map[string]any{
		"discord_id": "42",
		"username":   "alice",
		"content":    "buy cheap coins",
	}, http.Header{"Authorization": []string{"Bearer ingest-secret"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var result scoring.HandleResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result failed: %v", err)
	}
	if !result.ViolationDetected || result.LevelName != "Yellow" {
		t.Fatalf("wrong result: %+v", result)
	}
}

func TestIngestValidation(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, &fakeClassifier{}, &fakeMembers{})

	rec := performRequest(t, r, http.MethodPost, "/api/v1/ingest/message", map[string]any{
		"discord_id": "42",
	}, http.Header{"Authorization": []string{"Bearer ingest-secret"}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing fields, got %d", rec.Code)
	}
}

func TestIgnoreWarningConflict(t *testing.T) {
	repo := &fakeRepo{err: scoring.ErrWarningAlreadyIgnored}
	r := newTestRouter(t, repo, &fakeClassifier{}, &fakeMembers{})

	rec := performRequest(t, r, http.MethodPost, "/api/v1/warnings/"+uuid.NewString()+"/ignore", map[string]string{
		"reviewer_id": "mod-1",
		"reason":      "duplicate review",
	}, nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIgnoreWarningBadID(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, &fakeClassifier{}, &fakeMembers{})

	rec := performRequest(t, r, http.MethodPost, "/api/v1/warnings/not-a-uuid/ignore", map[string]string{
		"reviewer_id": "mod-1",
		"reason":      "x",
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetUserNotFound(t *testing.T) {
	r := newTestRouter(t, &fakeRepo{}, &fakeClassifier{}, &fakeMembers{users: map[string]*member.User{}})

	rec := performRequest(t, r, http.MethodGet, "/api/v1/users/999", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestResetUserNotFound(t *testing.T) {
	repo := &fakeRepo{err: member.ErrNotFound}
	r := newTestRouter(t, repo, &fakeClassifier{}, &fakeMembers{})

	rec := performRequest(t, r, http.MethodPost, "/api/v1/users/999/reset", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListUsers(t *testing.T) {
	members := &fakeMembers{users: map[string]*member.User{
		"42": {DiscordID: "42", Username: "alice", TotalPoints: 8, IsMuted: true},
	}}
	r := newTestRouter(t, &fakeRepo{}, &fakeClassifier{}, members)

	rec := performRequest(t, r, http.MethodGet, "/api/v1/users", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var users []*member.User
	if err := json.Unmarshal(env.Data, &users); err != nil {
		t.Fatalf("decode users failed: %v", err)
	}
	if len(users) != 1 || users[0].DiscordID != "42" {
		t.Fatalf("wrong users: %+v", users)
	}
}
