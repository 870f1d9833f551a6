package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"airecruiter-backend/internal/analysis"
	"airecruiter-backend/internal/runs"
)

type stubSource struct {
	groups []analysis.Group
	err    error

	gotRunID string
	gotKeys  []string
}

func (s *stubSource) SelectGroups(ctx context.Context, runID string, keys []string) ([]analysis.Group, error) {
	s.gotRunID = runID
	s.gotKeys = keys
	return s.groups, s.err
}

type stubCompleter struct {
	answer string
	model  string
	err    error

	gotSystem string
	gotUser   string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, string, error) {
	s.gotSystem = system
	s.gotUser = user
	return s.answer, s.model, s.err
}

func newChatRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	h.RegisterRoutes(api)
	return r
}

func postChat(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAskAnswersWithSelectedCandidates(t *testing.T) {
	source := &stubSource{groups: []analysis.Group{{Key: "alice", ResumeName: "Alice"}}}
	completer := &stubCompleter{answer: "Alice fits best.", model: "gpt-4o-mini"}
	router := newChatRouter(NewHandler(source, completer))

	resp := postChat(t, router, `{"runId":"run-1","candidates":["alice"],"question":"Who fits best?"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["answer"] != "Alice fits best." || payload["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if source.gotRunID != "run-1" || len(source.gotKeys) != 1 || source.gotKeys[0] != "alice" {
		t.Fatalf("source not called with request selection: %q %v", source.gotRunID, source.gotKeys)
	}
	if !strings.Contains(completer.gotUser, "Who fits best?") {
		t.Fatalf("question missing from prompt: %q", completer.gotUser)
	}
}

func TestAskValidatesRequest(t *testing.T) {
	router := newChatRouter(NewHandler(&stubSource{}, &stubCompleter{}))

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"runId":`},
		{"missing run id", `{"question":"hi"}`},
		{"missing question", `{"runId":"run-1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postChat(t, router, tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestAskUnknownRun(t *testing.T) {
	source := &stubSource{err: runs.ErrNotFound}
	router := newChatRouter(NewHandler(source, &stubCompleter{}))

	resp := postChat(t, router, `{"runId":"missing","question":"hi"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAskNoMatchingCandidates(t *testing.T) {
	source := &stubSource{groups: nil}
	router := newChatRouter(NewHandler(source, &stubCompleter{}))

	resp := postChat(t, router, `{"runId":"run-1","candidates":["nobody"],"question":"hi"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAskCompletionFailure(t *testing.T) {
	source := &stubSource{groups: []analysis.Group{{Key: "alice"}}}
	completer := &stubCompleter{err: errors.New("all models unavailable")}
	router := newChatRouter(NewHandler(source, completer))

	resp := postChat(t, router, `{"runId":"run-1","question":"hi"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}
