package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	h.RegisterRoutes(api)
	return r
}

func TestProxyForwardsRawBody(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer upstream.Close()

	router := newRouter(NewHandler(upstream.URL, time.Minute))

	body := "--boundary\r\nContent-Disposition: form-data; name=\"job_description\"\r\n\r\njd\r\n--boundary--\r\n"
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=boundary")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if string(gotBody) != body {
		t.Fatalf("body not forwarded verbatim")
	}
	if !strings.Contains(gotContentType, "boundary=boundary") {
		t.Fatalf("multipart boundary not preserved: %q", gotContentType)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"ok":true`)) {
		t.Fatalf("upstream JSON not passed through: %s", resp.Body.String())
	}
}

func TestProxyEmptyBody(t *testing.T) {
	router := newRouter(NewHandler("http://unreachable.invalid", time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg, ok := payload["error"].(string); !ok || msg == "" {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func TestProxyMethodNotAllowed(t *testing.T) {
	router := newRouter(NewHandler("http://unreachable.invalid", time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/webhook", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestProxyPreflight(t *testing.T) {
	router := newRouter(NewHandler("http://unreachable.invalid", time.Minute))

	req := httptest.NewRequest(http.MethodOptions, "/api/webhook", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Methods") != "POST, OPTIONS" {
		t.Fatalf("missing preflight methods header")
	}
	if resp.Header().Get("Access-Control-Allow-Headers") != "Content-Type" {
		t.Fatalf("missing preflight headers header")
	}
}

func TestProxyUpstreamStatusPassedThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, "workflow rejected input")
	}))
	defer upstream.Close()

	router := newRouter(NewHandler(upstream.URL, time.Minute))
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("payload"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status passthrough 422, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["error"] != "workflow rejected input" {
		t.Fatalf("expected upstream text as error, got %v", payload)
	}
}

func TestProxyNonJSONSuccessWrapped(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Workflow was started")
	}))
	defer upstream.Close()

	router := newRouter(NewHandler(upstream.URL, time.Minute))
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("payload"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var payload map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["response"] != "Workflow was started" {
		t.Fatalf("expected wrapped text, got %v", payload)
	}
}

func TestProxyTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{}`)
	}))
	defer upstream.Close()

	router := newRouter(NewHandler(upstream.URL, 50*time.Millisecond))
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("payload"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["timeout"] != true {
		t.Fatalf("expected timeout flag, got %v", payload)
	}
}
