// Package proxy forwards analysis uploads to the upstream workflow engine.
// The body is passed through untouched so the multipart boundary survives.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"airecruiter-backend/internal/shared/server/middleware"
	"airecruiter-backend/internal/shared/telemetry"
)

const defaultTimeout = 15 * time.Minute

// Handler proxies POST /api/webhook to the configured upstream URL.
//
// The proxy speaks the upstream's own wire contract ({error}, {response},
// {error, timeout}) rather than the API error envelope, because the browser
// client parses these shapes directly.
type Handler struct {
	Upstream string
	Client   *http.Client
	Timeout  time.Duration
}

// NewHandler builds a proxy handler for the given upstream URL.
func NewHandler(upstream string, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handler{
		Upstream: upstream,
		Client:   &http.Client{},
		Timeout:  timeout,
	}
}

// RegisterRoutes mounts the webhook proxy on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any("/webhook", h.Handle)
}

// Handle dispatches by method: OPTIONS preflight, POST proxying, 405 for
// everything else.
func (h *Handler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		h.preflight(c)
	case http.MethodPost:
		h.forward(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func (h *Handler) preflight(c *gin.Context) {
	head := c.Writer.Header()
	head.Set("Access-Control-Allow-Origin", "*")
	head.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	head.Set("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusNoContent)
}

func (h *Handler) forward(c *gin.Context) {
	if h.Upstream == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream webhook URL is not configured"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is empty"})
		return
	}

	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Upstream, bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			telemetry.Error("proxy.timeout", map[string]any{
				"request_id":  middleware.RequestIDFromContext(c),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error":   "Upstream workflow did not respond in time",
				"timeout": true,
			})
			return
		}
		telemetry.Error("proxy.upstream_unreachable", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"err":        err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to forward request to webhook"})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upstream response"})
		return
	}

	telemetry.Info("proxy.forwarded", map[string]any{
		"request_id":  middleware.RequestIDFromContext(c),
		"status":      resp.StatusCode,
		"bytes_in":    len(body),
		"bytes_out":   len(respBody),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.JSON(resp.StatusCode, gin.H{"error": msg})
		return
	}

	if json.Valid(respBody) {
		c.Data(resp.StatusCode, "application/json", respBody)
		return
	}
	c.JSON(resp.StatusCode, gin.H{"response": string(respBody)})
}
