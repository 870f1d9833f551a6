package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"airecruiter-backend/internal/analysis"
	"airecruiter-backend/internal/runs"
	"airecruiter-backend/internal/shared/server/respond"
	"airecruiter-backend/internal/shared/util"
)

// GroupSource supplies the candidate groups a chat question is asked about.
type GroupSource interface {
	SelectGroups(ctx context.Context, runID string, keys []string) ([]analysis.Group, error)
}

// Handler answers follow-up questions about a completed run.
type Handler struct {
	Source    GroupSource
	Completer Completer
}

// NewHandler constructs a Handler.
func NewHandler(source GroupSource, completer Completer) *Handler {
	return &Handler{Source: source, Completer: completer}
}

// RegisterRoutes attaches the chat route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.ask)
}

type askRequest struct {
	RunID      string   `json:"runId"`
	Candidates []string `json:"candidates"`
	Question   string   `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.RunID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "runId is required", nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}

	groups, err := h.Source.SelectGroups(c.Request.Context(), req.RunID, req.Candidates)
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load run", nil)
		return
	}
	if len(groups) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no matching candidates in this run", nil)
		return
	}

	system, user := BuildPrompt(groups, req.Question)
	answer, model, err := h.Completer.Complete(c.Request.Context(), system, user)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "chat_failed", "chat completion failed", util.SanitizeError(err))
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"answer": answer,
		"model":  model,
	})
}
