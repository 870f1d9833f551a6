package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airecruiter-backend/internal/shared/server/middleware"
	"airecruiter-backend/internal/shared/telemetry"
	"airecruiter-backend/internal/shared/util"
)

// Handler serves POST /api/send-email.
type Handler struct {
	Mailer Sender
}

// NewHandler builds the notification handler.
func NewHandler(mailer Sender) *Handler {
	return &Handler{Mailer: mailer}
}

// RegisterRoutes mounts the notification endpoint on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any("/send-email", h.Handle)
}

type sendEmailRequest struct {
	ResumeCount int `json:"resumeCount"`
}

// Handle dispatches by method, mirroring the webhook proxy surface.
func (h *Handler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		head := c.Writer.Header()
		head.Set("Access-Control-Allow-Origin", "*")
		head.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		head.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	case http.MethodPost:
		h.send(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func (h *Handler) send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ResumeCount < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume count is required"})
		return
	}

	if err := h.Mailer.SendAnalysisStarted(c.Request.Context(), req.ResumeCount); err != nil {
		telemetry.Error("notify.send_failed", map[string]any{
			"request_id":   middleware.RequestIDFromContext(c),
			"resume_count": req.ResumeCount,
			"err":          util.SanitizeError(err),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"message": err.Error(),
		})
		return
	}

	telemetry.Info("notify.sent", map[string]any{
		"request_id":   middleware.RequestIDFromContext(c),
		"resume_count": req.ResumeCount,
	})
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email sent successfully",
	})
}
