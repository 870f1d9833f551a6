package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"airecruiter-backend/internal/chat"
	"airecruiter-backend/internal/fanout"
	"airecruiter-backend/internal/notify"
	"airecruiter-backend/internal/proxy"
	"airecruiter-backend/internal/runs"
	"airecruiter-backend/internal/shared/config"
	"airecruiter-backend/internal/shared/server/middleware"
	"airecruiter-backend/internal/shared/server/respond"
	"airecruiter-backend/internal/shared/telemetry"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	engine := &fanout.Engine{
		Target:  cfg.UpstreamWebhookURL,
		Client:  &http.Client{},
		Timeout: cfg.UploadTimeout,
		OnProgress: func(p fanout.Progress) {
			telemetry.Info("analysis.progress", map[string]any{
				"done": p.Done, "total": p.Total, "resume": p.Resume,
			})
		},
	}

	runRepo := runs.NewMemoryRepo()
	runSvc := runs.NewService(engine, runRepo)
	runHandler := runs.NewHandler(runSvc)

	proxyHandler := proxy.NewHandler(cfg.UpstreamWebhookURL, cfg.ProxyTimeout)

	mailer := &notify.SMTPMailer{
		Server:    cfg.SMTPServer,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		UseSSL:    cfg.SMTPUseSSL,
		UseTLS:    cfg.SMTPUseTLS,
		Sender:    cfg.SenderEmail,
		Recipient: cfg.RecipientEmail,
	}
	notifyHandler := notify.NewHandler(mailer)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	proxyHandler.RegisterRoutes(api)
	runHandler.RegisterRoutes(api)
	notifyHandler.RegisterRoutes(api)

	chatClient, err := chat.NewClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModels)
	if err != nil {
		log.Printf("chat disabled: %v", err)
	} else {
		chat.NewHandler(runSvc, chatClient).RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
