package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	// Upstream workflow engine the webhook proxy forwards to.
	UpstreamWebhookURL string
	ProxyTimeout       time.Duration

	// Per-question upload deadline used by the fan-out engine.
	UploadTimeout time.Duration

	// Chat completion endpoint.
	ChatAPIURL string
	ChatAPIKey string
	ChatModels []string

	// SMTP notification relay.
	SMTPServer     string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPUseSSL     bool
	SMTPUseTLS     bool
	SenderEmail    string
	RecipientEmail string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),

		UpstreamWebhookURL: getEnv("UPSTREAM_WEBHOOK_URL", ""),
		ProxyTimeout:       getDuration("WEBHOOK_PROXY_TIMEOUT_SECONDS", 15*time.Minute),
		UploadTimeout:      getDuration("UPLOAD_TIMEOUT_SECONDS", 10*time.Minute),

		ChatAPIURL: getEnv("CHAT_API_URL", "https://api.openai.com/v1/chat/completions"),
		ChatAPIKey: getEnv("CHAT_API_KEY", ""),
		ChatModels: splitAndTrim(getEnv("CHAT_MODELS", "gpt-4o-mini,gpt-4o,gpt-3.5-turbo")),

		SMTPServer:     getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:       getInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPUseSSL:     getEnv("SMTP_USE_SSL", "") == "true",
		SMTPUseTLS:     getEnv("SMTP_USE_TLS", "true") != "false",
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return time.Duration(parsed) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
