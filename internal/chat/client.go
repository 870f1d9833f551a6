// Package chat answers free-form follow-up questions about analyzed
// candidates through a chat-completions endpoint.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"airecruiter-backend/internal/shared/telemetry"
)

const defaultTimeout = 2 * time.Minute

// Completer produces one completion for a system instruction and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (answer, model string, err error)
}

// Client implements Completer against an OpenAI-compatible chat-completions
// API. Models are tried in order; a model that is not accessible for this key
// falls through to the next one.
type Client struct {
	APIURL     string
	APIKey     string
	Models     []string
	HTTPClient *http.Client
}

// NewClient constructs a chat client.
func NewClient(apiURL, apiKey string, models []string) (*Client, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, fmt.Errorf("CHAT_API_URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("CHAT_API_KEY is required")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("CHAT_MODELS is required")
	}
	return &Client{
		APIURL:     apiURL,
		APIKey:     apiKey,
		Models:     models,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete tries every configured model in order and returns the first
// answer. Only model-access errors trigger fallback; anything else is
// returned immediately. When every model is inaccessible a consolidated
// error names them all.
func (c *Client) Complete(ctx context.Context, system, user string) (string, string, error) {
	var failures []string
	for _, model := range c.Models {
		answer, err := c.completeOnce(ctx, model, system, user)
		if err == nil {
			return answer, model, nil
		}
		if !isModelAccessError(err) {
			return "", "", err
		}
		telemetry.Warn("chat.model_unavailable", map[string]any{"model": model, "err": err.Error()})
		failures = append(failures, fmt.Sprintf("%s: %v", model, err))
	}
	return "", "", fmt.Errorf("no accessible chat model (tried %s): %s",
		strings.Join(c.Models, ", "), strings.Join(failures, "; "))
}

func (c *Client) completeOnce(ctx context.Context, model, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("chat response parse (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", &apiError{
			Status:  resp.StatusCode,
			Message: parsed.Error.Message,
			Type:    parsed.Error.Type,
			Code:    parsed.Error.Code,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat response missing choices")
	}
	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("chat response empty content")
	}
	return answer, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

type apiError struct {
	Status  int
	Message string
	Type    string
	Code    string
}

func (e *apiError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("chat api error: %s (%s)", e.Message, e.Type)
	}
	return fmt.Sprintf("chat api error (status %d): %s", e.Status, e.Message)
}

// isModelAccessError classifies "this key cannot use this model" failures,
// the only class that should fall through to the next model in the list.
func isModelAccessError(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == "model_not_found" {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	if !strings.Contains(msg, "model") {
		return false
	}
	if strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "not accessible") ||
		strings.Contains(msg, "do not have access") {
		return true
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusForbidden
}
