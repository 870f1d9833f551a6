// Package fanout issues one upload per (resume, question) pair against the
// webhook proxy, strictly sequentially, and never lets one failed question
// take its siblings down.
package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"airecruiter-backend/internal/shared/telemetry"
)

const defaultTimeout = 10 * time.Minute

// Resume is one uploaded resume held in memory for the duration of a run.
type Resume struct {
	ID       string
	FileName string
	Data     []byte
}

// Result is the effective payload for one question. Payload is always valid
// JSON: the upstream object, the first element of an upstream array, a
// {"response": text} wrapper for non-JSON bodies, or an {"error": message}
// wrapper for transport failures.
type Result struct {
	Question string
	Payload  json.RawMessage
}

// Progress reports position within the overall resumes x questions matrix.
type Progress struct {
	Done     int
	Total    int
	Resume   string
	Question string
}

// Engine sends fan-out uploads to Target. The zero Client and Timeout get
// usable defaults.
type Engine struct {
	Target     string
	Client     *http.Client
	Timeout    time.Duration
	OnProgress func(Progress)
}

// Run uploads every question for one resume, one request at a time. done is
// the number of matrix cells completed before this resume; total is the full
// matrix size. The returned slice always has exactly one entry per question:
// errors are recorded as data, never raised.
func (e *Engine) Run(ctx context.Context, resume Resume, jobDescription string, qs []string, done, total int) []Result {
	results := make([]Result, 0, len(qs))
	for i, q := range qs {
		payload := e.sendOne(ctx, resume, jobDescription, q)
		results = append(results, Result{Question: q, Payload: payload})
		if e.OnProgress != nil {
			e.OnProgress(Progress{
				Done:     done + i + 1,
				Total:    total,
				Resume:   resume.FileName,
				Question: q,
			})
		}
	}
	return results
}

func (e *Engine) sendOne(ctx context.Context, resume Resume, jobDescription, question string) json.RawMessage {
	body, contentType, err := buildForm(resume, jobDescription, question)
	if err != nil {
		return errorPayload(err.Error())
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.Target, body)
	if err != nil {
		return errorPayload(err.Error())
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := e.client().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			msg := fmt.Sprintf("Request timed out after %s", e.timeout())
			telemetry.Warn("fanout.timeout", map[string]any{"resume": resume.FileName, "question": question})
			return errorPayload(msg)
		}
		return errorPayload(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorPayload("Failed to read response from server")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		telemetry.Warn("fanout.upstream_status", map[string]any{
			"resume": resume.FileName, "question": question, "status": resp.StatusCode,
		})
		return errorPayload(upstreamErrorMessage(resp.StatusCode, raw))
	}

	return effectivePayload(raw)
}

func (e *Engine) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return http.DefaultClient
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return defaultTimeout
}

func buildForm(resume Resume, jobDescription, question string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("job_description", jobDescription); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(question) != "" {
		if err := w.WriteField("question", question); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("files[]", resume.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(resume.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// upstreamErrorMessage digs a human-readable message out of a non-2xx body:
// JSON "message" or "error" field, then the raw text, then a generic line.
func upstreamErrorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text != "" {
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err == nil {
			if msg, ok := parsed["message"].(string); ok && msg != "" {
				return msg
			}
			if msg, ok := parsed["error"].(string); ok && msg != "" {
				return msg
			}
		}
		return text
	}
	return fmt.Sprintf("Server error (%d). Please check the workflow configuration.", status)
}

// effectivePayload reduces a success body to one JSON value. Multi-element
// arrays lose everything past the first element; this matches the original
// client behavior and is intentionally not merged.
func effectivePayload(body []byte) json.RawMessage {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return responsePayload(string(body))
	}
	if arr, ok := decoded.([]any); ok && len(arr) > 0 {
		var elems []json.RawMessage
		if err := json.Unmarshal(body, &elems); err == nil && len(elems) > 0 {
			return elems[0]
		}
	}
	return json.RawMessage(body)
}

func errorPayload(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return data
}

func responsePayload(text string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"response": text})
	return data
}
