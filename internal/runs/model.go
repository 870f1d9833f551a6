// Package runs orchestrates one analysis run end to end: question parsing,
// sequential fan-out, normalization, scoring, and grouping, with the
// resulting snapshot kept in memory for rendering, export, and chat.
package runs

import (
	"time"

	"airecruiter-backend/internal/analysis"
)

// Run is the immutable snapshot of one completed analysis run.
type Run struct {
	ID             string            `json:"runId"`
	CreatedAt      time.Time         `json:"createdAt"`
	JobDescription string            `json:"-"`
	ResumeCount    int               `json:"resumeCount"`
	QuestionCount  int               `json:"questionCount"`
	SuccessCount   int               `json:"successCount"`
	FailureCount   int               `json:"failureCount"`
	Records        []analysis.Record `json:"records"`
	Groups         []analysis.Group  `json:"groups"`
}

// Summary is the post-run roll-up reported to the caller.
type Summary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summary derives the success/failure roll-up for the run.
func (r Run) Summary() Summary {
	return Summary{
		Processed: len(r.Records),
		Succeeded: r.SuccessCount,
		Failed:    r.FailureCount,
	}
}
