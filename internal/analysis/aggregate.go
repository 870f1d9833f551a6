package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// QuestionEntry is one record's contribution to a group.
type QuestionEntry struct {
	Question    string `json:"question,omitempty"`
	Answer      any    `json:"answer,omitempty"`
	Explanation any    `json:"explanation,omitempty"`
	Score       *int   `json:"extractedScore,omitempty"`
	Error       string `json:"error,omitempty"`
	ProcessedAt string `json:"processedAt,omitempty"`
}

// Group collects every canonical record belonging to one candidate identity.
// ProcessedAt is the earliest timestamp seen across member records.
type Group struct {
	Key         string          `json:"key"`
	ResumeName  string          `json:"resumeName,omitempty"`
	ResumeFile  string          `json:"resumeFile,omitempty"`
	ResumeID    string          `json:"resumeId,omitempty"`
	ProcessedAt string          `json:"processedAt,omitempty"`
	Questions   []QuestionEntry `json:"questions"`
}

var trailingExtension = regexp.MustCompile(`\.[^.]+$`)

// GroupKey derives the identity key for one record: the resume file name if
// present, else the candidate name, trimmed, lower-cased, and with a trailing
// ".ext" suffix stripped. Returns "" when neither is available.
func GroupKey(resumeFile, candidateName string) string {
	base := resumeFile
	if strings.TrimSpace(base) == "" {
		base = candidateName
	}
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return ""
	}
	return trailingExtension.ReplaceAllString(base, "")
}

// GroupRecords merges the full record sequence of one analysis run into
// groups, one per distinct identity key, in first-seen order. Records with no
// identity get a positional placeholder key so they never collide with real
// candidates. Every record lands in exactly one group entry.
func GroupRecords(records []Record) []Group {
	var (
		order  []string
		byKey  = make(map[string]*Group)
		result []Group
	)

	for i, rec := range records {
		key := GroupKey(rec.ResumeFile, rec.CandidateName)
		if key == "" {
			key = fmt.Sprintf("__record_%d", i)
		}

		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key}
			byKey[key] = g
			order = append(order, key)
		}

		if g.ResumeName == "" {
			g.ResumeName = rec.CandidateName
		}
		if g.ResumeFile == "" {
			g.ResumeFile = rec.ResumeFile
		}
		if g.ResumeID == "" {
			g.ResumeID = rec.ResumeID
		}
		mergeProcessedAt(g, rec.ProcessedAt)

		g.Questions = append(g.Questions, QuestionEntry{
			Question:    rec.Question,
			Answer:      rec.Answer,
			Explanation: rec.Explanation,
			Score:       rec.Score,
			Error:       rec.Error,
			ProcessedAt: rec.ProcessedAt,
		})
	}

	for _, key := range order {
		result = append(result, *byKey[key])
	}
	return result
}

// mergeProcessedAt keeps the earliest parseable timestamp. An incoming
// timestamp only replaces the stored one when it is present and strictly
// earlier.
func mergeProcessedAt(g *Group, incoming string) {
	in, ok := parseTimestamp(incoming)
	if !ok {
		return
	}
	cur, hasCur := parseTimestamp(g.ProcessedAt)
	if !hasCur || in.Before(cur) {
		g.ProcessedAt = incoming
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
