package analysis

import (
	"encoding/json"
)

// Normalize absorbs one raw upstream payload into a canonical Record. The
// upstream schema is deliberately not trusted: flat objects, nested "answer"
// objects, arrays, and plain text all collapse into the same shape. Merge
// steps only fill still-missing fields; nothing already present is
// overwritten. Normalize never fails — a fully malformed payload yields a
// Record with only the resume identity set.
func Normalize(raw json.RawMessage, meta ResumeMeta) Record {
	fields := decodePayload(raw)
	fields = liftNestedAnswer(fields)
	fields = mergeTextField(fields)

	rec := Record{
		CandidateName: stringify(fields["candidate_name"]),
		ResumeFile:    stringify(fields["resume_file"]),
		ResumeID:      stringify(fields["resume_id"]),
		Question:      stringify(fields["question"]),
		Q1Question:    stringify(fields["q1_question"]),
		Answer:        fields["q1_answer"],
		Explanation:   fields["q1_explanation"],
		Error:         stringify(fields["error"]),
		ProcessedAt:   processedAtField(fields),
	}

	// Some workflows answer with "answer" instead of "q1_answer".
	if rec.Answer == nil {
		if v, ok := fields["answer"]; ok {
			if _, isObj := v.(map[string]any); !isObj {
				rec.Answer = v
			}
		}
	}

	// question and q1_question are mutually backfilled.
	if rec.Question == "" {
		rec.Question = rec.Q1Question
	}
	if rec.Q1Question == "" {
		rec.Q1Question = rec.Question
	}

	if rec.ResumeFile == "" {
		rec.ResumeFile = meta.FileName
	}
	if rec.ResumeID == "" {
		rec.ResumeID = meta.ID
	}

	return rec
}

// liftNestedAnswer handles payloads shaped {question: ..., answer: {...}}:
// the nested answer object supplies defaults and every top-level field is
// overlaid on top, so top-level candidate_name, resume_file, processed_at,
// and question always win.
func liftNestedAnswer(fields map[string]any) map[string]any {
	if _, hasQuestion := fields["question"]; !hasQuestion {
		return fields
	}
	nested, ok := fields["answer"].(map[string]any)
	if !ok {
		return fields
	}
	out := make(map[string]any, len(nested)+len(fields))
	for k, v := range nested {
		out[k] = v
	}
	for k, v := range fields {
		if k == "answer" {
			continue
		}
		out[k] = v
	}
	return out
}

// mergeTextField parses a string "text" field as JSON and merges it in as
// defaults, but only when none of the canonical answer/question/explanation
// fields made it through the earlier steps. A text field that does not parse
// is silently left unused.
func mergeTextField(fields map[string]any) map[string]any {
	text, ok := fields["text"].(string)
	if !ok || text == "" {
		return fields
	}
	if hasAny(fields, "q1_answer", "q1_question", "q1_explanation") {
		return fields
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return fields
	}
	out := make(map[string]any, len(parsed)+len(fields))
	for k, v := range parsed {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func hasAny(fields map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return true
		}
	}
	return false
}

func processedAtField(fields map[string]any) string {
	if v, ok := fields["processed_at"]; ok {
		return stringify(v)
	}
	// Older workflow revisions emitted processed_dt.
	if v, ok := fields["processed_dt"]; ok {
		return stringify(v)
	}
	return ""
}
