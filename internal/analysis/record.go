// Package analysis normalizes, scores, and groups the loosely-shaped answers
// returned by the upstream workflow engine for each (resume, question) upload.
package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Record is the canonical, schema-stable form of one (resume, question)
// answer. Question and Q1Question are mutually backfilled and always plain
// strings; Answer and Explanation keep whatever type the upstream produced.
type Record struct {
	CandidateName string `json:"candidate_name,omitempty"`
	ResumeFile    string `json:"resume_file,omitempty"`
	ResumeID      string `json:"resume_id,omitempty"`
	Question      string `json:"question,omitempty"`
	Q1Question    string `json:"q1_question,omitempty"`
	Answer        any    `json:"q1_answer,omitempty"`
	Explanation   any    `json:"q1_explanation,omitempty"`
	Score         *int   `json:"extracted_score,omitempty"`
	Error         string `json:"error,omitempty"`
	ProcessedAt   string `json:"processed_at,omitempty"`
}

// ResumeMeta identifies the resume a payload was produced for.
type ResumeMeta struct {
	ID       string
	FileName string
}

// decodePayload resolves the upstream payload variants (object, array of
// objects, bare string, unparsable text) into a single flat field map. Array
// payloads contribute only their first element; non-object payloads are
// wrapped under a "response" key. It never fails: worst case the map is empty.
func decodePayload(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return map[string]any{"response": string(raw)}
	}
	return asFieldMap(decoded)
}

func asFieldMap(decoded any) map[string]any {
	switch v := decoded.(type) {
	case map[string]any:
		return v
	case []any:
		if len(v) == 0 {
			return map[string]any{}
		}
		return asFieldMap(v[0])
	case nil:
		return map[string]any{}
	default:
		return map[string]any{"response": v}
	}
}

// stringify coerces a field the UI renders as text into a plain string.
// Objects and arrays are pretty-printed as JSON rather than left raw.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
