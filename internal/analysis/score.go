package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	explicitScorePattern = regexp.MustCompile(`(?i)score:\s*(\d+)`)
	bareScorePattern     = regexp.MustCompile(`^(\d{1,3})\s*%?$`)
	scoreQuestionPattern = regexp.MustCompile(`(?i)score`)
)

// ExtractScore derives a numeric score from a free-text answer.
//
// An explicit "Score: NN" substring always wins and is taken verbatim, with
// no upper bound. Failing that, when the question itself asks about a score
// and the whole answer is a bare integer (optionally "%"-suffixed) between 0
// and 100, that integer is used. Otherwise no score is extracted; callers
// must render the absence as "N/A", not zero.
func ExtractScore(answer any, question string) *int {
	text := strings.TrimSpace(AnswerText(answer))
	if text == "" {
		return nil
	}

	if m := explicitScorePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}

	if scoreQuestionPattern.MatchString(question) {
		if m := bareScorePattern.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 100 {
				return &n
			}
		}
	}

	return nil
}

// ExplicitScoreText returns the digits of an explicit "Score: NN" match, or
// "" when the text has none. Export uses it to collapse long answers down to
// the bare number.
func ExplicitScoreText(text string) string {
	if m := explicitScorePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// AnswerText flattens an answer value for pattern matching and display.
// Strings pass through, arrays become newline-joined entries, objects are
// pretty-printed JSON.
func AnswerText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, AnswerText(item))
		}
		return strings.Join(parts, "\n")
	case float64, bool, json.Number:
		return stringify(t)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
