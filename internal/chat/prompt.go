package chat

import (
	"fmt"
	"strings"

	"airecruiter-backend/internal/analysis"
)

const systemInstruction = "You are an AI recruiting assistant. You answer questions about candidates " +
	"using only the analysis context provided. Be concise and specific; when the context does not " +
	"contain the answer, say so instead of guessing."

// BuildPrompt formats the selected resume groups plus the user's question
// into the user message sent to the completion endpoint.
func BuildPrompt(groups []analysis.Group, question string) (system, user string) {
	var b strings.Builder
	b.WriteString("Candidate analysis context:\n\n")

	for i, g := range groups {
		name := g.ResumeName
		if name == "" {
			name = fmt.Sprintf("Candidate %d", i+1)
		}
		fmt.Fprintf(&b, "## %s\n", name)
		if g.ResumeFile != "" {
			fmt.Fprintf(&b, "Resume file: %s\n", g.ResumeFile)
		}
		if g.ProcessedAt != "" {
			fmt.Fprintf(&b, "Processed at: %s\n", g.ProcessedAt)
		}
		for _, q := range g.Questions {
			if q.Question != "" {
				fmt.Fprintf(&b, "Question: %s\n", q.Question)
			}
			if q.Error != "" {
				fmt.Fprintf(&b, "Answer: (failed: %s)\n", q.Error)
				continue
			}
			fmt.Fprintf(&b, "Answer: %s\n", analysis.AnswerText(q.Answer))
			if q.Score != nil {
				fmt.Fprintf(&b, "Extracted score: %d\n", *q.Score)
			}
			if expl := analysis.AnswerText(q.Explanation); expl != "" {
				fmt.Fprintf(&b, "Explanation: %s\n", expl)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User question: %s\n", question)
	return systemInstruction, b.String()
}
