package pitch

import (
	"fmt"
	"strings"
)

// ChooseContext picks the single context source for the prompt. Resume text
// wins over free-text notes; the two are never concatenated.
func ChooseContext(resumeText, additionalContext string) string {
	if resumeText != "" {
		return resumeText
	}
	return additionalContext
}

// BuildPrompt composes the instruction block sent as the user message to the
// completion endpoint. It is deterministic: identical inputs yield identical
// output.
func BuildPrompt(in Input, contextText string) string {
	length := in.Length
	if length == "" {
		length = "60-second"
	}
	focus := in.FocusArea
	if focus == "" {
		focus = "unspecified"
	}
	audience := in.Audience
	if audience == "" {
		audience = "general"
	}

	var b strings.Builder
	b.WriteString("You are a career-coaching assistant.\n")
	fmt.Fprintf(&b, "Generate a %s elevator pitch for someone targeting %s.\n", length, in.JobTitle)
	fmt.Fprintf(&b, "Purpose: %s.\n", in.Purpose)
	fmt.Fprintf(&b, "Focus area: %s.\n", focus)
	fmt.Fprintf(&b, "Audience: %s.\n", audience)
	if contextText != "" {
		fmt.Fprintf(&b, "Context (resume or notes):\n%s\n", contextText)
	}
	if in.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", in.Tone)
	}
	b.WriteString("Return only the pitch text.")
	return b.String()
}
