package openai

import "strings"

// cleanText collapses runs of whitespace and trims the result. Skill
// literals in tab separated extracts often carry stray tabs and padding.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanTexts(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = cleanText(t)
	}
	return out
}
