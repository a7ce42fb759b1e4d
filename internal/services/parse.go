package services

import (
	"strings"
)

// stripCodeFence removes a markdown code fence the model may have wrapped
// around structured output ("```json ... ```"). Models do this even when
// told not to, so every structured response goes through here before
// decoding.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line, if any
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "JSON" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// splitPrompts turns the model's numbered-list response into individual
// prompt strings. Paragraph breaks are the primary delimiter; single
// newlines are the fallback when the model packed the list tight. Empty
// entries are dropped and numbering prefixes ("3. ", "3) ") are trimmed.
func splitPrompts(text string) []string {
	text = stripCodeFence(text)

	blocks := strings.Split(text, "\n\n")
	if len(blocks) <= 1 {
		blocks = strings.Split(text, "\n")
	}

	prompts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		p := trimNumbering(strings.TrimSpace(block))
		if p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}

// trimNumbering strips a leading "12." or "12)" list marker.
func trimNumbering(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) {
		return s
	}
	if s[i] != '.' && s[i] != ')' {
		return s
	}
	return strings.TrimSpace(s[i+1:])
}
