package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON document out of a model response. Models
// frequently wrap their output in markdown code fences or surround it
// with prose, so we try, in order: a fenced ```json block, the first
// balanced object, the first balanced array.
func ExtractJSON(s string) string {
	if block := extractFencedBlock(s); block != "" {
		return block
	}
	if obj := extractBalanced(s, '{', '}'); obj != "" {
		return obj
	}
	return extractBalanced(s, '[', ']')
}

// DecodeJSON extracts and unmarshals the JSON document in a model response
func DecodeJSON(raw string, v any) error {
	doc := ExtractJSON(raw)
	if doc == "" {
		return fmt.Errorf("no JSON document in response")
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}
	return nil
}

// extractFencedBlock extracts content from a ```json ... ``` code block
func extractFencedBlock(s string) string {
	start := strings.Index(s, "```json")
	if start == -1 {
		start = strings.Index(s, "```")
		if start == -1 {
			return ""
		}
	}

	// Skip past the opening fence line
	rest := s[start:]
	nl := strings.Index(rest, "\n")
	if nl == -1 {
		return ""
	}
	body := rest[nl+1:]

	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}

	return strings.TrimSpace(body[:end])
}

// extractBalanced extracts the first balanced open..close span.
// Quote-aware so braces inside JSON strings don't break the depth count.
func extractBalanced(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case open:
			if !inString {
				depth++
			}
		case close:
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
