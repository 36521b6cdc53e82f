package lessons

import (
	"encoding/json"
	"strings"
)

// ExtractObject returns the first balanced {...} span in text that is
// valid JSON. Leading prose and code fences are skipped. When balanced
// spans exist but none is valid JSON, the first one is returned so the
// caller reports it as malformed. An unclosed brace is skipped and the
// search resumes after it. Text without any balanced span yields
// ErrInvalidResponseFormat.
func ExtractObject(text string) (string, error) {
	var first string
	found := false

	for start := strings.IndexByte(text, '{'); start >= 0; {
		resume := start + 1
		if end := matchBrace(text, start); end >= 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
			if !found {
				first, found = candidate, true
			}
			resume = end + 1
		}

		next := strings.IndexByte(text[resume:], '{')
		if next < 0 {
			break
		}
		start = resume + next
	}

	if found {
		return first, nil
	}
	return "", ErrInvalidResponseFormat
}

// matchBrace returns the index of the brace closing the one at start,
// ignoring braces inside JSON strings, or -1 if it never closes.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
