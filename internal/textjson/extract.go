// Package textjson recovers a JSON value embedded in free-form text, such as a
// language-model reply that wraps its payload in prose or a fenced code block.
package textjson

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// Extract tries, in order: the whole text, the first fenced block, and the first
// balanced {...} substring. The first successful parse wins. ok is false when
// nothing parses; that is an expected outcome, not an error.
//
// A whole-text parse may yield any JSON type, including null (nil, true).
func Extract(text string) (any, bool) {
	if text == "" {
		return nil, false
	}

	if v, err := parse(text); err == nil {
		return v, true
	}

	// Only the first fenced block is considered.
	if m := fencedBlock.FindStringSubmatch(text); m != nil && m[1] != "" {
		if v, err := parse(strings.TrimSpace(m[1])); err == nil {
			return v, true
		}
	}

	if candidate, ok := firstBalancedObject(text); ok {
		if v, err := parse(candidate); err == nil {
			return v, true
		}
	}
	return nil, false
}

// firstBalancedObject returns the span from the first '{' to the brace that
// brings nesting depth back to zero. Braces inside string literals are counted too.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return text[start : i+1], true
		}
	}
	return "", false
}

func parse(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
