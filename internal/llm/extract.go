package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
// Captures: (1) language, (2) fenced content.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// ExtractJSON extracts JSON from an LLM response that may be wrapped in
// markdown. Fenced ```json blocks (or untagged fences) take priority; when
// none contain valid JSON the first raw object or array in the text is used.
func ExtractJSON(response string) (string, error) {
	if payload, ok := extractFenced(response); ok {
		return payload, nil
	}

	if payload, ok := extractRaw(response); ok {
		return payload, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

// extractFenced returns the first fenced block holding valid JSON. Fences
// tagged with another language are skipped.
func extractFenced(response string) (string, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}

		content := strings.TrimSpace(match[2])
		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}
		if json.Valid([]byte(content)) {
			return content, true
		}
	}

	return "", false
}

// extractRaw finds the first opening bracket from which a bare JSON object or
// array decodes cleanly. The JSON decoder consumes exactly one value, which
// handles nesting, quoted brackets, and escapes.
func extractRaw(response string) (string, bool) {
	for offset := 0; offset < len(response); {
		idx := strings.IndexAny(response[offset:], "{[")
		if idx < 0 {
			return "", false
		}
		start := offset + idx

		dec := json.NewDecoder(strings.NewReader(response[start:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return string(raw), true
		}
		offset = start + 1
	}

	return "", false
}

// ExtractJSONAs extracts JSON and unmarshals it into the provided type.
// Convenience wrapper around ExtractJSON.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}
