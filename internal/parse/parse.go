// Package parse converts a language model's free-text completion into a
// validated ParsedLog, or fails with a typed error. It performs no semantic
// correction and no I/O; callers layer enrichment and persistence on top.
package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// fencedRe matches a ```json ... ``` or bare ``` ... ``` block and captures
// the interior text. Models wrap JSON in fences despite being asked not to.
var fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Parse extracts and validates the JSON payload from a model completion.
//
// Extraction is a two-step strategy: prefer the interior of a fenced code
// block, otherwise treat the whole trimmed completion as the candidate.
// If the candidate fails to decode, one fallback scans for the first
// balanced brace-delimited substring, which recovers completions where the
// model added prose around otherwise-valid JSON.
//
// Failures are distinguishable by kind: *MalformedResponseError when no
// decodable JSON is found, *SchemaViolationError when JSON decodes but the
// top level is not an object with an entries array.
func Parse(completion string) (*ParsedLog, error) {
	candidate := extractCandidate(completion)

	var top any
	if err := json.Unmarshal([]byte(candidate), &top); err != nil {
		braced, ok := firstJSONObject(candidate)
		if !ok {
			return nil, &MalformedResponseError{Raw: completion, Err: err}
		}
		if err2 := json.Unmarshal([]byte(braced), &top); err2 != nil {
			return nil, &MalformedResponseError{Raw: completion, Err: err2}
		}
		candidate = braced
	}

	obj, ok := top.(map[string]any)
	if !ok {
		return nil, &SchemaViolationError{Field: "$", Reason: "top level must be an object, not a list or scalar"}
	}

	if _, hasEntries := obj["entries"]; !hasEntries {
		// Single-entry variant: the entry fields appear at the top level.
		// Wrap it so callers always see the entries form.
		if _, hasExercises := obj["exercises"]; hasExercises {
			candidate = `{"entries":[` + candidate + `]}`
		} else {
			return nil, &SchemaViolationError{Field: "entries", Reason: "missing required entries key"}
		}
	} else if _, isList := obj["entries"].([]any); !isList {
		return nil, &SchemaViolationError{Field: "entries", Reason: "entries must be an array"}
	}

	var log ParsedLog
	if err := json.Unmarshal([]byte(candidate), &log); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &SchemaViolationError{Field: typeErr.Field, Reason: "unexpected type " + typeErr.Value}
		}
		return nil, &MalformedResponseError{Raw: completion, Err: err}
	}
	return &log, nil
}

// extractCandidate returns the interior of the first fenced block, or the
// whole trimmed completion when no fence is present.
func extractCandidate(completion string) string {
	if m := fencedRe.FindStringSubmatch(completion); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(completion)
}

// firstJSONObject scans for the first balanced {...} substring, skipping
// braces inside JSON strings. Returns false when no balanced object exists.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
