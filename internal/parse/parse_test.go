package parse

import (
	"errors"
	"reflect"
	"testing"
)

// TestParseFenced verifies that a completion wrapped in a ```json fence and
// the same JSON with no fence decode to the same structure.
func TestParseFenced(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n{\"entries\":[]}\n```"},
		{"bare fence", "```\n{\"entries\":[]}\n```"},
		{"no fence", `{"entries":[]}`},
		{"no fence with whitespace", "  \n{\"entries\":[]}\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Entries) != 0 {
				t.Errorf("entries = %v, want empty", got.Entries)
			}
		})
	}
}

// TestParseProseWrapped verifies the brace-scanning fallback recovers JSON
// surrounded by prose the model was asked not to emit.
func TestParseProseWrapped(t *testing.T) {
	input := `Sure! Here you go: {"entries":[{"date":"2024-01-01","exercises":[]}]} Hope that helps!`

	got, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(got.Entries))
	}
	if got.Entries[0].Date != "2024-01-01" {
		t.Errorf("date = %q, want %q", got.Entries[0].Date, "2024-01-01")
	}
}

// TestParseBracesInStrings verifies brace matching is not confused by
// braces inside JSON string values.
func TestParseBracesInStrings(t *testing.T) {
	input := `note: {"entries":[{"date":"2024-01-01","exercises":[{"name":"squats","notes":"felt {rough}","sets":[]}]}]}`

	got, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Entries[0].Exercises[0].Notes != "felt {rough}" {
		t.Errorf("notes = %q", got.Entries[0].Exercises[0].Notes)
	}
}

// TestParseRejectList verifies a bare JSON list fails as a schema violation,
// not a malformed response: the caller shows different messages for the two.
func TestParseRejectList(t *testing.T) {
	_, err := Parse(`[1,2,3]`)

	var sv *SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("error = %v, want SchemaViolationError", err)
	}
	if sv.Field != "$" {
		t.Errorf("field = %q, want %q", sv.Field, "$")
	}
}

// TestParseMissingEntries verifies an object without an entries key (and
// without the single-entry fields) names the missing key in the error.
func TestParseMissingEntries(t *testing.T) {
	_, err := Parse(`{"workouts":[]}`)

	var sv *SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("error = %v, want SchemaViolationError", err)
	}
	if sv.Field != "entries" {
		t.Errorf("field = %q, want %q", sv.Field, "entries")
	}
}

// TestParseEntriesWrongType verifies entries holding a non-array is rejected.
func TestParseEntriesWrongType(t *testing.T) {
	_, err := Parse(`{"entries":{"date":"2024-01-01"}}`)

	var sv *SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("error = %v, want SchemaViolationError", err)
	}
}

// TestParseSingleEntryVariant verifies the single-entry schema variant
// (entry fields at the top level) is wrapped into the entries form.
func TestParseSingleEntryVariant(t *testing.T) {
	got, err := Parse(`{"date":"2024-03-05","exercises":[{"name":"pull-ups","sets":[]}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(got.Entries))
	}
	if got.Entries[0].Date != "2024-03-05" {
		t.Errorf("date = %q, want %q", got.Entries[0].Date, "2024-03-05")
	}
}

// TestParseGarbage verifies undecodable text fails as a malformed response
// carrying the original raw text for logging.
func TestParseGarbage(t *testing.T) {
	input := "not json at all"
	_, err := Parse(input)

	var mr *MalformedResponseError
	if !errors.As(err, &mr) {
		t.Fatalf("error = %v, want MalformedResponseError", err)
	}
	if mr.Raw != input {
		t.Errorf("raw = %q, want original input", mr.Raw)
	}
}

// TestParseNullMetricValue verifies null metric values decode as nil
// pointers so the mapper can filter them.
func TestParseNullMetricValue(t *testing.T) {
	input := `{"entries":[{"date":"2024-01-01","exercises":[{"name":"rowing","sets":[{"set_number":1,"metrics":[{"type":"distance","value":null,"unit":"km"},{"type":"time","value":300,"unit":"sec"}]}]}]}]}`

	got, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metrics := got.Entries[0].Exercises[0].Sets[0].Metrics
	if metrics[0].Value != nil {
		t.Errorf("metric 0 value = %v, want nil", *metrics[0].Value)
	}
	if metrics[1].Value == nil || *metrics[1].Value != 300 {
		t.Errorf("metric 1 value = %v, want 300", metrics[1].Value)
	}
}

// TestParseIdempotent verifies parsing the same completion twice yields
// structurally identical output: the parser introduces no hidden state.
func TestParseIdempotent(t *testing.T) {
	input := "```json\n" + `{"entries":[{"date":"2024-02-02","exercises":[{"name":"deadlift","sets":[{"set_number":1,"metrics":[{"type":"weight","value":120,"unit":"kg"},{"type":"reps","value":5,"unit":"reps"}]}]}]}]}` + "\n```"

	first, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated parse of the same completion differs")
	}
}
