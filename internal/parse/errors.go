package parse

import "fmt"

// MalformedResponseError means the completion contained no decodable JSON
// by either extraction strategy. Raw carries the original completion text
// for diagnostics.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError means the JSON decoded but did not match the
// expected shape. Field names the offending field or top-level type.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}
