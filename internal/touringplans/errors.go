package touringplans

import (
	"errors"
	"fmt"
)

// TransportError indicates the source could not be reached or answered with a
// non-2xx status.
type TransportError struct {
	URL    string
	Status int // 0 when the request never produced a response
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport: %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("transport: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError indicates the CSV header is missing a required column.
type SchemaError struct {
	Missing string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema: missing %s: %v", e.Missing, e.Err)
	}
	return fmt.Sprintf("schema: missing column %q", e.Missing)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ParseError indicates a data row that could not be interpreted. Row is the
// 1-based line number in the source file, counting the header as line 1.
type ParseError struct {
	Row int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: row %d: %v", e.Row, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorLabel classifies an error for metrics.
func ErrorLabel(err error) string {
	var transport *TransportError
	if errors.As(err, &transport) {
		return "transport"
	}
	var schema *SchemaError
	if errors.As(err, &schema) {
		return "schema"
	}
	var parse *ParseError
	if errors.As(err, &parse) {
		return "parse"
	}
	return "other"
}
