package engine

import (
	"errors"
	"fmt"
)

// Failure classes for a filter run. All are fatal to the run in progress
// and none are retried internally.
var (
	// ErrInputUnreadable marks a failure opening or reading the index source.
	ErrInputUnreadable = errors.New("input unreadable")
	// ErrMalformedRecord marks a record-region line failing shape validation.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrListUnreadable marks a failure reading a filter list source.
	ErrListUnreadable = errors.New("filter list unreadable")
	// ErrOutputUnwritable marks a failure writing to the output sink.
	ErrOutputUnwritable = errors.New("output unwritable")
)

// maxErrContext bounds how much of an offending line an error carries.
const maxErrContext = 120

// RunError is a structured failure of a single filter run.
// errors.Is matches it against the failure class sentinel.
type RunError struct {
	Kind    error
	Line    int
	Content string
	Err     error
}

func (e *RunError) Error() string {
	msg := e.Kind.Error()
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	if e.Content != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Content)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RunError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// newRunError truncates the offending content before wrapping it.
func newRunError(kind error, line int, content string, err error) *RunError {
	if len(content) > maxErrContext {
		content = content[:maxErrContext] + "..."
	}
	return &RunError{Kind: kind, Line: line, Content: content, Err: err}
}
