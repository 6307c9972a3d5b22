package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat indicates a schedule format could not be determined.
var ErrUnknownFormat = errors.New("unknown schedule format")

type ErrorCode string

const (
	CodeParse      ErrorCode = "PARSE_FAILED"
	CodeValidation ErrorCode = "VALIDATION_FAILED"
)

// ParseError reports input that cannot be tokenized into records at all.
type ParseError struct {
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(string(CodeParse))
	b.WriteString(": ")
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError aggregates every error-severity finding of a validation
// pass. The report is attached so callers can show warnings and stats too.
type ValidationError struct {
	Report *Report
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %d error(s)", CodeValidation, len(e.Report.Errors))
	for _, err := range e.Report.Errors {
		msg += "\n  - " + err
	}
	return msg
}
