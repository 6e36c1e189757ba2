package ingest

import "fmt"

// ParseReason classifies row-level normalization failures.
type ParseReason string

const (
	ReasonMissingField  ParseReason = "missing_field"
	ReasonInvalidNumber ParseReason = "invalid_number"
	ReasonInvalidSide   ParseReason = "invalid_side"
	ReasonInvalidDate   ParseReason = "invalid_date"
)

// ParseError is a recoverable row-level failure: the row is skipped and
// counted, the rest of the batch continues.
type ParseError struct {
	Reason ParseReason
	Field  string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("parse %s: %s (%s)", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("parse %s: %s", e.Field, e.Reason)
}

func parseErr(reason ParseReason, field, detail string) *ParseError {
	return &ParseError{Reason: reason, Field: field, Detail: detail}
}
