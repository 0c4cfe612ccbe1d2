package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure
type Kind int

const (
	Unclassified Kind = iota
	MissingID
	InvalidIDFormat
	MalformedBody
	SchemaViolation
	InvalidLimit
	InvalidPageCursor
	NotFound
)

var kindNames = map[Kind]string{
	Unclassified:      "unclassified",
	MissingID:         "missing_id",
	InvalidIDFormat:   "invalid_id_format",
	MalformedBody:     "malformed_body",
	SchemaViolation:   "schema_violation",
	InvalidLimit:      "invalid_limit",
	InvalidPageCursor: "invalid_page_cursor",
	NotFound:          "not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status maps a kind to its HTTP status code
func (k Kind) Status() int {
	switch k {
	case MissingID, InvalidIDFormat, MalformedBody, SchemaViolation, InvalidLimit, InvalidPageCursor:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes one schema violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified failure carrying a client-facing message
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error with an underlying cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a SchemaViolation carrying field level details
func Validation(message string, fields []FieldError) *Error {
	return &Error{Kind: SchemaViolation, Message: message, Fields: fields}
}

// KindOf returns the kind of err, or Unclassified when err carries none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unclassified
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
