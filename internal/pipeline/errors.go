package pipeline

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a pipeline failure. Every stage translates its
// library- or transport-specific errors into exactly one kind before
// the error leaves the stage boundary.
type Kind int

const (
	// KindInternal is any unanticipated failure.
	KindInternal Kind = iota
	// KindInputValidation means the upload's declared name or type was rejected.
	KindInputValidation
	// KindRead means buffering or spooling the upload failed server-side.
	KindRead
	// KindUnparsable means the parser rejected the document itself.
	KindUnparsable
	// KindMissingFields means required fields were absent or malformed.
	KindMissingFields
	// KindUpstream means a third-party call failed or returned non-200.
	KindUpstream
)

// String returns a stable identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "input_validation"
	case KindRead:
		return "read"
	case KindUnparsable:
		return "unparsable_document"
	case KindMissingFields:
		return "missing_fields"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to the externally-visible status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInputValidation, KindMissingFields:
		return http.StatusBadRequest
	case KindUnparsable:
		return http.StatusUnprocessableEntity
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type the pipeline lets escape to callers.
type Error struct {
	Kind    Kind
	Message string
	// Fields carries the complete list of missing or malformed field
	// names when Kind is KindMissingFields.
	Fields []string
	cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, strings.Join(e.Fields, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// failed wraps a stage failure with its classification.
func failed(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
