package lexicon

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates the caller supplied an empty or whitespace-only word.
	ErrValidation = errors.New("word is required")

	// ErrTransport indicates the provider could not be reached or its envelope could not be decoded.
	ErrTransport = errors.New("ai transport failure")

	// ErrService indicates the provider answered with an application-level error.
	ErrService = errors.New("ai service failure")

	// ErrEmptyResponse indicates the provider succeeded but returned no usable content.
	ErrEmptyResponse = errors.New("ai returned empty response")

	// ErrMalformedPayload indicates the payload holds no decodable JSON document.
	ErrMalformedPayload = errors.New("malformed analysis payload")

	// ErrSchemaViolation indicates the payload decoded but does not match the analysis schema.
	ErrSchemaViolation = errors.New("analysis schema violation")
)

// ServiceError carries the provider's own error code and message.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: status=%d code=%s message=%s", ErrService, e.Status, e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return ErrService }

// SchemaError reports the first offending field path of a payload.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrSchemaViolation, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// Kind is the failure class of an analysis error
type Kind string

const (
	KindNone             Kind = ""
	KindValidation       Kind = "validation"
	KindTransport        Kind = "transport"
	KindService          Kind = "service"
	KindEmptyResponse    Kind = "empty_response"
	KindMalformedPayload Kind = "malformed_payload"
	KindSchemaViolation  Kind = "schema_violation"
	KindUnknown          Kind = "unknown"
)

// KindOf classifies err against the sentinels above.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrService):
		return KindService
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, ErrSchemaViolation):
		return KindSchemaViolation
	default:
		return KindUnknown
	}
}
