package connector

import (
	"errors"
	"fmt"
)

// ProtocolCode categorizes service protocol errors.
type ProtocolCode string

const (
	// ErrCodeUnknownIntent indicates a response naming an intent absent
	// from the agent definition. The local model is out of sync with the
	// cloud agent; a new upload may solve the issue. Never silently mapped
	// to a fallback intent.
	ErrCodeUnknownIntent ProtocolCode = "UNKNOWN_INTENT_IN_RESPONSE"

	// ErrCodeMalformedPayload indicates a raw response that does not parse
	// as the service's documented shape.
	ErrCodeMalformedPayload ProtocolCode = "MALFORMED_PAYLOAD"

	// ErrCodeUnknownParameter indicates a response carrying a parameter the
	// matched intent does not declare.
	ErrCodeUnknownParameter ProtocolCode = "UNKNOWN_PARAMETER_IN_RESPONSE"
)

// ProtocolError is an error in the communication with a prediction service.
// Always fatal to the single parse call that hit it; the caller decides
// whether to retry at the transport boundary.
type ProtocolError struct {
	Code    ProtocolCode
	Service string
	Intent  string
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Intent != "" {
		msg += fmt.Sprintf(" (intent=%s)", e.Intent)
	}
	if e.Service != "" {
		msg += fmt.Sprintf(" (service=%s)", e.Service)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsProtocolError reports whether err is a ProtocolError with the given
// code. Uses errors.As to handle wrapped errors.
func IsProtocolError(err error, code ProtocolCode) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
