package model

import (
	"errors"
	"fmt"
)

// DefinitionCode categorizes agent definition errors.
type DefinitionCode string

const (
	// ErrCodeInvalidName indicates an intent or entity name that violates
	// the naming rules (see CheckName).
	ErrCodeInvalidName DefinitionCode = "INVALID_NAME"

	// ErrCodeDuplicateName indicates two intents or entities sharing a name.
	ErrCodeDuplicateName DefinitionCode = "DUPLICATE_NAME"

	// ErrCodeUnknownEntity indicates a parameter typed with an entity that
	// was never registered.
	ErrCodeUnknownEntity DefinitionCode = "UNKNOWN_ENTITY"

	// ErrCodeUnknownFollowTarget indicates a follow relation naming an
	// intent that does not exist.
	ErrCodeUnknownFollowTarget DefinitionCode = "UNKNOWN_FOLLOW_TARGET"

	// ErrCodeUnknownParameterReference indicates an example utterance
	// referencing a parameter the intent does not define.
	ErrCodeUnknownParameterReference DefinitionCode = "UNKNOWN_PARAMETER_REFERENCE"

	// ErrCodeMalformedTemplate indicates an example utterance with an
	// unbalanced or empty parameter marker.
	ErrCodeMalformedTemplate DefinitionCode = "MALFORMED_TEMPLATE"

	// ErrCodeBadDefault indicates a parameter default that contradicts its
	// spec (required with default, or list with non-list default).
	ErrCodeBadDefault DefinitionCode = "BAD_DEFAULT"

	// ErrCodeCyclicRelation indicates a cycle in the follow relation graph.
	ErrCodeCyclicRelation DefinitionCode = "CYCLIC_RELATION"
)

// DefinitionError is an error in the agent definition itself. Definition
// errors are detected eagerly, at registration or validation time, and are
// always fatal to the agent construction.
type DefinitionError struct {
	Code    DefinitionCode
	Intent  string
	Entity  string
	Message string
	Err     error
}

func (e *DefinitionError) Error() string {
	subject := ""
	if e.Intent != "" {
		subject = fmt.Sprintf(" (intent=%s)", e.Intent)
	} else if e.Entity != "" {
		subject = fmt.Sprintf(" (entity=%s)", e.Entity)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, subject)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// IsDefinitionError reports whether err is a DefinitionError with the given
// code. Uses errors.As to handle wrapped errors.
func IsDefinitionError(err error, code DefinitionCode) bool {
	var de *DefinitionError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
