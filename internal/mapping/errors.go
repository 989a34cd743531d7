package mapping

import (
	"errors"
	"fmt"

	"github.com/parlancehq/parlance/internal/language"
)

// ErrorCode categorizes entity mapping errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedMapping indicates that no mapping exists for an
	// abstract type on the target service: the parameter cannot be
	// represented on that target.
	ErrCodeUnsupportedMapping ErrorCode = "UNSUPPORTED_ENTITY_MAPPING"

	// ErrCodeUnsupportedLanguage indicates that a mapping exists but does
	// not cover the requested language.
	ErrCodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"

	// ErrCodeCoercion indicates a raw service value that could not be
	// converted to the abstract type.
	ErrCodeCoercion ErrorCode = "PARAMETER_COERCION"
)

// Error is a MappingError in the error taxonomy: raised per parameter, fatal
// to the whole export, and fatal to a parse only when the parameter is
// required.
type Error struct {
	Code      ErrorCode
	Service   string
	TypeName  string
	Parameter string
	Lang      language.Code
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: type %s on service %s", e.Code, e.TypeName, e.Service)
	if e.Parameter != "" {
		msg += fmt.Sprintf(" (parameter=%s)", e.Parameter)
	}
	if e.Lang != "" {
		msg += fmt.Sprintf(" (lang=%s)", e.Lang)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsMappingError reports whether err is a mapping Error with the given code.
func IsMappingError(err error, code ErrorCode) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
