package model

import (
	"regexp"
	"strings"
)

// reservedPrefix marks names of builtin resources bundled with the framework
// (e.g. patch entities for services lacking a system type).
const reservedPrefix = "i_"

var nameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z_.]*$`)

// CheckName validates an intent or entity name. Valid names only contain
// letters, underscore and period, start with a letter, don't contain repeated
// underscores, and don't use the reserved "i_" prefix. Names are case
// insensitive and must be unique within an agent; uniqueness is enforced by
// Agent registration, not here.
func CheckName(candidate string, system bool) error {
	reason := ""
	switch {
	case !nameRe.MatchString(candidate):
		reason = "must start with a letter and only contain letters, underscore or period"
	case strings.Contains(candidate, "__"):
		reason = "must not contain __"
	case !system && strings.HasPrefix(strings.ToLower(candidate), reservedPrefix):
		reason = "the 'i_' prefix is reserved for builtin resources"
	}
	if reason != "" {
		return &DefinitionError{
			Code:    ErrCodeInvalidName,
			Message: "invalid name " + candidate + ": " + reason,
		}
	}
	return nil
}
