// Package mapping reconciles abstract entity types with the native entities
// of each prediction service. A Mapping converts values in both directions;
// the Registry indexes mappings by (abstract type, service) and is built once
// at agent-definition time, then shared read-only across concurrent export
// and parse calls.
package mapping

import (
	"fmt"
	"strconv"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

// Mapping converts between an abstract entity type and one service's native
// representation. Implementations must be pure: FromService(ToService(v))
// must return v for every representable value.
type Mapping interface {
	// Type is the abstract type being mapped.
	Type() model.EntityType

	// ServiceName is the native entity identifier on the target service,
	// e.g. "sys.number-integer" on Dialogflow or "AMAZON.NUMBER" on Alexa.
	ServiceName() string

	// SupportedLanguages returns nil when the mapping is valid for every
	// language the service supports, or the restricted language set
	// otherwise. Callers must check applicability before converting.
	SupportedLanguages() []language.Code

	// FromService decodes a raw prediction value into the abstract value.
	FromService(raw any) (any, error)

	// ToService encodes an abstract value into the service representation.
	ToService(value any) (any, error)
}

// StringMapping reads values as the service sends them and serializes by
// plain string conversion. This is the most common case.
type StringMapping struct {
	EntityType model.EntityType
	Name       string
	Languages  []language.Code
}

func (m StringMapping) Type() model.EntityType              { return m.EntityType }
func (m StringMapping) ServiceName() string                 { return m.Name }
func (m StringMapping) SupportedLanguages() []language.Code { return m.Languages }

func (m StringMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string for %s, got %T", m.EntityType.TypeName(), raw)
	}
	return s, nil
}

func (m StringMapping) ToService(value any) (any, error) {
	return fmt.Sprintf("%v", value), nil
}

// IntegerMapping decodes the number shapes services send (JSON numbers or
// numeric strings) into int64, and serializes as a decimal string.
type IntegerMapping struct {
	Name      string
	Languages []language.Code
}

func (m IntegerMapping) Type() model.EntityType              { return model.SysInteger }
func (m IntegerMapping) ServiceName() string                 { return m.Name }
func (m IntegerMapping) SupportedLanguages() []language.Code { return m.Languages }

func (m IntegerMapping) FromService(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("expected integer, got %v", v)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected integer, got %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected integer, got %T", raw)
	}
}

func (m IntegerMapping) ToService(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return nil, fmt.Errorf("expected integer value, got %T", value)
	}
}

// PatchedMapping maps a system type that the service does not support
// natively onto a builtin custom entity bundled with the framework. Export
// procedures must render the builtin entity together with the agent's own
// entities.
type PatchedMapping struct {
	EntityType model.EntityType
	Builtin    *model.Entity
	Languages  []language.Code
}

func (m PatchedMapping) Type() model.EntityType              { return m.EntityType }
func (m PatchedMapping) ServiceName() string                 { return m.Builtin.Name }
func (m PatchedMapping) SupportedLanguages() []language.Code { return m.Languages }

func (m PatchedMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string for %s, got %T", m.EntityType.TypeName(), raw)
	}
	return s, nil
}

func (m PatchedMapping) ToService(value any) (any, error) {
	return fmt.Sprintf("%v", value), nil
}

// FromServiceList decodes a raw collection element-wise. It fails atomically:
// when any element fails, no partial list is returned.
func FromServiceList(m Mapping, raws []any) ([]any, error) {
	result := make([]any, 0, len(raws))
	for i, raw := range raws {
		value, err := m.FromService(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		result = append(result, value)
	}
	return result, nil
}

// ToServiceList encodes an abstract list element-wise, atomically.
func ToServiceList(m Mapping, values []any) ([]any, error) {
	result := make([]any, 0, len(values))
	for i, value := range values {
		raw, err := m.ToService(value)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		result = append(result, raw)
	}
	return result, nil
}
