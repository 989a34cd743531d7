package connector

import (
	"fmt"

	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

// CoerceParameters converts a raw parameter map from a service response into
// abstract values, per the intent's parameter schema.
//
// A missing optional parameter falls back to its declared default; a missing
// required parameter is left unset and reported through the returned
// incomplete flag, so slot filling can proceed. A value that is present but
// cannot be coerced fails the whole call with a mapping coercion error
// naming the parameter; list parameters decode atomically.
func CoerceParameters(
	intent *model.Intent,
	raw map[string]any,
	reg *mapping.Registry,
	service string,
) (params map[string]any, incomplete bool, err error) {
	for name := range raw {
		if intent.Parameter(name) == nil {
			return nil, false, &ProtocolError{
				Code:    ErrCodeUnknownParameter,
				Service: service,
				Intent:  intent.Name,
				Message: fmt.Sprintf("response carries parameter %q, which the intent does not declare; make sure the cloud agent is in sync with the local definition", name),
			}
		}
	}

	params = make(map[string]any, len(intent.Parameters))
	for _, p := range intent.Parameters {
		value, present := raw[p.Name]
		if !present || isEmpty(value) {
			if p.Required {
				incomplete = true
			} else if p.Default != nil {
				params[p.Name] = p.Default
			}
			continue
		}

		m, resolveErr := reg.Resolve(p.Type, service)
		if resolveErr != nil {
			return nil, false, resolveErr
		}

		if p.IsList {
			list, ok := value.([]any)
			if !ok {
				return nil, false, coercionError(service, p, fmt.Errorf("declared as list, but value %v is not a collection", value))
			}
			coerced, listErr := mapping.FromServiceList(m, list)
			if listErr != nil {
				return nil, false, coercionError(service, p, listErr)
			}
			params[p.Name] = coerced
		} else {
			coerced, valueErr := m.FromService(value)
			if valueErr != nil {
				return nil, false, coercionError(service, p, valueErr)
			}
			params[p.Name] = coerced
		}
	}
	return params, incomplete, nil
}

func coercionError(service string, p model.Parameter, err error) error {
	return &mapping.Error{
		Code:      mapping.ErrCodeCoercion,
		Service:   service,
		TypeName:  p.Type.TypeName(),
		Parameter: p.Name,
		Err:       err,
	}
}

// isEmpty reports whether a raw parameter value counts as "not tagged".
// Services represent absent parameters as empty strings or empty lists
// rather than omitting them.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}
