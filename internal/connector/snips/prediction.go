package snips

import (
	"encoding/json"
	"fmt"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
)

// parseResult is the output of a snips-nlu engine's parse call.
type parseResult struct {
	Input  string         `json:"input"`
	Intent *matchedIntent `json:"intent"`
	Slots  []resultSlot   `json:"slots"`
}

type matchedIntent struct {
	IntentName  *string `json:"intentName"`
	Probability float64 `json:"probability"`
}

type resultSlot struct {
	RawValue string          `json:"rawValue"`
	Value    json.RawMessage `json:"value"`
	Entity   string          `json:"entity"`
	SlotName string          `json:"slotName"`
}

// Parse decodes a snips-nlu parse result into a Prediction. A null intent
// name means the engine matched nothing; that surfaces as an unknown-intent
// error rather than a fabricated fallback. Repeated slots with the same name
// accumulate into list parameters.
func (c *Connector) Parse(raw []byte, activeContexts []string) (*connector.Prediction, error) {
	var body parseResult
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "response is not a parse result",
			Err:     err,
		}
	}
	if body.Intent == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "parse result has no intent block",
		}
	}
	if body.Intent.IntentName == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeUnknownIntent,
			Service: ServiceName,
			Message: fmt.Sprintf("engine matched no intent for input %q", body.Input),
		}
	}

	name := *body.Intent.IntentName
	intent := c.agent.Intent(name)
	if intent == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeUnknownIntent,
			Service: ServiceName,
			Intent:  name,
			Message: fmt.Sprintf("engine matched intent %q, which is not part of the agent definition; make sure the trained engine is in sync with the local definition", name),
		}
	}

	rawParams := make(map[string]any, len(body.Slots))
	for _, slot := range body.Slots {
		value, err := slotValue(slot)
		if err != nil {
			return nil, &connector.ProtocolError{
				Code:    connector.ErrCodeMalformedPayload,
				Service: ServiceName,
				Intent:  name,
				Message: fmt.Sprintf("slot %s has an undecodable value", slot.SlotName),
				Err:     err,
			}
		}
		if p := intent.Parameter(slot.SlotName); p != nil && p.IsList {
			list, _ := rawParams[slot.SlotName].([]any)
			rawParams[slot.SlotName] = append(list, value)
		} else {
			rawParams[slot.SlotName] = value
		}
	}

	params, incomplete, err := connector.CoerceParameters(intent, rawParams, c.reg, ServiceName)
	if err != nil {
		return nil, err
	}

	return &connector.Prediction{
		Intent:                intent,
		Parameters:            params,
		Confidence:            body.Intent.Probability,
		FulfillmentText:       language.RenderText(c.agent.Resources().DefaultText(intent.Name, c.lang), params),
		Language:              c.lang,
		SlotFillingIncomplete: incomplete,
		ContextMismatch:       activeContexts != nil && !c.graph.IsReachable(intent.Name, activeContexts),
		Raw:                   json.RawMessage(raw),
	}, nil
}

// slotValue decodes a slot's value block: custom slots carry their value
// directly, builtin slots wrap it in a kind-discriminated object.
func slotValue(slot resultSlot) (any, error) {
	if len(slot.Value) == 0 {
		return slot.RawValue, nil
	}
	var decoded any
	if err := json.Unmarshal(slot.Value, &decoded); err != nil {
		return nil, err
	}
	if m, ok := decoded.(map[string]any); ok {
		if inner, exists := m["value"]; exists {
			return inner, nil
		}
	}
	return decoded, nil
}
