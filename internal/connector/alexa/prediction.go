package alexa

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
)

// skillRequest is the body Alexa POSTs to the skill endpoint.
type skillRequest struct {
	Version string         `json:"version"`
	Request requestPayload `json:"request"`
}

type requestPayload struct {
	Type        string        `json:"type"`
	Locale      string        `json:"locale"`
	DialogState string        `json:"dialogState"`
	Intent      requestIntent `json:"intent"`
}

type requestIntent struct {
	Name  string                 `json:"name"`
	Slots map[string]requestSlot `json:"slots"`
}

type requestSlot struct {
	Name        string           `json:"name"`
	Value       string           `json:"value"`
	Resolutions *slotResolutions `json:"resolutions"`
}

type slotResolutions struct {
	ResolutionsPerAuthority []slotResolution `json:"resolutionsPerAuthority"`
}

type slotResolution struct {
	Status struct {
		Code string `json:"code"`
	} `json:"status"`
	Values []struct {
		Value struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"value"`
	} `json:"values"`
}

// Parse decodes an Alexa IntentRequest into a Prediction. Alexa reports no
// confidence score, so predictions carry the not-reported sentinel. Slot
// values prefer entity resolutions over the raw transcription, matching
// synonym entries back to their canonical value.
func (c *Connector) Parse(raw []byte, activeContexts []string) (*connector.Prediction, error) {
	var body skillRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "request is not a skill request body",
			Err:     err,
		}
	}
	if body.Request.Type != "IntentRequest" {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: fmt.Sprintf("expected an IntentRequest, got %q", body.Request.Type),
		}
	}

	intent := c.intentsByAlexaName[body.Request.Intent.Name]
	if intent == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeUnknownIntent,
			Service: ServiceName,
			Intent:  body.Request.Intent.Name,
			Message: fmt.Sprintf("service matched intent %q, which is not part of the agent definition; make sure the deployed interaction model is in sync with the local definition", body.Request.Intent.Name),
		}
	}

	rawParams := make(map[string]any, len(body.Request.Intent.Slots))
	for name, slot := range body.Request.Intent.Slots {
		value := slotValue(slot)
		if value == "" {
			continue
		}
		if p := intent.Parameter(name); p != nil && p.IsList {
			rawParams[name] = []any{value}
		} else {
			rawParams[name] = value
		}
	}

	params, incomplete, err := connector.CoerceParameters(intent, rawParams, c.reg, ServiceName)
	if err != nil {
		return nil, err
	}
	if body.Request.DialogState == "IN_PROGRESS" {
		incomplete = true
	}

	lang := c.languageOf(body.Request.Locale)
	return &connector.Prediction{
		Intent:                intent,
		Parameters:            params,
		Confidence:            connector.ConfidenceNotReported,
		FulfillmentText:       language.RenderText(c.agent.Resources().DefaultText(intent.Name, lang), params),
		Language:              lang,
		SlotFillingIncomplete: incomplete,
		ContextMismatch:       activeContexts != nil && !c.graph.IsReachable(intent.Name, activeContexts),
		Raw:                   json.RawMessage(raw),
	}, nil
}

// slotValue picks the best value of a slot: the first successful entity
// resolution when present, else the raw transcription.
func slotValue(slot requestSlot) string {
	if slot.Resolutions != nil {
		for _, res := range slot.Resolutions.ResolutionsPerAuthority {
			if res.Status.Code == "ER_SUCCESS_MATCH" && len(res.Values) > 0 {
				return res.Values[0].Value.Name
			}
		}
	}
	return slot.Value
}

// languageOf maps an Alexa locale back to the agent's language code. The
// first agent language whose locale matches wins; an unknown locale falls
// back to its bare language tag.
func (c *Connector) languageOf(locale string) language.Code {
	for _, code := range c.agent.Languages() {
		if l, err := localeOf(code); err == nil && strings.EqualFold(l, locale) {
			return code
		}
	}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		return language.Code(locale[:i])
	}
	return language.Code(locale)
}
