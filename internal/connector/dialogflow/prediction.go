package dialogflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
)

// detectIntentResponse is the body of a detectIntent REST call.
type detectIntentResponse struct {
	ResponseID    string          `json:"responseId"`
	QueryResult   *queryResult    `json:"queryResult"`
	WebhookStatus json.RawMessage `json:"webhookStatus"`
}

type queryResult struct {
	QueryText                 string          `json:"queryText"`
	Parameters                map[string]any  `json:"parameters"`
	AllRequiredParamsPresent  bool            `json:"allRequiredParamsPresent"`
	FulfillmentText           string          `json:"fulfillmentText"`
	OutputContexts            []outputContext `json:"outputContexts"`
	Intent                    matchedIntent   `json:"intent"`
	IntentDetectionConfidence *float64        `json:"intentDetectionConfidence"`
	LanguageCode              string          `json:"languageCode"`
}

type matchedIntent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type outputContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters"`
}

// Parse decodes a detectIntent response into a Prediction. The matched intent
// must exist in the local definition; a response naming an unknown intent
// fails, it is never silently remapped. When activeContexts is non-nil, the
// prediction is annotated with a context mismatch if the intent is not
// reachable from them.
func (c *Connector) Parse(raw []byte, activeContexts []string) (*connector.Prediction, error) {
	var body detectIntentResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "response is not a detectIntent body",
			Err:     err,
		}
	}
	if body.QueryResult == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "response has no queryResult",
		}
	}
	return c.parseQueryResult(body.QueryResult, raw, activeContexts)
}

func (c *Connector) parseQueryResult(qr *queryResult, raw []byte, activeContexts []string) (*connector.Prediction, error) {
	name := qr.Intent.DisplayName
	intent := c.agent.Intent(name)
	if intent == nil {
		return nil, &connector.ProtocolError{
			Code:    connector.ErrCodeUnknownIntent,
			Service: ServiceName,
			Intent:  name,
			Message: fmt.Sprintf("service matched intent %q, which is not part of the agent definition; make sure the cloud agent is in sync with the local definition", name),
		}
	}

	params, incomplete, err := connector.CoerceParameters(intent, qr.Parameters, c.reg, ServiceName)
	if err != nil {
		return nil, err
	}
	if !qr.AllRequiredParamsPresent {
		incomplete = true
	}

	contexts := make([]connector.ActiveContext, 0, len(qr.OutputContexts))
	for _, ctx := range qr.OutputContexts {
		contexts = append(contexts, connector.ActiveContext{
			Name:     shortContextName(ctx.Name),
			Lifespan: ctx.LifespanCount,
		})
	}

	lang := c.languageOf(qr.LanguageCode)
	text := qr.FulfillmentText
	if text == "" {
		text = language.RenderText(c.agent.Resources().DefaultText(intent.Name, lang), params)
	}

	// Webhook requests and trimmed responses omit the confidence field; an
	// absent value is not a zero score.
	confidence := connector.ConfidenceNotReported
	if qr.IntentDetectionConfidence != nil {
		confidence = *qr.IntentDetectionConfidence
	}

	return &connector.Prediction{
		Intent:                intent,
		Parameters:            params,
		Confidence:            confidence,
		FulfillmentText:       text,
		Language:              lang,
		SlotFillingIncomplete: incomplete,
		ContextMismatch:       activeContexts != nil && !c.graph.IsReachable(intent.Name, activeContexts),
		Contexts:              contexts,
		Raw:                   json.RawMessage(raw),
	}, nil
}

// shortContextName strips the "projects/<p>/agent/sessions/<s>/contexts/"
// prefix Dialogflow puts on context names.
func shortContextName(full string) string {
	if i := strings.LastIndexByte(full, '/'); i >= 0 {
		return full[i+1:]
	}
	return full
}

// languageOf maps a Dialogflow language tag back to the agent's language
// code, falling back to a literal conversion for tags the agent does not
// declare.
func (c *Connector) languageOf(tag string) language.Code {
	for _, code := range c.agent.Languages() {
		if dfLang(code) == strings.ToLower(tag) {
			return code
		}
	}
	return language.Code(strings.ReplaceAll(tag, "-", "_"))
}
