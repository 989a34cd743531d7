package dialogflow

import (
	"encoding/json"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/fulfillment"
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/relation"
)

// webhookRequest is the body Dialogflow POSTs to the fulfillment endpoint.
// Its queryResult is the same shape as in a detectIntent response.
type webhookRequest struct {
	ResponseID  string       `json:"responseId"`
	Session     string       `json:"session"`
	QueryResult *queryResult `json:"queryResult"`
}

// ParseWebhookRequest decodes a fulfillment request into a Prediction plus
// the session path the response contexts must be scoped to.
func (c *Connector) ParseWebhookRequest(raw []byte) (*connector.Prediction, string, error) {
	var body webhookRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, "", &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "request is not a webhook body",
			Err:     err,
		}
	}
	if body.QueryResult == nil {
		return nil, "", &connector.ProtocolError{
			Code:    connector.ErrCodeMalformedPayload,
			Service: ServiceName,
			Message: "webhook request has no queryResult",
		}
	}

	var active []string
	for _, ctx := range body.QueryResult.OutputContexts {
		active = append(active, shortContextName(ctx.Name))
	}
	prediction, err := c.parseQueryResult(body.QueryResult, raw, active)
	if err != nil {
		return nil, "", err
	}
	return prediction, body.Session, nil
}

//
// Webhook response rendering. The v2 webhook message shapes differ from the
// exported-agent ones: each message is an object with a single set field
// naming its kind.
//

type webhookText struct {
	Text []string `json:"text"`
}

type webhookImage struct {
	ImageURI          string `json:"imageUri"`
	AccessibilityText string `json:"accessibilityText,omitempty"`
}

type webhookQuickReplies struct {
	Title        string   `json:"title,omitempty"`
	QuickReplies []string `json:"quickReplies"`
}

type webhookCardButton struct {
	Text     string `json:"text"`
	Postback string `json:"postback,omitempty"`
}

type webhookCard struct {
	Title    string              `json:"title,omitempty"`
	Subtitle string              `json:"subtitle,omitempty"`
	ImageURI string              `json:"imageUri,omitempty"`
	Buttons  []webhookCardButton `json:"buttons,omitempty"`
}

type webhookMessage struct {
	Text         *webhookText         `json:"text,omitempty"`
	Image        *webhookImage        `json:"image,omitempty"`
	QuickReplies *webhookQuickReplies `json:"quickReplies,omitempty"`
	Card         *webhookCard         `json:"card,omitempty"`
	Payload      map[string]any       `json:"payload,omitempty"`
}

type webhookContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is the body the fulfillment endpoint answers with.
type WebhookResponse struct {
	FulfillmentText     string           `json:"fulfillmentText,omitempty"`
	FulfillmentMessages []webhookMessage `json:"fulfillmentMessages,omitempty"`
	OutputContexts      []webhookContext `json:"outputContexts,omitempty"`
}

// BuildWebhookResponse renders a fulfillment result into the Dialogflow
// webhook response shape. Context names are expanded to full session-scoped
// paths; responses already rendered by the handler are passed through.
func BuildWebhookResponse(session string, result *fulfillment.Result) *WebhookResponse {
	resp := &WebhookResponse{FulfillmentText: result.Text}
	if result.Text != "" {
		resp.FulfillmentMessages = append(resp.FulfillmentMessages, webhookMessage{
			Text: &webhookText{Text: []string{result.Text}},
		})
	}
	for _, r := range result.Responses {
		if msg, ok := webhookMessageOf(r); ok {
			resp.FulfillmentMessages = append(resp.FulfillmentMessages, msg)
		}
	}
	for _, ctx := range result.Contexts {
		resp.OutputContexts = append(resp.OutputContexts, webhookContext{
			Name:          session + "/contexts/" + ctx.Name,
			LifespanCount: ctx.Lifespan,
		})
	}
	return resp
}

// TriggerEvent returns the event payload that triggers an intent
// programmatically, the counterpart of the events block in the exported
// intent documents.
func TriggerEvent(intentName string, code language.Code, parameters map[string]any) map[string]any {
	event := map[string]any{
		"name":         relation.EventName(intentName),
		"languageCode": dfLang(code),
	}
	if len(parameters) > 0 {
		event["parameters"] = parameters
	}
	return event
}

func webhookMessageOf(r language.Response) (webhookMessage, bool) {
	switch resp := r.(type) {
	case language.TextResponse:
		return webhookMessage{Text: &webhookText{Text: resp.Choices}}, true
	case language.ImageResponse:
		return webhookMessage{Image: &webhookImage{ImageURI: resp.URL, AccessibilityText: resp.Title}}, true
	case language.QuickRepliesResponse:
		return webhookMessage{QuickReplies: &webhookQuickReplies{QuickReplies: resp.Replies}}, true
	case language.CardResponse:
		card := &webhookCard{Title: resp.Title, Subtitle: resp.Subtitle, ImageURI: resp.Image}
		if resp.Link != "" {
			card.Buttons = []webhookCardButton{{Text: "Open", Postback: resp.Link}}
		}
		return webhookMessage{Card: card}, true
	case language.CustomPayloadResponse:
		return webhookMessage{Payload: resp.Payload}, true
	}
	return webhookMessage{}, false
}
