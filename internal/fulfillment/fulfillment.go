// Package fulfillment routes webhook predictions to intent handlers and
// collects their responses. Handlers run application code: the dispatcher
// isolates the webhook endpoint from their failures, turning errors and
// panics into a generic response instead of a dropped call.
package fulfillment

import (
	"context"
	"fmt"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
)

// Result is what a handler wants said back to the user: fulfillment text,
// optional rich responses, and context updates to apply to the conversation.
type Result struct {
	Text      string
	Responses []language.Response

	// Contexts override the conversation's output contexts. A zero lifespan
	// deactivates a context.
	Contexts []connector.ActiveContext
}

// Handler fulfills one intent. The prediction carries coerced parameters;
// returning a nil Result with a nil error means "no override, use the
// intent's static responses".
type Handler func(ctx context.Context, p *connector.Prediction) (*Result, error)

// HandlerError wraps a handler failure, either a returned error or a
// recovered panic.
type HandlerError struct {
	Intent    string
	Err       error
	Recovered any
}

func (e *HandlerError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("handler for intent %s panicked: %v", e.Intent, e.Recovered)
	}
	return fmt.Sprintf("handler for intent %s failed: %v", e.Intent, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// DefaultErrorText is said to the user when a handler fails and no custom
// error text is configured.
const DefaultErrorText = "Sorry, something went wrong on our side"

// Dispatcher maps intent names to handlers. Registration happens at startup;
// Dispatch is safe for concurrent use afterwards.
type Dispatcher struct {
	handlers  map[string]Handler
	errorText string
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithErrorText overrides the generic response used when a handler fails.
func WithErrorText(text string) Option {
	return func(d *Dispatcher) { d.errorText = text }
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers:  make(map[string]Handler),
		errorText: DefaultErrorText,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a handler to an intent name, replacing any previous one.
func (d *Dispatcher) Register(intentName string, h Handler) {
	d.handlers[intentName] = h
}

// Dispatch runs the handler registered for the prediction's intent. Without
// a handler, or when the handler declines to override, the prediction's own
// fulfillment text is echoed back. A handler error or panic yields the
// generic error response together with a HandlerError describing the cause,
// so the webhook endpoint can answer the service and still log the failure.
func (d *Dispatcher) Dispatch(ctx context.Context, p *connector.Prediction) (result *Result, err error) {
	h := d.handlers[p.Intent.Name]
	if h == nil {
		return &Result{Text: p.FulfillmentText}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			result = &Result{Text: d.errorText}
			err = &HandlerError{Intent: p.Intent.Name, Recovered: r}
		}
	}()

	result, err = h(ctx, p)
	if err != nil {
		return &Result{Text: d.errorText}, &HandlerError{Intent: p.Intent.Name, Err: err}
	}
	if result == nil {
		result = &Result{Text: p.FulfillmentText}
	}
	return result, nil
}
