package connector

import (
	"encoding/json"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

// ConfidenceNotReported is the confidence sentinel for services that do not
// report a normalized score. A fabricated number would be indistinguishable
// from a real one, so absence is explicit.
const ConfidenceNotReported = -1.0

// ActiveContext is a context the service reported active after a prediction,
// with its remaining lifespan in turns.
type ActiveContext struct {
	Name     string
	Lifespan int
}

// Prediction is the typed, service-agnostic result of one predict or trigger
// call. It is constructed once per service call, is immutable, and is never
// reused across sessions.
type Prediction struct {
	// Intent is the matched intent definition.
	Intent *model.Intent

	// Parameters maps parameter names to coerced abstract values. List
	// parameters hold []any. Missing required parameters are absent (see
	// SlotFillingIncomplete); missing optional parameters hold their
	// declared default when one exists.
	Parameters map[string]any

	// Confidence is the service-reported score in [0, 1], or
	// ConfidenceNotReported.
	Confidence float64

	// FulfillmentText is the response text, verbatim from the service when
	// present, else synthesized from the default response template.
	FulfillmentText string

	// Language is the language the service matched against.
	Language language.Code

	// SlotFillingIncomplete is set when a required parameter could not be
	// tagged in the utterance; the service is expected to prompt for it.
	SlotFillingIncomplete bool

	// ContextMismatch annotates a prediction whose intent is not reachable
	// from the active context set. The prediction is still returned: the
	// source service is the authority on matching.
	ContextMismatch bool

	// Contexts are the output contexts reported by the service, when the
	// service has a context concept.
	Contexts []ActiveContext

	// Raw is the unmodified service response, for service-specific
	// extensions.
	Raw json.RawMessage
}
