// Package connector defines the service-agnostic surface shared by the
// prediction service connectors: the Connector capability interface, the
// Prediction result type and the service protocol error taxonomy. One
// concrete implementation exists per target service under this package.
package connector

import (
	"github.com/parlancehq/parlance/internal/schema"
)

// Connector translates an agent definition to and from one prediction
// service's native formats. Implementations hold no mutable state after
// construction; Export and Parse are pure functions of the agent, the
// mapping registry, the relation graph and their input, and may run
// concurrently. Network transport and authentication sit outside this
// interface.
type Connector interface {
	// Service returns the service tag used to key entity mappings, e.g.
	// "dialogflow_es".
	Service() string

	// Export renders the agent into the service's native schema tree. A
	// parameter whose type has no mapping for the service, or whose mapping
	// lacks one of the agent's languages, aborts the whole export: a
	// partially valid schema is worse than none. Features the service
	// cannot represent are omitted and recorded as capability gaps.
	Export() (*schema.Export, error)

	// Parse decodes a raw service response into a Prediction. The active
	// context names, when known, are matched against the relation graph to
	// annotate (never reject) out-of-context predictions.
	Parse(raw []byte, activeContexts []string) (*Prediction, error)
}
