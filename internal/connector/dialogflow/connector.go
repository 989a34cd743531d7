// Package dialogflow renders agents into the Dialogflow ES exported-agent
// format and parses detect-intent responses and webhook requests back into
// predictions.
package dialogflow

import (
	"github.com/google/uuid"

	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/relation"
)

// idNamespace seeds name-based document IDs, so that exporting the same agent
// twice produces byte-identical output.
var idNamespace = uuid.MustParse("5a3bb9c6-3c34-47e6-9cd3-61a3f2b2e9a1")

// IDGenerator derives a document ID from a stable key such as
// "intent/order_fish".
type IDGenerator func(key string) string

func defaultIDGenerator(key string) string {
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// Webhook configures agent-level fulfillment forwarding.
type Webhook struct {
	URL     string
	Headers map[string]string
}

// Connector translates an agent to and from Dialogflow ES formats. It is
// immutable after New and safe for concurrent use.
type Connector struct {
	agent   *model.Agent
	reg     *mapping.Registry
	graph   *relation.Graph
	ids     IDGenerator
	webhook *Webhook
}

// Option customizes a Connector.
type Option func(*Connector)

// WithWebhook enables webhook fulfillment on every exported intent.
func WithWebhook(w Webhook) Option {
	return func(c *Connector) { c.webhook = &w }
}

// WithIDGenerator overrides the document ID derivation.
func WithIDGenerator(gen IDGenerator) Option {
	return func(c *Connector) { c.ids = gen }
}

// New validates the agent, builds its relation graph and mapping registry,
// and returns a ready connector. Definition problems (unknown follow targets,
// malformed examples, cyclic relations) surface here, before any service
// interaction.
func New(agent *model.Agent, opts ...Option) (*Connector, error) {
	if err := agent.Validate(); err != nil {
		return nil, err
	}
	graph, err := relation.Build(agent)
	if err != nil {
		return nil, err
	}

	reg := mapping.NewRegistry()
	registerMappings(reg)

	c := &Connector{
		agent: agent,
		reg:   reg,
		graph: graph,
		ids:   defaultIDGenerator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Service returns the service tag, "dialogflow_es".
func (c *Connector) Service() string { return ServiceName }

// Registry exposes the connector's mapping registry, mainly so callers can
// inspect registration conflicts.
func (c *Connector) Registry() *mapping.Registry { return c.reg }
