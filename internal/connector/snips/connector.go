// Package snips renders agents into Snips NLU training datasets and parses
// engine results back into predictions. Snips engines are trained per
// language, so a connector is bound to one language code at construction;
// exporting a multi-language agent takes one connector per language.
package snips

import (
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/relation"
)

// ServiceName is the service tag used to key entity mappings.
const ServiceName = "snips"

// Connector translates an agent to and from Snips NLU formats for one
// language. Immutable after New and safe for concurrent use.
type Connector struct {
	agent *model.Agent
	reg   *mapping.Registry
	graph *relation.Graph
	lang  language.Code
}

// New validates the agent and returns a connector bound to one of its
// languages. The language must be in the Snips supported set; the check
// happens when parameters resolve their mappings.
func New(agent *model.Agent, lang language.Code) (*Connector, error) {
	if err := agent.Validate(); err != nil {
		return nil, err
	}
	graph, err := relation.Build(agent)
	if err != nil {
		return nil, err
	}

	reg := mapping.NewRegistry()
	registerMappings(reg)

	return &Connector{agent: agent, reg: reg, graph: graph, lang: lang}, nil
}

// Service returns the service tag, "snips".
func (c *Connector) Service() string { return ServiceName }

// Language returns the language code the connector is bound to.
func (c *Connector) Language() language.Code { return c.lang }

// Registry exposes the connector's mapping registry.
func (c *Connector) Registry() *mapping.Registry { return c.reg }
