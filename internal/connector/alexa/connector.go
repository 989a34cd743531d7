// Package alexa renders agents into Alexa interaction models and parses
// skill requests back into predictions. Alexa has no server-side context or
// response concept: follow relations and static responses are recorded as
// capability gaps, and the skill endpoint is expected to enforce them.
package alexa

import (
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/relation"
)

// ServiceName is the service tag used to key entity mappings.
const ServiceName = "alexa"

// Connector translates an agent to and from Alexa formats. Immutable after
// New and safe for concurrent use.
type Connector struct {
	agent *model.Agent
	reg   *mapping.Registry
	graph *relation.Graph

	// invocation is the skill invocation name, a spoken phrase such as
	// "my agent".
	invocation string

	// intentsByAlexaName resolves the renamed intents in skill requests back
	// to their definitions.
	intentsByAlexaName map[string]*model.Intent
}

// New validates the agent and returns a ready connector. The invocation name
// is the phrase users say to open the skill.
func New(agent *model.Agent, invocation string) (*Connector, error) {
	if err := agent.Validate(); err != nil {
		return nil, err
	}
	graph, err := relation.Build(agent)
	if err != nil {
		return nil, err
	}

	reg := mapping.NewRegistry()
	registerMappings(reg)

	byAlexaName := make(map[string]*model.Intent, len(agent.Intents()))
	for _, it := range agent.Intents() {
		byAlexaName[intentName(it.Name)] = it
	}

	return &Connector{
		agent:              agent,
		reg:                reg,
		graph:              graph,
		invocation:         invocation,
		intentsByAlexaName: byAlexaName,
	}, nil
}

// Service returns the service tag, "alexa".
func (c *Connector) Service() string { return ServiceName }

// Registry exposes the connector's mapping registry.
func (c *Connector) Registry() *mapping.Registry { return c.reg }

// intentName converts an abstract intent name to its Alexa form. Alexa
// intent names cannot contain dots.
//
//	intentName("shop.order_fish") == "shop_order_fish"
func intentName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// locales maps agent language codes to Alexa locales. Languages without an
// Alexa locale fail the export through the mapping language check.
var locales = map[language.Code]string{
	language.English:             "en-US",
	language.EnglishUS:           "en-US",
	language.EnglishUK:           "en-GB",
	language.Italian:             "it-IT",
	language.Spanish:             "es-ES",
	language.SpanishSpain:        "es-ES",
	language.SpanishLatinAmerica: "es-MX",
	language.German:              "de-DE",
	language.French:              "fr-FR",
}

// supportedLanguages lists the language codes with an Alexa locale, for the
// per-mapping language restriction.
func supportedLanguages() []language.Code {
	result := make([]language.Code, 0, len(locales))
	for code := range locales {
		result = append(result, code)
	}
	return result
}

func localeOf(code language.Code) (string, error) {
	locale, ok := locales[code]
	if !ok {
		return "", fmt.Errorf("language %s has no Alexa locale", code)
	}
	return locale, nil
}
