package model

import (
	"fmt"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/template"
)

// Agent is the in-memory registry of an agent definition. It owns the intent
// and entity tables and the language resources, and spans the whole process
// lifetime; registration happens at definition time, after which the Agent is
// read-only and safe for concurrent use.
type Agent struct {
	name      string
	languages []language.Code

	intents       []*Intent
	intentsByName map[string]*Intent

	entities       []*Entity
	entitiesByName map[string]*Entity

	resources *language.Resources
}

// NewAgent creates an empty agent. The first language is the agent's primary
// language; exports fail fast when a parameter mapping does not cover every
// configured language.
func NewAgent(name string, languages ...language.Code) *Agent {
	if len(languages) == 0 {
		languages = []language.Code{language.English}
	}
	return &Agent{
		name:           name,
		languages:      languages,
		intentsByName:  make(map[string]*Intent),
		entitiesByName: make(map[string]*Entity),
		resources:      language.NewResources(),
	}
}

func (a *Agent) Name() string { return a.name }

// Languages returns the configured language codes. The slice must not be
// modified.
func (a *Agent) Languages() []language.Code { return a.languages }

// Resources returns the agent's language resources.
func (a *Agent) Resources() *language.Resources { return a.resources }

// SetResources replaces the agent's language resources, typically with the
// result of language.LoadDir.
func (a *Agent) SetResources(res *language.Resources) { a.resources = res }

// Intents returns the registered intents in registration order. The slice
// must not be modified.
func (a *Agent) Intents() []*Intent { return a.intents }

// Intent returns the registered intent with the given name, or nil.
func (a *Agent) Intent(name string) *Intent { return a.intentsByName[name] }

// Entities returns the registered custom entities in registration order.
func (a *Agent) Entities() []*Entity { return a.entities }

// Entity returns the registered custom entity with the given name, or nil.
func (a *Agent) Entity(name string) *Entity { return a.entitiesByName[name] }

// RegisterEntity adds a custom entity to the agent.
func (a *Agent) RegisterEntity(e *Entity) error {
	if err := CheckName(e.Name, false); err != nil {
		return err
	}
	if _, exists := a.entitiesByName[e.Name]; exists {
		return &DefinitionError{
			Code:    ErrCodeDuplicateName,
			Entity:  e.Name,
			Message: fmt.Sprintf("another entity exists with name %s", e.Name),
		}
	}
	a.entities = append(a.entities, e)
	a.entitiesByName[e.Name] = e
	return nil
}

// RegisterIntent adds an intent to the agent, checking its name, parameter
// specs and defaults. Custom parameter types must be registered before the
// intents using them; follow targets are resolved later by Validate, so that
// registration order does not matter among intents.
func (a *Agent) RegisterIntent(it *Intent) error {
	if err := CheckName(it.Name, false); err != nil {
		return err
	}
	if _, exists := a.intentsByName[it.Name]; exists {
		return &DefinitionError{
			Code:    ErrCodeDuplicateName,
			Intent:  it.Name,
			Message: fmt.Sprintf("another intent exists with name %s", it.Name),
		}
	}

	seen := make(map[string]bool, len(it.Parameters))
	for _, p := range it.Parameters {
		if seen[p.Name] {
			return &DefinitionError{
				Code:    ErrCodeDuplicateName,
				Intent:  it.Name,
				Message: fmt.Sprintf("duplicate parameter %s", p.Name),
			}
		}
		seen[p.Name] = true

		if p.Type == nil {
			return &DefinitionError{
				Code:    ErrCodeUnknownEntity,
				Intent:  it.Name,
				Message: fmt.Sprintf("parameter %s has no type", p.Name),
			}
		}
		if !p.Type.IsSystem() {
			if _, ok := a.entitiesByName[p.Type.TypeName()]; !ok {
				return &DefinitionError{
					Code:    ErrCodeUnknownEntity,
					Intent:  it.Name,
					Message: fmt.Sprintf("parameter %s uses entity %s, which is not registered", p.Name, p.Type.TypeName()),
				}
			}
		}
		if err := checkDefault(it.Name, p); err != nil {
			return err
		}
	}

	a.intents = append(a.intents, it)
	a.intentsByName[it.Name] = it
	return nil
}

func checkDefault(intentName string, p Parameter) error {
	if p.Default == nil {
		return nil
	}
	if p.Required {
		return &DefinitionError{
			Code:    ErrCodeBadDefault,
			Intent:  intentName,
			Message: fmt.Sprintf("required parameter %s must not declare a default value", p.Name),
		}
	}
	if p.IsList {
		if _, ok := p.Default.([]any); !ok {
			return &DefinitionError{
				Code:    ErrCodeBadDefault,
				Intent:  intentName,
				Message: fmt.Sprintf("list parameter %s has non-list default value", p.Name),
			}
		}
	}
	return nil
}

// Validate checks the cross-intent consistency of the definition: follow
// targets must exist, and every example utterance must parse with parameter
// references that resolve against the owning intent. Connectors call it
// before building their relation graph; a failed Validate is fatal to the
// agent construction.
func (a *Agent) Validate() error {
	for _, it := range a.intents {
		for _, f := range it.Follows {
			if _, ok := a.intentsByName[f.Parent]; !ok {
				return &DefinitionError{
					Code:    ErrCodeUnknownFollowTarget,
					Intent:  it.Name,
					Message: fmt.Sprintf("follows unknown intent %s", f.Parent),
				}
			}
		}
		for _, code := range a.languages {
			data := a.resources.Intent(it.Name, code)
			if data == nil {
				continue
			}
			for _, example := range data.Examples {
				if _, err := a.ParseExample(it, example); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ParseExample parses an example utterance template and resolves its
// parameter references against the intent's schema.
func (a *Agent) ParseExample(it *Intent, example string) (*template.Utterance, error) {
	utterance, err := template.Parse(example)
	if err != nil {
		return nil, &DefinitionError{
			Code:    ErrCodeMalformedTemplate,
			Intent:  it.Name,
			Message: err.Error(),
			Err:     err,
		}
	}
	for _, name := range utterance.Parameters() {
		if it.Parameter(name) == nil {
			return nil, &DefinitionError{
				Code:   ErrCodeUnknownParameterReference,
				Intent: it.Name,
				Message: fmt.Sprintf("example %q references parameter $%s, but the intent does not define it",
					example, name),
			}
		}
	}
	return utterance, nil
}
