package snips

import (
	"errors"
	"strings"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/schema"
	"github.com/parlancehq/parlance/internal/template"
)

// Training dataset format, as consumed by snips-nlu's train command.

type datasetDocument struct {
	Language string                   `json:"language"`
	Intents  map[string]datasetIntent `json:"intents"`
	Entities map[string]any           `json:"entities"`
}

type datasetIntent struct {
	Utterances []datasetUtterance `json:"utterances"`
}

type datasetUtterance struct {
	Data []utteranceChunk `json:"data"`
}

// utteranceChunk is a text span, optionally tagged with the entity and slot
// it exemplifies.
type utteranceChunk struct {
	Text     string `json:"text"`
	Entity   string `json:"entity,omitempty"`
	SlotName string `json:"slot_name,omitempty"`
}

type datasetEntity struct {
	Data                    []datasetEntityValue `json:"data"`
	UseSynonyms             bool                 `json:"use_synonyms"`
	AutomaticallyExtensible bool                 `json:"automatically_extensible"`
	MatchingStrictness      float64              `json:"matching_strictness"`
}

type datasetEntityValue struct {
	Value    string   `json:"value"`
	Synonyms []string `json:"synonyms"`
}

// Export renders the agent into a Snips training dataset for the connector's
// language. Custom entities carry their entries inline; Snips builtin
// entities are declared with an empty configuration; patched entities bring
// their bundled entries. Snips trains a local engine with no context or
// response concept, so follow relations, slot-filling prompts and static
// responses are recorded as capability gaps.
func (c *Connector) Export() (*schema.Export, error) {
	ex := schema.NewExport(ServiceName)

	doc := datasetDocument{
		Language: snipsLang(c.lang),
		Intents:  make(map[string]datasetIntent),
		Entities: make(map[string]any),
	}

	for _, it := range c.agent.Intents() {
		di, err := c.datasetIntent(it, doc.Entities)
		if err != nil {
			return nil, err
		}
		doc.Intents[it.Name] = di
		c.recordGaps(ex, it)
	}

	ex.AddFile("dataset_"+doc.Language+".json", doc)
	return ex, nil
}

func (c *Connector) recordGaps(ex *schema.Export, it *model.Intent) {
	if len(it.Follows) > 0 {
		ex.AddGap(schema.CapabilityGap{
			Intent:  it.Name,
			Feature: "follow-up relation",
			Detail:  "Snips has no context concept; reachability must be enforced by the caller",
		})
	}
	data := c.agent.Resources().Intent(it.Name, c.lang)
	if data == nil {
		return
	}
	for _, p := range it.Parameters {
		if p.Required && len(data.SlotFillingPrompts[p.Name]) > 0 {
			ex.AddGap(schema.CapabilityGap{
				Intent:    it.Name,
				Parameter: p.Name,
				Feature:   "slot-filling prompt",
				Detail:    "Snips does not drive slot filling; prompts must be asked by the caller",
			})
		}
	}
	if len(data.Responses) > 0 {
		ex.AddGap(schema.CapabilityGap{
			Intent:  it.Name,
			Feature: "static responses",
			Detail:  "training datasets carry no responses",
		})
	}
}

func (c *Connector) datasetIntent(it *model.Intent, entities map[string]any) (datasetIntent, error) {
	di := datasetIntent{Utterances: make([]datasetUtterance, 0)}

	for _, p := range it.Parameters {
		m, err := c.reg.ResolveLang(p.Type, ServiceName, c.lang)
		if err != nil {
			return datasetIntent{}, annotateParameter(err, p.Name)
		}
		if err := c.declareEntity(entities, p.Type, m); err != nil {
			return datasetIntent{}, err
		}
	}

	data := c.agent.Resources().Intent(it.Name, c.lang)
	if data == nil {
		return di, nil
	}
	for _, example := range data.Examples {
		utterance, err := c.agent.ParseExample(it, example)
		if err != nil {
			return datasetIntent{}, err
		}
		chunks := make([]utteranceChunk, 0, len(utterance.Tokens()))
		for _, tok := range utterance.Tokens() {
			if tok.Kind == template.KindText {
				chunks = append(chunks, utteranceChunk{Text: tok.Text})
				continue
			}
			p := it.Parameter(tok.Parameter)
			m, err := c.reg.ResolveLang(p.Type, ServiceName, c.lang)
			if err != nil {
				return datasetIntent{}, annotateParameter(err, p.Name)
			}
			chunks = append(chunks, utteranceChunk{
				Text:     tok.Example,
				Entity:   m.ServiceName(),
				SlotName: p.Name,
			})
		}
		di.Utterances = append(di.Utterances, datasetUtterance{Data: chunks})
	}
	return di, nil
}

// declareEntity adds the entity an intent parameter references to the
// dataset's entity table.
func (c *Connector) declareEntity(entities map[string]any, t model.EntityType, m mapping.Mapping) error {
	name := m.ServiceName()
	if _, declared := entities[name]; declared {
		return nil
	}

	if patched, ok := m.(mapping.PatchedMapping); ok {
		entities[name] = entityConfig(patched.Builtin, colorEntries[c.lang])
		return nil
	}
	if t.IsSystem() {
		// Snips builtin, no configuration needed.
		entities[name] = map[string]any{}
		return nil
	}

	e := c.agent.Entity(t.TypeName())
	entities[name] = entityConfig(e, c.agent.Resources().EntityEntries(e.Name, c.lang))
	return nil
}

func entityConfig(e *model.Entity, entries []language.EntityEntry) datasetEntity {
	values := make([]datasetEntityValue, 0, len(entries))
	for _, entry := range entries {
		synonyms := entry.Synonyms
		if synonyms == nil {
			synonyms = []string{}
		}
		values = append(values, datasetEntityValue{Value: entry.Value, Synonyms: synonyms})
	}
	return datasetEntity{
		Data:                    values,
		UseSynonyms:             true,
		AutomaticallyExtensible: e.AutomatedExpansion,
		MatchingStrictness:      1.0,
	}
}

// snipsLang reduces a language code to the bare tag snips-nlu expects, e.g.
// "es_ES" -> "es".
func snipsLang(code language.Code) string {
	s := strings.ToLower(string(code))
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}

func annotateParameter(err error, name string) error {
	var me *mapping.Error
	if errors.As(err, &me) && me.Parameter == "" {
		annotated := *me
		annotated.Parameter = name
		return &annotated
	}
	return err
}
