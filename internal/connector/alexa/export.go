package alexa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/schema"
	"github.com/parlancehq/parlance/internal/template"
)

// Export renders the agent into an Alexa skill package fragment: one
// interaction model per agent language under interactionModels/custom/.
//
// Alexa cannot represent follow-up contexts, parameter defaults or static
// responses; those are recorded as capability gaps and must be enforced by
// the skill endpoint. Slot-filling prompts survive as dialog model
// elicitations.
func (c *Connector) Export() (*schema.Export, error) {
	ex := schema.NewExport(ServiceName)
	c.recordGaps(ex)

	for _, code := range c.agent.Languages() {
		locale, err := localeOf(code)
		if err != nil {
			return nil, &mapping.Error{
				Code:    mapping.ErrCodeUnsupportedLanguage,
				Service: ServiceName,
				Lang:    code,
				Err:     err,
			}
		}
		path := "interactionModels/custom/" + locale + ".json"
		if ex.File(path) != nil {
			// Two agent languages share this locale; the first wins.
			continue
		}
		doc, err := c.interactionModel(code)
		if err != nil {
			return nil, err
		}
		ex.AddFile(path, doc)
	}
	return ex, nil
}

func (c *Connector) recordGaps(ex *schema.Export) {
	for _, it := range c.agent.Intents() {
		if len(it.Follows) > 0 {
			ex.AddGap(schema.CapabilityGap{
				Intent:  it.Name,
				Feature: "follow-up relation",
				Detail:  "Alexa has no server-side contexts; reachability must be enforced by the skill endpoint",
			})
		}
		for _, p := range it.Parameters {
			if p.Default != nil {
				ex.AddGap(schema.CapabilityGap{
					Intent:    it.Name,
					Parameter: p.Name,
					Feature:   "parameter default value",
					Detail:    "interaction models carry no defaults; applied locally at parse time",
				})
			}
		}
		if c.hasResponses(it) {
			ex.AddGap(schema.CapabilityGap{
				Intent:  it.Name,
				Feature: "static responses",
				Detail:  "responses are served by the skill endpoint, not the interaction model",
			})
		}
	}
}

func (c *Connector) hasResponses(it *model.Intent) bool {
	for _, code := range c.agent.Languages() {
		data := c.agent.Resources().Intent(it.Name, code)
		if data != nil && len(data.Responses) > 0 {
			return true
		}
	}
	return false
}

func (c *Connector) interactionModel(code language.Code) (interactionModelDocument, error) {
	lm := languageModel{
		InvocationName: c.invocation,
		Intents:        make([]modelIntent, 0, len(c.agent.Intents())),
		Types:          make([]slotType, 0, len(c.agent.Entities())),
	}
	dialog := &dialogModel{DelegationStrategy: "ALWAYS"}
	var prompts []prompt

	for _, it := range c.agent.Intents() {
		mi, err := c.modelIntent(it, code)
		if err != nil {
			return interactionModelDocument{}, err
		}
		lm.Intents = append(lm.Intents, mi)

		di, ps, err := c.dialogIntent(it, code)
		if err != nil {
			return interactionModelDocument{}, err
		}
		if di != nil {
			dialog.Intents = append(dialog.Intents, *di)
			prompts = append(prompts, ps...)
		}
	}

	for _, e := range c.agent.Entities() {
		lm.Types = append(lm.Types, c.slotType(e, code))
	}

	im := interactionModel{LanguageModel: lm}
	if len(dialog.Intents) > 0 {
		im.Dialog = dialog
		im.Prompts = prompts
	}
	return interactionModelDocument{InteractionModel: im}, nil
}

func (c *Connector) modelIntent(it *model.Intent, code language.Code) (modelIntent, error) {
	mi := modelIntent{
		Name:    intentName(it.Name),
		Slots:   make([]modelSlot, 0, len(it.Parameters)),
		Samples: make([]string, 0),
	}
	for _, p := range it.Parameters {
		m, err := c.reg.ResolveLang(p.Type, ServiceName, code)
		if err != nil {
			return modelIntent{}, annotateParameter(err, p.Name)
		}
		mi.Slots = append(mi.Slots, modelSlot{Name: p.Name, Type: m.ServiceName()})
	}

	data := c.agent.Resources().Intent(it.Name, code)
	if data != nil {
		for _, example := range data.Examples {
			utterance, err := c.agent.ParseExample(it, example)
			if err != nil {
				return modelIntent{}, err
			}
			if sample := renderSample(utterance); sample != "" {
				mi.Samples = append(mi.Samples, sample)
			}
		}
	}
	return mi, nil
}

// dialogIntent builds the elicitation entry for an intent, or nil when no
// required parameter has slot-filling prompts in this language.
func (c *Connector) dialogIntent(it *model.Intent, code language.Code) (*dialogIntent, []prompt, error) {
	data := c.agent.Resources().Intent(it.Name, code)
	di := dialogIntent{Name: intentName(it.Name)}
	var prompts []prompt
	elicits := false

	for _, p := range it.Parameters {
		m, err := c.reg.ResolveLang(p.Type, ServiceName, code)
		if err != nil {
			return nil, nil, annotateParameter(err, p.Name)
		}
		slot := dialogSlot{Name: p.Name, Type: m.ServiceName()}

		if p.Required && data != nil && len(data.SlotFillingPrompts[p.Name]) > 0 {
			id := fmt.Sprintf("Elicit.Slot.%s.%s", di.Name, p.Name)
			variations := make([]promptVariation, 0, len(data.SlotFillingPrompts[p.Name]))
			for _, text := range data.SlotFillingPrompts[p.Name] {
				variations = append(variations, promptVariation{Type: "PlainText", Value: text})
			}
			prompts = append(prompts, prompt{ID: id, Variations: variations})
			slot.ElicitationRequired = true
			slot.Prompts = slotPrompts{Elicitation: id}
			elicits = true
		}
		di.Slots = append(di.Slots, slot)
	}

	if !elicits {
		return nil, nil, nil
	}
	return &di, prompts, nil
}

func (c *Connector) slotType(e *model.Entity, code language.Code) slotType {
	entries := c.agent.Resources().EntityEntries(e.Name, code)
	values := make([]slotTypeValue, 0, len(entries))
	for _, entry := range entries {
		values = append(values, slotTypeValue{
			Name: slotValueName{Value: entry.Value, Synonyms: entry.Synonyms},
		})
	}
	return slotType{Name: e.Name, Values: values}
}

// renderSample renders an utterance template as an Alexa sample: parameter
// markers become {slot} references and literal text is restricted to the
// character set the Skill Management API accepts.
func renderSample(u *template.Utterance) string {
	var b strings.Builder
	for _, tok := range u.Tokens() {
		if tok.Kind == template.KindParameter {
			b.WriteByte('{')
			b.WriteString(tok.Parameter)
			b.WriteByte('}')
			continue
		}
		b.WriteString(cleanSampleText(tok.Text))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func cleanSampleText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\'', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
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
