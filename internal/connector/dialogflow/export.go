package dialogflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
	"github.com/parlancehq/parlance/internal/relation"
	"github.com/parlancehq/parlance/internal/schema"
	"github.com/parlancehq/parlance/internal/template"
)

const (
	packageVersion  = "1.0.0"
	intentPriority  = 500000
	apiVersion      = "v2"
	minConfidence   = 0.3
	defaultTimezone = "Europe/Madrid"
)

// Export renders the agent into the Dialogflow ES exported-agent layout:
// agent.json and package.json at the root, one definition plus one usersays
// document per intent and language under intents/, and one definition plus
// one entries document per custom entity and language under entities/.
//
// A parameter whose type cannot be mapped for every agent language aborts the
// export. Document IDs are derived from stable keys, so repeated exports of
// the same agent are byte-identical.
func (c *Connector) Export() (*schema.Export, error) {
	ex := schema.NewExport(ServiceName)

	ex.AddFile("package.json", packageDocument{Version: packageVersion})
	ex.AddFile("agent.json", c.agentDocument())

	for _, e := range c.agent.Entities() {
		c.exportEntity(ex, e)
	}

	for _, it := range c.agent.Intents() {
		if err := c.exportIntent(ex, it); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

func (c *Connector) agentDocument() agentDocument {
	languages := c.agent.Languages()
	supported := make([]string, 0, len(languages)-1)
	for _, code := range languages[1:] {
		supported = append(supported, dfLang(code))
	}

	webhook := agentWebhook{Headers: map[string]string{}}
	if c.webhook != nil {
		webhook.URL = c.webhook.URL
		webhook.Available = true
		if len(c.webhook.Headers) > 0 {
			webhook.Headers = c.webhook.Headers
		}
	}

	return agentDocument{
		DisplayName: c.agent.Name(),
		Webhook:     webhook,
		GoogleAssistant: agentGoogleAssistant{
			StartIntents:    []string{},
			SystemIntents:   []string{},
			EndIntentIDs:    []string{},
			Capabilities:    []string{},
			ProtocolVersion: "V2",
		},
		Language:                             dfLang(languages[0]),
		DefaultTimezone:                      defaultTimezone,
		MLMinConfidence:                      minConfidence,
		SupportedLanguages:                   supported,
		OnePlatformAPIVersion:                apiVersion,
		EnabledKnowledgeBaseNames:            []string{},
		KnowledgeServiceConfidenceAdjustment: -0.4,
	}
}

func (c *Connector) exportEntity(ex *schema.Export, e *model.Entity) {
	ex.AddFile("entities/"+e.Name+".json", entityDocument{
		ID:                   c.ids("entity/" + e.Name),
		Name:                 e.Name,
		IsOverridable:        true,
		IsRegexp:             e.Regex,
		AutomatedExpansion:   e.AutomatedExpansion,
		AllowFuzzyExtraction: e.FuzzyMatching,
	})
	for _, code := range c.agent.Languages() {
		entries := c.agent.Resources().EntityEntries(e.Name, code)
		docs := make([]entityEntry, 0, len(entries))
		for _, entry := range entries {
			synonyms := append([]string{entry.Value}, entry.Synonyms...)
			docs = append(docs, entityEntry{Value: entry.Value, Synonyms: synonyms})
		}
		ex.AddFile(fmt.Sprintf("entities/%s_entries_%s.json", e.Name, dfLang(code)), docs)
	}
}

func (c *Connector) exportIntent(ex *schema.Export, it *model.Intent) error {
	parameters, err := c.intentParameters(ex, it)
	if err != nil {
		return err
	}

	outputs := c.graph.OutputContexts(it.Name)
	affected := make([]affectedContext, 0, len(outputs))
	for _, ctx := range outputs {
		affected = append(affected, affectedContext{Name: ctx.Name, Lifespan: ctx.Lifespan})
	}

	inputs := c.graph.InputContexts(it.Name)
	if inputs == nil {
		inputs = []string{}
	}

	doc := intentDocument{
		ID:       c.ids("intent/" + it.Name),
		Name:     it.Name,
		Auto:     true,
		Contexts: inputs,
		Responses: []intentResponse{{
			AffectedContexts: affected,
			Parameters:       parameters,
			Messages:         c.intentMessages(it),
		}},
		Priority:    intentPriority,
		WebhookUsed: c.webhook != nil,
		Events:      []intentEvent{{Name: relation.EventName(it.Name)}},
	}
	ex.AddFile("intents/"+it.Name+".json", doc)

	for _, code := range c.agent.Languages() {
		usersays, err := c.intentUsersays(it, code)
		if err != nil {
			return err
		}
		ex.AddFile(fmt.Sprintf("intents/%s_usersays_%s.json", it.Name, dfLang(code)), usersays)
	}
	return nil
}

// intentParameters builds the parameter table of an intent document, checking
// that every parameter type maps to a native entity for every agent language.
func (c *Connector) intentParameters(ex *schema.Export, it *model.Intent) ([]intentParameter, error) {
	result := make([]intentParameter, 0, len(it.Parameters))
	for _, p := range it.Parameters {
		var m mapping.Mapping
		for _, code := range c.agent.Languages() {
			resolved, err := c.reg.ResolveLang(p.Type, ServiceName, code)
			if err != nil {
				return nil, annotateParameter(err, p.Name)
			}
			m = resolved
		}

		defaultValue := ""
		if p.Default != nil {
			if p.IsList {
				ex.AddGap(schema.CapabilityGap{
					Intent:    it.Name,
					Parameter: p.Name,
					Feature:   "list default value",
					Detail:    "Dialogflow parameter defaults are scalar strings",
				})
			} else {
				defaultValue = fmt.Sprintf("%v", p.Default)
			}
		}

		result = append(result, intentParameter{
			ID:           c.ids("parameter/" + it.Name + "/" + p.Name),
			Name:         p.Name,
			Required:     p.Required,
			DataType:     "@" + m.ServiceName(),
			Value:        "$" + p.Name,
			DefaultValue: defaultValue,
			IsList:       p.IsList,
			Prompts:      c.parameterPrompts(it, p),
		})
	}
	return result, nil
}

func (c *Connector) parameterPrompts(it *model.Intent, p model.Parameter) []parameterPrompt {
	prompts := make([]parameterPrompt, 0)
	for _, code := range c.agent.Languages() {
		data := c.agent.Resources().Intent(it.Name, code)
		if data == nil {
			continue
		}
		for _, text := range data.SlotFillingPrompts[p.Name] {
			prompts = append(prompts, parameterPrompt{Value: text, Lang: dfLang(code)})
		}
	}
	return prompts
}

// intentMessages renders the intent's response templates into Dialogflow
// message documents: the default group as plain speech messages, the rich
// group as card, image, quick-replies and custom-payload messages.
func (c *Connector) intentMessages(it *model.Intent) []responseMessage {
	messages := make([]responseMessage, 0)
	for _, code := range c.agent.Languages() {
		data := c.agent.Resources().Intent(it.Name, code)
		if data == nil {
			continue
		}
		lang := dfLang(code)
		for _, resp := range data.Responses[language.GroupDefault] {
			if text, ok := resp.(language.TextResponse); ok {
				messages = append(messages, responseMessage{
					Type:   messageTypeText,
					Lang:   lang,
					Speech: text.Choices,
				})
			}
		}
		for _, resp := range data.Responses[language.GroupRich] {
			messages = append(messages, richMessage(resp, lang))
		}
	}
	return messages
}

func richMessage(resp language.Response, lang string) responseMessage {
	switch r := resp.(type) {
	case language.TextResponse:
		return responseMessage{Type: messageTypeText, Lang: lang, Speech: r.Choices}
	case language.CardResponse:
		msg := responseMessage{
			Type:     messageTypeCard,
			Lang:     lang,
			Title:    r.Title,
			Subtitle: r.Subtitle,
			ImageURL: r.Image,
		}
		if r.Link != "" {
			msg.Buttons = []cardButton{{Text: "Open", Postback: r.Link}}
		}
		return msg
	case language.QuickRepliesResponse:
		return responseMessage{Type: messageTypeQuickReplies, Lang: lang, Replies: r.Replies}
	case language.ImageResponse:
		return responseMessage{Type: messageTypeImage, Lang: lang, ImageURL: r.URL, Title: r.Title}
	case language.CustomPayloadResponse:
		return responseMessage{Type: messageTypeCustom, Lang: lang, Payload: r.Payload}
	default:
		return responseMessage{Type: messageTypeText, Lang: lang}
	}
}

// intentUsersays renders the example utterances of one language: literal
// spans stay plain chunks, parameter markers become entity-tagged chunks
// carrying the example text.
func (c *Connector) intentUsersays(it *model.Intent, code language.Code) ([]usersaysDocument, error) {
	data := c.agent.Resources().Intent(it.Name, code)
	docs := make([]usersaysDocument, 0)
	if data == nil {
		return docs, nil
	}
	for _, example := range data.Examples {
		utterance, err := c.agent.ParseExample(it, example)
		if err != nil {
			return nil, err
		}

		chunks := make([]usersaysChunk, 0, len(utterance.Tokens()))
		for _, tok := range utterance.Tokens() {
			if tok.Kind == template.KindText {
				chunks = append(chunks, usersaysChunk{Text: tok.Text})
				continue
			}
			p := it.Parameter(tok.Parameter)
			m, err := c.reg.Resolve(p.Type, ServiceName)
			if err != nil {
				return nil, annotateParameter(err, p.Name)
			}
			chunks = append(chunks, usersaysChunk{
				Text:        tok.Example,
				Meta:        "@" + m.ServiceName(),
				Alias:       p.Name,
				UserDefined: true,
			})
		}

		docs = append(docs, usersaysDocument{
			ID:   c.ids("usersays/" + it.Name + "/" + string(code) + "/" + example),
			Lang: dfLang(code),
			Data: chunks,
		})
	}
	return docs, nil
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

// dfLang converts a language code to Dialogflow's lowercase hyphenated form,
// e.g. "en_US" -> "en-us".
func dfLang(code language.Code) string {
	return strings.ToLower(strings.ReplaceAll(string(code), "_", "-"))
}
