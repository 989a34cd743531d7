package language

// Resources is the full set of language data for an agent: intent resources
// and custom entity entries, per language code. It is populated either
// programmatically or by LoadDir, and is read-only afterwards.
type Resources struct {
	intents  map[string]map[Code]*IntentLanguage
	entities map[string]map[Code][]EntityEntry
}

func NewResources() *Resources {
	return &Resources{
		intents:  make(map[string]map[Code]*IntentLanguage),
		entities: make(map[string]map[Code][]EntityEntry),
	}
}

// SetIntent registers the language data of an intent for one language.
func (r *Resources) SetIntent(intentName string, code Code, data *IntentLanguage) {
	if r.intents[intentName] == nil {
		r.intents[intentName] = make(map[Code]*IntentLanguage)
	}
	r.intents[intentName][code] = data
}

// Intent returns the language data of an intent, or nil when the intent has
// no resources for the given language.
func (r *Resources) Intent(intentName string, code Code) *IntentLanguage {
	return r.intents[intentName][code]
}

// SetEntityEntries registers the entries of a custom entity for one language.
func (r *Resources) SetEntityEntries(entityName string, code Code, entries []EntityEntry) {
	if r.entities[entityName] == nil {
		r.entities[entityName] = make(map[Code][]EntityEntry)
	}
	r.entities[entityName][code] = entries
}

// EntityEntries returns the entries of a custom entity for one language.
func (r *Resources) EntityEntries(entityName string, code Code) []EntityEntry {
	return r.entities[entityName][code]
}

// DefaultText returns the first plain-text response template of the default
// group, or "" when the intent defines no text responses. Connectors use it
// to synthesize fulfillment text when the service reports none.
func (r *Resources) DefaultText(intentName string, code Code) string {
	data := r.Intent(intentName, code)
	if data == nil {
		return ""
	}
	for _, resp := range data.Responses[GroupDefault] {
		if text, ok := resp.(TextResponse); ok && len(text.Choices) > 0 {
			return text.Choices[0]
		}
	}
	return ""
}
