package language

// Code identifies a language supported by an agent, e.g. "en" or "it".
type Code string

// Language codes that prediction services commonly support.
const (
	English             Code = "en"
	EnglishUS           Code = "en_US"
	EnglishUK           Code = "en_UK"
	Italian             Code = "it"
	Spanish             Code = "es"
	SpanishSpain        Code = "es_ES"
	SpanishLatinAmerica Code = "es_LA"
	German              Code = "de"
	French              Code = "fr"
	Dutch               Code = "nl"
	Chinese             Code = "zh"
	ChinesePRC          Code = "zh_CN"
	ChineseHongKong     Code = "zh_HK"
)

// ResponseGroup separates plain-text responses from rich ones. Services that
// can only render text use the default group; rich clients may prefer the
// rich group when present.
type ResponseGroup string

const (
	GroupDefault ResponseGroup = "default"
	GroupRich    ResponseGroup = "rich"
)

// IntentLanguage holds the language resources of a single intent for a single
// language code.
type IntentLanguage struct {
	// Examples are raw utterance templates, possibly containing
	// $param{example} markers.
	Examples []string

	// SlotFillingPrompts maps a parameter name to the prompts used to ask
	// the user for it when it could not be tagged in the utterance.
	SlotFillingPrompts map[string][]string

	// Responses maps a response group to its response templates.
	Responses map[ResponseGroup][]Response
}

// EntityEntry is one value of a custom entity, with its synonyms.
type EntityEntry struct {
	Value    string
	Synonyms []string
}
