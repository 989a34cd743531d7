package alexa

// Interaction model schema, as served and accepted by the Alexa Skill
// Management API (one model per locale under
// interactionModels/custom/<locale>.json in a skill package).

type interactionModelDocument struct {
	InteractionModel interactionModel `json:"interactionModel"`
}

type interactionModel struct {
	LanguageModel languageModel `json:"languageModel"`
	Dialog        *dialogModel  `json:"dialog,omitempty"`
	Prompts       []prompt      `json:"prompts,omitempty"`
}

type languageModel struct {
	InvocationName string        `json:"invocationName"`
	Intents        []modelIntent `json:"intents"`
	Types          []slotType    `json:"types"`
}

type modelIntent struct {
	Name    string      `json:"name"`
	Slots   []modelSlot `json:"slots"`
	Samples []string    `json:"samples"`
}

type modelSlot struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Samples []string `json:"samples,omitempty"`
}

type slotType struct {
	Name   string          `json:"name"`
	Values []slotTypeValue `json:"values"`
}

type slotTypeValue struct {
	ID   string        `json:"id,omitempty"`
	Name slotValueName `json:"name"`
}

type slotValueName struct {
	Value    string   `json:"value"`
	Synonyms []string `json:"synonyms,omitempty"`
}

//
// Dialog model: slot elicitation for required parameters.
//

type dialogModel struct {
	Intents            []dialogIntent `json:"intents"`
	DelegationStrategy string         `json:"delegationStrategy"`
}

type dialogIntent struct {
	Name                 string       `json:"name"`
	ConfirmationRequired bool         `json:"confirmationRequired"`
	Slots                []dialogSlot `json:"slots"`
}

type dialogSlot struct {
	Name                 string      `json:"name"`
	Type                 string      `json:"type"`
	ConfirmationRequired bool        `json:"confirmationRequired"`
	ElicitationRequired  bool        `json:"elicitationRequired"`
	Prompts              slotPrompts `json:"prompts"`
}

type slotPrompts struct {
	Elicitation string `json:"elicitation,omitempty"`
}

type prompt struct {
	ID         string            `json:"id"`
	Variations []promptVariation `json:"variations"`
}

type promptVariation struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
