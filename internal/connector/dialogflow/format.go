package dialogflow

// Export document schemas for Dialogflow ES agents. The layout matches what
// the Dialogflow console produces under Settings > Export: agent metadata in
// agent.json, one <name>.json plus one <name>_usersays_<lang>.json per
// intent, and one <name>.json plus one <name>_entries_<lang>.json per custom
// entity.

//
// agent.json
//

type agentOauthLinking struct {
	Required         bool   `json:"required"`
	ProviderID       string `json:"providerId"`
	AuthorizationURL string `json:"authorizationUrl"`
	TokenURL         string `json:"tokenUrl"`
	Scopes           string `json:"scopes"`
	PrivacyPolicyURL string `json:"privacyPolicyUrl"`
	GrantType        string `json:"grantType"`
}

type agentGoogleAssistant struct {
	Project                     string            `json:"project"`
	OauthLinking                agentOauthLinking `json:"oAuthLinking"`
	GoogleAssistantCompatible   bool              `json:"googleAssistantCompatible"`
	WelcomeIntentSignInRequired bool              `json:"welcomeIntentSignInRequired"`
	StartIntents                []string          `json:"startIntents"`
	SystemIntents               []string          `json:"systemIntents"`
	EndIntentIDs                []string          `json:"endIntentIds"`
	VoiceType                   string            `json:"voiceType"`
	Capabilities                []string          `json:"capabilities"`
	Env                         string            `json:"env"`
	ProtocolVersion             string            `json:"protocolVersion"`
	AutoPreviewEnabled          bool              `json:"autoPreviewEnabled"`
	IsDeviceAgent               bool              `json:"isDeviceAgent"`
}

type agentWebhook struct {
	URL                       string            `json:"url"`
	Username                  string            `json:"username"`
	Headers                   map[string]string `json:"headers"`
	Available                 bool              `json:"available"`
	UseForDomains             bool              `json:"useForDomains"`
	CloudFunctionsEnabled     bool              `json:"cloudFunctionsEnabled"`
	CloudFunctionsInitialized bool              `json:"cloudFunctionsInitialized"`
}

type agentDocument struct {
	DisplayName                           string               `json:"displayName"`
	Webhook                               agentWebhook         `json:"webhook"`
	GoogleAssistant                       agentGoogleAssistant `json:"googleAssistant"`
	Description                           string               `json:"description"`
	Language                              string               `json:"language"`
	ShortDescription                      string               `json:"shortDescription"`
	Examples                              string               `json:"examples"`
	LinkToDocs                            string               `json:"linkToDocs"`
	DisableInteractionLogs                bool                 `json:"disableInteractionLogs"`
	DisableStackdriverLogs                bool                 `json:"disableStackdriverLogs"`
	DefaultTimezone                       string               `json:"defaultTimezone"`
	IsPrivate                             bool                 `json:"isPrivate"`
	MLMinConfidence                       float64              `json:"mlMinConfidence"`
	SupportedLanguages                    []string             `json:"supportedLanguages"`
	OnePlatformAPIVersion                 string               `json:"onePlatformApiVersion"`
	AnalyzeQueryTextSentiment             bool                 `json:"analyzeQueryTextSentiment"`
	EnabledKnowledgeBaseNames             []string             `json:"enabledKnowledgeBaseNames"`
	KnowledgeServiceConfidenceAdjustment  float64              `json:"knowledgeServiceConfidenceAdjustment"`
	DialogBuilderMode                     bool                 `json:"dialogBuilderMode"`
	BaseActionPackagesURL                 string               `json:"baseActionPackagesUrl"`
}

type packageDocument struct {
	Version string `json:"version"`
}

//
// entities/<ENTITY_NAME>.json and entities/<ENTITY_NAME>_entries_<lang>.json
//

type entityDocument struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	IsOverridable        bool   `json:"isOverridable"`
	IsEnum               bool   `json:"isEnum"`
	IsRegexp             bool   `json:"isRegexp"`
	AutomatedExpansion   bool   `json:"automatedExpansion"`
	AllowFuzzyExtraction bool   `json:"allowFuzzyExtraction"`
}

type entityEntry struct {
	Value    string   `json:"value"`
	Synonyms []string `json:"synonyms"`
}

//
// intents/<INTENT_NAME>.json
//

type affectedContext struct {
	Name     string `json:"name"`
	Lifespan int    `json:"lifespan"`
}

type parameterPrompt struct {
	Value string `json:"value"`
	Lang  string `json:"lang"`
}

type intentParameter struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Required     bool              `json:"required"`
	DataType     string            `json:"dataType"`
	Value        string            `json:"value"`
	DefaultValue string            `json:"defaultValue"`
	IsList       bool              `json:"isList"`
	Prompts      []parameterPrompt `json:"prompts"`
}

// Response message type discriminators, as Dialogflow encodes them.
const (
	messageTypeText         = "0"
	messageTypeCard         = "1"
	messageTypeQuickReplies = "2"
	messageTypeImage        = "3"
	messageTypeCustom       = "4"
)

type cardButton struct {
	Text     string `json:"text"`
	Postback string `json:"postback,omitempty"`
}

// responseMessage is the union of the Dialogflow response message shapes,
// discriminated by Type.
type responseMessage struct {
	Type     string `json:"type"`
	Lang     string `json:"lang"`
	Platform string `json:"platform,omitempty"`

	// Type "0"
	Speech []string `json:"speech,omitempty"`

	// Type "1"
	Title    string       `json:"title,omitempty"`
	Subtitle string       `json:"subtitle,omitempty"`
	Buttons  []cardButton `json:"buttons,omitempty"`

	// Types "1" and "3"
	ImageURL string `json:"imageUrl,omitempty"`

	// Type "2"
	Replies []string `json:"replies,omitempty"`

	// Type "4"
	Payload map[string]any `json:"payload,omitempty"`
}

type intentResponse struct {
	AffectedContexts []affectedContext `json:"affectedContexts"`
	Parameters       []intentParameter `json:"parameters"`
	Messages         []responseMessage `json:"messages"`
	ResetContexts    bool              `json:"resetContexts"`
	Action           string            `json:"action"`
}

type intentEvent struct {
	Name string `json:"name"`
}

type intentDocument struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Auto                  bool             `json:"auto"`
	Contexts              []string         `json:"contexts"`
	Responses             []intentResponse `json:"responses"`
	Priority              int              `json:"priority"`
	WebhookUsed           bool             `json:"webhookUsed"`
	WebhookForSlotFilling bool             `json:"webhookForSlotFilling"`
	FallbackIntent        bool             `json:"fallbackIntent"`
	Events                []intentEvent    `json:"events"`
}

//
// intents/<INTENT_NAME>_usersays_<lang>.json
//

// usersaysChunk is either a plain text span (Meta and Alias empty) or a
// tagged entity span.
type usersaysChunk struct {
	Text        string `json:"text"`
	Meta        string `json:"meta,omitempty"`
	Alias       string `json:"alias,omitempty"`
	UserDefined bool   `json:"userDefined"`
}

type usersaysDocument struct {
	ID         string          `json:"id"`
	Lang       string          `json:"lang"`
	Data       []usersaysChunk `json:"data"`
	IsTemplate bool            `json:"isTemplate"`
	Count      int             `json:"count"`
	Updated    int             `json:"updated"`
}
