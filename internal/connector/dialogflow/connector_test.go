package dialogflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

// newShopAgent builds a small two-language agent: a custom entity, a follow
// relation, slot-filling prompts and both response groups.
func newShopAgent(t *testing.T) *model.Agent {
	t.Helper()
	agent := model.NewAgent("shop", language.English, language.Italian)

	fish := &model.Entity{Name: "FishType"}
	require.NoError(t, agent.RegisterEntity(fish))

	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "order_fish",
		Parameters: []model.Parameter{
			{Name: "fish", Type: fish, Required: true},
			{Name: "amount", Type: model.SysInteger, Default: int64(1)},
		},
	}))
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name:    "order_fish_confirm",
		Follows: []model.Follow{{Parent: "order_fish", Lifespan: -1}},
	}))

	agent.Resources().SetIntent("order_fish", language.English, &language.IntentLanguage{
		Examples: []string{"I want $amount{2} $fish{tuna}", "some fish please"},
		SlotFillingPrompts: map[string][]string{
			"fish": {"Which fish would you like?"},
		},
		Responses: map[language.ResponseGroup][]language.Response{
			language.GroupDefault: {
				language.TextResponse{Choices: []string{"$amount $fish, coming right up"}},
			},
			language.GroupRich: {
				language.QuickRepliesResponse{Replies: []string{"Order more"}},
			},
		},
	})
	agent.Resources().SetIntent("order_fish", language.Italian, &language.IntentLanguage{
		Examples: []string{"vorrei $amount{2} $fish{tonno}"},
	})
	agent.Resources().SetIntent("order_fish_confirm", language.English, &language.IntentLanguage{
		Examples: []string{"yes please"},
	})
	agent.Resources().SetEntityEntries("FishType", language.English, []language.EntityEntry{
		{Value: "tuna", Synonyms: []string{"bluefin"}},
		{Value: "salmon"},
	})
	return agent
}

// identityIDs keeps document IDs readable in assertions.
func identityIDs(key string) string { return key }

func TestExport_Layout(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)

	ex, err := c.Export()
	require.NoError(t, err)

	paths := make([]string, 0)
	for _, f := range ex.Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"agent.json",
		"entities/FishType.json",
		"entities/FishType_entries_en.json",
		"entities/FishType_entries_it.json",
		"intents/order_fish.json",
		"intents/order_fish_confirm.json",
		"intents/order_fish_confirm_usersays_en.json",
		"intents/order_fish_confirm_usersays_it.json",
		"intents/order_fish_usersays_en.json",
		"intents/order_fish_usersays_it.json",
		"package.json",
	}, paths)
	assert.Empty(t, ex.Gaps())
}

func TestExport_AgentDocument(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("agent.json").(agentDocument)
	assert.Equal(t, "shop", doc.DisplayName)
	assert.Equal(t, "en", doc.Language)
	assert.Equal(t, []string{"it"}, doc.SupportedLanguages)
	assert.Equal(t, 0.3, doc.MLMinConfidence)
	assert.False(t, doc.Webhook.Available)

	pkg := ex.File("package.json").(packageDocument)
	assert.Equal(t, "1.0.0", pkg.Version)
}

func TestExport_EntityDocuments(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("entities/FishType.json").(entityDocument)
	assert.Equal(t, "entity/FishType", doc.ID)
	assert.Equal(t, "FishType", doc.Name)
	assert.True(t, doc.IsOverridable)

	entries := ex.File("entities/FishType_entries_en.json").([]entityEntry)
	require.Len(t, entries, 2)
	// The canonical value leads its own synonym list.
	assert.Equal(t, entityEntry{Value: "tuna", Synonyms: []string{"tuna", "bluefin"}}, entries[0])
	assert.Equal(t, entityEntry{Value: "salmon", Synonyms: []string{"salmon"}}, entries[1])

	// No Italian entries were defined.
	assert.Empty(t, ex.File("entities/FishType_entries_it.json").([]entityEntry))
}

func TestExport_IntentDocument(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("intents/order_fish.json").(intentDocument)
	assert.Equal(t, "intent/order_fish", doc.ID)
	assert.True(t, doc.Auto)
	assert.Empty(t, doc.Contexts)
	assert.Equal(t, 500000, doc.Priority)
	assert.False(t, doc.WebhookUsed)
	assert.Equal(t, []intentEvent{{Name: "E_ORDER_FISH"}}, doc.Events)

	require.Len(t, doc.Responses, 1)
	resp := doc.Responses[0]
	assert.Equal(t, []affectedContext{{Name: "c_order_fish", Lifespan: 5}}, resp.AffectedContexts)

	require.Len(t, resp.Parameters, 2)
	fish := resp.Parameters[0]
	assert.Equal(t, "parameter/order_fish/fish", fish.ID)
	assert.Equal(t, "@FishType", fish.DataType)
	assert.Equal(t, "$fish", fish.Value)
	assert.True(t, fish.Required)
	assert.Equal(t, []parameterPrompt{{Value: "Which fish would you like?", Lang: "en"}}, fish.Prompts)

	amount := resp.Parameters[1]
	assert.Equal(t, "@sys.number-integer", amount.DataType)
	assert.Equal(t, "1", amount.DefaultValue)

	// The follower consumes the parent's context.
	follower := ex.File("intents/order_fish_confirm.json").(intentDocument)
	assert.Equal(t, []string{"c_order_fish"}, follower.Contexts)
	assert.Empty(t, follower.Responses[0].AffectedContexts)
}

func TestExport_IntentMessages(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("intents/order_fish.json").(intentDocument)
	messages := doc.Responses[0].Messages
	require.Len(t, messages, 2)
	assert.Equal(t, responseMessage{
		Type:   messageTypeText,
		Lang:   "en",
		Speech: []string{"$amount $fish, coming right up"},
	}, messages[0])
	assert.Equal(t, responseMessage{
		Type:    messageTypeQuickReplies,
		Lang:    "en",
		Replies: []string{"Order more"},
	}, messages[1])
}

func TestExport_Usersays(t *testing.T) {
	c, err := New(newShopAgent(t), WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	docs := ex.File("intents/order_fish_usersays_en.json").([]usersaysDocument)
	require.Len(t, docs, 2)

	assert.Equal(t, "usersays/order_fish/en/I want $amount{2} $fish{tuna}", docs[0].ID)
	assert.Equal(t, "en", docs[0].Lang)
	assert.Equal(t, []usersaysChunk{
		{Text: "I want "},
		{Text: "2", Meta: "@sys.number-integer", Alias: "amount", UserDefined: true},
		{Text: " "},
		{Text: "tuna", Meta: "@FishType", Alias: "fish", UserDefined: true},
	}, docs[0].Data)

	assert.Equal(t, []usersaysChunk{{Text: "some fish please"}}, docs[1].Data)

	it := ex.File("intents/order_fish_usersays_it.json").([]usersaysDocument)
	require.Len(t, it, 1)
	assert.Equal(t, "it", it[0].Lang)
}

func TestExport_Deterministic(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	first, err := c.Export()
	require.NoError(t, err)
	second, err := c.Export()
	require.NoError(t, err)

	firstBytes, err := first.Encode()
	require.NoError(t, err)
	secondBytes, err := second.Encode()
	require.NoError(t, err)
	assert.Equal(t, firstBytes, secondBytes)

	// Default IDs are name-derived UUIDs, stable across runs.
	doc := first.File("intents/order_fish.json").(intentDocument)
	assert.Len(t, doc.ID, 36)
	assert.Equal(t, doc.ID, second.File("intents/order_fish.json").(intentDocument).ID)
}

func TestExport_WithWebhook(t *testing.T) {
	agent := newShopAgent(t)
	c, err := New(agent,
		WithIDGenerator(identityIDs),
		WithWebhook(Webhook{URL: "https://example.com/fulfill", Headers: map[string]string{"X-Token": "s3cret"}}),
	)
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("agent.json").(agentDocument)
	assert.True(t, doc.Webhook.Available)
	assert.Equal(t, "https://example.com/fulfill", doc.Webhook.URL)
	assert.Equal(t, "s3cret", doc.Webhook.Headers["X-Token"])

	intent := ex.File("intents/order_fish.json").(intentDocument)
	assert.True(t, intent.WebhookUsed)
}

func TestExport_ListDefaultBecomesGap(t *testing.T) {
	agent := model.NewAgent("shop")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "order_many",
		Parameters: []model.Parameter{
			{Name: "amounts", Type: model.SysInteger, IsList: true, Default: []any{int64(1)}},
		},
	}))

	c, err := New(agent, WithIDGenerator(identityIDs))
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	gaps := ex.Gaps()
	require.Len(t, gaps, 1)
	assert.Equal(t, "order_many", gaps[0].Intent)
	assert.Equal(t, "amounts", gaps[0].Parameter)
	assert.Equal(t, "list default value", gaps[0].Feature)

	// The parameter itself is still exported, without a default.
	doc := ex.File("intents/order_many.json").(intentDocument)
	assert.Equal(t, "", doc.Responses[0].Parameters[0].DefaultValue)
	assert.True(t, doc.Responses[0].Parameters[0].IsList)
}

func TestExport_UnmappableParameterAborts(t *testing.T) {
	agent := model.NewAgent("shop")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "guess",
		Parameters: []model.Parameter{
			{Name: "length", Type: model.SystemType("sys.duration")},
		},
	}))

	c, err := New(agent, WithIDGenerator(identityIDs))
	require.NoError(t, err)

	_, err = c.Export()
	require.Error(t, err)
	assert.True(t, mapping.IsMappingError(err, mapping.ErrCodeUnsupportedMapping))

	var me *mapping.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "length", me.Parameter)
}

func TestNew_RejectsInvalidAgent(t *testing.T) {
	agent := model.NewAgent("broken")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name:    "answer",
		Follows: []model.Follow{{Parent: "missing", Lifespan: -1}},
	}))

	_, err := New(agent)
	assert.True(t, model.IsDefinitionError(err, model.ErrCodeUnknownFollowTarget))
}

func TestParse_DetectIntentResponse(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{
		"responseId": "abc",
		"queryResult": {
			"queryText": "I want 2 tuna",
			"parameters": {"fish": "tuna", "amount": 2},
			"allRequiredParamsPresent": true,
			"fulfillmentText": "2 tuna, coming right up",
			"outputContexts": [
				{"name": "projects/p/agent/sessions/s/contexts/c_order_fish", "lifespanCount": 5}
			],
			"intent": {"name": "projects/p/agent/intents/xyz", "displayName": "order_fish"},
			"intentDetectionConfidence": 0.84,
			"languageCode": "en"
		}
	}`)

	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "order_fish", p.Intent.Name)
	assert.Equal(t, map[string]any{"fish": "tuna", "amount": int64(2)}, p.Parameters)
	assert.Equal(t, 0.84, p.Confidence)
	assert.Equal(t, "2 tuna, coming right up", p.FulfillmentText)
	assert.Equal(t, language.English, p.Language)
	assert.False(t, p.SlotFillingIncomplete)
	assert.False(t, p.ContextMismatch)
	assert.Equal(t, []connector.ActiveContext{{Name: "c_order_fish", Lifespan: 5}}, p.Contexts)
	assert.JSONEq(t, string(raw), string(p.Raw))
}

func TestParse_MissingConfidenceIsNotReported(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{
		"queryResult": {
			"parameters": {"fish": "tuna"},
			"allRequiredParamsPresent": true,
			"intent": {"displayName": "order_fish"},
			"languageCode": "en"
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, connector.ConfidenceNotReported, p.Confidence)
}

func TestParse_UnknownIntent(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{"queryResult": {"intent": {"displayName": "mystery"}}}`)
	_, err = c.Parse(raw, nil)
	require.Error(t, err)
	assert.True(t, connector.IsProtocolError(err, connector.ErrCodeUnknownIntent))
	assert.Contains(t, err.Error(), "mystery")
}

func TestParse_MalformedPayload(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	_, err = c.Parse([]byte(`not json`), nil)
	assert.True(t, connector.IsProtocolError(err, connector.ErrCodeMalformedPayload))

	_, err = c.Parse([]byte(`{"responseId": "abc"}`), nil)
	assert.True(t, connector.IsProtocolError(err, connector.ErrCodeMalformedPayload))
}

func TestParse_SlotFillingIncomplete(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{
		"queryResult": {
			"parameters": {"fish": ""},
			"allRequiredParamsPresent": false,
			"fulfillmentText": "Which fish would you like?",
			"intent": {"displayName": "order_fish"},
			"intentDetectionConfidence": 0.71,
			"languageCode": "en"
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.True(t, p.SlotFillingIncomplete)
	// The missing parameter stays unset, the optional one takes its default.
	_, ok := p.Parameters["fish"]
	assert.False(t, ok)
	assert.Equal(t, int64(1), p.Parameters["amount"])
}

func TestParse_ContextMismatchAnnotation(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{
		"queryResult": {
			"intent": {"displayName": "order_fish_confirm"},
			"intentDetectionConfidence": 0.9,
			"languageCode": "en"
		}
	}`)

	// Reachable from the parent's context: no mismatch.
	p, err := c.Parse(raw, []string{"c_order_fish"})
	require.NoError(t, err)
	assert.False(t, p.ContextMismatch)

	// Not reachable from an empty context set: annotated, not rejected.
	p, err = c.Parse(raw, []string{})
	require.NoError(t, err)
	assert.True(t, p.ContextMismatch)

	// nil means "don't check".
	p, err = c.Parse(raw, nil)
	require.NoError(t, err)
	assert.False(t, p.ContextMismatch)
}

func TestParse_FulfillmentTextFallsBackToDefaultResponse(t *testing.T) {
	c, err := New(newShopAgent(t))
	require.NoError(t, err)

	raw := []byte(`{
		"queryResult": {
			"parameters": {"fish": "salmon", "amount": 3},
			"allRequiredParamsPresent": true,
			"intent": {"displayName": "order_fish"},
			"intentDetectionConfidence": 0.8,
			"languageCode": "en"
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "3 salmon, coming right up", p.FulfillmentText)
}

func TestParse_PersonAndDateParameters(t *testing.T) {
	agent := model.NewAgent("booking")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "book_table",
		Parameters: []model.Parameter{
			{Name: "guest", Type: model.SysPerson},
			{Name: "day", Type: model.SysDate},
			{Name: "hour", Type: model.SysTime},
		},
	}))
	c, err := New(agent)
	require.NoError(t, err)

	raw := []byte(`{
		"queryResult": {
			"parameters": {
				"guest": {"name": "Guido"},
				"day": "2021-07-11T12:00:00+02:00",
				"hour": "2021-07-11T13:00:00+02:00"
			},
			"allRequiredParamsPresent": true,
			"intent": {"displayName": "book_table"},
			"intentDetectionConfidence": 0.95,
			"languageCode": "en"
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Guido", p.Parameters["guest"])

	day := p.Parameters["day"].(mapping.Date)
	assert.Equal(t, "2021-07-11", day.String())

	hour := p.Parameters["hour"].(mapping.Time)
	assert.Equal(t, "13:00:00+02:00", hour.String())
}
