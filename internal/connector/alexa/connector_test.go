package alexa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

func newShopAgent(t *testing.T) *model.Agent {
	t.Helper()
	agent := model.NewAgent("shop", language.English, language.Italian)

	fish := &model.Entity{Name: "FishType"}
	require.NoError(t, agent.RegisterEntity(fish))

	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "shop.order_fish",
		Parameters: []model.Parameter{
			{Name: "fish", Type: fish, Required: true},
			{Name: "amount", Type: model.SysInteger, Default: int64(1)},
		},
	}))

	agent.Resources().SetIntent("shop.order_fish", language.English, &language.IntentLanguage{
		Examples: []string{"I want $amount{2} $fish{tuna}, please!"},
		SlotFillingPrompts: map[string][]string{
			"fish": {"Which fish would you like?", "What fish?"},
		},
	})
	agent.Resources().SetEntityEntries("FishType", language.English, []language.EntityEntry{
		{Value: "tuna", Synonyms: []string{"bluefin"}},
		{Value: "salmon"},
	})
	return agent
}

func TestExport_InteractionModelPerLocale(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	ex, err := c.Export()
	require.NoError(t, err)

	paths := make([]string, 0)
	for _, f := range ex.Files() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"interactionModels/custom/en-US.json",
		"interactionModels/custom/it-IT.json",
	}, paths)
}

func TestExport_LanguageModel(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("interactionModels/custom/en-US.json").(interactionModelDocument)
	lm := doc.InteractionModel.LanguageModel
	assert.Equal(t, "fish shop", lm.InvocationName)

	require.Len(t, lm.Intents, 1)
	intent := lm.Intents[0]
	// Dots are not allowed in Alexa intent names.
	assert.Equal(t, "shop_order_fish", intent.Name)
	assert.Equal(t, []modelSlot{
		{Name: "fish", Type: "FishType"},
		{Name: "amount", Type: "AMAZON.NUMBER"},
	}, intent.Slots)
	// Markers become {slot} references, punctuation is stripped.
	assert.Equal(t, []string{"I want {amount} {fish} please"}, intent.Samples)

	require.Len(t, lm.Types, 1)
	assert.Equal(t, "FishType", lm.Types[0].Name)
	require.Len(t, lm.Types[0].Values, 2)
	assert.Equal(t, "tuna", lm.Types[0].Values[0].Name.Value)
	assert.Equal(t, []string{"bluefin"}, lm.Types[0].Values[0].Name.Synonyms)
}

func TestExport_DialogModelElicitation(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("interactionModels/custom/en-US.json").(interactionModelDocument)
	im := doc.InteractionModel

	require.NotNil(t, im.Dialog)
	assert.Equal(t, "ALWAYS", im.Dialog.DelegationStrategy)
	require.Len(t, im.Dialog.Intents, 1)

	slots := im.Dialog.Intents[0].Slots
	require.Len(t, slots, 2)
	assert.True(t, slots[0].ElicitationRequired)
	assert.Equal(t, "Elicit.Slot.shop_order_fish.fish", slots[0].Prompts.Elicitation)
	assert.False(t, slots[1].ElicitationRequired)

	require.Len(t, im.Prompts, 1)
	assert.Equal(t, "Elicit.Slot.shop_order_fish.fish", im.Prompts[0].ID)
	assert.Equal(t, []promptVariation{
		{Type: "PlainText", Value: "Which fish would you like?"},
		{Type: "PlainText", Value: "What fish?"},
	}, im.Prompts[0].Variations)

	// Italian has no prompts, so its model carries no dialog section.
	it := ex.File("interactionModels/custom/it-IT.json").(interactionModelDocument)
	assert.Nil(t, it.InteractionModel.Dialog)
	assert.Empty(t, it.InteractionModel.Prompts)
}

func TestExport_CapabilityGaps(t *testing.T) {
	agent := newShopAgent(t)
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name:    "shop.order_fish_confirm",
		Follows: []model.Follow{{Parent: "shop.order_fish", Lifespan: -1}},
	}))

	c, err := New(agent, "fish shop")
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	features := make([]string, 0)
	for _, gap := range ex.Gaps() {
		features = append(features, gap.Feature)
	}
	// The default on amount and the follow relation are both unrepresentable.
	assert.Contains(t, features, "parameter default value")
	assert.Contains(t, features, "follow-up relation")
}

func TestExport_ContactSlotTypes(t *testing.T) {
	agent := model.NewAgent("contacts")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "add_contact",
		Parameters: []model.Parameter{
			{Name: "contact", Type: model.SysPerson},
			{Name: "number", Type: model.SysPhoneNumber},
		},
	}))

	c, err := New(agent, "contact book")
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)

	doc := ex.File("interactionModels/custom/en-US.json").(interactionModelDocument)
	assert.Equal(t, []modelSlot{
		{Name: "contact", Type: "AMAZON.Person"},
		{Name: "number", Type: "AMAZON.PhoneNumber"},
	}, doc.InteractionModel.LanguageModel.Intents[0].Slots)
}

func TestExport_UnmappedSystemTypeFails(t *testing.T) {
	agent := model.NewAgent("contacts")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "add_contact",
		Parameters: []model.Parameter{
			{Name: "address", Type: model.SysEmail},
		},
	}))

	c, err := New(agent, "contact book")
	require.NoError(t, err)

	_, err = c.Export()
	require.Error(t, err)
	assert.True(t, mapping.IsMappingError(err, mapping.ErrCodeUnsupportedMapping))

	var me *mapping.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "address", me.Parameter)
}

func TestExport_UnsupportedLanguageFails(t *testing.T) {
	agent := model.NewAgent("shop", language.Chinese)
	require.NoError(t, agent.RegisterIntent(&model.Intent{Name: "hello"}))

	c, err := New(agent, "shop")
	require.NoError(t, err)

	_, err = c.Export()
	assert.True(t, mapping.IsMappingError(err, mapping.ErrCodeUnsupportedLanguage))
}

func TestExport_SharedLocaleEmitsOneFile(t *testing.T) {
	agent := model.NewAgent("shop", language.English, language.EnglishUS)
	require.NoError(t, agent.RegisterIntent(&model.Intent{Name: "hello"}))

	c, err := New(agent, "shop")
	require.NoError(t, err)
	ex, err := c.Export()
	require.NoError(t, err)
	assert.Len(t, ex.Files(), 1)
}

func skillRequestBody(slots string) []byte {
	return []byte(`{
		"version": "1.0",
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"dialogState": "COMPLETED",
			"intent": {
				"name": "shop_order_fish",
				"slots": {` + slots + `}
			}
		}
	}`)
}

func TestParse_IntentRequest(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	raw := skillRequestBody(`
		"fish": {"name": "fish", "value": "tuna"},
		"amount": {"name": "amount", "value": "2"}
	`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, "shop.order_fish", p.Intent.Name)
	assert.Equal(t, map[string]any{"fish": "tuna", "amount": int64(2)}, p.Parameters)
	assert.Equal(t, connector.ConfidenceNotReported, p.Confidence)
	assert.Equal(t, language.English, p.Language)
	assert.False(t, p.SlotFillingIncomplete)
}

func TestParse_ResolutionBeatsTranscription(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	raw := skillRequestBody(`
		"fish": {
			"name": "fish",
			"value": "bluefin",
			"resolutions": {
				"resolutionsPerAuthority": [{
					"status": {"code": "ER_SUCCESS_MATCH"},
					"values": [{"value": {"name": "tuna", "id": "TUNA"}}]
				}]
			}
		}
	`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "tuna", p.Parameters["fish"])
}

func TestParse_FailedResolutionKeepsRawValue(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	raw := skillRequestBody(`
		"fish": {
			"name": "fish",
			"value": "swordfish",
			"resolutions": {
				"resolutionsPerAuthority": [{"status": {"code": "ER_SUCCESS_NO_MATCH"}}]
			}
		}
	`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "swordfish", p.Parameters["fish"])
}

func TestParse_DialogInProgressIsIncomplete(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	raw := []byte(`{
		"version": "1.0",
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"dialogState": "IN_PROGRESS",
			"intent": {
				"name": "shop_order_fish",
				"slots": {"fish": {"name": "fish", "value": "tuna"}}
			}
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.True(t, p.SlotFillingIncomplete)
}

func TestParse_ListParameterWrapsValue(t *testing.T) {
	agent := model.NewAgent("shop")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "pick_numbers",
		Parameters: []model.Parameter{
			{Name: "lucky", Type: model.SysInteger, IsList: true},
		},
	}))
	c, err := New(agent, "shop")
	require.NoError(t, err)

	raw := []byte(`{
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"intent": {
				"name": "pick_numbers",
				"slots": {"lucky": {"name": "lucky", "value": "7"}}
			}
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	// Alexa reports at most one value per slot; list parameters still come
	// back as collections.
	assert.Equal(t, []any{int64(7)}, p.Parameters["lucky"])
}

func TestParse_NonIntentRequestFails(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	_, err = c.Parse([]byte(`{"request": {"type": "LaunchRequest"}}`), nil)
	assert.True(t, connector.IsProtocolError(err, connector.ErrCodeMalformedPayload))
}

func TestParse_UnknownIntent(t *testing.T) {
	c, err := New(newShopAgent(t), "fish shop")
	require.NoError(t, err)

	raw := []byte(`{
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"intent": {"name": "AMAZON.HelpIntent"}
		}
	}`)
	_, err = c.Parse(raw, nil)
	require.Error(t, err)
	assert.True(t, connector.IsProtocolError(err, connector.ErrCodeUnknownIntent))
}

func TestParse_TimeWithoutSeconds(t *testing.T) {
	agent := model.NewAgent("booking")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "book_table",
		Parameters: []model.Parameter{
			{Name: "hour", Type: model.SysTime},
		},
	}))
	c, err := New(agent, "booking")
	require.NoError(t, err)

	raw := []byte(`{
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"intent": {
				"name": "book_table",
				"slots": {"hour": {"name": "hour", "value": "13:00"}}
			}
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, mapping.Time{Hour: 13}, p.Parameters["hour"])
}

func TestParse_RelativeDateSlot(t *testing.T) {
	agent := model.NewAgent("booking")
	require.NoError(t, agent.RegisterIntent(&model.Intent{
		Name: "book_table",
		Parameters: []model.Parameter{
			{Name: "day", Type: model.SysDate},
		},
	}))
	c, err := New(agent, "booking")
	require.NoError(t, err)

	// "next week" comes back as an ISO week, not a specific day.
	raw := []byte(`{
		"request": {
			"type": "IntentRequest",
			"locale": "en-US",
			"intent": {
				"name": "book_table",
				"slots": {"day": {"name": "day", "value": "2015-W49"}}
			}
		}
	}`)
	p, err := c.Parse(raw, nil)
	require.NoError(t, err)

	d := p.Parameters["day"].(mapping.Date)
	assert.Equal(t, "2015-11-30", d.String())
}
