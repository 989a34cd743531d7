package language

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderText(t *testing.T) {
	params := map[string]any{"user_name": "Guido", "amount": int64(3)}

	assert.Equal(t, "Hello Guido!", RenderText("Hello $user_name!", params))
	assert.Equal(t, "3 cakes for Guido", RenderText("$amount cakes for $user_name", params))

	// References only substitute at word boundaries.
	assert.Equal(t, "pre$user_named", RenderText("pre$user_named", params))
	assert.Equal(t, "no references", RenderText("no references", params))

	// Substituted values are emitted verbatim, never re-scanned.
	assert.Equal(t, "$b", RenderText("$a", map[string]any{"a": "$b", "b": "X"}))

	// A bare or unknown marker stays literal.
	assert.Equal(t, "costs 3 $", RenderText("costs $amount $", params))
	assert.Equal(t, "hi $stranger", RenderText("hi $stranger", params))
}

func TestTextResponse_Render(t *testing.T) {
	r := TextResponse{Choices: []string{"Hi $user_name", "Hello $user_name"}}
	rendered := r.Render(map[string]any{"user_name": "Ada"}).(TextResponse)
	assert.Equal(t, []string{"Hi Ada", "Hello Ada"}, rendered.Choices)

	// The receiver is unchanged.
	assert.Equal(t, "Hi $user_name", r.Choices[0])
}

func TestCustomPayloadResponse_RenderIsIdentity(t *testing.T) {
	r := CustomPayloadResponse{Payload: map[string]any{"key": "$value"}}
	rendered := r.Render(map[string]any{"value": "x"}).(CustomPayloadResponse)
	assert.Equal(t, "$value", rendered.Payload["key"])
}

func TestResources_DefaultText(t *testing.T) {
	res := NewResources()
	res.SetIntent("hello", English, &IntentLanguage{
		Responses: map[ResponseGroup][]Response{
			GroupDefault: {
				QuickRepliesResponse{Replies: []string{"yes", "no"}},
				TextResponse{Choices: []string{"Hello there!", "Hi!"}},
			},
		},
	})

	assert.Equal(t, "Hello there!", res.DefaultText("hello", English))
	assert.Equal(t, "", res.DefaultText("hello", Italian))
	assert.Equal(t, "", res.DefaultText("unknown", English))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "en", "order_fish.yaml"), `
examples:
  - "I want $fish_name{a tuna}"
  - "one fish please"

slot_filling_prompts:
  fish_name:
    - "Which fish would you like?"

responses:
  default:
    - text:
        - "Alright, $fish_name on its way"
  rich:
    - quick_replies:
        - "Order another"
    - image:
        url: "https://example.com/fish.png"
        title: "Your fish"
    - card:
        title: "Fish order"
        link: "https://example.com/orders"
    - custom:
        kind: "receipt"
`)
	writeFile(t, filepath.Join(dir, "en", "ENTITY_FishType.yaml"), `
entries:
  tuna:
    - bluefin
    - yellowfin
  salmon: []
`)
	writeFile(t, filepath.Join(dir, "it", "order_fish.yaml"), `
examples:
  - "vorrei $fish_name{un tonno}"
`)

	res, err := LoadDir(dir)
	require.NoError(t, err)

	en := res.Intent("order_fish", English)
	require.NotNil(t, en)
	assert.Equal(t, []string{"I want $fish_name{a tuna}", "one fish please"}, en.Examples)
	assert.Equal(t, []string{"Which fish would you like?"}, en.SlotFillingPrompts["fish_name"])

	require.Len(t, en.Responses[GroupDefault], 1)
	text := en.Responses[GroupDefault][0].(TextResponse)
	assert.Equal(t, "Alright, $fish_name on its way", text.Choices[0])

	require.Len(t, en.Responses[GroupRich], 4)
	assert.IsType(t, QuickRepliesResponse{}, en.Responses[GroupRich][0])
	img := en.Responses[GroupRich][1].(ImageResponse)
	assert.Equal(t, "https://example.com/fish.png", img.URL)
	card := en.Responses[GroupRich][2].(CardResponse)
	assert.Equal(t, "Fish order", card.Title)
	custom := en.Responses[GroupRich][3].(CustomPayloadResponse)
	assert.Equal(t, "receipt", custom.Payload["kind"])

	entries := res.EntityEntries("FishType", English)
	require.Len(t, entries, 2)
	assert.Equal(t, EntityEntry{Value: "tuna", Synonyms: []string{"bluefin", "yellowfin"}}, entries[0])
	assert.Equal(t, "salmon", entries[1].Value)

	it := res.Intent("order_fish", Italian)
	require.NotNil(t, it)
	assert.Len(t, it.Examples, 1)
}

func TestLoadDir_UnknownResponseType(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "en", "hello.yaml"), `
responses:
  default:
    - carousel:
        - "not supported"
`)
	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carousel")
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
