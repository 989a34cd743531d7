package language

import (
	"fmt"
	"strings"
)

// Response is a single response template of an intent. Implementations are
// value types; Render returns a copy with $param references substituted.
type Response interface {
	// Render replaces $param references in the response text with values
	// from the given parameter map. The receiver is not modified.
	Render(params map[string]any) Response
}

// TextResponse is a plain-text response. One of the choices is picked by the
// target service at random.
type TextResponse struct {
	Choices []string
}

// QuickRepliesResponse renders as a set of reply chips on rich clients.
type QuickRepliesResponse struct {
	Replies []string
}

// ImageResponse renders as an image on rich clients.
type ImageResponse struct {
	URL   string
	Title string
}

// CardResponse renders as a card with an optional link button.
type CardResponse struct {
	Title    string
	Subtitle string
	Image    string
	Link     string
}

// CustomPayloadResponse carries a service-specific payload verbatim.
type CustomPayloadResponse struct {
	Name    string
	Payload map[string]any
}

func (r TextResponse) Render(params map[string]any) Response {
	return TextResponse{Choices: renderAll(r.Choices, params)}
}

func (r QuickRepliesResponse) Render(params map[string]any) Response {
	return QuickRepliesResponse{Replies: renderAll(r.Replies, params)}
}

func (r ImageResponse) Render(params map[string]any) Response {
	r.URL = RenderText(r.URL, params)
	r.Title = RenderText(r.Title, params)
	return r
}

func (r CardResponse) Render(params map[string]any) Response {
	r.Title = RenderText(r.Title, params)
	r.Subtitle = RenderText(r.Subtitle, params)
	return r
}

// Render on a custom payload is the identity: payloads are passed through to
// the service untouched.
func (r CustomPayloadResponse) Render(map[string]any) Response {
	return r
}

func renderAll(texts []string, params map[string]any) []string {
	result := make([]string, len(texts))
	for i, t := range texts {
		result[i] = RenderText(t, params)
	}
	return result
}

// RenderText replaces every $name reference in text with the string form of
// params[name]. References are only matched at word boundaries, so "$name"
// substitutes while "pre$named" does not. The text is scanned once;
// substituted values are emitted verbatim, never re-scanned.
func RenderText(text string, params map[string]any) string {
	if text == "" || len(params) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '$' || (i > 0 && isWordByte(text[i-1])) {
			b.WriteByte(text[i])
			i++
			continue
		}
		end := i + 1
		for end < len(text) && isWordByte(text[end]) {
			end++
		}
		if value, ok := params[text[i+1:end]]; ok && end > i+1 {
			fmt.Fprintf(&b, "%v", value)
		} else {
			b.WriteString(text[i:end])
		}
		i = end
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
