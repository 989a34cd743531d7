// Package template implements the example-utterance mini-language. An
// utterance template is plain text interleaved with parameter markers in the
// form $param_name{example text}, as in:
//
//	My name is $user_name{Guido}!
//
// Parse produces an ordered token sequence that reconstructs the original
// string exactly: Render(Parse(s)) == s for every well-formed s.
package template

import (
	"fmt"
	"strings"
)

// TokenKind discriminates literal text from parameter references.
type TokenKind int

const (
	// KindText is a literal text span.
	KindText TokenKind = iota
	// KindParameter is a parameter reference with its example text.
	KindParameter
)

// Token is one chunk of a parsed utterance template.
type Token struct {
	Kind TokenKind

	// Text is the literal span for KindText tokens.
	Text string

	// Parameter and Example are set for KindParameter tokens.
	Parameter string
	Example   string
}

// Utterance is a parsed utterance template.
type Utterance struct {
	tokens []Token
}

// MalformedTemplateError reports an unbalanced or empty parameter marker,
// naming the byte offset of the offending marker.
type MalformedTemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("malformed utterance template at offset %d: %s: %q", e.Offset, e.Reason, e.Template)
}

// Parse tokenizes an utterance template. A marker starts at "$" followed by a
// parameter name (letters, digits, underscore) and a braced example text. A
// "$" that does not start a well-formed marker prefix is literal text; a
// marker prefix with a missing or unterminated example fails with
// MalformedTemplateError.
func Parse(raw string) (*Utterance, error) {
	var tokens []Token
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, Token{Kind: KindText, Text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(raw) {
		if raw[i] != '$' {
			literal.WriteByte(raw[i])
			i++
			continue
		}

		nameEnd := i + 1
		for nameEnd < len(raw) && isNameByte(raw[nameEnd]) {
			nameEnd++
		}
		if nameEnd == i+1 || nameEnd == len(raw) || raw[nameEnd] != '{' {
			// "$" without a name, or a bare "$name" reference without an
			// example: treat as literal text, as response templates do.
			literal.WriteByte(raw[i])
			i++
			continue
		}

		exampleEnd := strings.IndexByte(raw[nameEnd+1:], '}')
		if exampleEnd < 0 {
			return nil, &MalformedTemplateError{
				Template: raw,
				Offset:   i,
				Reason:   "unterminated parameter example, expected '}'",
			}
		}
		example := raw[nameEnd+1 : nameEnd+1+exampleEnd]
		if example == "" {
			return nil, &MalformedTemplateError{
				Template: raw,
				Offset:   i,
				Reason:   "empty parameter example",
			}
		}
		if nested := strings.IndexByte(example, '{'); nested >= 0 {
			return nil, &MalformedTemplateError{
				Template: raw,
				Offset:   nameEnd + 1 + nested,
				Reason:   "nested '{' in parameter example",
			}
		}

		flush()
		tokens = append(tokens, Token{
			Kind:      KindParameter,
			Parameter: raw[i+1 : nameEnd],
			Example:   example,
		})
		i = nameEnd + 1 + exampleEnd + 1
	}
	flush()

	return &Utterance{tokens: tokens}, nil
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Tokens returns the ordered token sequence.
func (u *Utterance) Tokens() []Token {
	return u.tokens
}

// Parameters returns the referenced parameter names, in order of first
// appearance.
func (u *Utterance) Parameters() []string {
	var result []string
	seen := make(map[string]bool)
	for _, tok := range u.tokens {
		if tok.Kind == KindParameter && !seen[tok.Parameter] {
			seen[tok.Parameter] = true
			result = append(result, tok.Parameter)
		}
	}
	return result
}

// Render reconstructs the original template string from the token sequence.
func (u *Utterance) Render() string {
	var b strings.Builder
	for _, tok := range u.tokens {
		switch tok.Kind {
		case KindText:
			b.WriteString(tok.Text)
		case KindParameter:
			b.WriteByte('$')
			b.WriteString(tok.Parameter)
			b.WriteByte('{')
			b.WriteString(tok.Example)
			b.WriteByte('}')
		}
	}
	return b.String()
}

// Plain renders the utterance with markers replaced by their example text,
// yielding the sentence as a user would say it.
func (u *Utterance) Plain() string {
	var b strings.Builder
	for _, tok := range u.tokens {
		if tok.Kind == KindText {
			b.WriteString(tok.Text)
		} else {
			b.WriteString(tok.Example)
		}
	}
	return b.String()
}
