// Package language models the per-language resources of an agent: example
// utterances, slot-filling prompts, response templates and custom entity
// entries.
//
// This package contains type definitions and the YAML resource loader. It
// imports nothing internal, so that model and connector packages can build on
// it without cycles.
package language
