// Package model holds the service-agnostic agent definition: intents with
// their parameter schemas, custom entities, follow relations and language
// resources. An Agent is populated with explicit registration calls at
// definition time and is immutable afterwards; definition mistakes surface
// eagerly as DefinitionError values.
package model
