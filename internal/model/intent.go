package model

// DefaultFollowLifespan is the number of conversational turns a follow-up
// context stays active when the relation does not set its own lifespan.
const DefaultFollowLifespan = 5

// Parameter is one slot of an intent's parameter schema.
type Parameter struct {
	Name string
	Type EntityType

	// IsList marks the parameter as matching multiple values.
	IsList bool

	// Required parameters trigger slot-filling prompts when they cannot be
	// tagged in the user utterance.
	Required bool

	// Default is used when an optional parameter is missing from a
	// prediction. Must be nil for required parameters, and a []any for list
	// parameters.
	Default any
}

// Follow is a directed follow-up relation to a parent intent: the declaring
// intent only makes sense within the parent's conversational context.
type Follow struct {
	// Parent is the name of the followed intent.
	Parent string

	// Lifespan is the number of turns the parent's context stays active.
	// Zero means "current turn only"; negative values select
	// DefaultFollowLifespan.
	Lifespan int
}

// Intent is a named, parameterized conversational action. Intents are
// registered on an Agent at definition time and never mutated afterwards;
// predictions reference them read-only.
type Intent struct {
	Name       string
	Parameters []Parameter
	Follows    []Follow
}

// Parameter returns the named parameter spec, or nil.
func (i *Intent) Parameter(name string) *Parameter {
	for idx := range i.Parameters {
		if i.Parameters[idx].Name == name {
			return &i.Parameters[idx]
		}
	}
	return nil
}
