package model

// EntityType is the abstract type of an intent parameter: either one of the
// builtin system types, or a custom Entity defined by the agent.
type EntityType interface {
	// TypeName uniquely identifies the type within an agent.
	TypeName() string
	// IsSystem reports whether the type is a builtin system type.
	IsSystem() bool
}

// SystemType is a builtin value domain that prediction services recognize
// natively (names, dates, numbers, ...). Service connectors map each system
// type to the corresponding native entity.
type SystemType string

// System types supported by the framework.
const (
	SysDate        SystemType = "sys.date"
	SysTime        SystemType = "sys.time"
	SysInteger     SystemType = "sys.integer"
	SysEmail       SystemType = "sys.email"
	SysPhoneNumber SystemType = "sys.phone_number"
	SysColor       SystemType = "sys.color"
	SysLanguage    SystemType = "sys.language"
	SysURL         SystemType = "sys.url"
	SysPerson      SystemType = "sys.person"
	SysMusicArtist SystemType = "sys.music_artist"
	SysMusicGenre  SystemType = "sys.music_genre"
)

func (s SystemType) TypeName() string { return string(s) }
func (s SystemType) IsSystem() bool   { return true }

// Entity is a custom closed-list entity. Its values and synonyms live in the
// agent's language resources, one entry set per language.
type Entity struct {
	Name string

	// Regex marks the entity values as regular expressions.
	Regex bool
	// AutomatedExpansion lets the service match values not in the list.
	AutomatedExpansion bool
	// FuzzyMatching enables approximate matching on services that support it.
	FuzzyMatching bool
}

func (e *Entity) TypeName() string { return e.Name }
func (e *Entity) IsSystem() bool   { return false }
