package mapping

import (
	"fmt"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

type registryKey struct {
	typeName string
	service  string
}

// Conflict records a duplicate registration for the same (type, service)
// pair. Duplicates are allowed (connectors override builtins this way), but
// they are surfaced so callers can review unintended shadowing.
type Conflict struct {
	Service      string
	TypeName     string
	PreviousName string
	CurrentName  string
}

func (c Conflict) String() string {
	return fmt.Sprintf("mapping for %s on %s re-registered: %s replaces %s",
		c.TypeName, c.Service, c.CurrentName, c.PreviousName)
}

// Registry is the (abstract type, service)-keyed mapping table. It is
// populated when connectors are constructed and read-only afterwards, which
// makes it safe for concurrent resolution without locking.
type Registry struct {
	entries   map[registryKey]Mapping
	conflicts []Conflict
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[registryKey]Mapping)}
}

// Register adds a mapping for the given service. The last registration for a
// (type, service) pair wins; a previous registration is recorded as a
// Conflict.
func (r *Registry) Register(service string, m Mapping) {
	key := registryKey{typeName: m.Type().TypeName(), service: service}
	if previous, exists := r.entries[key]; exists {
		r.conflicts = append(r.conflicts, Conflict{
			Service:      service,
			TypeName:     key.typeName,
			PreviousName: previous.ServiceName(),
			CurrentName:  m.ServiceName(),
		})
	}
	r.entries[key] = m
}

// Conflicts returns the duplicate registrations recorded so far.
func (r *Registry) Conflicts() []Conflict { return r.conflicts }

// Resolve returns the mapping for an abstract type on a service. Custom
// entities without an explicit mapping get an on-the-fly string mapping
// named after the entity, since custom entities are exported under their own
// name. A system type without a mapping fails with
// ErrCodeUnsupportedMapping.
func (r *Registry) Resolve(t model.EntityType, service string) (Mapping, error) {
	key := registryKey{typeName: t.TypeName(), service: service}
	if m, ok := r.entries[key]; ok {
		return m, nil
	}
	if !t.IsSystem() {
		return StringMapping{EntityType: t, Name: t.TypeName()}, nil
	}
	return nil, &Error{
		Code:     ErrCodeUnsupportedMapping,
		Service:  service,
		TypeName: t.TypeName(),
	}
}

// ResolveLang resolves a mapping and checks that it covers the given
// language, failing with ErrCodeUnsupportedLanguage otherwise.
func (r *Registry) ResolveLang(t model.EntityType, service string, lang language.Code) (Mapping, error) {
	m, err := r.Resolve(t, service)
	if err != nil {
		return nil, err
	}
	if supported := m.SupportedLanguages(); supported != nil {
		found := false
		for _, code := range supported {
			if code == lang {
				found = true
				break
			}
		}
		if !found {
			return nil, &Error{
				Code:     ErrCodeUnsupportedLanguage,
				Service:  service,
				TypeName: t.TypeName(),
				Lang:     lang,
			}
		}
	}
	return m, nil
}

// ServiceName returns the native entity identifier of an abstract type on a
// service.
func (r *Registry) ServiceName(t model.EntityType, service string) (string, error) {
	m, err := r.Resolve(t, service)
	if err != nil {
		return "", err
	}
	return m.ServiceName(), nil
}
