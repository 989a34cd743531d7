package alexa

import (
	"fmt"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

// dateMapping converts sys.date values. AMAZON.DATE reports either a plain
// ISO date or one of the interval forms handled by parseDate; intervals are
// reduced to their first day, so sys.date keeps a single value across
// services.
type dateMapping struct{}

func (dateMapping) Type() model.EntityType              { return model.SysDate }
func (dateMapping) ServiceName() string                 { return "AMAZON.DATE" }
func (dateMapping) SupportedLanguages() []language.Code { return supportedLanguages() }

func (dateMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected ISO date string, got %T", raw)
	}
	from, _, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return from, nil
}

func (dateMapping) ToService(value any) (any, error) {
	d, ok := value.(mapping.Date)
	if !ok {
		return nil, fmt.Errorf("expected Date value, got %T", value)
	}
	return d.String(), nil
}

// timeMapping converts sys.time values. AMAZON.TIME reports times without
// seconds ("13:00"), which the shared parser does not accept.
type timeMapping struct{}

func (timeMapping) Type() model.EntityType              { return model.SysTime }
func (timeMapping) ServiceName() string                 { return "AMAZON.TIME" }
func (timeMapping) SupportedLanguages() []language.Code { return supportedLanguages() }

func (timeMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected time string, got %T", raw)
	}
	if len(s) == 5 {
		s += ":00"
	}
	return mapping.ParseTime(s)
}

func (timeMapping) ToService(value any) (any, error) {
	t, ok := value.(mapping.Time)
	if !ok {
		return nil, fmt.Errorf("expected Time value, got %T", value)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute), nil
}

// registerMappings fills a registry with the Alexa builtin slot type
// mappings. sys.email and sys.url have no Alexa builtin and stay unmapped:
// exporting an agent that uses them fails with an unsupported-mapping error.
func registerMappings(reg *mapping.Registry) {
	langs := supportedLanguages()
	reg.Register(ServiceName, dateMapping{})
	reg.Register(ServiceName, timeMapping{})
	reg.Register(ServiceName, mapping.IntegerMapping{Name: "AMAZON.NUMBER", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysPerson, Name: "AMAZON.Person", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysPhoneNumber, Name: "AMAZON.PhoneNumber", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysColor, Name: "AMAZON.Color", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysLanguage, Name: "AMAZON.Language", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysMusicArtist, Name: "AMAZON.Musician", Languages: langs})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysMusicGenre, Name: "AMAZON.Genre", Languages: langs})
}
