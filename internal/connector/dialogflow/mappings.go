package dialogflow

import (
	"fmt"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

// ServiceName is the service tag used to key entity mappings.
const ServiceName = "dialogflow_es"

// dateMapping converts sys.date values. Dialogflow reports dates as full ISO
// datetimes ("2021-07-11T12:00:00+02:00"); only the calendar day is kept.
type dateMapping struct{}

func (dateMapping) Type() model.EntityType              { return model.SysDate }
func (dateMapping) ServiceName() string                 { return "sys.date" }
func (dateMapping) SupportedLanguages() []language.Code { return nil }

func (dateMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected ISO datetime string, got %T", raw)
	}
	return mapping.ParseDate(s)
}

func (dateMapping) ToService(value any) (any, error) {
	d, ok := value.(mapping.Date)
	if !ok {
		return nil, fmt.Errorf("expected Date value, got %T", value)
	}
	return d.String(), nil
}

// timeMapping converts sys.time values, which Dialogflow also reports as full
// ISO datetimes.
type timeMapping struct{}

func (timeMapping) Type() model.EntityType              { return model.SysTime }
func (timeMapping) ServiceName() string                 { return "sys.time" }
func (timeMapping) SupportedLanguages() []language.Code { return nil }

func (timeMapping) FromService(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected ISO datetime string, got %T", raw)
	}
	return mapping.ParseTime(s)
}

func (timeMapping) ToService(value any) (any, error) {
	t, ok := value.(mapping.Time)
	if !ok {
		return nil, fmt.Errorf("expected Time value, got %T", value)
	}
	return t.String(), nil
}

// personMapping converts sys.person values. Dialogflow wraps person names in
// an object, {"name": "John"}; the abstract value is the bare name.
type personMapping struct{}

func (personMapping) Type() model.EntityType              { return model.SysPerson }
func (personMapping) ServiceName() string                 { return "sys.person" }
func (personMapping) SupportedLanguages() []language.Code { return nil }

func (personMapping) FromService(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case map[string]any:
		name, ok := v["name"].(string)
		if !ok {
			return nil, fmt.Errorf("person object has no name field: %v", v)
		}
		return name, nil
	default:
		return nil, fmt.Errorf("expected person object or string, got %T", raw)
	}
}

func (personMapping) ToService(value any) (any, error) {
	return map[string]any{"name": fmt.Sprintf("%v", value)}, nil
}

// registerMappings fills a registry with the Dialogflow ES system entity
// mappings.
func registerMappings(reg *mapping.Registry) {
	reg.Register(ServiceName, dateMapping{})
	reg.Register(ServiceName, timeMapping{})
	reg.Register(ServiceName, personMapping{})
	reg.Register(ServiceName, mapping.IntegerMapping{Name: "sys.number-integer"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysEmail, Name: "sys.email"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysPhoneNumber, Name: "sys.phone-number"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysColor, Name: "sys.color"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysLanguage, Name: "sys.language"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysURL, Name: "sys.url"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysMusicArtist, Name: "sys.music-artist"})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysMusicGenre, Name: "sys.music-genre"})
}
