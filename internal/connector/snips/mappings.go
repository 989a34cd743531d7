package snips

import (
	"fmt"
	"strings"
	"time"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

// supportedLanguages are the languages snips-nlu ships resources for, out of
// the codes the framework knows.
var supportedLanguages = []language.Code{
	language.English,
	language.Italian,
	language.Spanish,
	language.German,
	language.French,
}

// snipsDatetime is the timestamp layout of snips/datetime slot values, e.g.
// "2021-07-11 09:30:00 +02:00".
const snipsDatetime = "2006-01-02 15:04:05 -07:00"

func parseDatetimeSlot(raw any) (time.Time, error) {
	value := raw
	// InstantTime slots arrive as {"kind": "InstantTime", "value": "..."}.
	if m, ok := raw.(map[string]any); ok {
		value = m["value"]
	}
	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected datetime string, got %T", value)
	}
	return time.Parse(snipsDatetime, s)
}

// dateMapping converts sys.date values through the snips/datetime builtin.
type dateMapping struct{}

func (dateMapping) Type() model.EntityType              { return model.SysDate }
func (dateMapping) ServiceName() string                 { return "snips/date" }
func (dateMapping) SupportedLanguages() []language.Code { return supportedLanguages }

func (dateMapping) FromService(raw any) (any, error) {
	if s, ok := raw.(string); ok && !strings.Contains(s, " ") {
		return mapping.ParseDate(s)
	}
	t, err := parseDatetimeSlot(raw)
	if err != nil {
		return nil, err
	}
	return mapping.DateOf(t), nil
}

func (dateMapping) ToService(value any) (any, error) {
	d, ok := value.(mapping.Date)
	if !ok {
		return nil, fmt.Errorf("expected Date value, got %T", value)
	}
	return d.String(), nil
}

// timeMapping converts sys.time values through the snips/datetime builtin.
type timeMapping struct{}

func (timeMapping) Type() model.EntityType              { return model.SysTime }
func (timeMapping) ServiceName() string                 { return "snips/time" }
func (timeMapping) SupportedLanguages() []language.Code { return supportedLanguages }

func (timeMapping) FromService(raw any) (any, error) {
	if s, ok := raw.(string); ok && !strings.Contains(s, " ") {
		return mapping.ParseTime(s)
	}
	t, err := parseDatetimeSlot(raw)
	if err != nil {
		return nil, err
	}
	return mapping.TimeOf(t), nil
}

func (timeMapping) ToService(value any) (any, error) {
	t, ok := value.(mapping.Time)
	if !ok {
		return nil, fmt.Errorf("expected Time value, got %T", value)
	}
	return t.String(), nil
}

// registerMappings fills a registry with the Snips mappings: builtin entities
// where snips-nlu has them, the bundled color entity as a patch where it does
// not. The remaining system types (person, email, phone number, url,
// language) have no Snips counterpart and stay unmapped.
func registerMappings(reg *mapping.Registry) {
	reg.Register(ServiceName, dateMapping{})
	reg.Register(ServiceName, timeMapping{})
	reg.Register(ServiceName, mapping.IntegerMapping{Name: "snips/number", Languages: supportedLanguages})
	reg.Register(ServiceName, mapping.StringMapping{EntityType: model.SysMusicArtist, Name: "snips/musicArtist", Languages: supportedLanguages})
	reg.Register(ServiceName, mapping.PatchedMapping{
		EntityType: model.SysColor,
		Builtin:    &colorEntity,
		Languages:  colorLanguages(),
	})
}
