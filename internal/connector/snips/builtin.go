package snips

import (
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

// colorEntity patches the missing snips color builtin with a bundled custom
// entity. Entity names starting with "i_" are reserved for these bundled
// entities, so agent-defined entities can never clash with them.
var colorEntity = model.Entity{Name: "i_color", AutomatedExpansion: true}

// colorEntries are the bundled values of the patched color entity, per
// language.
var colorEntries = map[language.Code][]language.EntityEntry{
	language.English: {
		{Value: "red"}, {Value: "orange"}, {Value: "yellow"},
		{Value: "green"}, {Value: "blue"}, {Value: "purple"},
		{Value: "pink"}, {Value: "brown"}, {Value: "black"},
		{Value: "white"}, {Value: "grey", Synonyms: []string{"gray"}},
	},
	language.Italian: {
		{Value: "rosso"}, {Value: "arancione"}, {Value: "giallo"},
		{Value: "verde"}, {Value: "blu", Synonyms: []string{"azzurro"}},
		{Value: "viola"}, {Value: "rosa"}, {Value: "marrone"},
		{Value: "nero"}, {Value: "bianco"}, {Value: "grigio"},
	},
	language.Spanish: {
		{Value: "rojo"}, {Value: "naranja"}, {Value: "amarillo"},
		{Value: "verde"}, {Value: "azul"}, {Value: "morado", Synonyms: []string{"violeta"}},
		{Value: "rosa"}, {Value: "marrón"}, {Value: "negro"},
		{Value: "blanco"}, {Value: "gris"},
	},
	language.German: {
		{Value: "rot"}, {Value: "orange"}, {Value: "gelb"},
		{Value: "grün"}, {Value: "blau"}, {Value: "lila", Synonyms: []string{"violett"}},
		{Value: "rosa"}, {Value: "braun"}, {Value: "schwarz"},
		{Value: "weiß"}, {Value: "grau"},
	},
	language.French: {
		{Value: "rouge"}, {Value: "orange"}, {Value: "jaune"},
		{Value: "vert"}, {Value: "bleu"}, {Value: "violet"},
		{Value: "rose"}, {Value: "marron", Synonyms: []string{"brun"}},
		{Value: "noir"}, {Value: "blanc"}, {Value: "gris"},
	},
}

func colorLanguages() []language.Code {
	result := make([]language.Code, 0, len(colorEntries))
	for code := range colorEntries {
		result = append(result, code)
	}
	return result
}
