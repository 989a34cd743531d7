package language

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// entityFilePrefix marks custom entity resource files inside a language
// folder, e.g. "en/ENTITY_PizzaType.yaml".
const entityFilePrefix = "ENTITY_"

// intentFile is the YAML schema of an intent language file.
type intentFile struct {
	Examples           []string                          `yaml:"examples"`
	SlotFillingPrompts map[string][]string               `yaml:"slot_filling_prompts"`
	Responses          map[string][]map[string]yaml.Node `yaml:"responses"`
}

// LoadDir reads language resources from a directory tree laid out as
// <dir>/<language-code>/<intent-name>.yaml for intents and
// <dir>/<language-code>/ENTITY_<entity-name>.yaml for custom entities.
func LoadDir(dir string) (*Resources, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("language folder %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("language folder %s: not a directory", dir)
	}

	result := NewResources()
	langDirs, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading language folder %s: %w", dir, err)
	}
	for _, langDir := range langDirs {
		if !langDir.IsDir() {
			continue
		}
		code := Code(langDir.Name())
		files, err := os.ReadDir(filepath.Join(dir, langDir.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading language folder %s: %w", langDir.Name(), err)
		}
		for _, file := range files {
			name := file.Name()
			if file.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
				continue
			}
			path := filepath.Join(dir, langDir.Name(), name)
			base := strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
			if strings.HasPrefix(base, entityFilePrefix) {
				entries, err := loadEntityFile(path)
				if err != nil {
					return nil, err
				}
				result.SetEntityEntries(strings.TrimPrefix(base, entityFilePrefix), code, entries)
			} else {
				data, err := loadIntentFile(path)
				if err != nil {
					return nil, err
				}
				result.SetIntent(base, code, data)
			}
		}
	}
	return result, nil
}

func loadIntentFile(path string) (*IntentLanguage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var file intentFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := &IntentLanguage{
		Examples:           file.Examples,
		SlotFillingPrompts: file.SlotFillingPrompts,
	}
	if len(file.Responses) > 0 {
		result.Responses = make(map[ResponseGroup][]Response, len(file.Responses))
		for group, items := range file.Responses {
			for _, item := range items {
				for kind, node := range item {
					resp, err := decodeResponse(kind, node)
					if err != nil {
						return nil, fmt.Errorf("parsing %s: %w", path, err)
					}
					g := ResponseGroup(group)
					result.Responses[g] = append(result.Responses[g], resp)
				}
			}
		}
	}
	return result, nil
}

func decodeResponse(kind string, node yaml.Node) (Response, error) {
	switch kind {
	case "text":
		var choices []string
		if err := node.Decode(&choices); err != nil {
			return nil, fmt.Errorf("text response: %w", err)
		}
		return TextResponse{Choices: choices}, nil
	case "quick_replies":
		var replies []string
		if err := node.Decode(&replies); err != nil {
			return nil, fmt.Errorf("quick_replies response: %w", err)
		}
		return QuickRepliesResponse{Replies: replies}, nil
	case "image":
		var img struct {
			URL   string `yaml:"url"`
			Title string `yaml:"title"`
		}
		// Images may be given as a bare URL string.
		var url string
		if err := node.Decode(&url); err == nil {
			return ImageResponse{URL: url}, nil
		}
		if err := node.Decode(&img); err != nil {
			return nil, fmt.Errorf("image response: %w", err)
		}
		return ImageResponse{URL: img.URL, Title: img.Title}, nil
	case "card":
		var card struct {
			Title    string `yaml:"title"`
			Subtitle string `yaml:"subtitle"`
			Image    string `yaml:"image"`
			Link     string `yaml:"link"`
		}
		if err := node.Decode(&card); err != nil {
			return nil, fmt.Errorf("card response: %w", err)
		}
		return CardResponse(card), nil
	case "custom":
		var payload map[string]any
		if err := node.Decode(&payload); err != nil {
			return nil, fmt.Errorf("custom response: %w", err)
		}
		return CustomPayloadResponse{Payload: payload}, nil
	default:
		return nil, fmt.Errorf("unsupported response type %q", kind)
	}
}

func loadEntityFile(path string) ([]EntityEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc struct {
		Entries yaml.Node `yaml:"entries"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Entries.Kind == 0 {
		return nil, nil
	}
	if doc.Entries.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing %s: entries must be a mapping of value to synonyms", path)
	}

	// Mapping nodes store keys and values as alternating content entries.
	var entries []EntityEntry
	for i := 0; i+1 < len(doc.Entries.Content); i += 2 {
		keyNode, valueNode := doc.Entries.Content[i], doc.Entries.Content[i+1]
		var synonyms []string
		if err := valueNode.Decode(&synonyms); err != nil {
			return nil, fmt.Errorf("parsing %s: synonyms of %q must be a list: %w", path, keyNode.Value, err)
		}
		entries = append(entries, EntityEntry{Value: keyNode.Value, Synonyms: synonyms})
	}
	return entries, nil
}
