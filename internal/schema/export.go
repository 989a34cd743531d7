package schema

import (
	"fmt"
	"sort"
)

// File is one document of an export: a path inside the service's
// distributable layout (e.g. "intents/hello.json") and its content.
type File struct {
	Path string
	Doc  any
}

// CapabilityGap records a feature the abstract model expresses but the
// target service cannot represent. Gaps are annotations, not errors: the
// export proceeds with the feature omitted, and callers decide whether the
// loss is acceptable.
type CapabilityGap struct {
	Intent    string
	Parameter string
	Feature   string
	Detail    string
}

func (g CapabilityGap) String() string {
	msg := g.Feature
	if g.Intent != "" {
		msg += fmt.Sprintf(" (intent=%s", g.Intent)
		if g.Parameter != "" {
			msg += fmt.Sprintf(", parameter=%s", g.Parameter)
		}
		msg += ")"
	}
	if g.Detail != "" {
		msg += ": " + g.Detail
	}
	return msg
}

// Export is the in-memory result of rendering an agent into one service's
// native schema. Serialization and archiving (e.g. into a ZIP) is the
// packaging collaborator's concern.
type Export struct {
	Service string
	files   []File
	gaps    []CapabilityGap
}

func NewExport(service string) *Export {
	return &Export{Service: service}
}

// AddFile appends a document to the export tree.
func (e *Export) AddFile(path string, doc any) {
	e.files = append(e.files, File{Path: path, Doc: doc})
}

// AddGap records a capability gap.
func (e *Export) AddGap(gap CapabilityGap) {
	e.gaps = append(e.gaps, gap)
}

// Files returns the export documents sorted by path.
func (e *Export) Files() []File {
	files := append([]File(nil), e.files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// File returns the document at the given path, or nil.
func (e *Export) File(path string) any {
	for _, f := range e.files {
		if f.Path == path {
			return f.Doc
		}
	}
	return nil
}

// Gaps returns the recorded capability gaps.
func (e *Export) Gaps() []CapabilityGap { return e.gaps }

// Encode marshals every document with the canonical encoder and returns a
// path-keyed map of the resulting bytes.
func (e *Export) Encode() (map[string][]byte, error) {
	result := make(map[string][]byte, len(e.files))
	for _, f := range e.files {
		data, err := MarshalCanonical(f.Doc)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.Path, err)
		}
		result[f.Path] = data
	}
	return result, nil
}
