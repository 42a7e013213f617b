package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topovis/pkg/errors"
)

// =============================================================================
// Document - Wire Format
// =============================================================================

// Document is a raw graph description as served by /graph_data.
type Document struct {
	Nodes  []NodeSpec  `json:"nodes" yaml:"nodes" bson:"nodes" validate:"dive"`
	Edges  []EdgeSpec  `json:"edges" yaml:"edges" bson:"edges" validate:"dive"`
	Groups []GroupSpec `json:"groups,omitempty" yaml:"groups,omitempty" bson:"groups,omitempty" validate:"dive"`
}

// NodeSpec describes one node. Zero width or height means the default size.
type NodeSpec struct {
	ID     string  `json:"id" yaml:"id" bson:"id" validate:"required"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty" bson:"width,omitempty" validate:"gte=0"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty" bson:"height,omitempty" validate:"gte=0"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// EdgeSpec describes one directed edge.
type EdgeSpec struct {
	Source string `json:"source" yaml:"source" bson:"source" validate:"required"`
	Target string `json:"target" yaml:"target" bson:"target" validate:"required"`
	UID    string `json:"uid,omitempty" yaml:"uid,omitempty" bson:"uid,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// GroupSpec describes one cluster and its member nodes.
type GroupSpec struct {
	ID    string   `json:"id" yaml:"id" bson:"id" validate:"required"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Nodes []string `json:"nodes" yaml:"nodes" bson:"nodes"`
}

// IsEmpty reports whether the group carries neither an id nor members.
// Some producers emit `groups: [{}]` for a flat graph.
func (g GroupSpec) IsEmpty() bool {
	return g.ID == "" && g.Label == "" && len(g.Nodes) == 0
}

// =============================================================================
// Decoding
// =============================================================================

// Format identifies the encoding of a graph description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension. Anything other
// than .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a Document from r in the given format.
func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format)
	}
	return doc, nil
}

// Unmarshal decodes a Document from bytes.
func Unmarshal(data []byte, format Format) (Document, error) {
	return Decode(bytes.NewReader(data), format)
}

// ReadFile reads a Document from a JSON or YAML file.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}

// Marshal encodes a Document as indented JSON.
func (d Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
