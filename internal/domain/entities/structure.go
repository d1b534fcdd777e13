package entities

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Link types declared on target schema fields.
const (
	FieldTypeEntry = "Entry"
	FieldTypeAsset = "Asset"
	FieldTypeArray = "Array"
)

// FieldAttrs is the attribute bag of one target schema field.
// Plain fields may be declared as a bare type string ("Text").
type FieldAttrs struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	Link string `json:"link,omitempty" yaml:"link,omitempty"`
}

// UnmarshalJSON accepts either an object or a bare type string.
func (f *FieldAttrs) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FieldAttrs{Type: s}
		return nil
	}
	type plain FieldAttrs
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding field attributes: %w", err)
	}
	*f = FieldAttrs(p)
	return nil
}

// UnmarshalYAML accepts either a mapping or a bare type string.
func (f *FieldAttrs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = FieldAttrs{Type: node.Value}
		return nil
	}
	type plain FieldAttrs
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("decoding field attributes: %w", err)
	}
	*f = FieldAttrs(p)
	return nil
}

// ContentTypeSchema is one content type of the target schema.
// A nil Fields map means the section was absent.
type ContentTypeSchema struct {
	ID          string                `json:"id,omitempty" yaml:"id,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      map[string]FieldAttrs `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// TargetSchema maps content type name to its declared fields.
type TargetSchema map[string]*ContentTypeSchema
