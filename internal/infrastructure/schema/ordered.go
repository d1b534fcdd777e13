package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// modelDoc is one model entry of a mapping file.
type modelDoc struct {
	ContentType string             `json:"content_type" yaml:"content_type"`
	Type        entities.EntryType `json:"type,omitempty" yaml:"type,omitempty"`
	Table       string             `json:"table,omitempty" yaml:"table,omitempty"`
	Links       linkGroups         `json:"links,omitempty" yaml:"links,omitempty"`
}

// linkGroup is the relation list declared under one kind key.
type linkGroup struct {
	Kind  string
	Specs []entities.RelationSpec
}

// linkGroups keeps kinds in the order they appear in the file.
type linkGroups []linkGroup

// modelDocs keeps models in the order they appear in the file.
type modelDocs []namedModel

type namedModel struct {
	Name string
	Doc  modelDoc
}

// UnmarshalJSON decodes a links object key by key.
func (g *linkGroups) UnmarshalJSON(data []byte) error {
	return eachJSONKey(data, func(key string, dec *json.Decoder) error {
		var specs []entities.RelationSpec
		if err := dec.Decode(&specs); err != nil {
			return fmt.Errorf("decoding %s relations: %w", key, err)
		}
		*g = append(*g, linkGroup{Kind: key, Specs: specs})
		return nil
	})
}

// UnmarshalYAML decodes a links mapping key by key.
func (g *linkGroups) UnmarshalYAML(node *yaml.Node) error {
	return eachYAMLKey(node, func(key string, value *yaml.Node) error {
		var specs []entities.RelationSpec
		if err := value.Decode(&specs); err != nil {
			return fmt.Errorf("decoding %s relations: %w", key, err)
		}
		*g = append(*g, linkGroup{Kind: key, Specs: specs})
		return nil
	})
}

// UnmarshalJSON decodes the top-level model object key by key.
func (m *modelDocs) UnmarshalJSON(data []byte) error {
	return eachJSONKey(data, func(key string, dec *json.Decoder) error {
		var doc modelDoc
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("decoding model %s: %w", key, err)
		}
		*m = append(*m, namedModel{Name: key, Doc: doc})
		return nil
	})
}

// UnmarshalYAML decodes the top-level model mapping key by key.
func (m *modelDocs) UnmarshalYAML(node *yaml.Node) error {
	return eachYAMLKey(node, func(key string, value *yaml.Node) error {
		var doc modelDoc
		if err := value.Decode(&doc); err != nil {
			return fmt.Errorf("decoding model %s: %w", key, err)
		}
		*m = append(*m, namedModel{Name: key, Doc: doc})
		return nil
	})
}

// eachJSONKey walks the members of a JSON object in document order,
// handing fn a decoder positioned at each value.
func eachJSONKey(data []byte, fn func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// eachYAMLKey walks the pairs of a YAML mapping node in document order.
func eachYAMLKey(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, value := node.Content[i], node.Content[i+1]
		if err := fn(keyNode.Value, value); err != nil {
			return err
		}
	}
	return nil
}
