// Package schema loads the relation mapping and the target content structure.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// Format is the encoding of a schema file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported schema file extension: %s (use .json, .yaml or .yml)", path)
	}
}

// LoadMapping reads and parses a relation mapping file.
func LoadMapping(path string) (*entities.RelationSchema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file %s: %w", path, err)
	}
	return ParseMapping(data, format)
}

// ParseMapping parses mapping data. Models and the relation kinds under
// each model keep their declared order. An unknown relation kind is a
// configuration error.
func ParseMapping(data []byte, format Format) (*entities.RelationSchema, error) {
	var docs modelDocs
	if err := decode(data, format, &docs); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}

	schema := entities.NewRelationSchema()
	for _, nm := range docs {
		mm := &entities.ModelMapping{
			Name:        nm.Name,
			ContentType: nm.Doc.ContentType,
			Type:        nm.Doc.Type,
			Table:       nm.Doc.Table,
		}

		switch mm.Type {
		case "", entities.EntryTypeEntry, entities.EntryTypeAsset:
		default:
			return nil, &entities.ConfigError{
				Model:   nm.Name,
				Key:     "type",
				Message: fmt.Sprintf("invalid type %q in mapping file (valid: entry, asset)", mm.Type),
			}
		}

		for _, group := range nm.Doc.Links {
			kind, err := entities.ParseRelationKind(group.Kind)
			if err != nil {
				return nil, &entities.ConfigError{Model: nm.Name, Key: "relation_type", Message: err.Error()}
			}
			for _, spec := range group.Specs {
				spec.Kind = kind
				mm.Links = append(mm.Links, spec)
			}
		}

		schema.Add(mm)
	}

	return schema, nil
}

// LoadStructure reads and parses a target content structure file.
func LoadStructure(path string) (entities.TargetSchema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading structure file %s: %w", path, err)
	}
	return ParseStructure(data, format)
}

// ParseStructure parses target structure data.
func ParseStructure(data []byte, format Format) (entities.TargetSchema, error) {
	structure := make(entities.TargetSchema)
	if err := decode(data, format, &structure); err != nil {
		return nil, fmt.Errorf("parsing structure file: %w", err)
	}
	for name, ct := range structure {
		if ct == nil {
			structure[name] = &entities.ContentTypeSchema{}
		}
	}
	return structure, nil
}

func decode(data []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
