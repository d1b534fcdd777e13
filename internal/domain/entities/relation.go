// Package entities contains core domain data structures.
package entities

import "fmt"

// RelationKind identifies one of the closed set of join semantics.
type RelationKind string

const (
	RelationBelongsTo        RelationKind = "belongs_to"
	RelationHasOne           RelationKind = "has_one"
	RelationMany             RelationKind = "many"
	RelationManyThrough      RelationKind = "many_through"
	RelationAggregateMany    RelationKind = "aggregate_many"
	RelationAggregateThrough RelationKind = "aggregate_through"
	RelationAggregateHasOne  RelationKind = "aggregate_has_one"
	RelationAggregateBelongs RelationKind = "aggregate_belongs"
)

// RelationKinds lists every supported kind in documentation order.
var RelationKinds = []RelationKind{
	RelationBelongsTo,
	RelationHasOne,
	RelationMany,
	RelationManyThrough,
	RelationAggregateMany,
	RelationAggregateThrough,
	RelationAggregateHasOne,
	RelationAggregateBelongs,
}

// ParseRelationKind validates and converts a string to RelationKind.
func ParseRelationKind(s string) (RelationKind, error) {
	switch RelationKind(s) {
	case RelationBelongsTo, RelationHasOne, RelationMany, RelationManyThrough,
		RelationAggregateMany, RelationAggregateThrough, RelationAggregateHasOne, RelationAggregateBelongs:
		return RelationKind(s), nil
	default:
		return "", fmt.Errorf("invalid relation type: %q (valid: %v)", s, RelationKinds)
	}
}

// NeedsIndex reports whether the kind is resolved through a helper index.
func (k RelationKind) NeedsIndex() bool {
	switch k {
	case RelationHasOne, RelationMany, RelationManyThrough,
		RelationAggregateMany, RelationAggregateThrough, RelationAggregateHasOne:
		return true
	default:
		return false
	}
}

// UsesThrough reports whether the kind indexes an intermediate join model.
func (k RelationKind) UsesThrough() bool {
	return k == RelationManyThrough || k == RelationAggregateThrough
}

// RelationSpec is one declared relation of a model.
type RelationSpec struct {
	Kind       RelationKind `json:"-" yaml:"-"`
	PrimaryID  string       `json:"primary_id,omitempty" yaml:"primary_id,omitempty"`
	ForeignID  string       `json:"foreign_id,omitempty" yaml:"foreign_id,omitempty"`
	RelationTo string       `json:"relation_to,omitempty" yaml:"relation_to,omitempty"`
	Through    string       `json:"through,omitempty" yaml:"through,omitempty"`
	MapsTo     string       `json:"maps_to,omitempty" yaml:"maps_to,omitempty"`
	SaveAs     string       `json:"save_as,omitempty" yaml:"save_as,omitempty"`
	Field      string       `json:"field,omitempty" yaml:"field,omitempty"`
}

// String renders the relation for log lines.
func (s RelationSpec) String() string {
	target := s.RelationTo
	if s.Through != "" {
		target = s.RelationTo + " through " + s.Through
	}
	return fmt.Sprintf("%s %s", s.Kind, target)
}

// IndexedModel returns the model whose table backs this relation's index:
// the through model for *_through kinds, the related model otherwise.
func (s RelationSpec) IndexedModel() string {
	if s.Kind.UsesThrough() {
		return s.Through
	}
	return s.RelationTo
}

// IndexedForeignID returns the column collected into the index.
// Direct kinds fall back to "id".
func (s RelationSpec) IndexedForeignID() string {
	if s.ForeignID == "" && !s.Kind.UsesThrough() {
		return "id"
	}
	return s.ForeignID
}

// AggregateDestination returns save_as, falling back to field.
func (s RelationSpec) AggregateDestination() string {
	if s.SaveAs != "" {
		return s.SaveAs
	}
	return s.Field
}

// EntryType is the kind of target object a model is exported as.
type EntryType string

const (
	EntryTypeEntry EntryType = "entry"
	EntryTypeAsset EntryType = "asset"
)

// ModelMapping describes how a source model maps to a target content type.
type ModelMapping struct {
	Name        string         `json:"-" yaml:"-"`
	ContentType string         `json:"content_type" yaml:"content_type"`
	Type        EntryType      `json:"type,omitempty" yaml:"type,omitempty"`
	Table       string         `json:"table,omitempty" yaml:"table,omitempty"`
	Links       []RelationSpec `json:"-" yaml:"-"`
}

// RelationSchema is the declarative mapping from model name to its
// content type and relations. Models keeps declaration order.
type RelationSchema struct {
	Models []*ModelMapping
	byName map[string]*ModelMapping
}

// NewRelationSchema builds a schema from models in declaration order.
func NewRelationSchema(models ...*ModelMapping) *RelationSchema {
	s := &RelationSchema{byName: make(map[string]*ModelMapping, len(models))}
	for _, m := range models {
		s.Add(m)
	}
	return s
}

// Add appends a model, replacing any earlier model with the same name.
func (s *RelationSchema) Add(m *ModelMapping) {
	if s.byName == nil {
		s.byName = make(map[string]*ModelMapping)
	}
	if _, ok := s.byName[m.Name]; ok {
		for i := range s.Models {
			if s.Models[i].Name == m.Name {
				s.Models[i] = m
			}
		}
	} else {
		s.Models = append(s.Models, m)
	}
	s.byName[m.Name] = m
}

// Model returns the mapping for a model name.
func (s *RelationSchema) Model(name string) (*ModelMapping, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// ContentType returns the content type name declared for a model.
func (s *RelationSchema) ContentType(name string) (string, bool) {
	m, ok := s.byName[name]
	if !ok || m.ContentType == "" {
		return "", false
	}
	return m.ContentType, true
}

// LinkedModels returns the models that declare at least one relation.
func (s *RelationSchema) LinkedModels() []*ModelMapping {
	var out []*ModelMapping
	for _, m := range s.Models {
		if len(m.Links) > 0 {
			out = append(out, m)
		}
	}
	return out
}
