package services

import (
	"fmt"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// FieldResolver resolves relation destinations against the target schema.
type FieldResolver struct {
	schema    *entities.RelationSchema
	structure entities.TargetSchema
}

// NewFieldResolver creates a new FieldResolver.
func NewFieldResolver(schema *entities.RelationSchema, structure entities.TargetSchema) *FieldResolver {
	return &FieldResolver{
		schema:    schema,
		structure: structure,
	}
}

// Resolve returns the target schema attributes of the field that holds the
// relation spec on model. Checks run in a fixed order and the first failure
// is returned as a *entities.ConfigError:
//
//  1. the model's content type exists in the target schema
//  2. that content type has a fields section
//  3. relation_to resolves to a content type through the mapping
//  4. the association key (maps_to, or relation_to's content type) is a field
func (r *FieldResolver) Resolve(model string, spec entities.RelationSpec) (entities.FieldAttrs, error) {
	contentType, ok := r.schema.ContentType(model)
	if !ok {
		return entities.FieldAttrs{}, &entities.ConfigError{
			Model:   model,
			Key:     "content_type",
			Message: fmt.Sprintf("missing content type for %s in mapping file", model),
		}
	}

	ct, ok := r.structure[contentType]
	if !ok || ct == nil {
		return entities.FieldAttrs{}, &entities.ConfigError{
			Model:   model,
			Key:     contentType,
			Message: fmt.Sprintf("missing %s in contentful structure file", model),
		}
	}

	if ct.Fields == nil {
		return entities.FieldAttrs{}, &entities.ConfigError{
			Model:   model,
			Key:     "fields",
			Message: fmt.Sprintf("missing fields in %s in contentful structure file", model),
		}
	}

	associated, ok := r.schema.ContentType(spec.RelationTo)
	if !ok {
		return entities.FieldAttrs{}, &entities.ConfigError{
			Model:   model,
			Key:     "relation_to",
			Message: fmt.Sprintf("missing associated model content type name for %q (%s) in mapping file", spec.RelationTo, spec.Kind),
		}
	}

	key := associated
	if spec.MapsTo != "" {
		key = spec.MapsTo
	}

	attrs, ok := ct.Fields[key]
	if !ok {
		return entities.FieldAttrs{}, &entities.ConfigError{
			Model:   model,
			Key:     key,
			Message: fmt.Sprintf("missing link field %q for %s in %s in contentful structure file", key, spec.RelationTo, model),
		}
	}

	return attrs, nil
}

// FieldID resolves the destination field id of spec on model.
func (r *FieldResolver) FieldID(model string, spec entities.RelationSpec) (string, error) {
	attrs, err := r.Resolve(model, spec)
	if err != nil {
		return "", err
	}
	if attrs.ID == "" {
		return "", &entities.ConfigError{
			Model:   model,
			Key:     "id",
			Message: fmt.Sprintf("link field for %s in %s has no id in contentful structure file", spec.RelationTo, model),
		}
	}
	return attrs.ID, nil
}
