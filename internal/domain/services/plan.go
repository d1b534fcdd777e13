package services

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/naming"
)

// ModelPlan is a model's relation list resolved against the mapping and the
// target schema. Building it performs every configuration check, so a plan
// that exists can be applied without further validation.
type ModelPlan struct {
	Model      *entities.ModelMapping
	Collection string
	Relations  []RelationPlan
}

// RelationPlan is one relation with everything needed to apply it.
type RelationPlan struct {
	Spec entities.RelationSpec
	// Field is the destination field written on the entry.
	Field string
	// LinkType is the reference object type for non-aggregate kinds.
	LinkType string
	// Collection is the related entries directory and id prefix.
	Collection string
	// Index is the helper index consulted, for indexed kinds.
	Index entities.IndexKey

	fieldPath jp.Expr
}

// Planner compiles model relation lists into plans.
type Planner struct {
	schema   *entities.RelationSchema
	resolver *FieldResolver
}

// NewPlanner creates a new Planner.
func NewPlanner(schema *entities.RelationSchema, resolver *FieldResolver) *Planner {
	return &Planner{
		schema:   schema,
		resolver: resolver,
	}
}

// Plan resolves every relation declared on model, in declaration order.
func (p *Planner) Plan(model string) (*ModelPlan, error) {
	mm, ok := p.schema.Model(model)
	if !ok {
		return nil, &entities.ConfigError{Model: model, Key: model, Message: fmt.Sprintf("model %s is not in mapping file", model)}
	}
	if mm.ContentType == "" {
		return nil, &entities.ConfigError{Model: model, Key: "content_type", Message: fmt.Sprintf("missing content type for %s in mapping file", model)}
	}

	plan := &ModelPlan{
		Model:      mm,
		Collection: naming.Slug(mm.ContentType),
		Relations:  make([]RelationPlan, 0, len(mm.Links)),
	}

	for _, spec := range mm.Links {
		rp, err := p.planRelation(model, spec)
		if err != nil {
			return nil, err
		}
		plan.Relations = append(plan.Relations, rp)
	}

	return plan, nil
}

func (p *Planner) planRelation(model string, spec entities.RelationSpec) (RelationPlan, error) {
	rp := RelationPlan{Spec: spec}

	if spec.Kind.NeedsIndex() {
		if spec.PrimaryID == "" {
			return rp, missingKey(model, spec, "primary_id")
		}
		if spec.Kind.UsesThrough() && spec.Through == "" {
			return rp, missingKey(model, spec, "through")
		}
		rp.Index = entities.IndexKey{PrimaryID: spec.PrimaryID, RelatedModel: spec.IndexedModel()}
	}

	switch spec.Kind {
	case entities.RelationBelongsTo:
		if spec.ForeignID == "" {
			return rp, missingKey(model, spec, "foreign_id")
		}
		attrs, err := p.resolver.Resolve(model, spec)
		if err != nil {
			return rp, err
		}
		if attrs.ID == "" {
			return rp, missingKey(model, spec, "id")
		}
		rp.Field = attrs.ID
		switch attrs.Type {
		case entities.FieldTypeAsset:
			rp.LinkType = entities.LinkTypeFile
		case entities.FieldTypeEntry:
			rp.LinkType = entities.LinkTypeEntry
		default:
			return rp, &entities.ConfigError{
				Model:   model,
				Key:     "type",
				Message: fmt.Sprintf("link field %q for %s must be of type Entry or Asset, got %q", attrs.ID, spec.RelationTo, attrs.Type),
			}
		}

	case entities.RelationHasOne, entities.RelationMany, entities.RelationManyThrough:
		field, err := p.resolver.FieldID(model, spec)
		if err != nil {
			return rp, err
		}
		rp.Field = field
		rp.LinkType = p.targetLinkType(spec.RelationTo)

	case entities.RelationAggregateMany, entities.RelationAggregateThrough:
		if err := rp.compileField(model); err != nil {
			return rp, err
		}
		field, err := p.resolver.FieldID(model, spec)
		if err != nil {
			return rp, err
		}
		rp.Field = field
		if spec.SaveAs != "" {
			rp.Field = spec.SaveAs
		}

	case entities.RelationAggregateHasOne, entities.RelationAggregateBelongs:
		if spec.PrimaryID == "" {
			return rp, missingKey(model, spec, "primary_id")
		}
		if err := rp.compileField(model); err != nil {
			return rp, err
		}
		rp.Field = spec.AggregateDestination()

	default:
		return rp, &entities.ConfigError{Model: model, Key: "relation_type", Message: fmt.Sprintf("unsupported relation type %q", spec.Kind)}
	}

	// Kinds validated against the target schema have already checked
	// relation_to; aggregates reach this point unchecked.
	if spec.RelationTo == "" {
		return rp, missingKey(model, spec, "relation_to")
	}
	relatedCT, ok := p.schema.ContentType(spec.RelationTo)
	if !ok {
		return rp, &entities.ConfigError{
			Model:   model,
			Key:     "relation_to",
			Message: fmt.Sprintf("missing associated model content type name for %q (%s) in mapping file", spec.RelationTo, spec.Kind),
		}
	}
	rp.Collection = naming.Slug(relatedCT)

	return rp, nil
}

// targetLinkType maps the related model's export type to a link type.
func (p *Planner) targetLinkType(relatedModel string) string {
	if mm, ok := p.schema.Model(relatedModel); ok && mm.Type == entities.EntryTypeAsset {
		return entities.LinkTypeFile
	}
	return entities.LinkTypeEntry
}

// compileField validates the aggregate source field. Fields starting with
// "$" are JSONPath expressions into the related record.
func (rp *RelationPlan) compileField(model string) error {
	if rp.Spec.Field == "" {
		return missingKey(model, rp.Spec, "field")
	}
	if !strings.HasPrefix(rp.Spec.Field, "$") {
		return nil
	}
	x, err := jp.ParseString(rp.Spec.Field)
	if err != nil {
		return &entities.ConfigError{
			Model:   model,
			Key:     "field",
			Message: fmt.Sprintf("invalid jsonpath %q in %s: %v", rp.Spec.Field, rp.Spec, err),
		}
	}
	rp.fieldPath = x
	// A path cannot double as the destination field name.
	if rp.Spec.SaveAs == "" && (rp.Spec.Kind == entities.RelationAggregateHasOne || rp.Spec.Kind == entities.RelationAggregateBelongs) {
		return missingKey(model, rp.Spec, "save_as")
	}
	return nil
}

// Extract returns the aggregate field value of a related record. ok is
// false when the record has no such field or the path matches nothing.
func (rp *RelationPlan) Extract(related entities.Record) (value any, ok bool) {
	if rp.fieldPath == nil {
		value, ok = related[rp.Spec.Field]
		return value, ok
	}
	results := rp.fieldPath.Get(map[string]any(related))
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

func missingKey(model string, spec entities.RelationSpec, key string) error {
	return &entities.ConfigError{
		Model:   model,
		Key:     key,
		Message: fmt.Sprintf("missing %s in %s relationship in mapping file", key, spec.Kind),
	}
}
