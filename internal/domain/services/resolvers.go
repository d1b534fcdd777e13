package services

import (
	"context"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/naming"
)

// applyBelongsTo links the entry named by the record's own foreign id field.
func (s *LinkService) applyBelongsTo(rel *RelationPlan, record entities.Record) bool {
	foreign, ok := entities.KeyString(record[rel.Spec.ForeignID])
	if !ok {
		return false
	}
	ref := entities.ReferenceObject{
		Type: rel.LinkType,
		ID:   entryName(rel.Collection, foreign),
	}
	record[rel.Field] = ref.AsValue()
	return true
}

// applyHasOne links the first indexed match.
func (s *LinkService) applyHasOne(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	id, ok := record.ID()
	if !ok {
		return false, nil
	}
	idx, err := s.loadIndex(ctx, rel.Index)
	if err != nil {
		return false, err
	}
	refs := BuildReferenceObjects(idx, id, rel.Collection, rel.LinkType)
	if len(refs) == 0 {
		return false, nil
	}
	record[rel.Field] = refs[0].AsValue()
	return true, nil
}

// applyMany links every indexed match, appending to or replacing the
// existing array depending on ManyMode.
func (s *LinkService) applyMany(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	id, ok := record.ID()
	if !ok {
		return false, nil
	}
	idx, err := s.loadIndex(ctx, rel.Index)
	if err != nil {
		return false, err
	}
	refs := BuildReferenceObjects(idx, id, rel.Collection, rel.LinkType)
	if len(refs) == 0 {
		return false, nil
	}

	values := make([]any, 0, len(refs))
	if existing, isArray := record[rel.Field].([]any); isArray && s.opts.ManyMode == ManyAppend {
		values = append(values, existing...)
	}
	for _, ref := range refs {
		values = append(values, ref.AsValue())
	}
	record[rel.Field] = values
	return true, nil
}

// applyAggregateMany copies the field of every indexed related entry.
func (s *LinkService) applyAggregateMany(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	id, ok := record.ID()
	if !ok {
		return false, nil
	}
	idx, err := s.loadIndex(ctx, rel.Index)
	if err != nil {
		return false, err
	}
	values, err := s.BuildAggregateValues(ctx, rel, idx, id)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	record[rel.Field] = values
	return true, nil
}

// applyAggregateHasOne copies the field of the first indexed related entry.
func (s *LinkService) applyAggregateHasOne(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	id, ok := record.ID()
	if !ok {
		return false, nil
	}
	idx, err := s.loadIndex(ctx, rel.Index)
	if err != nil {
		return false, err
	}
	first, ok := idx.First(id)
	if !ok {
		return false, nil
	}
	return s.copyRelatedField(ctx, rel, record, first)
}

// applyAggregateBelongs copies the field of the entry named by the record's
// primary_id field.
func (s *LinkService) applyAggregateBelongs(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	if !record.Present(rel.Spec.PrimaryID) {
		return false, nil
	}
	return s.copyRelatedField(ctx, rel, record, record[rel.Spec.PrimaryID])
}

func (s *LinkService) copyRelatedField(ctx context.Context, rel *RelationPlan, record entities.Record, foreignValue any) (bool, error) {
	foreign, ok := entities.KeyString(foreignValue)
	if !ok {
		return false, nil
	}
	related, err := s.loadRelated(ctx, rel, foreign)
	if err != nil || related == nil {
		return false, err
	}
	value, ok := rel.Extract(related)
	if !ok {
		return false, nil
	}
	record[rel.Field] = value
	return true, nil
}

func entryName(collection, foreign string) string {
	return naming.EntryName(collection, foreign)
}
