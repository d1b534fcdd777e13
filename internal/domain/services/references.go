package services

import (
	"context"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// BuildReferenceObjects returns one reference per value indexed under
// entityID, in index order. An entity absent from the index has no
// references.
func BuildReferenceObjects(idx entities.ForeignKeyIndex, entityID, collection, linkType string) []entities.ReferenceObject {
	matches, ok := idx.Lookup(entityID)
	if !ok {
		return nil
	}

	refs := make([]entities.ReferenceObject, 0, len(matches))
	for _, m := range matches {
		foreign, ok := entities.KeyString(m)
		if !ok {
			continue
		}
		refs = append(refs, entities.ReferenceObject{
			Type: linkType,
			ID:   entryName(collection, foreign),
		})
	}
	return refs
}

// BuildAggregateValues loads every related entry indexed under entityID and
// returns the aggregated field of each, in index order. Related entries
// without the field contribute nothing; missing related entries are skipped
// or fail according to OnMissingRelated.
func (s *LinkService) BuildAggregateValues(ctx context.Context, rel *RelationPlan, idx entities.ForeignKeyIndex, entityID string) ([]any, error) {
	matches, ok := idx.Lookup(entityID)
	if !ok {
		return nil, nil
	}

	values := make([]any, 0, len(matches))
	for _, m := range matches {
		foreign, ok := entities.KeyString(m)
		if !ok {
			continue
		}
		related, err := s.loadRelated(ctx, rel, foreign)
		if err != nil {
			return nil, err
		}
		if related == nil {
			continue
		}
		if value, ok := rel.Extract(related); ok {
			values = append(values, value)
		}
	}
	return values, nil
}
