package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/naming"
	"github.com/ersonp/entrylink/internal/domain/ports"
)

// IndexTarget describes one helper index to build.
type IndexTarget struct {
	Key       entities.IndexKey
	Table     string
	ForeignID string
	Model     string // Model declaring the relation
	Kind      entities.RelationKind
}

// IndexResult reports one built index.
type IndexResult struct {
	Target IndexTarget
	Keys   int
	Values int
}

// IndexService builds the helper indices consumed by indexed relations.
type IndexService struct {
	schema  *entities.RelationSchema
	source  ports.SourceReader
	indexes ports.IndexStore
	logger  *log.Logger
}

// NewIndexService creates a new IndexService. A nil logger discards output.
func NewIndexService(
	schema *entities.RelationSchema,
	source ports.SourceReader,
	indexes ports.IndexStore,
	logger *log.Logger,
) *IndexService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &IndexService{
		schema:  schema,
		source:  source,
		indexes: indexes,
		logger:  logger,
	}
}

// TableName returns the source table of a model: the mapping's table
// override if set, else the underscored model name.
func (s *IndexService) TableName(model string) string {
	if mm, ok := s.schema.Model(model); ok && mm.Table != "" {
		return mm.Table
	}
	return naming.Underscore(model)
}

// Target resolves the index a relation spec needs. Kinds that are not
// indexed return ok == false.
func (s *IndexService) Target(model string, spec entities.RelationSpec) (IndexTarget, bool, error) {
	if !spec.Kind.NeedsIndex() {
		return IndexTarget{}, false, nil
	}
	if spec.PrimaryID == "" {
		return IndexTarget{}, false, missingKey(model, spec, "primary_id")
	}

	related := spec.IndexedModel()
	if related == "" {
		key := "relation_to"
		if spec.Kind.UsesThrough() {
			key = "through"
		}
		return IndexTarget{}, false, missingKey(model, spec, key)
	}

	foreignID := spec.IndexedForeignID()
	if foreignID == "" {
		return IndexTarget{}, false, missingKey(model, spec, "foreign_id")
	}

	return IndexTarget{
		Key:       entities.IndexKey{PrimaryID: spec.PrimaryID, RelatedModel: related},
		Table:     s.TableName(related),
		ForeignID: foreignID,
		Model:     model,
		Kind:      spec.Kind,
	}, true, nil
}

// Targets collects the distinct indices needed by models, in declaration
// order. Two relations sharing an index file must collect the same column.
func (s *IndexService) Targets(models []*entities.ModelMapping) ([]IndexTarget, error) {
	var targets []IndexTarget
	seen := make(map[entities.IndexKey]IndexTarget)

	for _, mm := range models {
		for _, spec := range mm.Links {
			target, ok, err := s.Target(mm.Name, spec)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if prev, dup := seen[target.Key]; dup {
				if prev.ForeignID != target.ForeignID || prev.Table != target.Table {
					return nil, &entities.ConfigError{
						Model: mm.Name,
						Key:   "foreign_id",
						Message: fmt.Sprintf("index %s is declared by %s with foreign_id %q and by %s with foreign_id %q",
							naming.IndexFileName(target.Key.PrimaryID, target.Key.RelatedModel),
							prev.Model, prev.ForeignID, target.Model, target.ForeignID),
					}
				}
				continue
			}
			seen[target.Key] = target
			targets = append(targets, target)
		}
	}

	return targets, nil
}

// BuildModels builds every index needed by models. All targets are
// validated before the first table is scanned.
func (s *IndexService) BuildModels(ctx context.Context, models []*entities.ModelMapping) ([]IndexResult, error) {
	targets, err := s.Targets(models)
	if err != nil {
		return nil, err
	}

	results := make([]IndexResult, 0, len(targets))
	for _, target := range targets {
		res, err := s.Build(ctx, target)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Build scans the target table once and persists the index. Rows with a
// blank primary or foreign value contribute nothing.
func (s *IndexService) Build(ctx context.Context, target IndexTarget) (IndexResult, error) {
	idx := make(entities.ForeignKeyIndex)
	values := 0

	err := s.source.StreamRows(ctx, target.Table, func(row entities.Row) error {
		if idx.Add(row[target.Key.PrimaryID], row[target.ForeignID]) {
			values++
		}
		return nil
	})
	if err != nil {
		return IndexResult{}, fmt.Errorf("scanning table %s: %w", target.Table, err)
	}

	if err := s.indexes.SaveIndex(ctx, target.Key, idx); err != nil {
		return IndexResult{}, fmt.Errorf("saving index %s: %w",
			naming.IndexFileName(target.Key.PrimaryID, target.Key.RelatedModel), err)
	}

	s.logger.Printf("indexed %s -> %s (%d keys, %d values)", target.Table,
		naming.IndexFileName(target.Key.PrimaryID, target.Key.RelatedModel), len(idx), values)

	return IndexResult{Target: target, Keys: len(idx), Values: values}, nil
}
