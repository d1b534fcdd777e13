package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/ports"
)

// DefaultProgressEvery is how often Materialize logs progress, in records.
const DefaultProgressEvery = 1000

// ManyMode controls how many and many_through treat an existing array.
type ManyMode string

const (
	// ManyAppend concatenates new references onto an existing array.
	// Re-running a link pass duplicates references.
	ManyAppend ManyMode = "append"
	// ManyReplace overwrites the destination field.
	ManyReplace ManyMode = "replace"
)

// MissingPolicy controls what happens when a related entry file is absent.
type MissingPolicy string

const (
	// MissingSkip treats a missing related entry as no relation.
	MissingSkip MissingPolicy = "skip"
	// MissingFail aborts the run with entities.ErrEntryNotFound.
	MissingFail MissingPolicy = "fail"
)

// LinkOptions controls link pass behavior.
type LinkOptions struct {
	ManyMode         ManyMode
	OnMissingRelated MissingPolicy
	Workers          int // Records processed in parallel (1 = sequential)
	ProgressEvery    int // Log every N records (0 = DefaultProgressEvery)
}

// LinkService materializes declared relations into entry records.
type LinkService struct {
	planner *Planner
	entries ports.EntryStore
	indexes ports.IndexStore
	opts    LinkOptions
	logger  *log.Logger
}

// NewLinkService creates a new LinkService. A nil logger discards output.
func NewLinkService(
	planner *Planner,
	entries ports.EntryStore,
	indexes ports.IndexStore,
	opts LinkOptions,
	logger *log.Logger,
) *LinkService {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.ManyMode == "" {
		opts.ManyMode = ManyAppend
	}
	if opts.OnMissingRelated == "" {
		opts.OnMissingRelated = MissingSkip
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &LinkService{
		planner: planner,
		entries: entries,
		indexes: indexes,
		opts:    opts,
		logger:  logger,
	}
}

// Materialize applies every relation of model to each of its entries and
// returns the number of entries processed. The plan is resolved and every
// helper index it needs is loaded before the first entry is touched.
func (s *LinkService) Materialize(ctx context.Context, model string) (int, error) {
	plan, err := s.planner.Plan(model)
	if err != nil {
		return 0, err
	}
	if len(plan.Relations) == 0 {
		return 0, nil
	}

	for _, rel := range plan.Relations {
		if !rel.Spec.Kind.NeedsIndex() {
			continue
		}
		if _, err := s.loadIndex(ctx, rel.Index); err != nil {
			return 0, err
		}
	}

	names, err := s.entries.ListEntries(ctx, plan.Collection)
	if err != nil {
		return 0, fmt.Errorf("listing %s entries: %w", plan.Collection, err)
	}

	if s.opts.Workers == 1 {
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return i, err
			}
			s.logProgress(plan, i)
			if err := s.ApplyEntry(ctx, plan, name); err != nil {
				return i, err
			}
		}
		return len(names), nil
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		s.logProgress(plan, i)
		g.Go(func() error {
			if err := s.ApplyEntry(gctx, plan, name); err != nil {
				return err
			}
			done.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(done.Load()), err
	}
	if err := ctx.Err(); err != nil {
		return int(done.Load()), err
	}
	return len(names), nil
}

func (s *LinkService) logProgress(plan *ModelPlan, record int) {
	if record%s.opts.ProgressEvery != 0 {
		return
	}
	for _, rel := range plan.Relations {
		s.logger.Printf("mapping %s - relation: %s, record: %d", plan.Model.Name, rel.Spec, record)
	}
}

// ApplyEntry applies every relation of plan to one entry in declaration
// order and rewrites the entry once if any relation produced a value.
func (s *LinkService) ApplyEntry(ctx context.Context, plan *ModelPlan, name string) error {
	record, err := s.entries.ReadEntry(ctx, plan.Collection, name)
	if err != nil {
		return fmt.Errorf("reading entry %s/%s: %w", plan.Collection, name, err)
	}

	changed := false
	for i := range plan.Relations {
		rel := &plan.Relations[i]
		ok, err := s.apply(ctx, rel, record)
		if err != nil {
			return fmt.Errorf("applying %s to %s/%s: %w", rel.Spec, plan.Collection, name, err)
		}
		changed = changed || ok
	}

	if !changed {
		return nil
	}
	if err := s.entries.WriteEntry(ctx, plan.Collection, name, record); err != nil {
		return fmt.Errorf("writing entry %s/%s: %w", plan.Collection, name, err)
	}
	return nil
}

// apply dispatches one relation and reports whether record changed.
func (s *LinkService) apply(ctx context.Context, rel *RelationPlan, record entities.Record) (bool, error) {
	switch rel.Spec.Kind {
	case entities.RelationBelongsTo:
		return s.applyBelongsTo(rel, record), nil
	case entities.RelationHasOne:
		return s.applyHasOne(ctx, rel, record)
	case entities.RelationMany, entities.RelationManyThrough:
		return s.applyMany(ctx, rel, record)
	case entities.RelationAggregateMany, entities.RelationAggregateThrough:
		return s.applyAggregateMany(ctx, rel, record)
	case entities.RelationAggregateHasOne:
		return s.applyAggregateHasOne(ctx, rel, record)
	case entities.RelationAggregateBelongs:
		return s.applyAggregateBelongs(ctx, rel, record)
	default:
		return false, fmt.Errorf("unsupported relation type %q", rel.Spec.Kind)
	}
}

func (s *LinkService) loadIndex(ctx context.Context, key entities.IndexKey) (entities.ForeignKeyIndex, error) {
	idx, err := s.indexes.LoadIndex(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading index %s for %s: %w", key.PrimaryID, key.RelatedModel, err)
	}
	return idx, nil
}

// loadRelated reads the related entry for foreign. A nil record with a nil
// error means the entry is missing and the policy says to skip it.
func (s *LinkService) loadRelated(ctx context.Context, rel *RelationPlan, foreign string) (entities.Record, error) {
	related, err := s.entries.ReadEntry(ctx, rel.Collection, entryName(rel.Collection, foreign))
	if errors.Is(err, entities.ErrEntryNotFound) && s.opts.OnMissingRelated == MissingSkip {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading related entry %s/%s: %w", rel.Collection, entryName(rel.Collection, foreign), err)
	}
	return related, nil
}
