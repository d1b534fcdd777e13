// Package handlers orchestrates export runs on top of the domain services.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/naming"
	"github.com/ersonp/entrylink/internal/domain/services"
)

// ExportHandler runs the index and link phases over a relation schema.
type ExportHandler struct {
	schema  *entities.RelationSchema
	planner *services.Planner
	indexer *services.IndexService
	linker  *services.LinkService
	logger  *log.Logger
}

// NewExportHandler creates a new export handler. A nil logger discards output.
func NewExportHandler(
	schema *entities.RelationSchema,
	planner *services.Planner,
	indexer *services.IndexService,
	linker *services.LinkService,
	logger *log.Logger,
) *ExportHandler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ExportHandler{
		schema:  schema,
		planner: planner,
		indexer: indexer,
		linker:  linker,
		logger:  logger,
	}
}

// ExportOptions selects the models a phase runs on. No models means every
// model that declares relations.
type ExportOptions struct {
	Models []string
}

// ModelResult reports the link pass of one model.
type ModelResult struct {
	Model   string
	Records int
}

// RunResult contains the result of an index, link or full run.
type RunResult struct {
	RunID    string
	Indices  []services.IndexResult
	Models   []ModelResult
	Duration time.Duration
}

// CheckResult summarizes a validated mapping.
type CheckResult struct {
	Models    int
	Relations int
	Indices   []services.IndexTarget
}

// ModelInfo describes one mapped model.
type ModelInfo struct {
	Name        string
	ContentType string
	Type        entities.EntryType
	Collection  string
	Table       string
	Relations   []string
}

// HandleIndex builds the helper indices of the selected models.
func (h *ExportHandler) HandleIndex(ctx context.Context, opts ExportOptions) (*RunResult, error) {
	models, err := h.selectModels(opts.Models)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := h.newResult()
	h.logger.Printf("run %s: building indices for %d models", result.RunID, len(models))

	result.Indices, err = h.indexer.BuildModels(ctx, models)
	if err != nil {
		return nil, fmt.Errorf("building indices: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// HandleLink materializes the relations of the selected models, in
// declaration order. Indices must already exist.
func (h *ExportHandler) HandleLink(ctx context.Context, opts ExportOptions) (*RunResult, error) {
	models, err := h.selectModels(opts.Models)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := h.newResult()
	h.logger.Printf("run %s: linking %d models", result.RunID, len(models))

	if err := h.link(ctx, models, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// HandleRun validates every selected model, builds all of their indices and
// only then links them.
func (h *ExportHandler) HandleRun(ctx context.Context, opts ExportOptions) (*RunResult, error) {
	models, err := h.selectModels(opts.Models)
	if err != nil {
		return nil, err
	}

	if _, err := h.check(models); err != nil {
		return nil, err
	}

	start := time.Now()
	result := h.newResult()
	h.logger.Printf("run %s: exporting relations of %d models", result.RunID, len(models))

	result.Indices, err = h.indexer.BuildModels(ctx, models)
	if err != nil {
		return nil, fmt.Errorf("building indices: %w", err)
	}

	if err := h.link(ctx, models, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// HandleCheck validates the whole mapping against the target structure
// without reading source tables or entries.
func (h *ExportHandler) HandleCheck(_ context.Context) (*CheckResult, error) {
	return h.check(h.schema.LinkedModels())
}

// HandleModels lists every mapped model in declaration order.
func (h *ExportHandler) HandleModels() []ModelInfo {
	infos := make([]ModelInfo, 0, len(h.schema.Models))
	for _, mm := range h.schema.Models {
		info := ModelInfo{
			Name:        mm.Name,
			ContentType: mm.ContentType,
			Type:        mm.Type,
			Collection:  naming.Slug(mm.ContentType),
			Table:       h.indexer.TableName(mm.Name),
		}
		if info.Type == "" {
			info.Type = entities.EntryTypeEntry
		}
		for _, spec := range mm.Links {
			info.Relations = append(info.Relations, spec.String())
		}
		infos = append(infos, info)
	}
	return infos
}

func (h *ExportHandler) check(models []*entities.ModelMapping) (*CheckResult, error) {
	result := &CheckResult{Models: len(models)}
	for _, mm := range models {
		plan, err := h.planner.Plan(mm.Name)
		if err != nil {
			return nil, err
		}
		result.Relations += len(plan.Relations)
	}

	targets, err := h.indexer.Targets(models)
	if err != nil {
		return nil, err
	}
	result.Indices = targets
	return result, nil
}

func (h *ExportHandler) link(ctx context.Context, models []*entities.ModelMapping, result *RunResult) error {
	for _, mm := range models {
		n, err := h.linker.Materialize(ctx, mm.Name)
		if err != nil {
			return fmt.Errorf("linking %s: %w", mm.Name, err)
		}
		h.logger.Printf("run %s: linked %s (%d records)", result.RunID, mm.Name, n)
		result.Models = append(result.Models, ModelResult{Model: mm.Name, Records: n})
	}
	return nil
}

// selectModels resolves requested model names, defaulting to every linked model.
func (h *ExportHandler) selectModels(names []string) ([]*entities.ModelMapping, error) {
	if len(names) == 0 {
		return h.schema.LinkedModels(), nil
	}

	models := make([]*entities.ModelMapping, 0, len(names))
	for _, name := range names {
		mm, ok := h.schema.Model(name)
		if !ok {
			return nil, &entities.ConfigError{Model: name, Key: name, Message: fmt.Sprintf("model %s is not in mapping file", name)}
		}
		models = append(models, mm)
	}
	return models, nil
}

func (h *ExportHandler) newResult() *RunResult {
	return &RunResult{RunID: uuid.New().String()}
}
