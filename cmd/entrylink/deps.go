package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ersonp/entrylink/internal/application/handlers"
	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/ports"
	"github.com/ersonp/entrylink/internal/domain/services"
	"github.com/ersonp/entrylink/internal/infrastructure/config"
	"github.com/ersonp/entrylink/internal/infrastructure/filestore"
	"github.com/ersonp/entrylink/internal/infrastructure/parsers"
	"github.com/ersonp/entrylink/internal/infrastructure/relationaldb/sqldb"
	"github.com/ersonp/entrylink/internal/infrastructure/schema"
)

// Deps holds high-level dependencies for commands.
// Only the handler is exposed - services and stores are internal.
type Deps struct {
	Config        *config.Config
	Schema        *entities.RelationSchema
	ExportHandler *handlers.ExportHandler
}

// withDeps loads config and builds dependencies, then calls the provided function.
// apply, when set, adjusts the loaded config before anything is built.
// It handles cleanup automatically.
func withDeps(apply func(*config.Config), fn func(*Deps) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apply != nil {
		apply(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	relations, err := schema.LoadMapping(cfg.Mapping)
	if err != nil {
		return fmt.Errorf("loading mapping: %w", err)
	}

	structure, err := schema.LoadStructure(cfg.Structure)
	if err != nil {
		return fmt.Errorf("loading structure: %w", err)
	}

	source := &lazySource{cfg: cfg.Source}
	defer source.Close()

	indexes, err := filestore.NewIndexStore(cfg.HelpersDir, cfg.Link.IndexCacheSize)
	if err != nil {
		return fmt.Errorf("creating index store: %w", err)
	}
	entries := filestore.NewEntryStore(cfg.EntriesDir)

	logger := newLogger()

	planner := services.NewPlanner(relations, services.NewFieldResolver(relations, structure))
	indexer := services.NewIndexService(relations, source, indexes, logger)
	linker := services.NewLinkService(planner, entries, indexes, services.LinkOptions{
		ManyMode:         services.ManyMode(cfg.Link.ManyMode),
		OnMissingRelated: services.MissingPolicy(cfg.Link.OnMissingRelated),
		Workers:          cfg.Link.Workers,
	}, logger)

	deps := &Deps{
		Config:        cfg,
		Schema:        relations,
		ExportHandler: handlers.NewExportHandler(relations, planner, indexer, linker, logger),
	}

	return fn(deps)
}

// loadConfig reads --config when given, else .entrylink/config.yaml in the
// current directory.
func loadConfig() (*config.Config, error) {
	if globalConfig != "" {
		abs, err := filepath.Abs(globalConfig)
		if err != nil {
			return nil, fmt.Errorf("resolving config path: %w", err)
		}
		cfg, err := config.LoadFile(abs, filepath.Dir(abs))
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openSource picks the source reader for the configured driver.
func openSource(cfg config.SourceConfig) (ports.SourceReader, error) {
	switch {
	case cfg.Driver == config.DriverCSV || cfg.Driver == config.DriverJSON:
		return parsers.NewDumpReader(cfg.DSN, cfg.Driver)
	case cfg.IsSQL():
		return sqldb.NewReader(cfg)
	default:
		return nil, fmt.Errorf("unsupported source driver %q", cfg.Driver)
	}
}

// lazySource opens the configured source on first read, so commands that
// never scan tables (check, models) leave the source alone.
type lazySource struct {
	cfg config.SourceConfig

	once   sync.Once
	reader ports.SourceReader
	err    error
}

func (s *lazySource) open() (ports.SourceReader, error) {
	s.once.Do(func() {
		reader, err := openSource(s.cfg)
		if err != nil {
			s.err = fmt.Errorf("opening source: %w", err)
			return
		}
		s.reader = reader
	})
	return s.reader, s.err
}

func (s *lazySource) StreamRows(ctx context.Context, table string, fn func(entities.Row) error) error {
	reader, err := s.open()
	if err != nil {
		return err
	}
	return reader.StreamRows(ctx, table, fn)
}

// Close closes the reader if it was opened.
func (s *lazySource) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}

func newLogger() *log.Logger {
	if globalQuiet {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, logPrefix, logFlags)
}
