// Package engine is the composition root of runlens. It owns the loaded
// data source and the validated configuration, and turns a selection into a
// filtered table, summary statistics and a plot descriptor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/leapstack-labs/runlens/internal/config"
	"github.com/leapstack-labs/runlens/internal/loader"
	"github.com/leapstack-labs/runlens/internal/source"
	"github.com/leapstack-labs/runlens/pkg/adapter"
	"github.com/leapstack-labs/runlens/pkg/core"
)

// Engine answers exploration requests against one data source.
type Engine struct {
	// Data source (lazy initialized)
	src     source.Source
	adp     adapter.Adapter
	opened  bool
	openErr error
	mu      sync.Mutex

	// Structured logger
	logger *slog.Logger

	filters []core.FilterSpec
	results core.ResultsConfig
	plot    core.PlotSpec
	data    config.DataConfig
	target  *core.TargetConfig
	client  *http.Client
}

// Config holds engine configuration.
type Config struct {
	// Filters are the filterable columns in display order.
	Filters []core.FilterSpec
	// Results are the summarized result columns.
	Results core.ResultsConfig
	// Plot describes the comparison figure. An empty YAxes disables plotting.
	Plot core.PlotSpec
	// Data locates the dataset to load into the target.
	Data config.DataConfig
	// Target selects the backing adapter. Nil uses in-memory SQLite.
	Target *core.TargetConfig
	// Source replaces the adapter-backed source when set.
	Source source.Source
	// HTTPClient fetches remote datasets (optional).
	HTTPClient *http.Client
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// FromConfig builds the engine configuration from a loaded runlens config.
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	return Config{
		Filters: cfg.Filters,
		Results: cfg.Results,
		Plot:    cfg.Plot,
		Data:    cfg.Data,
		Target:  cfg.Target,
		Logger:  logger,
	}
}

// New creates an engine. The data source is connected and validated on the
// first request, or explicitly through Open.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	target := cfg.Target
	if target == nil {
		target = &core.TargetConfig{Type: config.DefaultTargetType}
	}
	resolved := *target
	target = &resolved
	config.ApplyTargetDefaults(target)
	if cfg.Source == nil {
		if err := config.ValidateTarget(target); err != nil {
			return nil, err
		}
	}

	data := cfg.Data
	if data.Table == "" {
		data.Table = config.DefaultTable
	}

	logger.Debug("initializing engine",
		slog.Int("filters", len(cfg.Filters)),
		slog.Int("results", len(cfg.Results.Columns)),
		slog.String("target", target.String()))

	return &Engine{
		src:     cfg.Source,
		logger:  logger,
		filters: slices.Clone(cfg.Filters),
		results: cfg.Results,
		plot:    cfg.Plot,
		data:    data,
		target:  target,
		client:  cfg.HTTPClient,
	}, nil
}

// Open connects the data source and checks every configured column against
// its schema. Schema errors are returned here, before any query runs, and are
// returned again by every later call.
func (e *Engine) Open(ctx context.Context) error {
	return e.ensureOpen(ctx)
}

// ensureOpen lazily connects, loads and validates the data source.
func (e *Engine) ensureOpen(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened {
		return e.openErr
	}

	if e.src == nil {
		if err := e.connect(ctx); err != nil {
			return err
		}
	}

	e.opened = true
	e.openErr = e.validateSchema(ctx)
	return e.openErr
}

// connect creates the adapter, loads the dataset and wraps the table as a source.
func (e *Engine) connect(ctx context.Context) error {
	e.logger.Debug("connecting to database", "adapter_type", e.target.Type)

	adapterCfg := e.target.AdapterConfig()
	db, err := adapter.NewAdapter(adapterCfg, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}
	if err := db.Connect(ctx, adapterCfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	table := e.data.Table
	if e.data.Source != "" {
		table, err = loader.Load(ctx, db, loader.Options{
			Source:    e.data.Source,
			Table:     e.data.Table,
			Delimiter: e.data.Delimiter,
			Sheet:     e.data.Sheet,
			Client:    e.client,
			Logger:    e.logger,
		})
		if err != nil {
			_ = db.Close()
			return err
		}
	} else {
		e.logger.Debug("no dataset configured, reading existing table", "table", table)
	}

	e.adp = db
	e.src = source.NewSQL(db, table, e.logger)
	e.logger.Debug("database connected", "dialect", db.Dialect().Name, "table", table)
	return nil
}

// validateSchema checks filter, result and plot columns against the source.
func (e *Engine) validateSchema(ctx context.Context) error {
	schema, err := e.src.Schema(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, f := range e.filters {
		if !slices.Contains(schema, f.Column) {
			errs = append(errs, &core.ColumnError{Err: core.ErrUnknownColumn, Column: f.Column, Context: "filter"})
		}
	}

	missing := func(column, context string) {
		if !slices.Contains(schema, column) {
			errs = append(errs, &core.ColumnError{Err: core.ErrMissingColumn, Column: column, Context: context})
		}
	}
	for _, prefix := range e.prefixes() {
		for _, rc := range e.results.Columns {
			missing(core.EffectiveColumn(prefix, rc.Column), "result")
		}
		for _, y := range e.plot.YAxes {
			missing(core.EffectiveColumn(prefix, y.Name), "plot y axis")
		}
	}
	if e.HasPlot() {
		missing(e.plot.XAxis.Name, "plot x axis")
		missing(e.plot.ColorVariable.Name, "plot color variable")
	}

	if err := errors.Join(errs...); err != nil {
		e.logger.Debug("schema validation failed", "columns", len(schema), "errors", len(errs))
		return err
	}
	return nil
}

// prefixes returns the configured condition prefixes, or a single empty
// prefix when result columns are read unprefixed.
func (e *Engine) prefixes() []string {
	if e.results.UsesPrefixes() {
		return e.results.ConditionPrefixes
	}
	return []string{""}
}

// Filters returns the configured filters in display order.
func (e *Engine) Filters() []core.FilterSpec {
	return slices.Clone(e.filters)
}

// Results returns the results configuration.
func (e *Engine) Results() core.ResultsConfig {
	return e.results
}

// DefaultPrefix returns the first configured condition prefix, or "".
func (e *Engine) DefaultPrefix() string {
	if e.results.UsesPrefixes() {
		return e.results.ConditionPrefixes[0]
	}
	return ""
}

// HasPlot reports whether a plot is configured.
func (e *Engine) HasPlot() bool {
	return len(e.plot.YAxes) > 0
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.adp != nil {
		if err := e.adp.Close(); err != nil {
			errs = append(errs, err)
		}
		e.adp = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}
