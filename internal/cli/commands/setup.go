// Package commands implements the runlens subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/runlens/internal/cli/config"
	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an opened engine and a
// renderer. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := config.GetConfig(cmd.Context())
	if cfg == nil {
		return nil, nil, errors.New("configuration not loaded")
	}
	logger := config.GetLogger(cmd.Context())

	eng, err := engine.New(engine.FromConfig(cfg, logger))
	if err != nil {
		return nil, nil, err
	}
	if err := eng.Open(cmd.Context()); err != nil {
		_ = eng.Close()
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// SelectionOptions are the flags shared by commands that take a selection.
type SelectionOptions struct {
	Where    []string
	Defaults bool
	Prefix   string
}

// addSelectionFlags registers --where, --defaults and --prefix on cmd.
func addSelectionFlags(cmd *cobra.Command, opts *SelectionOptions) {
	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "Filter as column=value or column=min:max (repeatable)")
	cmd.Flags().BoolVar(&opts.Defaults, "defaults", false, "Start from the default selection (first value, full ranges)")
	cmd.Flags().StringVarP(&opts.Prefix, "prefix", "p", "", "Condition prefix for result columns (default: first configured)")
}

// resolve builds the selection and prefix described by opts.
func (o *SelectionOptions) resolve(ctx context.Context, eng *engine.Engine) (core.Selection, string, error) {
	domains, err := eng.ListFilters(ctx)
	if err != nil {
		return nil, "", err
	}

	sel := core.Selection{}
	if o.Defaults {
		sel = engine.DefaultSelection(domains)
	}
	assigned, err := engine.ParseAssignments(domains, o.Where)
	if err != nil {
		return nil, "", err
	}
	for column, c := range assigned {
		sel[column] = c
	}

	prefix := o.Prefix
	if prefix == "" {
		prefix = eng.DefaultPrefix()
	}
	return sel, prefix, nil
}

// runView resolves the selection flags and runs the engine on them.
func runView(cmd *cobra.Command, cmdCtx *CommandContext, opts *SelectionOptions) (*engine.View, error) {
	sel, prefix, err := opts.resolve(cmd.Context(), cmdCtx.Engine)
	if err != nil {
		return nil, err
	}
	view, err := cmdCtx.Engine.Run(cmd.Context(), sel, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to apply selection: %w", err)
	}
	return view, nil
}

// emptyMessage is shown when a selection matches no runs.
const emptyMessage = "no runs match the current selection"
