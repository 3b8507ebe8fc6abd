package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/runlens/internal/cli/output"
	"github.com/leapstack-labs/runlens/internal/engine"
	"github.com/leapstack-labs/runlens/pkg/core"
	"github.com/spf13/cobra"
)

const (
	explorePrompt      = "runlens> "
	exploreHistoryFile = ".runlens_history"
	defaultRowLimit    = 20
)

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Explore runs interactively",
		Long: `Start an interactive session over the dataset.

The session starts from the default selection: the first value of each
single-valued filter and the full range of each range filter. Every change
to the selection or prefix re-computes and prints the summary.

Type help inside the session for the list of commands.`,
		Example: `  runlens explore --data runs.csv

  runlens> set Tau=0.1:0.5
  runlens> prefix CV
  runlens> plot runs.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExplore(cmd)
		},
	}
}

func runExplore(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	session, err := newExploreSession(ctx, cmdCtx.Engine, cmdCtx.Renderer)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          explorePrompt,
		HistoryFile:     filepath.Join(cmdCtx.Cfg.BaseDir, exploreHistoryFile),
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Println("runlens interactive explorer")
	r.Muted("Type help for commands, quit to exit")
	r.Println("")
	session.show()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if session.handle(line) {
			break
		}
	}
	return nil
}

// exploreSession holds the selection state of one interactive session.
type exploreSession struct {
	ctx     context.Context
	eng     *engine.Engine
	r       *output.Renderer
	domains []engine.FilterDomain
	sel     core.Selection
	prefix  string
}

func newExploreSession(ctx context.Context, eng *engine.Engine, r *output.Renderer) (*exploreSession, error) {
	domains, err := eng.ListFilters(ctx)
	if err != nil {
		return nil, err
	}
	return &exploreSession{
		ctx:     ctx,
		eng:     eng,
		r:       r,
		domains: domains,
		sel:     engine.DefaultSelection(domains),
		prefix:  eng.DefaultPrefix(),
	}, nil
}

// handle runs one input line and reports whether the session should end.
func (s *exploreSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "quit", "exit", ".quit", ".exit":
		return true
	case "help", "?":
		printExploreHelp(s.r.Writer())
	case "filters":
		s.listFilters()
	case "set":
		s.set(arg)
	case "unset":
		s.unset(arg)
	case "reset":
		s.apply(engine.DefaultSelection(s.domains), s.prefix)
	case "clear":
		s.apply(core.Selection{}, s.prefix)
	case "prefix":
		s.setPrefix(arg)
	case "show", "summary":
		s.show()
	case "rows":
		s.rows(arg)
	case "plot":
		s.plot(arg)
	default:
		s.r.Warning(fmt.Sprintf("unknown command %q (type help for commands)", command))
	}
	return false
}

// apply runs sel under prefix and keeps both only when they are valid.
func (s *exploreSession) apply(sel core.Selection, prefix string) {
	view, err := s.eng.Run(s.ctx, sel, prefix)
	if err != nil {
		s.report(err)
		return
	}
	s.sel = sel
	s.prefix = prefix
	renderSummary(s.r, view)
}

func (s *exploreSession) show() {
	s.apply(s.sel, s.prefix)
}

func (s *exploreSession) set(arg string) {
	if arg == "" {
		s.r.Warning("usage: set column=value or set column=min:max")
		return
	}
	assigned, err := engine.ParseAssignments(s.domains, []string{arg})
	if err != nil {
		s.report(err)
		return
	}
	next := s.sel.Clone()
	for column, c := range assigned {
		next[column] = c
	}
	s.apply(next, s.prefix)
}

func (s *exploreSession) unset(column string) {
	if _, ok := s.sel.Lookup(column); !ok {
		s.r.Warning(fmt.Sprintf("%q is not selected", column))
		return
	}
	next := s.sel.Clone()
	delete(next, column)
	s.apply(next, s.prefix)
}

func (s *exploreSession) setPrefix(prefix string) {
	if prefix == "" {
		results := s.eng.Results()
		if !results.UsesPrefixes() {
			s.r.Println("no condition prefixes configured")
			return
		}
		s.r.KeyValue("prefix", s.prefix)
		s.r.KeyValue("available", strings.Join(results.ConditionPrefixes, ", "))
		return
	}
	s.apply(s.sel, prefix)
}

func (s *exploreSession) listFilters() {
	rows := make([][]string, 0, len(s.domains))
	params := engine.DescribeSelection(s.eng.Filters(), s.sel)
	for i, d := range s.domains {
		rows = append(rows, []string{d.Filter.Column, string(d.Filter.Kind), describeDomain(d), params[i].Value})
	}
	s.r.Table([]string{"Column", "Kind", "Values", "Selected"}, rows)
}

func (s *exploreSession) rows(arg string) {
	limit := defaultRowLimit
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			s.r.Warning("usage: rows [n]")
			return
		}
		limit = n
	}

	table, err := s.eng.ApplySelection(s.ctx, s.sel)
	if err != nil {
		s.report(err)
		return
	}
	if table.Len() == 0 {
		s.r.Warning(emptyMessage)
		return
	}
	s.r.Table(table.Columns(), tableRows(table, limit))
	if limit > 0 && table.Len() > limit {
		s.r.Muted(fmt.Sprintf("showing %d of %d runs", limit, table.Len()))
	}
}

func (s *exploreSession) plot(path string) {
	if path == "" {
		s.r.Warning("usage: plot <file.png>")
		return
	}
	if !s.eng.HasPlot() {
		s.report(errNoPlot)
		return
	}
	view, err := s.eng.Run(s.ctx, s.sel, s.prefix)
	if err != nil {
		s.report(err)
		return
	}
	if view.Empty {
		s.r.Warning(emptyMessage)
		return
	}
	if err := writePlot(path, view.Plot); err != nil {
		s.report(err)
		return
	}
	s.r.Success(fmt.Sprintf("wrote %s", path))
}

// report shows err without ending the session. Conditions a user can fix
// by changing the selection are warnings.
func (s *exploreSession) report(err error) {
	if core.IsRecoverable(err) || errors.Is(err, core.ErrUnknownColumn) || errors.Is(err, core.ErrInvalidPrefix) {
		s.r.Warning(err.Error())
		return
	}
	s.r.Error(err.Error())
}

// completer offers commands and filter columns.
func (s *exploreSession) completer() *readline.PrefixCompleter {
	var columns []readline.PrefixCompleterInterface
	for _, d := range s.domains {
		columns = append(columns, readline.PcItem(d.Filter.Column+"="))
	}
	var unset []readline.PrefixCompleterInterface
	for _, d := range s.domains {
		unset = append(unset, readline.PcItem(d.Filter.Column))
	}
	var prefixes []readline.PrefixCompleterInterface
	for _, p := range s.eng.Results().ConditionPrefixes {
		prefixes = append(prefixes, readline.PcItem(p))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("set", columns...),
		readline.PcItem("unset", unset...),
		readline.PcItem("prefix", prefixes...),
		readline.PcItem("show"),
		readline.PcItem("filters"),
		readline.PcItem("rows"),
		readline.PcItem("plot"),
		readline.PcItem("reset"),
		readline.PcItem("clear"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

func printExploreHelp(w io.Writer) {
	help := `
Commands:
  set <col>=<value>      Select one value of a filter
  set <col>=<min>:<max>  Select an inclusive range of a range filter
  unset <col>            Drop a filter from the selection
  prefix [name]          Show or change the condition prefix
  show                   Print parameters and result statistics
  filters                List filters, their values and the selection
  rows [n]               Print matching runs (default 20, 0 for all)
  plot <file.png>        Render the plot of the current selection
  reset                  Restore the default selection
  clear                  Select every run
  help                   Show this help message
  quit / exit            Leave the session
`
	_, _ = fmt.Fprintln(w, help)
}
