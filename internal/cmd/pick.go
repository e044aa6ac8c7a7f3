package cmd

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/autocomplete/internal/config"
	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/page"
)

// pickOpts holds the parsed flags of the pick command.
type pickOpts struct {
	catalog     string
	options     string
	filter      string
	query       string
	label       string
	placeholder string
	multiple    bool
	values      bool
}

var pickFlags pickOpts

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose from a catalog interactively and print the choice",
	Long: `Open a single autocomplete widget over a catalog and print the selection
to stdout, one option per line. The widget is drawn on /dev/tty so the
command works inside $(...).

Exit codes:
  0  a selection was made
  1  cancelled (esc with the dropdown closed, or ctrl+c)
  2  fallback: no TTY, TERM=dumb, terminal too narrow, or an error

Examples:
  autocomplete pick
  autocomplete pick --options 'Apple Banana Orange=orange'
  autocomplete pick --catalog fruits.toml --multiple --values
  autocomplete pick --catalog sqlite:catalog.db#fruit --filter fuzzy`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	f := pickCmd.Flags()
	f.StringVar(&pickFlags.catalog, "catalog", "", "catalog location (default catalog.source)")
	f.StringVar(&pickFlags.options, "options", "", "inline options: space separated, Label=value for pairs")
	f.StringVar(&pickFlags.filter, "filter", "", "filter policy: substring, prefix, fuzzy (default ui.filter)")
	f.StringVar(&pickFlags.query, "query", "", "initial search query (max 4096 bytes)")
	f.StringVar(&pickFlags.label, "label", "Search", "widget label")
	f.StringVar(&pickFlags.placeholder, "placeholder", "", "input placeholder (default ui.placeholder)")
	f.BoolVar(&pickFlags.multiple, "multiple", false, "allow several options; ctrl+d confirms (default ui.multiple)")
	f.BoolVar(&pickFlags.values, "values", false, "print option values instead of labels")
}

func runPick(cmd *cobra.Command, args []string) error {
	// Terminal checks come first so shell callers can fall back cheaply.
	if err := checkTTY(); err != nil {
		return fallback(err)
	}
	if err := checkTERM(); err != nil {
		return fallback(err)
	}

	opts := pickFlags
	query, err := sanitizeQuery(opts.query)
	if err != nil {
		return fallback(fmt.Errorf("--query: %w", err))
	}

	cfg, err := loadConfig()
	if err != nil {
		return fallback(fmt.Errorf("failed to load config: %w", err))
	}
	if !cmd.Flags().Changed("multiple") {
		opts.multiple = cfg.UI.Multiple
	}
	if opts.filter == "" {
		opts.filter = cfg.UI.Filter
	}
	if opts.placeholder == "" {
		opts.placeholder = cfg.UI.Placeholder
	}
	filterFn, err := filter.ByName(opts.filter)
	if err != nil {
		return fallback(err)
	}

	choices, err := loadOptions(cmd.Context(), cfg, opts.catalog, opts.options)
	if err != nil {
		return fallback(err)
	}

	paths := config.DefaultPaths()
	logger, closeLog := openLogger(cfg, paths)
	defer closeLog()

	tty, err := openTTY()
	if err != nil {
		return fallback(fmt.Errorf("cannot open /dev/tty: %w", err))
	}
	defer tty.Close()

	if err := checkTermWidth(tty); err != nil {
		return fallback(err)
	}

	width := cfg.UI.Width
	if w := termWidth(tty); w > 0 && (width == 0 || width > w-2) {
		width = w - 2
	}

	picker, err := page.NewPicker(page.PickerConfig{
		Label:       opts.label,
		Placeholder: opts.placeholder,
		Options:     choices,
		Multiple:    opts.multiple,
		Filter:      filterFn,
		Query:       query,
		MaxRows:     cfg.UI.MaxRows,
		Width:       width,
		Debounce:    time.Duration(cfg.UI.DebounceMs) * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return fallback(err)
	}

	// When invoked via $(autocomplete pick), stdout is a pipe so lipgloss
	// defaults to Ascii. Detect the profile from the tty instead.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(picker,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)
	final, err := p.Run()
	if err != nil {
		return fallback(fmt.Errorf("TUI error: %w", err))
	}
	m, ok := final.(page.Picker)
	if !ok {
		return fallback(errors.New("unexpected model type"))
	}
	m.Widget().Unmount()

	if m.Cancelled() || !m.Finished() {
		logger.Debug("pick cancelled")
		return &ExitError{Code: exitCancelled}
	}
	result := m.Result()
	logger.Info("Selected:", "options", result.Labels())
	fmt.Fprint(cmd.OutOrStdout(), formatSelection(result, opts.values))
	return nil
}

