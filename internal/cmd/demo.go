package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/runger/autocomplete/internal/catalog"
	"github.com/runger/autocomplete/internal/config"
	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/page"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the two-widget demo page",
	Long: `Run the demo page: an "Async Search" widget whose catalog loads in the
background and a "Sync Search" widget with the catalog given up front.

Tab and shift+tab move between widgets, the mouse works too, ctrl+c quits.
Selections are logged to the log file (see 'autocomplete config log.file').`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	paths := config.DefaultPaths()

	logger, closeLog := openLogger(cfg, paths)
	defer closeLog()

	src, err := catalog.Open(cfg.Catalog.Source)
	if err != nil {
		return err
	}
	defer catalog.Close(src) //nolint:errcheck // read-only use

	syncOpts, err := catalog.Load(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	filterFn, err := filter.ByName(cfg.UI.Filter)
	if err != nil {
		return err
	}

	m, err := page.New(page.Config{
		Async:       src,
		AsyncDelay:  time.Duration(cfg.Catalog.AsyncDelayMs) * time.Millisecond,
		Sync:        syncOpts,
		Placeholder: cfg.UI.Placeholder,
		MaxRows:     cfg.UI.MaxRows,
		Width:       cfg.UI.Width,
		Filter:      filterFn,
		Debounce:    time.Duration(cfg.UI.DebounceMs) * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	logger.Info("demo started", "catalog", cfg.Catalog.Source, "options", len(syncOpts))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if fm, ok := final.(page.Model); ok {
		fm.Close()
	}
	logger.Info("demo finished")
	return nil
}
