// Package page hosts the demo screen: two autocomplete widgets over the
// fruit catalog, one loaded asynchronously and one synchronously.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/autocomplete/internal/autocomplete"
	"github.com/runger/autocomplete/internal/catalog"
	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/option"
	"github.com/runger/autocomplete/internal/pointer"
)

// Widget positions on the page.
const (
	AsyncWidget = 0
	SyncWidget  = 1
)

const placeholder = "Type to begin searching"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Config configures the demo page. Zero values fall back to the fruit
// catalog and the widget defaults.
type Config struct {
	// Async feeds the "Async Search" widget through a background fetch.
	Async catalog.Source
	// AsyncDelay is added to every async fetch to make loading visible.
	AsyncDelay time.Duration
	// Sync is the catalog given directly to the "Sync Search" widget.
	Sync []option.Option

	Placeholder string
	MaxRows     int
	Width       int
	Filter      filter.Func
	Debounce    time.Duration
	Logger      *slog.Logger
}

// catalogLoadedMsg is sent when an async catalog fetch completes.
type catalogLoadedMsg struct {
	requestID uint64
	options   []option.Option
	err       error
}

// Model is the demo page.
type Model struct {
	widgets []autocomplete.Model
	focus   int // Index into widgets; -1 when nothing has focus
	hub     *pointer.Hub
	keys    KeyMap
	help    help.Model
	logger  *slog.Logger

	source      catalog.Source
	requestID   uint64 // Monotonic counter for stale detection
	cancelFetch context.CancelFunc

	status   string
	err      error
	width    int
	quitting bool
}

// New builds the page and mounts both widgets on a fresh pointer hub.
func New(cfg Config) (Model, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	src := cfg.Async
	if src == nil {
		src = catalog.Fruits()
	}
	if cfg.AsyncDelay > 0 {
		src = catalog.Delayed{Source: src, Delay: cfg.AsyncDelay}
	}
	syncOpts := cfg.Sync
	if syncOpts == nil {
		syncOpts = catalog.Fruits()
	}
	ph := cfg.Placeholder
	if ph == "" {
		ph = placeholder
	}

	onChange := func(label string) func(option.Value) {
		return func(v option.Value) {
			logger.Info("Selected:", "widget", label, "value", Describe(v))
		}
	}

	hub := pointer.NewHub(logger)
	base := autocomplete.Config{
		Placeholder:      ph,
		Multiple:         true,
		FilterOptions:    cfg.Filter,
		MaxRows:          cfg.MaxRows,
		Width:            cfg.Width,
		DebounceInterval: cfg.Debounce,
		Logger:           logger,
	}

	asyncCfg := base
	asyncCfg.Label = "Async Search"
	asyncCfg.Description = "With description and custom results display"
	asyncCfg.Loading = true
	asyncCfg.OnChange = onChange(asyncCfg.Label)
	asyncCfg.RenderOption = renderWithValue

	syncCfg := base
	syncCfg.Label = "Sync Search"
	syncCfg.Description = "With default display and search on focus"
	syncCfg.Options = syncOpts
	syncCfg.OnChange = onChange(syncCfg.Label)

	m := Model{
		focus:  -1,
		hub:    hub,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		logger: logger,
		source: src,
	}
	for _, c := range []autocomplete.Config{asyncCfg, syncCfg} {
		w, err := autocomplete.New(c)
		if err != nil {
			return Model{}, fmt.Errorf("failed to create %q widget: %w", c.Label, err)
		}
		m.widgets = append(m.widgets, w.Mount(hub))
	}
	m.layout()
	return m, nil
}

// renderWithValue shows the option value next to its label.
func renderWithValue(o option.Option) string {
	if !o.IsPair() {
		return o.Label()
	}
	return o.Label() + " " + valueStyle.Render("("+o.Value()+")")
}

// Describe formats a selection for logs and the status line.
func Describe(v option.Value) string {
	sel := option.Selected(v)
	if len(sel) == 0 {
		return "none"
	}
	return strings.Join(sel.Labels(), ", ")
}

// Widget returns the widget at index i.
func (m Model) Widget(i int) autocomplete.Model { return m.widgets[i] }

// Focus returns the index of the focused widget, or -1.
func (m Model) Focus() int { return m.focus }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Err returns the last catalog error, if any.
func (m Model) Err() error { return m.err }

// Hub returns the page's pointer hub.
func (m Model) Hub() *pointer.Hub { return m.hub }

// initMsg triggers the first async fetch from Update, where the request
// bookkeeping can be stored.
type initMsg struct{}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{func() tea.Msg { return initMsg{} }}
	for _, w := range m.widgets {
		cmds = append(cmds, w.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case initMsg:
		cmd := m.startFetch()
		return m, cmd

	case catalogLoadedMsg:
		return m.handleLoaded(msg)

	case autocomplete.ChangedMsg:
		for _, w := range m.widgets {
			if w.ID() == msg.ID {
				m.status = w.Label() + ": " + Describe(msg.Value)
			}
		}
		return m, nil
	}

	return m.broadcast(msg)
}

// broadcast forwards msg to every widget. Widgets ignore messages that
// carry another widget's id.
func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, len(m.widgets))
	for i := range m.widgets {
		var cmd tea.Cmd
		m.widgets[i], cmd = m.widgets[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Exit) && m.focus < 0:
		return m.quit()
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % len(m.widgets))
	case key.Matches(msg, m.keys.Prev):
		if m.focus <= 0 {
			return m.setFocus(len(m.widgets) - 1)
		}
		return m.setFocus(m.focus - 1)
	}

	if m.focus < 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.widgets[m.focus], cmd = m.widgets[m.focus].Update(msg)
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.cancelInflight()
	return m, tea.Quit
}

// handleMouse moves focus to the widget under a press, lets every widget
// react to the event inside its own bounds, and dispatches it to the hub
// so open dropdowns elsewhere can close.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	ev := pointer.FromMouse(msg)

	var focusCmd tea.Cmd
	if ev.IsPress() {
		target := -1
		for i, w := range m.widgets {
			if w.Bounds().Contains(ev.Point) {
				target = i
				break
			}
		}
		if target >= 0 && target != m.focus {
			m, focusCmd = m.setFocus(target)
		} else if target < 0 {
			m = m.blurAll()
		}
	}

	m, cmd := m.broadcast(msg)
	return m, tea.Batch(focusCmd, cmd, m.hub.Dispatch(ev))
}

// setFocus focuses widget i and blurs the rest.
func (m Model) setFocus(i int) (Model, tea.Cmd) {
	m = m.blurAll()
	m.focus = i
	var cmd tea.Cmd
	m.widgets[i], cmd = m.widgets[i].Focus()
	return m, cmd
}

func (m Model) blurAll() Model {
	for j := range m.widgets {
		m.widgets[j] = m.widgets[j].Blur()
	}
	m.focus = -1
	return m
}

// startFetch cancels any in-flight fetch, increments requestID and loads
// the async catalog in the background.
func (m *Model) startFetch() tea.Cmd {
	m.cancelInflight()
	m.requestID++
	m.widgets[AsyncWidget] = m.widgets[AsyncWidget].SetLoading(true)

	reqID := m.requestID
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel

	src := m.source
	logger := m.logger
	return func() tea.Msg {
		start := time.Now()
		resp, err := src.Fetch(ctx, catalog.Request{RequestID: reqID})
		if err != nil {
			return catalogLoadedMsg{requestID: reqID, err: err}
		}
		logger.Debug("catalog loaded", "request_id", reqID, "options", len(resp.Options), "elapsed", time.Since(start))
		return catalogLoadedMsg{requestID: reqID, options: resp.Options}
	}
}

// Reload refetches the async catalog.
func (m Model) Reload() (Model, tea.Cmd) {
	cmd := m.startFetch()
	return m, cmd
}

func (m Model) handleLoaded(msg catalogLoadedMsg) (Model, tea.Cmd) {
	if msg.requestID != m.requestID {
		return m, nil // Stale response.
	}
	m.cancelFetch = nil
	w := m.widgets[AsyncWidget].SetLoading(false)
	if msg.err != nil {
		m.err = msg.err
		m.logger.Warn("catalog fetch failed", "error", msg.err)
	} else {
		m.err = nil
		w = w.SetOptions(msg.options)
	}
	m.widgets[AsyncWidget] = w
	return m, nil
}

func (m *Model) cancelInflight() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// Close cancels any in-flight fetch and unmounts every widget.
func (m Model) Close() {
	m.cancelInflight()
	for i := range m.widgets {
		m.widgets[i] = m.widgets[i].Unmount()
	}
}

// Rows before the first widget: title and a blank line.
const headerRows = 2

// layout records each widget's screen rectangle so pointer events can be
// attributed. Widgets are stacked with one blank row between them.
func (m *Model) layout() {
	y := headerRows
	for i, w := range m.widgets {
		view := w.View()
		h := lipgloss.Height(view)
		m.widgets[i] = w.SetBounds(pointer.Rect{X: 0, Y: y, Width: lipgloss.Width(view), Height: h})
		y += h + 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Autocomplete"))
	b.WriteString("\n\n")
	for _, w := range m.widgets {
		b.WriteString(w.View())
		b.WriteString("\n\n")
	}
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("catalog error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render("Selected " + m.status))
	default:
		b.WriteString(statusStyle.Render("Nothing selected yet"))
	}
	b.WriteRune('\n')
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}
