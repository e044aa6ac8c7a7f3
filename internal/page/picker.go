package page

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/autocomplete/internal/autocomplete"
	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/option"
	"github.com/runger/autocomplete/internal/pointer"
)

// PickerConfig configures a Picker.
type PickerConfig struct {
	Label       string
	Placeholder string
	Options     []option.Option
	Multiple    bool
	Filter      filter.Func
	Query       string // Initial query
	MaxRows     int
	Width       int
	Debounce    time.Duration
	Logger      *slog.Logger
}

// Picker is a one-widget screen that ends when a choice is made.
// In single mode the first commit finishes it; in multi mode ctrl+d does.
// Escape with the dropdown already closed cancels.
type Picker struct {
	widget autocomplete.Model
	hub    *pointer.Hub
	done   key.Binding
	quit   key.Binding
	back   key.Binding

	finished  bool
	cancelled bool
}

// NewPicker creates a focused picker with its dropdown open.
func NewPicker(cfg PickerConfig) (Picker, error) {
	hub := pointer.NewHub(cfg.Logger)
	w, err := autocomplete.New(autocomplete.Config{
		Label:            cfg.Label,
		Placeholder:      cfg.Placeholder,
		Options:          cfg.Options,
		Multiple:         cfg.Multiple,
		FilterOptions:    cfg.Filter,
		MaxRows:          cfg.MaxRows,
		Width:            cfg.Width,
		DebounceInterval: cfg.Debounce,
		Logger:           cfg.Logger,
		OnChange:         func(option.Value) {},
	})
	if err != nil {
		return Picker{}, err
	}
	if cfg.Query != "" {
		w = w.SetQuery(cfg.Query)
	}
	w, _ = w.Mount(hub).Focus()

	p := Picker{
		widget: w,
		hub:    hub,
		done:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "done")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "cancel")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close/cancel")),
	}
	p.layout()
	return p, nil
}

// Widget returns the hosted widget.
func (p Picker) Widget() autocomplete.Model { return p.widget }

// Cancelled reports whether the user backed out.
func (p Picker) Cancelled() bool { return p.cancelled }

// Finished reports whether a choice was confirmed.
func (p Picker) Finished() bool { return p.finished }

// Result returns the confirmed selection, empty when cancelled.
func (p Picker) Result() option.Options {
	if p.cancelled {
		return nil
	}
	return p.widget.Selection()
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return p.widget.Init()
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.quit):
			return p.cancel()
		case key.Matches(msg, p.back) && !p.widget.IsOpen():
			return p.cancel()
		case key.Matches(msg, p.done) && p.widget.Multiple():
			p.finished = true
			return p, tea.Quit
		}
		p.widget, cmd = p.widget.Update(msg)

	case tea.MouseMsg:
		ev := pointer.FromMouse(msg)
		p.widget, cmd = p.widget.Update(msg)
		cmd = tea.Batch(cmd, p.hub.Dispatch(ev))

	case autocomplete.ChangedMsg:
		if !p.widget.Multiple() {
			p.finished = true
			return p, tea.Quit
		}

	default:
		p.widget, cmd = p.widget.Update(msg)
	}
	p.layout()
	return p, cmd
}

func (p Picker) cancel() (Picker, tea.Cmd) {
	p.cancelled = true
	p.widget = p.widget.Unmount()
	return p, tea.Quit
}

func (p *Picker) layout() {
	view := p.widget.View()
	p.widget = p.widget.SetBounds(pointer.Rect{
		Width:  lipgloss.Width(view),
		Height: lipgloss.Height(view),
	})
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.finished || p.cancelled {
		return ""
	}
	return p.widget.View()
}
