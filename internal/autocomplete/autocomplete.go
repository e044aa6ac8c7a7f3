// Package autocomplete implements a search-and-select input for Bubble Tea
// programs.
//
// A Model owns a free-text query, derives the visible options from a
// catalog, lets the user move a highlight with the keyboard or mouse and
// commits one option (single mode) or toggles many (multi mode). Every
// change is reported to the host through Config.OnChange and as a
// ChangedMsg.
//
// The dropdown opens when the widget gains focus and closes on Escape, on
// a single-mode commit, or when the user presses the mouse anywhere outside
// the widget. Outside presses are observed through a pointer.Hub
// subscription that is held between Mount and Unmount.
package autocomplete

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/option"
	"github.com/runger/autocomplete/internal/pointer"
)

// NoResults is the placeholder row shown when nothing matches.
const NoResults = "No results were found"

const (
	defaultMaxRows = 8
	defaultWidth   = 40
	minWidth       = 8
)

var (
	// ErrMissingLabel is returned by New when Config.Label is empty.
	ErrMissingLabel = errors.New("autocomplete: label is required")
	// ErrMissingOnChange is returned by New when Config.OnChange is nil.
	ErrMissingOnChange = errors.New("autocomplete: OnChange is required")
)

// Config configures a widget. Label and OnChange are required; Options may
// be empty.
type Config struct {
	Label       string
	Description string
	Placeholder string

	// Disabled suppresses text entry and keeps the dropdown closed.
	Disabled bool
	// Loading hides the dropdown list while the catalog is being fetched.
	Loading bool
	// Multiple switches from replace-on-commit to toggle-on-commit.
	Multiple bool

	Options []option.Option

	// FilterOptions overrides the default case-insensitive substring
	// filter. Its result is shown verbatim.
	FilterOptions filter.Func
	// RenderOption overrides the row text. Defaults to the option label.
	RenderOption func(option.Option) string

	// OnChange receives an option.Option in single mode and option.Options
	// in multi mode.
	OnChange func(option.Value)
	// OnInputChange is called with the query after every edit.
	OnInputChange func(query string)

	// Value seeds the selection. Use SetValue to mirror later changes.
	Value option.Value

	// MaxRows caps the number of dropdown rows drawn at once. Zero means 8.
	MaxRows int
	// Width is the widget width in columns. Zero means 40.
	Width int
	// DebounceInterval delays filtering after an edit. Zero filters on
	// every keystroke.
	DebounceInterval time.Duration

	KeyMap *KeyMap
	Logger *slog.Logger
}

// ChangedMsg is emitted after every commit.
type ChangedMsg struct {
	ID    string
	Value option.Value
}

// OutsideMsg reports a pointer press outside the widget with the given ID.
type OutsideMsg struct {
	ID string
}

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	widget string
	id     uint64 // Must match the widget's debounceID to be accepted
}

// Model is the widget state. It is a value type in the Bubble Tea style:
// methods that change state return the updated Model.
type Model struct {
	id     string
	cfg    Config
	keys   KeyMap
	logger *slog.Logger

	catalog   []option.Option
	input     textinput.Model
	help      help.Model
	visible   []option.Option
	highlight int // Index into visible; -1 when nothing is highlighted
	offset    int // First visible row of the dropdown
	open      bool
	focused   bool
	selected  option.Options

	debounceID uint64

	// mount is shared by every copy of the Model so the pointer handler
	// sees the latest bounds and Unmount works from any copy.
	mount *mountState
}

type mountState struct {
	frame pointer.Rect
	sub   *pointer.Subscription
}

// New creates a widget from cfg.
func New(cfg Config) (Model, error) {
	if cfg.Label == "" {
		return Model{}, ErrMissingLabel
	}
	if cfg.OnChange == nil {
		return Model{}, fmt.Errorf("%w (label %q)", ErrMissingOnChange, cfg.Label)
	}
	if cfg.FilterOptions == nil {
		cfg.FilterOptions = filter.Substring
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultMaxRows
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	keys := DefaultKeyMap()
	if cfg.KeyMap != nil {
		keys = *cfg.KeyMap
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = cfg.Placeholder

	m := Model{
		id:        uuid.NewString(),
		cfg:       cfg,
		keys:      keys,
		catalog:   cfg.Options,
		input:     ti,
		help:      help.New(),
		highlight: -1,
		mount:     &mountState{},
	}
	m.logger = logger.With("widget", cfg.Label, "id", m.id)
	m.setWidth(cfg.Width)
	m.selected = seed(cfg.Value, cfg.Multiple)
	m.refilter()
	return m, nil
}

// seed converts an externally supplied value into the internal selection.
func seed(v option.Value, multiple bool) option.Options {
	sel := option.Selected(v)
	if !multiple && len(sel) > 1 {
		sel = sel[:1]
	}
	var out option.Options
	for _, o := range sel {
		if !out.Contains(o) {
			out = append(out, o)
		}
	}
	return out
}

// ID returns the widget's unique instance id.
func (m Model) ID() string { return m.id }

// Label returns the caption.
func (m Model) Label() string { return m.cfg.Label }

// Query returns the current query text.
func (m Model) Query() string { return m.input.Value() }

// Visible returns the options currently offered.
func (m Model) Visible() []option.Option { return m.visible }

// Highlight returns the highlighted index into Visible, or -1.
func (m Model) Highlight() int { return m.highlight }

// IsOpen reports whether the dropdown is open.
func (m Model) IsOpen() bool { return m.open }

// Focused reports whether the widget has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Loading reports whether the widget is waiting for its catalog.
func (m Model) Loading() bool { return m.cfg.Loading }

// Disabled reports whether text entry is suppressed.
func (m Model) Disabled() bool { return m.cfg.Disabled }

// Multiple reports whether the widget is in multi-select mode.
func (m Model) Multiple() bool { return m.cfg.Multiple }

// Selection returns the chosen options in insertion order.
func (m Model) Selection() option.Options {
	return append(option.Options(nil), m.selected...)
}

// Value returns the selection in the shape OnChange reports it: nil when
// nothing is chosen in single mode, an Option, or Options in multi mode.
func (m Model) Value() option.Value {
	if m.cfg.Multiple {
		return m.Selection()
	}
	if len(m.selected) == 0 {
		return nil
	}
	return m.selected[0]
}

// SetValue replaces the selection from outside without calling OnChange.
func (m Model) SetValue(v option.Value) Model {
	m.selected = seed(v, m.cfg.Multiple)
	return m
}

// SetOptions replaces the catalog and recomputes the visible list.
func (m Model) SetOptions(opts []option.Option) Model {
	m.catalog = opts
	m.refilter()
	return m
}

// SetLoading toggles the loading state.
func (m Model) SetLoading(loading bool) Model {
	m.cfg.Loading = loading
	return m
}

// SetDisabled toggles text entry. Disabling closes the dropdown.
func (m Model) SetDisabled(disabled bool) Model {
	m.cfg.Disabled = disabled
	if disabled {
		m.open = false
	}
	return m
}

// SetQuery replaces the query text and refilters without notifying
// OnInputChange.
func (m Model) SetQuery(q string) Model {
	m.input.SetValue(q)
	m.refilter()
	return m
}

// SetWidth resizes the widget.
func (m Model) SetWidth(w int) Model {
	m.setWidth(w)
	return m
}

func (m *Model) setWidth(w int) {
	if w < minWidth {
		w = minWidth
	}
	m.cfg.Width = w
	m.input.Width = w - len(m.input.Prompt) - 1
	m.help.Width = w
}

// Focus gives the widget keyboard focus and opens the dropdown unless the
// widget is disabled.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	cmd := m.input.Focus()
	if !m.cfg.Disabled {
		m.open = true
	}
	return m, cmd
}

// Blur removes keyboard focus. The dropdown keeps its state; it closes on
// Escape, commit or an outside press.
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	return m
}

// Close closes the dropdown.
func (m Model) Close() Model {
	m.open = false
	return m
}

// Mount subscribes the widget to outside presses on hub. Mounting an
// already mounted widget is a no-op.
func (m Model) Mount(hub *pointer.Hub) Model {
	if m.mount.sub != nil {
		return m
	}
	id, ms := m.id, m.mount
	ms.sub = hub.Subscribe(func(ev pointer.Event) tea.Msg {
		if !ev.IsPress() || ms.frame.Empty() || ms.frame.Contains(ev.Point) {
			return nil
		}
		return OutsideMsg{ID: id}
	})
	m.logger.Debug("mounted")
	return m
}

// Unmount releases the pointer subscription. It is safe to call more than
// once and from any copy of the Model.
func (m Model) Unmount() Model {
	if m.mount.sub != nil {
		m.mount.sub.Close()
		m.mount.sub = nil
		m.logger.Debug("unmounted")
	}
	return m
}

// Mounted reports whether the widget holds a pointer subscription.
func (m Model) Mounted() bool { return m.mount.sub != nil }

// SetBounds records where the widget was drawn, in screen cells. The host
// must call it after layout so pointer events can be attributed.
func (m Model) SetBounds(r pointer.Rect) Model {
	m.mount.frame = r
	return m
}

// Bounds returns the last rectangle given to SetBounds.
func (m Model) Bounds() pointer.Rect { return m.mount.frame }

// Commit selects opt as if the user had picked it from the list.
func (m Model) Commit(opt option.Option) (Model, tea.Cmd) {
	cmd := m.commit(opt)
	return m, cmd
}

func (m *Model) commit(opt option.Option) tea.Cmd {
	var v option.Value
	if m.cfg.Multiple {
		m.selected = m.selected.Toggle(opt)
		v = m.Selection()
	} else {
		m.selected = option.Options{opt}
		v = opt
		m.open = false
	}
	m.logger.Debug("option committed", "option", opt.String(), "selected", len(m.selected))
	m.cfg.OnChange(v)

	m.input.SetValue("")
	m.debounceID++ // Drop any pending debounced filter for the old query.
	m.refilter()

	id := m.id
	return func() tea.Msg { return ChangedMsg{ID: id, Value: v} }
}

// refilter recomputes the visible list from the current query and resets
// the highlight, which may no longer point at the same option.
func (m *Model) refilter() {
	m.visible = m.cfg.FilterOptions(m.catalog, m.input.Value())
	m.highlight = -1
	m.offset = 0
}

func (m *Model) moveDown() {
	n := len(m.visible)
	if n == 0 {
		return
	}
	m.highlight = (m.highlight + 1) % n
	m.scrollToHighlight()
}

func (m *Model) moveUp() {
	n := len(m.visible)
	if n == 0 {
		return
	}
	if m.highlight <= 0 {
		m.highlight = n - 1
	} else {
		m.highlight--
	}
	m.scrollToHighlight()
}

// scrollToHighlight keeps the highlighted row inside the drawn window.
func (m *Model) scrollToHighlight() {
	if m.highlight < 0 {
		return
	}
	if m.highlight < m.offset {
		m.offset = m.highlight
	}
	if m.highlight >= m.offset+m.cfg.MaxRows {
		m.offset = m.highlight - m.cfg.MaxRows + 1
	}
}

// startDebounce bumps the debounce counter and schedules a filter pass.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id, widget := m.debounceID, m.id
	return tea.Tick(m.cfg.DebounceInterval, func(time.Time) tea.Msg {
		return debounceMsg{widget: widget, id: id}
	})
}

// dropdownVisible reports whether the option list is drawn.
func (m Model) dropdownVisible() bool {
	return m.open && !m.cfg.Loading
}
