package autocomplete

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/autocomplete/internal/pointer"
)

// Rows of the widget in local coordinates.
const (
	labelRow = 0
	inputRow = 1
	listTop  = 2
)

// Init returns the cursor blink command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys (only while focused), mouse events inside the
// widget's bounds, outside presses and debounce timers. Every other
// message is forwarded to the text input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handlePointer(pointer.FromMouse(msg))

	case OutsideMsg:
		if msg.ID == m.id && m.open {
			m.open = false
			m.logger.Debug("closed by outside press")
		}
		return m, nil

	case debounceMsg:
		if msg.widget != m.id || msg.id != m.debounceID {
			return m, nil // Stale or foreign timer.
		}
		m.refilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.open = false
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.dropdownVisible() {
			m.moveDown()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.dropdownVisible() {
			m.moveUp()
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.dropdownVisible() && m.highlight >= 0 && m.highlight < len(m.visible) {
			return m, m.commit(m.visible[m.highlight])
		}
		return m, nil
	}

	if m.cfg.Disabled {
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != before {
		return m, tea.Batch(cmd, m.queryChanged(q))
	}
	return m, cmd
}

// queryChanged notifies the host and recomputes (or schedules) the
// visible list.
func (m *Model) queryChanged(q string) tea.Cmd {
	if m.cfg.OnInputChange != nil {
		m.cfg.OnInputChange(q)
	}
	if m.cfg.DebounceInterval > 0 {
		return m.startDebounce()
	}
	m.refilter()
	return nil
}

// handlePointer reacts to mouse events that land inside the widget.
// Presses elsewhere arrive as OutsideMsg through the pointer hub.
func (m Model) handlePointer(ev pointer.Event) (Model, tea.Cmd) {
	frame := m.mount.frame
	if frame.Empty() || !frame.Contains(ev.Point) {
		return m, nil
	}
	local := frame.Local(ev.Point)

	if local.Y == inputRow {
		if ev.IsPress() {
			return m.Focus()
		}
		return m, nil
	}

	idx, ok := m.rowAt(local.Y)
	if !ok {
		return m, nil
	}
	switch ev.Kind {
	case pointer.KindPress:
		return m, m.commit(m.visible[idx])
	case pointer.KindMotion:
		m.highlight = idx
	}
	return m, nil
}

// rowAt maps a local row to an index into the visible list.
func (m Model) rowAt(y int) (int, bool) {
	if !m.dropdownVisible() || len(m.visible) == 0 {
		return 0, false
	}
	r := y - listTop
	if r < 0 || r >= m.rowsShown() {
		return 0, false
	}
	return m.offset + r, true
}

// rowsShown is the number of option rows currently drawn.
func (m Model) rowsShown() int {
	return max(0, min(len(m.visible)-m.offset, m.cfg.MaxRows))
}
