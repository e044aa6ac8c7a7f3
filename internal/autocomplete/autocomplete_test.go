package autocomplete

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/autocomplete/internal/filter"
	"github.com/runger/autocomplete/internal/option"
	"github.com/runger/autocomplete/internal/pointer"
)

// --- Helpers ---

func fruits() []option.Option {
	return []option.Option{
		option.String("Apple"),
		option.String("Banana"),
		option.Pair("Orange", "orange"),
		option.Pair("Grapes", "grapes"),
	}
}

// recorder captures everything the widget reports to its host.
type recorder struct {
	changes []option.Value
	inputs  []string
}

func (r *recorder) onChange(v option.Value) { r.changes = append(r.changes, v) }
func (r *recorder) onInput(q string)        { r.inputs = append(r.inputs, q) }

func newTestModel(t *testing.T, mutate func(*Config)) (Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := Config{
		Label:         "Sync Search",
		Placeholder:   "Type to begin searching",
		Options:       fruits(),
		OnChange:      rec.onChange,
		OnInputChange: rec.onInput,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New(cfg)
	require.NoError(t, err)
	return m, rec
}

func focused(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = m.Focus()
	require.True(t, m.IsOpen())
	return m
}

func press(m Model, kt tea.KeyType) Model {
	m, _ = m.Update(tea.KeyMsg{Type: kt})
	return m
}

func typeText(m Model, s string) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func labelsOf(opts []option.Option) []string {
	return option.Options(opts).Labels()
}

// runCmd executes a tea.Cmd synchronously and returns the resulting message.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// --- Construction ---

func TestNew_RequiresLabelAndOnChange(t *testing.T) {
	_, err := New(Config{OnChange: func(option.Value) {}})
	assert.ErrorIs(t, err, ErrMissingLabel)

	_, err = New(Config{Label: "x"})
	assert.ErrorIs(t, err, ErrMissingOnChange)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestNew_InitialState(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.False(t, m.IsOpen())
	assert.False(t, m.Focused())
	assert.Equal(t, -1, m.Highlight())
	assert.Equal(t, "", m.Query())
	assert.Equal(t, labelsOf(fruits()), labelsOf(m.Visible()))
	assert.Nil(t, m.Value())
	assert.NotEmpty(t, m.ID())
}

func TestNew_UniqueIDs(t *testing.T) {
	a, _ := newTestModel(t, nil)
	b, _ := newTestModel(t, nil)
	assert.NotEqual(t, a.ID(), b.ID())
}

// --- Filtering ---

func TestTyping_FiltersFruitScenario(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "an", want: []string{"Banana", "Orange"}},
		{query: "ap", want: []string{"Apple", "Grapes"}},
		{query: "AN", want: []string{"Banana", "Orange"}},
		{query: "ban", want: []string{"Banana"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m, rec := newTestModel(t, nil)
			m = focused(t, m)
			m, _ = typeText(m, tt.query)
			assert.Equal(t, tt.want, labelsOf(m.Visible()))
			assert.Equal(t, []string{tt.query}, rec.inputs)
		})
	}
}

func TestTyping_EveryKeystrokeNotifiesAndRefilters(t *testing.T) {
	m, rec := newTestModel(t, nil)
	m = focused(t, m)
	m, _ = typeText(m, "a")
	assert.Equal(t, []string{"Apple", "Banana", "Orange", "Grapes"}, labelsOf(m.Visible()))
	m, _ = typeText(m, "n")
	assert.Equal(t, []string{"Banana", "Orange"}, labelsOf(m.Visible()))
	m = press(m, tea.KeyBackspace)
	assert.Len(t, m.Visible(), 4)
	assert.Equal(t, []string{"a", "an", "a"}, rec.inputs)
}

func TestTyping_CustomFilterUsedVerbatim(t *testing.T) {
	var gotQuery string
	m, _ := newTestModel(t, func(c *Config) {
		c.FilterOptions = func(catalog []option.Option, q string) []option.Option {
			gotQuery = q
			return []option.Option{catalog[3], option.String("Extra")}
		}
	})
	m = focused(t, m)
	m, _ = typeText(m, "zz")
	assert.Equal(t, "zz", gotQuery)
	assert.Equal(t, []string{"Grapes", "Extra"}, labelsOf(m.Visible()))
}

func TestTyping_NoResultsPlaceholder(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m, _ = typeText(m, "kiwi")
	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), NoResults)
}

func TestTyping_ResetsStaleHighlight(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	for range 4 {
		m = press(m, tea.KeyDown)
	}
	require.Equal(t, 3, m.Highlight())

	m, _ = typeText(m, "an")
	assert.Equal(t, -1, m.Highlight())

	// Enter with no highlight does nothing.
	m = press(m, tea.KeyEnter)
	assert.Empty(t, m.Selection())
}

func TestTyping_DisabledSuppressesEntry(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) { c.Disabled = true })
	m, _ = m.Focus()
	assert.False(t, m.IsOpen(), "disabled widgets do not open")
	m, _ = typeText(m, "an")
	assert.Equal(t, "", m.Query())
	assert.Empty(t, rec.inputs)
}

func TestTyping_IgnoredWhenNotFocused(t *testing.T) {
	m, rec := newTestModel(t, nil)
	m, _ = typeText(m, "an")
	assert.Equal(t, "", m.Query())
	assert.Empty(t, rec.inputs)
}

func TestDebounce_FiltersOnlyOnLatestTimer(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) { c.DebounceInterval = time.Millisecond })
	m = focused(t, m)

	m, first := typeText(m, "a")
	m, second := typeText(m, "n")
	assert.Len(t, m.Visible(), 4, "filtering waits for the timer")
	assert.Equal(t, []string{"a", "an"}, rec.inputs)

	// The stale timer from the first keystroke is ignored.
	m, _ = m.Update(debounceMsg{widget: m.ID(), id: m.debounceID - 1})
	assert.Len(t, m.Visible(), 4)

	// A timer for another widget is ignored.
	m, _ = m.Update(debounceMsg{widget: "other", id: m.debounceID})
	assert.Len(t, m.Visible(), 4)

	m, _ = m.Update(debounceMsg{widget: m.ID(), id: m.debounceID})
	assert.Equal(t, []string{"Banana", "Orange"}, labelsOf(m.Visible()))

	assert.NotNil(t, first)
	assert.NotNil(t, second)
}

// --- Visibility ---

func TestFocus_OpensAndEscapeCloses(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m = press(m, tea.KeyEsc)
	assert.False(t, m.IsOpen())

	// Typing while closed does not reopen.
	m, _ = typeText(m, "b")
	assert.False(t, m.IsOpen())

	// Focusing again does.
	m = focused(t, m)
	assert.True(t, m.IsOpen())
}

func TestBlur_KeepsDropdownState(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m = m.Blur()
	assert.False(t, m.Focused())
	assert.True(t, m.IsOpen())
}

func TestLoading_HidesListAndNavigation(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) { c.Loading = true })
	m = focused(t, m)
	view := m.View()
	assert.Contains(t, view, "Loading...")
	assert.NotContains(t, view, "Banana")

	m = press(m, tea.KeyDown)
	assert.Equal(t, -1, m.Highlight())

	m = m.SetLoading(false)
	assert.Contains(t, m.View(), "Banana")
}

// --- Keyboard navigation ---

func TestNavigation_WrapsAround(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	n := len(m.Visible())

	for range n {
		m = press(m, tea.KeyDown)
	}
	assert.Equal(t, n-1, m.Highlight())

	m = press(m, tea.KeyDown)
	assert.Equal(t, 0, m.Highlight())

	m = press(m, tea.KeyUp)
	assert.Equal(t, n-1, m.Highlight())

	m = press(m, tea.KeyUp)
	assert.Equal(t, n-2, m.Highlight())
}

func TestNavigation_UpFromNothingGoesToLast(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m = press(m, tea.KeyUp)
	assert.Equal(t, len(fruits())-1, m.Highlight())
}

func TestNavigation_EmptyListIsNoOp(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m, _ = typeText(m, "kiwi")
	require.Empty(t, m.Visible())

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyUp)
	assert.Equal(t, -1, m.Highlight())
}

func TestNavigation_InactiveWhileClosed(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m = press(m, tea.KeyEsc)
	m = press(m, tea.KeyDown)
	assert.Equal(t, -1, m.Highlight())
}

func TestNavigation_ScrollsToKeepHighlightVisible(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) { c.MaxRows = 2 })
	m = focused(t, m)
	for range 3 {
		m = press(m, tea.KeyDown)
	}
	require.Equal(t, 2, m.Highlight())
	view := m.View()
	assert.Contains(t, view, "Banana")
	assert.Contains(t, view, "Orange")
	assert.NotContains(t, view, "Apple")

	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyUp)
	assert.Contains(t, m.View(), "Apple")
}

// --- Selection ---

func TestSingleSelect_ReplacesAndCloses(t *testing.T) {
	m, rec := newTestModel(t, nil)
	m = focused(t, m)

	m = press(m, tea.KeyDown) // Apple
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.IsOpen())
	assert.Equal(t, ChangedMsg{ID: m.ID(), Value: option.String("Apple")}, runCmd(cmd))

	m = focused(t, m)
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown) // Banana
	m = press(m, tea.KeyEnter)

	assert.Equal(t, option.Options{option.String("Banana")}, m.Selection())
	assert.Equal(t, option.String("Banana"), m.Value())
	assert.False(t, m.IsOpen())
	assert.Equal(t, []option.Value{option.String("Apple"), option.String("Banana")}, rec.changes)
}

func TestCommit_ClearsQueryAndRefilters(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) { c.Multiple = true })
	m = focused(t, m)
	m, _ = typeText(m, "an")
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyEnter)

	assert.Equal(t, "", m.Query())
	assert.Len(t, m.Visible(), 4)
	assert.Equal(t, -1, m.Highlight())
	// Clearing the query is not a keystroke.
	assert.Equal(t, []string{"an"}, rec.inputs)
}

func TestMultiSelect_TogglesAndStaysOpen(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) { c.Multiple = true })
	m = focused(t, m)

	m, _ = m.Commit(option.Pair("Orange", "orange"))
	m, _ = m.Commit(option.String("Apple"))
	assert.True(t, m.IsOpen())
	assert.Equal(t, []string{"Orange", "Apple"}, m.Selection().Labels())

	// A distinct instance with the same value deselects.
	m, cmd := m.Commit(option.Pair("Orange", "orange"))
	assert.Equal(t, []string{"Apple"}, m.Selection().Labels())
	msg, ok := runCmd(cmd).(ChangedMsg)
	require.True(t, ok)
	assert.Equal(t, option.Options{option.String("Apple")}, msg.Value)

	require.Len(t, rec.changes, 3)
	assert.Equal(t, option.Options{option.Pair("Orange", "orange")}, rec.changes[0])
	assert.Equal(t, option.Options{option.Pair("Orange", "orange"), option.String("Apple")}, rec.changes[1])
}

func TestMultiSelect_ToggleTwiceRestoresPriorState(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) { c.Multiple = true })
	m, _ = m.Commit(option.String("Apple"))
	prior := m.Selection()

	m, _ = m.Commit(option.String("Banana"))
	m, _ = m.Commit(option.String("Banana"))
	assert.Equal(t, prior, m.Selection())
}

func TestMultiSelect_CallbackGetsCopy(t *testing.T) {
	var got option.Options
	m, _ := newTestModel(t, func(c *Config) {
		c.Multiple = true
		c.OnChange = func(v option.Value) { got = v.(option.Options) }
	})
	m, _ = m.Commit(option.String("Apple"))
	got[0] = option.String("Mutated")
	assert.Equal(t, []string{"Apple"}, m.Selection().Labels())
}

func TestMultiSelect_ViewShowsChipsAndCount(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) { c.Multiple = true })
	m, _ = m.Commit(option.String("Apple"))
	m, _ = m.Commit(option.Pair("Grapes", "grapes"))
	view := m.View()
	assert.Contains(t, view, "Apple")
	assert.Contains(t, view, "Grapes")
	assert.Contains(t, view, "2 options selected")
}

// --- Controlled value ---

func TestValue_SeedsSelection(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) {
		c.Multiple = true
		c.Value = option.Options{option.String("Apple"), option.String("Apple"), option.String("Banana")}
	})
	assert.Equal(t, []string{"Apple", "Banana"}, m.Selection().Labels())
	assert.Empty(t, rec.changes)
}

func TestSetValue_MirrorsWithoutCallback(t *testing.T) {
	m, rec := newTestModel(t, nil)
	m = m.SetValue(option.Pair("Orange", "orange"))
	assert.Equal(t, option.Pair("Orange", "orange"), m.Value())

	m = m.SetValue(option.Options{option.String("Apple"), option.String("Banana")})
	assert.Equal(t, option.String("Apple"), m.Value(), "single mode keeps the first")

	m = m.SetValue(nil)
	assert.Nil(t, m.Value())
	assert.Empty(t, rec.changes)
}

// --- Pointer ---

func mounted(t *testing.T, m Model, hub *pointer.Hub) Model {
	t.Helper()
	m = m.Mount(hub)
	return m.SetBounds(pointer.Rect{X: 0, Y: 0, Width: 40, Height: 10})
}

func dispatch(t *testing.T, hub *pointer.Hub, m Model, ev pointer.Event) Model {
	t.Helper()
	msg := runCmd(hub.Dispatch(ev))
	if msg == nil {
		return m
	}
	m, _ = m.Update(msg)
	return m
}

func TestPointer_OutsidePressCloses(t *testing.T) {
	hub := pointer.NewHub(nil)
	m, _ := newTestModel(t, nil)
	m = mounted(t, m, hub)
	m = focused(t, m)

	m = dispatch(t, hub, m, pointer.Event{Point: pointer.Point{X: 5, Y: 3}, Kind: pointer.KindPress})
	assert.True(t, m.IsOpen(), "inside press keeps it open")

	m = dispatch(t, hub, m, pointer.Event{Point: pointer.Point{X: 50, Y: 3}, Kind: pointer.KindMotion})
	assert.True(t, m.IsOpen(), "motion is not a press")

	m = dispatch(t, hub, m, pointer.Event{Point: pointer.Point{X: 50, Y: 3}, Kind: pointer.KindPress})
	assert.False(t, m.IsOpen())
}

func TestPointer_OutsideMsgForOtherWidgetIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = focused(t, m)
	m, _ = m.Update(OutsideMsg{ID: "someone-else"})
	assert.True(t, m.IsOpen())
}

func TestPointer_MountIsScoped(t *testing.T) {
	hub := pointer.NewHub(nil)
	m, _ := newTestModel(t, nil)
	m = m.Mount(hub)
	m = m.Mount(hub)
	assert.Equal(t, 1, hub.Len())
	assert.True(t, m.Mounted())

	copyOf := m
	copyOf.Unmount()
	assert.Equal(t, 0, hub.Len())
	assert.False(t, m.Mounted(), "copies share the subscription")
	assert.NotPanics(t, func() { m.Unmount() })
}

func TestPointer_ClickRowCommits(t *testing.T) {
	hub := pointer.NewHub(nil)
	m, rec := newTestModel(t, nil)
	m = mounted(t, m, hub)
	m = focused(t, m)

	// Rows start under the label and the input.
	m, _ = m.Update(tea.MouseMsg{X: 4, Y: listTop + 1, Action: tea.MouseActionMotion})
	assert.Equal(t, 1, m.Highlight())

	m, cmd := m.Update(tea.MouseMsg{X: 4, Y: listTop + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, []option.Value{option.Pair("Orange", "orange")}, rec.changes)
	assert.False(t, m.IsOpen())
}

func TestPointer_ClickInputFocuses(t *testing.T) {
	hub := pointer.NewHub(nil)
	m, _ := newTestModel(t, nil)
	m = mounted(t, m, hub)

	m, _ = m.Update(tea.MouseMsg{X: 3, Y: inputRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.Focused())
	assert.True(t, m.IsOpen())
}

func TestPointer_PlaceholderRowNotClickable(t *testing.T) {
	hub := pointer.NewHub(nil)
	m, rec := newTestModel(t, nil)
	m = mounted(t, m, hub)
	m = focused(t, m)
	m, _ = typeText(m, "kiwi")

	m, _ = m.Update(tea.MouseMsg{X: 3, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Empty(t, rec.changes)
	assert.True(t, m.IsOpen())
}

// --- Rendering ---

func TestView_DescriptionAndRenderOption(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) {
		c.Description = "With description and custom results display"
		c.RenderOption = func(o option.Option) string { return "[" + strings.ToUpper(o.Label()) + "]" }
	})
	m = focused(t, m)
	view := m.View()
	assert.Contains(t, view, "With description")
	assert.Contains(t, view, "[BANANA]")
	assert.Contains(t, view, "Sync Search")
}

func TestView_ClosedHidesList(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.NotContains(t, m.View(), "Banana")
}

func TestSetOptions_Refilters(t *testing.T) {
	m, _ := newTestModel(t, func(c *Config) { c.Options = nil })
	m = focused(t, m)
	m, _ = typeText(m, "an")
	assert.Empty(t, m.Visible())

	m = m.SetOptions(fruits())
	assert.Equal(t, []string{"Banana", "Orange"}, labelsOf(m.Visible()))
}

func TestSetQuery_DoesNotNotify(t *testing.T) {
	m, rec := newTestModel(t, func(c *Config) { c.FilterOptions = filter.Prefix })
	m = m.SetQuery("gr")
	assert.Equal(t, "gr", m.Query())
	assert.Equal(t, []string{"Grapes"}, labelsOf(m.Visible()))
	assert.Empty(t, rec.inputs)
}

func TestErrors_AreSentinels(t *testing.T) {
	_, err := New(Config{Label: "x"})
	assert.True(t, errors.Is(err, ErrMissingOnChange))
}
