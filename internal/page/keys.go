package page

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the page-level bindings. Everything else goes to the
// focused widget.
type KeyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
	Exit key.Binding
}

// DefaultKeyMap returns the demo page bindings. Exit only applies while no
// widget has focus, so "q" can still be typed into a query.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Exit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit when idle")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Quit, k.Exit}}
}
