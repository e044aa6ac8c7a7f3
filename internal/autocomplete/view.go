package autocomplete

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"github.com/muesli/reflow/wordwrap"

	"github.com/runger/autocomplete/internal/option"
)

var (
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	highlightStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	normalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	checkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	disabledStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	chipStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("33")).Padding(0, 1)
)

// View renders the widget: label, input, dropdown, description, chips and,
// while focused, a help line.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(labelStyle.Render(Truncate(cleanLabel(m.cfg.Label), m.cfg.Width)))
	b.WriteRune('\n')
	b.WriteString(m.viewInput())

	if dropdown := m.viewDropdown(); dropdown != "" {
		b.WriteRune('\n')
		b.WriteString(dropdown)
	}

	if m.cfg.Description != "" {
		b.WriteRune('\n')
		b.WriteString(descriptionStyle.Render(wordwrap.String(m.cfg.Description, m.cfg.Width)))
	}

	if m.cfg.Multiple && len(m.selected) > 0 {
		b.WriteRune('\n')
		b.WriteString(m.viewChips())
	}

	if m.focused {
		b.WriteRune('\n')
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return b.String()
}

func (m Model) viewInput() string {
	if m.cfg.Disabled {
		return disabledStyle.Render(m.input.View())
	}
	return m.input.View()
}

// viewDropdown renders the option list, the "no results" row, or a
// loading hint. It returns "" while closed.
func (m Model) viewDropdown() string {
	if !m.open {
		return ""
	}
	if m.cfg.Loading {
		return dimStyle.Render("  Loading...")
	}
	if len(m.visible) == 0 {
		return dimStyle.Render("  " + NoResults)
	}

	rows := make([]string, 0, m.rowsShown())
	for i := m.offset; i < m.offset+m.rowsShown(); i++ {
		rows = append(rows, m.viewRow(i, m.visible[i]))
	}
	return strings.Join(rows, "\n")
}

// viewRow renders one option with its cursor and, in multi mode, a check.
func (m Model) viewRow(i int, o option.Option) string {
	cursor := "  "
	if i == m.highlight {
		cursor = "> "
	}
	check := ""
	if m.cfg.Multiple {
		check = "  "
		if m.selected.Contains(o) {
			check = checkStyle.Render("✓ ")
		}
	}

	var text string
	if m.cfg.RenderOption != nil {
		text = m.cfg.RenderOption(o)
	} else {
		text = Truncate(cleanLabel(o.Label()), m.cfg.Width-lipgloss.Width(cursor+check))
	}

	if i == m.highlight {
		return highlightStyle.Render(cursor) + check + highlightStyle.Render(text)
	}
	return normalStyle.Render(cursor) + check + normalStyle.Render(text)
}

// viewChips renders the multi-select selection as chips followed by a count.
func (m Model) viewChips() string {
	chips := make([]string, 0, len(m.selected))
	for _, o := range m.selected {
		chips = append(chips, chipStyle.Render(Truncate(cleanLabel(o.Label()), m.cfg.Width/2)))
	}
	count := dimStyle.Render(english.Plural(len(m.selected), "option", "") + " selected")
	return strings.Join(chips, " ") + "\n" + count
}
