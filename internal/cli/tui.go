package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pellig/statblock/pkg/statblock"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMaroon)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// LayoutListModel is the bubbletea model for interactive layout selection.
type LayoutListModel struct {
	Names    []string
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewLayoutListModel creates a new layout list model.
func NewLayoutListModel(names []string) LayoutListModel {
	return LayoutListModel{
		Names:  names,
		Height: 15,
	}
}

func (m LayoutListModel) Init() tea.Cmd {
	return nil
}

func (m LayoutListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Names)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Names[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayoutListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Names) {
		end = len(m.Names)
	}

	for i := m.Offset; i < end; i++ {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(m.Names[i]) + "\n")
	}

	return b.String()
}

// pickLayout runs the interactive layout picker and returns the chosen layout
// name, or "" if the user quit without selecting.
func pickLayout(registry *statblock.Registry) (string, error) {
	model := NewLayoutListModel(registry.Names())
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(LayoutListModel); ok {
		return m.Selected, nil
	}
	return "", nil
}
