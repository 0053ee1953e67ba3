package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listCheckedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FormatPickerModel - Interactive output format selection
// =============================================================================

// FormatPickerModel is the bubbletea model behind "render --pick". It lists
// output formats; space toggles a format, enter confirms, typing filters.
type FormatPickerModel struct {
	Formats   []string
	Cursor    int
	Offset    int
	Height    int
	Filter    string
	Checked   map[string]bool
	Confirmed bool
}

// NewFormatPickerModel creates a picker over formats with preselected
// entries checked.
func NewFormatPickerModel(formats []string, preselected ...string) FormatPickerModel {
	m := FormatPickerModel{
		Formats: formats,
		Height:  12,
		Checked: make(map[string]bool),
	}
	for _, f := range preselected {
		m.Checked[f] = true
	}
	return m
}

// Selected returns the checked formats in list order.
func (m FormatPickerModel) Selected() []string {
	var out []string
	for _, f := range m.Formats {
		if m.Checked[f] {
			out = append(out, f)
		}
	}
	return out
}

// visible returns the formats matching the current filter.
func (m FormatPickerModel) visible() []string {
	if m.Filter == "" {
		return m.Formats
	}
	var out []string
	for _, f := range m.Formats {
		if strings.Contains(f, m.Filter) {
			out = append(out, f)
		}
	}
	return out
}

func (m FormatPickerModel) Init() tea.Cmd {
	return nil
}

func (m FormatPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		items := m.visible()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.moveCursor(-1, len(items))
		case tea.KeyDown:
			m.moveCursor(1, len(items))
		case tea.KeySpace:
			if m.Cursor < len(items) {
				f := items[m.Cursor]
				m.Checked[f] = !m.Checked[f]
			}
		case tea.KeyEnter:
			if len(m.Selected()) == 0 && m.Cursor < len(items) {
				m.Checked[items[m.Cursor]] = true
			}
			m.Confirmed = true
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m *FormatPickerModel) moveCursor(delta, n int) {
	if n == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), n-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m FormatPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Output Formats"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ render  type to filter  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
	}
	b.WriteString("\n")

	items := m.visible()
	end := min(m.Offset+m.Height, len(items))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Checked[f] {
			mark = "[" + iconSuccess + "]"
		}
		rows = append(rows, []string{cursor, mark, f})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Format").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(items) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Checked[items[idx]]:
				return listCheckedStyle
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	selected := m.Selected()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  selected: %s",
		min(m.Cursor+1, len(items)), len(items), strings.Join(selected, ", "))))

	return b.String()
}

// pickFormats runs the picker and returns the confirmed formats, or nil
// when the user quit.
func pickFormats(formats []string, preselected ...string) ([]string, error) {
	model := NewFormatPickerModel(slices.Clone(formats), preselected...)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(FormatPickerModel)
	if !ok || !m.Confirmed {
		return nil, nil
	}
	return m.Selected(), nil
}
