package main

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plugkit/atom/bridge"
	"github.com/plugkit/atom/codec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// treeLine is one row of the rendered atom tree.
type treeLine struct {
	text  string
	depth int
}

type browserModel struct {
	lines     []treeLine
	collapsed map[int]bool
	visible   []int // indexes into lines
	selected  int
	filter    textinput.Model
	filtering bool
	err       error
}

func newBrowserModel(conv *bridge.Converter, a codec.Atom) *browserModel {
	m := &browserModel{collapsed: make(map[int]bool)}

	var buf bytes.Buffer
	if err := conv.RenderTree(&buf, a); err != nil {
		m.err = err
		return m
	}
	for _, raw := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		trimmed := strings.TrimLeft(raw, " ")
		m.lines = append(m.lines, treeLine{
			text:  trimmed,
			depth: (len(raw) - len(trimmed)) / 2,
		})
	}

	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.CharLimit = 64
	ti.Width = 32
	m.filter = ti

	m.rebuild()
	return m
}

// hasChildren reports whether line i is followed by deeper lines.
func (m *browserModel) hasChildren(i int) bool {
	return i+1 < len(m.lines) && m.lines[i+1].depth > m.lines[i].depth
}

// rebuild recomputes the visible rows from the collapse set and the
// filter text.
func (m *browserModel) rebuild() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	hideBelow := -1 // depth at which a collapsed subtree started
	for i, ln := range m.lines {
		if hideBelow >= 0 {
			if ln.depth > hideBelow {
				continue
			}
			hideBelow = -1
		}
		if m.collapsed[i] {
			hideBelow = ln.depth
		}
		if needle != "" && !strings.Contains(strings.ToLower(ln.text), needle) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
			if key.String() == "esc" {
				m.filter.SetValue("")
			}
			m.rebuild()
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.rebuild()
			return m, cmd
		}
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "enter", " ":
		if len(m.visible) > 0 {
			i := m.visible[m.selected]
			if m.hasChildren(i) {
				m.collapsed[i] = !m.collapsed[i]
				m.rebuild()
			}
		}

	case "/":
		m.filtering = true
		m.filter.Focus()

	case "esc":
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.rebuild()
		}
	}
	return m, nil
}

func (m *browserModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("atomcat"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	for pos, i := range m.visible {
		ln := m.lines[i]
		marker := "  "
		if m.hasChildren(i) {
			marker = "- "
			if m.collapsed[i] {
				marker = "+ "
			}
		}
		row := strings.Repeat("  ", ln.depth) + marker + ln.text
		if pos == m.selected {
			b.WriteString(selectedStyle.Render(row))
		} else {
			b.WriteString(nodeStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(m.filter.View())
	} else {
		help := "j/k: move  enter: fold  /: filter  q: quit"
		if m.filter.Value() != "" {
			help = "filter: " + m.filter.Value() + "  esc: clear  " + help
		}
		b.WriteString(dimStyle.Render(help))
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractive(conv *bridge.Converter, a codec.Atom) error {
	p := tea.NewProgram(newBrowserModel(conv, a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
