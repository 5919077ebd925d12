package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/oci-runtime/oci"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stmtStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err     error
	conn    *oci.Connection
	res     *result
	dsn     string
	last    string
	history []string
	input   textinput.Model
	histIdx int
	running bool
}

type execResultMsg struct {
	err error
	res *result
}

func newInteractiveModel(conn *oci.Connection, dsn string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "SELECT * FROM dual"
	ti.Prompt = "SQL> "
	ti.Width = 80
	ti.Focus()
	return &interactiveModel{conn: conn, dsn: dsn, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) execute(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := execute(m.conn, text)
		return execResultMsg{res: res, err: err}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			text := strings.TrimSuffix(strings.TrimSpace(m.input.Value()), ";")
			if text == "" || m.running {
				return m, nil
			}
			switch strings.ToLower(text) {
			case "exit", "quit":
				return m, tea.Quit
			case "commit":
				m.last, m.res, m.err = text, nil, m.conn.Commit()
				m.input.SetValue("")
				return m, nil
			case "rollback":
				m.last, m.res, m.err = text, nil, m.conn.Rollback()
				m.input.SetValue("")
				return m, nil
			}
			m.history = append(m.history, text)
			m.histIdx = len(m.history)
			m.last = text
			m.running = true
			m.input.SetValue("")
			return m, m.execute(text)

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil
		}

	case execResultMsg:
		m.running = false
		m.res, m.err = msg.res, msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("OCI Runner"))
	b.WriteString(" ")
	b.WriteString(m.dsn)
	b.WriteString("\n\n")

	if m.last != "" {
		b.WriteString(stmtStyle.Render(m.last))
		b.WriteString("\n\n")
	}
	switch {
	case m.running:
		b.WriteString("Running...\n\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	case m.res != nil:
		var out strings.Builder
		_ = printResult(&out, m.res, true)
		b.WriteString(out.String())
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • commit/rollback • esc quit"))
	return b.String()
}

func runInteractive(conn *oci.Connection, dsn string) error {
	p := tea.NewProgram(newInteractiveModel(conn, dsn), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
