// Package tui is a live terminal view of projected tables.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/hiddenhand/internal/display"
	"github.com/lox/hiddenhand/internal/layout"
	"github.com/lox/hiddenhand/internal/projector"
)

// maxLogEntries bounds the completed-hand log.
const maxLogEntries = 200

// ViewMsg carries a newly published view.
type ViewMsg struct {
	View *projector.GameView
}

// HandMsg carries a newly recorded completed hand.
type HandMsg struct {
	Hand layout.HandCompleted
}

// Model is the bubbletea model. Views arrive as ViewMsg and completed hands
// as HandMsg; Tab cycles between watched tables.
type Model struct {
	logger *log.Logger

	tables   []string
	views    map[string]*projector.GameView
	selected int

	logViewport viewport.Model
	log         []string

	width    int
	height   int
	quitting bool
}

// NewModel returns a model watching tables, in display order.
func NewModel(tables []string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")
	return &Model{
		logger:      logger.WithPrefix("tui"),
		tables:      append([]string(nil), tables...),
		views:       make(map[string]*projector.GameView),
		logViewport: vp,
	}
}

// Hooks returns projector callbacks that forward to a running program.
func Hooks(p *tea.Program) (onPublish func(*projector.GameView), onHand func(layout.HandCompleted)) {
	return func(v *projector.GameView) { p.Send(ViewMsg{View: v}) },
		func(ev layout.HandCompleted) { p.Send(HandMsg{Hand: ev}) }
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Selected returns the name of the table on screen.
func (m *Model) Selected() string {
	if len(m.tables) == 0 {
		return ""
	}
	return m.tables[m.selected]
}

// Log returns the completed-hand log, oldest first.
func (m *Model) Log() []string {
	return m.log
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Resized", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if len(m.tables) > 0 {
				m.selected = (m.selected + 1) % len(m.tables)
			}
			return m, nil
		case "shift+tab":
			if len(m.tables) > 0 {
				m.selected = (m.selected + len(m.tables) - 1) % len(m.tables)
			}
			return m, nil
		}

	case ViewMsg:
		name := msg.View.Name()
		if !m.watching(name) {
			m.tables = append(m.tables, name)
		}
		m.views[name] = msg.View
		return m, nil

	case HandMsg:
		m.appendLog(strings.TrimRight(display.RenderHand(msg.Hand), "\n"))
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) watching(name string) bool {
	for _, t := range m.tables {
		if t == name {
			return true
		}
	}
	return false
}

func (m *Model) appendLog(entry string) {
	m.log = append(m.log, entry)
	if len(m.log) > maxLogEntries {
		m.log = m.log[len(m.log)-maxLogEntries:]
	}
	m.logViewport.SetContent(strings.Join(m.log, "\n\n"))
	m.logViewport.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	tablePane := m.renderTablePane()
	tableHeight := lipgloss.Height(tablePane)

	help := display.InfoStyle.Render("Tab next table • ↑↓ scroll log • q to quit")

	logWidth := max(m.width-2, 1)
	logHeight := max(m.height-tableHeight-lipgloss.Height(help)-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight

	top := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(tablePane)

	bottom := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, help)
}

func (m *Model) renderTablePane() string {
	name := m.Selected()
	if name == "" {
		return display.InfoStyle.Render("No tables")
	}
	var tabs []string
	for i, t := range m.tables {
		if i == m.selected {
			tabs = append(tabs, display.HeaderStyle.Render(" "+t+" "))
		} else {
			tabs = append(tabs, display.InfoStyle.Render(" "+t+" "))
		}
	}
	header := strings.Join(tabs, " ")

	view, ok := m.views[name]
	if !ok {
		return header + "\n" + display.InfoStyle.Render(fmt.Sprintf("Waiting for %s...", name))
	}
	return header + "\n" + strings.TrimRight(display.RenderTable(view), "\n")
}
