package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/state"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

type boardModel struct {
	ctx   context.Context
	store *state.Store

	width int

	projects []model.Project
	project  int // index into projects
	column   int // index into model.TaskStatuses
	row      int

	lastLog string
}

type movedMsg struct {
	title string
	dir   model.Direction
	ok    bool
}

func newBoardModel(ctx context.Context, store *state.Store) boardModel {
	m := boardModel{ctx: ctx, store: store, lastLog: "Loaded."}
	m.reload()
	return m
}

func (m *boardModel) reload() {
	m.projects = m.store.Snapshot().Projects
	if m.project >= len(m.projects) {
		m.project = 0
	}
	m.clampRow()
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) moveCmd(projectID string, task model.Task, dir model.Direction) tea.Cmd {
	return func() tea.Msg {
		ok := m.store.MoveTask(m.ctx, projectID, task.ID, dir)
		return movedMsg{title: task.Title, dir: dir, ok: ok}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case movedMsg:
		if msg.ok {
			m.lastLog = fmt.Sprintf("Moved %q %s.", msg.title, msg.dir)
			if msg.dir == model.Forward {
				m.column++
			} else {
				m.column--
			}
		} else {
			m.lastLog = fmt.Sprintf("%q cannot move %s.", msg.title, msg.dir)
		}
		m.reload()
		m.selectTask(msg.title)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "]":
			if len(m.projects) > 0 {
				m.project = (m.project + 1) % len(m.projects)
				m.row = 0
				m.clampRow()
			}
		case "shift+tab", "[":
			if len(m.projects) > 0 {
				m.project = (m.project + len(m.projects) - 1) % len(m.projects)
				m.row = 0
				m.clampRow()
			}
		case "left", "h":
			if m.column > 0 {
				m.column--
				m.clampRow()
			}
		case "right", "l":
			if m.column < len(model.TaskStatuses)-1 {
				m.column++
				m.clampRow()
			}
		case "up", "k":
			if m.row > 0 {
				m.row--
			}
		case "down", "j":
			if m.row < len(m.columnTasks(m.column))-1 {
				m.row++
			}
		case ">", ".", "enter":
			return m, m.move(model.Forward)
		case "<", ",":
			return m, m.move(model.Backward)
		}
	}
	return m, nil
}

func (m *boardModel) move(dir model.Direction) tea.Cmd {
	tasks := m.columnTasks(m.column)
	if m.row < 0 || m.row >= len(tasks) {
		m.lastLog = "No task selected."
		return nil
	}
	return m.moveCmd(m.projects[m.project].ID, tasks[m.row], dir)
}

func (m boardModel) columnTasks(col int) []model.Task {
	if len(m.projects) == 0 || col < 0 || col >= len(model.TaskStatuses) {
		return nil
	}
	var out []model.Task
	for _, t := range m.projects[m.project].Tasks {
		if t.Status == model.TaskStatuses[col] {
			out = append(out, t)
		}
	}
	return out
}

func (m *boardModel) clampRow() {
	n := len(m.columnTasks(m.column))
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// selectTask keeps the cursor on a task after it changed column.
func (m *boardModel) selectTask(title string) {
	if m.column < 0 {
		m.column = 0
	}
	if m.column >= len(model.TaskStatuses) {
		m.column = len(model.TaskStatuses) - 1
	}
	for i, t := range m.columnTasks(m.column) {
		if t.Title == title {
			m.row = i
			return
		}
	}
	m.clampRow()
}

func (m boardModel) View() string {
	if len(m.projects) == 0 {
		return "No projects.\n\nPress q to quit.\n"
	}
	p := m.projects[m.project]

	header := ui.Heading(ui.IconBox, fmt.Sprintf("%s  (%d/%d)", p.Title, m.project+1, len(m.projects))) +
		"  " + ui.Muted.Render(p.Category)

	colW := 28
	if m.width > 0 {
		colW = m.width/len(model.TaskStatuses) - 4
		if colW < 16 {
			colW = 16
		}
	}

	cols := make([]string, 0, len(model.TaskStatuses))
	for i, status := range model.TaskStatuses {
		lines := []string{ui.PanelTitle.Render(string(status))}
		tasks := m.columnTasks(i)
		if len(tasks) == 0 {
			lines = append(lines, ui.Muted.Render("(empty)"))
		}
		for j, t := range tasks {
			line := truncate(t.Title, colW-2)
			if i == m.column && j == m.row {
				line = ui.SelectedRow.Render("> " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
		style := ui.Panel
		if i == m.column {
			style = ui.PanelActive
		}
		cols = append(cols, style.Width(colW).Render(strings.Join(lines, "\n")))
	}

	keys := ui.Muted.Render("←/→ column · ↑/↓ task · >/< move · tab project · q quit")
	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n" + keys + "\n\n" + m.lastLog + "\n"
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
