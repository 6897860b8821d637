package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mklimuk/semester-pilot/pkg/state"
)

// RunBoard shows the project kanban until the user quits.
func RunBoard(ctx context.Context, store *state.Store, out io.Writer) error {
	m := newBoardModel(ctx, store)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
