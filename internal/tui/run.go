package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-ledger/internal/importer"
)

// Review shows the preview full screen and blocks until the user commits or
// aborts. A canceled context aborts.
func Review(ctx context.Context, title string, preview *importer.Preview, skipDuplicates bool) (Decision, error) {
	program := tea.NewProgram(
		NewModel(title, preview, skipDuplicates),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		return Decision{}, fmt.Errorf("review screen failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected review model %T", final)
	}
	return m.Decision(), nil
}
