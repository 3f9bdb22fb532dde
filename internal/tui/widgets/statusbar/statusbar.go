package statusbar

import (
	"fmt"
	"strings"

	"syncview/internal/tui/state"
)

type StatusBar struct{}

func NewStatusBar() StatusBar { return StatusBar{} }

// View composes a concise status line reflecting key UI state.
func (StatusBar) View(s state.UIState) string {
	dir := "shared -> project"
	if s.Direction == state.ProjectToShared {
		dir = "project -> shared"
	}
	view := "Side-by-side"
	if s.View == state.Unified {
		view = "Unified"
	}
	fold := "Fold: Off"
	if s.Fold {
		fold = "Fold: On"
	}
	pos := fmt.Sprintf("V:%d", s.ScrollV)
	width := fmt.Sprintf("W:%d", s.Width)

	parts := []string{dir, view, fold, pos, width}
	if s.Notice != "" {
		parts = append(parts, s.Notice)
	}
	return strings.Join(parts, "  ")
}
