package state

// Direction selects which tree is the sync source.
type Direction int

const (
	SharedToProject Direction = iota
	ProjectToShared
)

// DiffMode controls how a file diff is rendered.
type DiffMode int

const (
	SideBySide DiffMode = iota
	Unified
)

// Screen is the active top-level screen.
type Screen int

const (
	List Screen = iota
	Diff
)

// UIState holds cross-widget UI state used by the list, diff and status
// bar. Reducers take it by value and return an updated copy.
type UIState struct {
	Screen    Screen
	View      DiffMode
	Direction Direction

	// Fold collapses long unchanged runs in the side-by-side view.
	Fold bool

	// Selection & scrolling
	Selected int
	ScrollV  int

	// Layout
	Width  int
	Height int
	MinCol int // narrowest usable column; below 2*MinCol+3 we go unified

	ShowHelp bool

	// Notices and ephemeral messages
	Notice string
}
