package state

// ToggleDirection flips the sync source and sets a brief notice.
func ToggleDirection(s UIState) UIState {
	if s.Direction == SharedToProject {
		s.Direction = ProjectToShared
		s.Notice = "project -> shared"
	} else {
		s.Direction = SharedToProject
		s.Notice = "shared -> project"
	}
	return s
}

// ToggleView switches between side-by-side and unified diff views.
func ToggleView(s UIState) UIState {
	if s.View == SideBySide {
		s.View = Unified
	} else {
		s.View = SideBySide
	}
	return s
}

// ToggleFold flips unchanged-run folding in the side-by-side view.
func ToggleFold(s UIState) UIState {
	s.Fold = !s.Fold
	if s.Fold {
		s.Notice = "folding on"
	} else {
		s.Notice = "folding off"
	}
	return s
}

// ToggleHelp shows or hides the key help overlay.
func ToggleHelp(s UIState) UIState {
	s.ShowHelp = !s.ShowHelp
	return s
}

// MoveSelection moves the list cursor by delta, clamped to [0, count).
func MoveSelection(s UIState, delta, count int) UIState {
	s.Selected += delta
	if s.Selected >= count {
		s.Selected = count - 1
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
	return s
}

// Scroll adjusts vertical scroll by delta, clamped to [0, max].
func Scroll(s UIState, delta, max int) UIState {
	s.ScrollV += delta
	if s.ScrollV > max {
		s.ScrollV = max
	}
	if s.ScrollV < 0 {
		s.ScrollV = 0
	}
	return s
}

// Resize updates the layout and falls back to unified rendering when the
// terminal is too narrow for two columns.
// Threshold heuristic: need at least 2*MinCol plus 3 chars for separator/gutters.
func Resize(s UIState, width, height int) UIState {
	s.Width = width
	s.Height = height
	threshold := 2*s.MinCol + 3
	if s.View == SideBySide && s.Width < threshold {
		s.View = Unified
		s.Notice = "Narrow width: using unified view"
	}
	return s
}

// OpenDiff enters the diff screen for the current selection.
func OpenDiff(s UIState) UIState {
	s.Screen = Diff
	s.ScrollV = 0
	return s
}

// CloseDiff returns to the file list.
func CloseDiff(s UIState) UIState {
	s.Screen = List
	s.ScrollV = 0
	return s
}
