package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

// cursorDelta maps movement keys to (frames, bins) steps. Shifted arrows
// move ten steps.
func cursorDelta(key string) (df, db int, ok bool) {
	switch key {
	case "left", "h":
		return -1, 0, true
	case "right", "l":
		return 1, 0, true
	case "up", "k":
		return 0, 1, true
	case "down", "j":
		return 0, -1, true
	case "shift+left", "H":
		return -10, 0, true
	case "shift+right", "L":
		return 10, 0, true
	case "shift+up", "K":
		return 0, 10, true
	case "shift+down", "J":
		return 0, -10, true
	}
	return 0, 0, false
}

func helpText(hasAudio bool) string {
	s := "arrows move  space paint  d draw  e erase  m mode  [/] radius  -/+ level  tab pane"
	s += "\nb block  x reset  t edit  g glitch  o original"
	if hasAudio {
		s += "  p edited  s stop  P pause  ,/. seek  9/0 volume  w export"
	}
	s += "  q quit"
	return s
}
