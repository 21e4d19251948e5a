package ui

import "github.com/olivier-w/specpaint/internal/display"

// Pane selects what the lower spectrogram shows.
type Pane int

const (
	PaneEdited Pane = iota
	PaneDiff
)

// Next cycles to the next pane.
func (p Pane) Next() Pane {
	switch p {
	case PaneEdited:
		return PaneDiff
	default:
		return PaneEdited
	}
}

// String returns the name of the pane.
func (p Pane) String() string {
	switch p {
	case PaneDiff:
		return "difference"
	default:
		return "edited"
	}
}

// Palette returns the colour scheme for the pane's values.
func (p Pane) Palette() display.Palette {
	if p == PaneDiff {
		return display.Diverging
	}
	return display.Heat
}
