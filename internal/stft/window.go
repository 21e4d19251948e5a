package stft

import "gonum.org/v1/gonum/dsp/window"

// WindowTable is a precomputed Hann window,
// w[i] = 0.5*(1-cos(2πi/(N-1))).
type WindowTable []float64

// NewWindowTable builds a Hann window of length n.
func NewWindowTable(n int) WindowTable {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	if n > 1 {
		window.Hann(w)
	}
	return WindowTable(w)
}

// Len returns the window length.
func (w WindowTable) Len() int { return len(w) }

// Squared returns w[i]² for every i.
func (w WindowTable) Squared() []float64 {
	sq := make([]float64, len(w))
	for i, v := range w {
		sq[i] = v * v
	}
	return sq
}
