// Package mask holds the two-layer spectral edit grid, the brush that
// paints into it, and the rule that combines a mask with a spectrogram.
//
// A Mask is never edited in place once it has been handed out: every edit
// returns a fresh copy, so a snapshot held by a running resynthesis cannot
// change underneath it.
package mask

const (
	// NeutralGain leaves a cell's magnitude unchanged.
	NeutralGain = 0.0
	MinGain     = -80.0
	MaxGain     = 24.0

	// Inactive marks a cell with no generated tone.
	Inactive = -999.0
	// ActiveThreshold: generative values above this are synthesized.
	ActiveThreshold = -900.0
	MaxLoudness     = 0.0
)

// Mask is a frames×bins grid with a multiplicative gain layer and an
// additive generative-loudness layer, both in dB.
type Mask struct {
	frames     int
	bins       int
	gain       []float64 // [frame*bins+bin]
	generative []float64
}

// New returns an all-neutral mask sized to a spectrogram.
func New(frames, bins int) *Mask {
	if frames < 0 {
		frames = 0
	}
	if bins < 0 {
		bins = 0
	}
	m := &Mask{
		frames:     frames,
		bins:       bins,
		gain:       make([]float64, frames*bins),
		generative: make([]float64, frames*bins),
	}
	for i := range m.generative {
		m.generative[i] = Inactive
	}
	return m
}

func (m *Mask) Frames() int { return m.frames }
func (m *Mask) Bins() int   { return m.bins }

// Fits reports whether the mask matches a frames×bins grid.
func (m *Mask) Fits(frames, bins int) bool {
	return m != nil && m.frames == frames && m.bins == bins
}

func (m *Mask) index(frame, bin int) int { return frame*m.bins + bin }

// Gain returns the gain layer value at (frame, bin) in dB.
func (m *Mask) Gain(frame, bin int) float64 { return m.gain[m.index(frame, bin)] }

// Generative returns the generative layer value at (frame, bin) in dB.
func (m *Mask) Generative(frame, bin int) float64 {
	return m.generative[m.index(frame, bin)]
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{
		frames:     m.frames,
		bins:       m.bins,
		gain:       make([]float64, len(m.gain)),
		generative: make([]float64, len(m.generative)),
	}
	copy(out.gain, m.gain)
	copy(out.generative, m.generative)
	return out
}

// IsNeutral reports whether no cell carries an edit.
func (m *Mask) IsNeutral() bool {
	for i := range m.gain {
		if m.gain[i] != NeutralGain || m.generative[i] > ActiveThreshold {
			return false
		}
	}
	return true
}

// ActiveCells counts cells edited in each layer.
func (m *Mask) ActiveCells() (gain, generative int) {
	for i := range m.gain {
		if m.gain[i] != NeutralGain {
			gain++
		}
		if m.generative[i] > ActiveThreshold {
			generative++
		}
	}
	return gain, generative
}
