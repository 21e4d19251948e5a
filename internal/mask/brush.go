package mask

import "math"

// falloff gives w = exp(-falloff*d), so w ≈ 0.5 at d = 0.25 (half the
// stated radius) and ≈ 0.06 at the ellipse edge.
const falloff = 2.7726

// generativeFeather is how many dB the loudness ceiling drops between the
// centre and the edge of a generative stamp.
const generativeFeather = 20.0

// Mode selects which layer a stroke edits.
type Mode int

const (
	Subtractive Mode = iota
	Generative
)

// Next toggles between the two modes.
func (m Mode) Next() Mode {
	if m == Subtractive {
		return Generative
	}
	return Subtractive
}

func (m Mode) String() string {
	if m == Generative {
		return "generative"
	}
	return "subtractive"
}

// Stroke is a single brush stamp in spectral coordinates.
type Stroke struct {
	Frame  int
	Bin    int
	Radius float64 // in bins
	Value  float64 // gain or loudness, dB
	Erase  bool
	Mode   Mode
}

// frameRadius keeps the footprint four times wider in frequency than in
// time, but never narrower than two frames.
func frameRadius(binRadius float64) float64 {
	return math.Max(2, math.Round(binRadius/4))
}

func binRadius(r float64) float64 {
	if r < 1 {
		return 1
	}
	return r
}

// WithStroke returns a copy of m with s stamped into it.
func (m *Mask) WithStroke(s Stroke) *Mask {
	out := m.Clone()
	out.stamp(s)
	return out
}

// WithLine returns a copy of m with stamps spaced half a bin-radius apart
// along the segment from a to b. a's radius, value and mode apply to the
// whole line.
func (m *Mask) WithLine(a, b Stroke) *Mask {
	out := m.Clone()
	df := float64(b.Frame - a.Frame)
	db := float64(b.Bin - a.Bin)
	br := binRadius(a.Radius)
	fr := frameRadius(br)

	// Distance in footprint units, so spacing adapts to the anisotropy.
	dist := math.Hypot(df/fr, db/br)
	steps := int(math.Ceil(dist * 2))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s := a
		s.Frame = a.Frame + int(math.Round(df*t))
		s.Bin = a.Bin + int(math.Round(db*t))
		out.stamp(s)
	}
	return out
}

// stamp mutates m in place; only call on a mask no one else holds.
func (m *Mask) stamp(s Stroke) {
	br := binRadius(s.Radius)
	fr := frameRadius(br)

	f0 := max(0, s.Frame-int(math.Ceil(fr)))
	f1 := min(m.frames-1, s.Frame+int(math.Ceil(fr)))
	b0 := max(0, s.Bin-int(math.Ceil(br)))
	b1 := min(m.bins-1, s.Bin+int(math.Ceil(br)))

	for f := f0; f <= f1; f++ {
		df := float64(f-s.Frame) / fr
		for b := b0; b <= b1; b++ {
			dbin := float64(b-s.Bin) / br
			d := df*df + dbin*dbin
			if d > 1 {
				continue
			}
			w := math.Exp(-falloff * d)
			i := m.index(f, b)

			switch {
			case s.Mode == Subtractive && !s.Erase:
				m.gain[i] = clamp(m.gain[i]+s.Value*w, MinGain, MaxGain)
			case s.Mode == Subtractive && s.Erase:
				// Erasing only moves back toward unity, never above it.
				m.gain[i] = clamp(math.Min(NeutralGain, m.gain[i]-s.Value*w), MinGain, MaxGain)
			case s.Mode == Generative && !s.Erase:
				ceiling := s.Value - (1-w)*generativeFeather
				m.generative[i] = clamp(math.Max(m.generative[i], ceiling), Inactive, MaxLoudness)
			default:
				m.generative[i] = Inactive
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
