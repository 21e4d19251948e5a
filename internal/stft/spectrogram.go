package stft

// Spectrogram is a bin-major complex grid holding the non-negative half of
// each frame's spectrum. Treat values as immutable once produced.
type Spectrogram struct {
	bins   int
	frames int
	data   [][]complex128 // [bin][frame]
}

// NewSpectrogram allocates a zeroed bins×frames grid.
func NewSpectrogram(bins, frames int) *Spectrogram {
	if bins < 0 {
		bins = 0
	}
	if frames < 0 {
		frames = 0
	}
	data := make([][]complex128, bins)
	backing := make([]complex128, bins*frames)
	for b := range data {
		data[b] = backing[b*frames : (b+1)*frames : (b+1)*frames]
	}
	return &Spectrogram{bins: bins, frames: frames, data: data}
}

func (s *Spectrogram) Bins() int   { return s.bins }
func (s *Spectrogram) Frames() int { return s.frames }

// Empty reports whether the grid has no frames.
func (s *Spectrogram) Empty() bool { return s == nil || s.frames == 0 || s.bins == 0 }

func (s *Spectrogram) At(bin, frame int) complex128 { return s.data[bin][frame] }

func (s *Spectrogram) Set(bin, frame int, v complex128) { s.data[bin][frame] = v }

// Bin returns the row for one frequency bin. Callers must not modify it.
func (s *Spectrogram) Bin(bin int) []complex128 { return s.data[bin] }

// Clone returns an independent deep copy.
func (s *Spectrogram) Clone() *Spectrogram {
	out := NewSpectrogram(s.bins, s.frames)
	for b := range s.data {
		copy(out.data[b], s.data[b])
	}
	return out
}

// Frame gathers the half-spectrum of one frame into dst.
func (s *Spectrogram) Frame(dst []complex128, frame int) []complex128 {
	dst = ensureLen(dst, s.bins)
	for b := 0; b < s.bins; b++ {
		dst[b] = s.data[b][frame]
	}
	return dst
}
