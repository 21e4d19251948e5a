package stft

// Framer slices a mono buffer into overlapping windowed blocks. Trailing
// samples that do not fill a whole block are dropped, never zero-padded.
type Framer struct {
	size   int
	hop    int
	window WindowTable
}

// NewFramer returns a Framer using w as the analysis window.
func NewFramer(w WindowTable, hop int) Framer {
	return Framer{size: w.Len(), hop: hop, window: w}
}

// Count returns how many full blocks fit into n samples.
func (f Framer) Count(n int) int {
	if f.size <= 0 || f.hop <= 0 || n < f.size {
		return 0
	}
	return (n-f.size)/f.hop + 1
}

// Frame writes the windowed block at index i of signal into dst as
// complex values with zero imaginary part.
func (f Framer) Frame(dst []complex128, signal []float64, i int) []complex128 {
	dst = ensureLen(dst, f.size)
	start := i * f.hop
	block := signal[start : start+f.size]
	for j, s := range block {
		dst[j] = complex(s*f.window[j], 0)
	}
	return dst
}
