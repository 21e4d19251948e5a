package mask

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/olivier-w/specpaint/internal/stft"
)

// Apply combines spec with m and returns a new spectrogram of the same
// shape. With enabled false it returns an unmodified copy.
//
// Generative cells get a tone of magnitude 10^(dB/20) with a phase drawn
// from rng, so output is not reproducible across calls unless rng is
// seeded identically.
func Apply(spec *stft.Spectrogram, m *Mask, enabled bool, rng *rand.Rand) (*stft.Spectrogram, error) {
	out := spec.Clone()
	if !enabled || spec.Empty() {
		return out, nil
	}
	if !m.Fits(spec.Frames(), spec.Bins()) {
		return nil, fmt.Errorf("mask is %dx%d, spectrogram is %dx%d frames×bins",
			m.Frames(), m.Bins(), spec.Frames(), spec.Bins())
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for b := 0; b < spec.Bins(); b++ {
		for f := 0; f < spec.Frames(); f++ {
			i := m.index(f, b)
			v := spec.At(b, f)
			if g := m.gain[i]; g != NeutralGain {
				v *= complex(dbToAmp(g), 0)
			}
			if gen := m.generative[i]; gen > ActiveThreshold {
				v += cmplx.Rect(dbToAmp(gen), rng.Float64()*2*math.Pi)
			}
			out.Set(b, f, v)
		}
	}
	return out, nil
}

func dbToAmp(db float64) float64 { return math.Pow(10, db/20) }
