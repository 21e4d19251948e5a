// Package glitch applies stochastic, chunked time-domain artifacts to a
// reconstructed buffer.
package glitch

import "math/rand/v2"

// ChunkSize is the fixed processing granularity in samples.
const ChunkSize = 512

// Params are the glitch knobs. Chances are per-chunk probabilities in
// [0, 1]; durations are in milliseconds.
type Params struct {
	Enabled       bool
	StutterChance float64
	StutterMs     float64
	DropChance    float64
	// DropMs extends a drop past one chunk. At or below one chunk's
	// duration a drop zeroes exactly the current chunk.
	DropMs float64
}

// Defaults are the knob positions used before the user touches anything.
func Defaults() Params {
	return Params{
		StutterChance: 0.05,
		StutterMs:     60,
		DropChance:    0.02,
		DropMs:        0,
	}
}

// Active reports whether Process would change anything.
func (p Params) Active() bool {
	return p.Enabled && (p.StutterChance > 0 || p.DropChance > 0)
}

func msToSamples(ms float64, sampleRate int) int {
	if ms <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(ms * float64(sampleRate) / 1000)
}

// Process returns a glitched copy of signal. The input is never modified.
//
// Each chunk boundary gets two independent draws. A stutter overwrites the
// next StutterMs of audio by cycling the previous chunk and moves the cursor
// past it. A drop then zeroes the chunk at the cursor (or DropMs, if
// longer). When neither fires the cursor advances one chunk.
func Process(signal []float64, sampleRate int, p Params, rng *rand.Rand) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)
	if !p.Active() || len(out) == 0 {
		return out
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	stutterLen := msToSamples(p.StutterMs, sampleRate)
	dropLen := max(ChunkSize, msToSamples(p.DropMs, sampleRate))

	pos := 0
	for pos < len(out) {
		moved := false
		if pos >= ChunkSize && stutterLen > 0 && rng.Float64() < p.StutterChance {
			src := out[pos-ChunkSize : pos]
			end := min(len(out), pos+stutterLen)
			for i := pos; i < end; i++ {
				out[i] = src[(i-pos)%ChunkSize]
			}
			pos = end
			moved = true
		}
		if pos < len(out) && rng.Float64() < p.DropChance {
			end := min(len(out), pos+dropLen)
			clear(out[pos:end])
			pos = end
			moved = true
		}
		if !moved {
			pos += ChunkSize
		}
	}
	return out
}
