package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const perfectErrorPower = 1e-12

// Quality compares a reconstruction against its source.
type Quality struct {
	MaxAbsError float64
	// SNR is in dB; +Inf when error power is below 1e-12.
	SNR     float64
	Perfect bool
}

// Measure compares original and reconstructed over [from, to), clipped to
// the shorter of the two.
func Measure(original, reconstructed []float64, from, to int) Quality {
	to = min(to, len(original), len(reconstructed))
	from = max(0, from)
	if from >= to {
		return Quality{SNR: math.Inf(1), Perfect: true}
	}
	a := original[from:to]
	b := reconstructed[from:to]

	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)

	errPower := floats.Dot(diff, diff)
	q := Quality{MaxAbsError: floats.Norm(diff, math.Inf(1))}
	if errPower < perfectErrorPower {
		q.SNR = math.Inf(1)
		q.Perfect = true
		return q
	}
	q.SNR = 10 * math.Log10(floats.Dot(a, a)/errPower)
	return q
}
