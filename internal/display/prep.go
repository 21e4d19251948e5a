// Package display turns complex spectrograms into small normalized
// matrices for on-screen viewing, and renders those as terminal heatmaps.
package display

import (
	"math"
	"math/cmplx"

	"github.com/olivier-w/specpaint/internal/stft"
	"github.com/olivier-w/specpaint/internal/util"
)

const (
	MaxCols = 512
	MaxRows = 256

	floorDB    = -90.0
	ceilDB     = 0.0
	magEpsilon = 1e-12
	diffFloor  = 1e-6
)

// Matrix is a rows×cols grid. Row 0 is the highest frequency; columns run
// forward in time.
type Matrix struct {
	Rows   int
	Cols   int
	Values [][]float64
}

// Empty reports whether the matrix has no cells.
func (m Matrix) Empty() bool { return m.Rows == 0 || m.Cols == 0 }

// Label ties a matrix row to a frequency.
type Label struct {
	Row  int
	Hz   float64
	Text string
}

// ToMatrix converts spec to dB, clamps to [-90, 0], normalizes to [0, 1]
// and downsamples.
func ToMatrix(spec *stft.Spectrogram, sampleRate int) (Matrix, []Label) {
	if spec.Empty() {
		return Matrix{}, nil
	}
	grid := make([][]float64, spec.Bins())
	for b := range grid {
		row := make([]float64, spec.Frames())
		for f, z := range spec.Bin(b) {
			db := clampDB(magnitudeDB(z))
			row[f] = (db - floorDB) / (ceilDB - floorDB)
		}
		grid[b] = row
	}
	m := downsample(grid)
	return m, labels(m.Rows, sampleRate)
}

// Difference returns dB(b) - dB(a) per cell, scaled by the largest absolute
// difference so values land in [-1, 1]. When that maximum is below 1e-6 the
// divisor is 1. Mismatched shapes are compared over their overlap.
func Difference(a, b *stft.Spectrogram, sampleRate int) (Matrix, []Label) {
	if a.Empty() || b.Empty() {
		return Matrix{}, nil
	}
	bins := min(a.Bins(), b.Bins())
	frames := min(a.Frames(), b.Frames())

	grid := make([][]float64, bins)
	maxAbs := 0.0
	for bin := range grid {
		row := make([]float64, frames)
		ra, rb := a.Bin(bin), b.Bin(bin)
		for f := range row {
			d := magnitudeDB(rb[f]) - magnitudeDB(ra[f])
			row[f] = d
			maxAbs = math.Max(maxAbs, math.Abs(d))
		}
		grid[bin] = row
	}

	div := maxAbs
	if div < diffFloor {
		div = 1
	}
	for _, row := range grid {
		for f := range row {
			row[f] /= div
		}
	}
	m := downsample(grid)
	return m, labels(m.Rows, sampleRate)
}

func magnitudeDB(z complex128) float64 {
	return 20 * math.Log10(cmplx.Abs(z)+magEpsilon)
}

func clampDB(db float64) float64 {
	return math.Max(floorDB, math.Min(ceilDB, db))
}

// poolSize is the block size that keeps the pooled dimension within limit.
// It rounds up rather than taking floor(n/limit), which could leave more
// than limit pooled cells.
func poolSize(n, limit int) int {
	if n <= limit {
		return 1
	}
	return (n + limit - 1) / limit
}

// downsample average-pools a [bin][frame] grid into at most MaxRows×MaxCols,
// walking bins from highest to lowest so row 0 holds the top frequencies.
func downsample(grid [][]float64) Matrix {
	bins := len(grid)
	if bins == 0 || len(grid[0]) == 0 {
		return Matrix{}
	}
	frames := len(grid[0])

	bs := poolSize(bins, MaxRows)
	fs := poolSize(frames, MaxCols)
	rows := (bins + bs - 1) / bs
	cols := (frames + fs - 1) / fs

	values := make([][]float64, rows)
	for r := range values {
		hi := bins - 1 - r*bs
		lo := max(0, hi-bs+1)
		out := make([]float64, cols)
		for c := range out {
			f0 := c * fs
			f1 := min(frames, f0+fs)
			sum := 0.0
			for b := lo; b <= hi; b++ {
				for f := f0; f < f1; f++ {
					sum += grid[b][f]
				}
			}
			out[c] = sum / float64((hi-lo+1)*(f1-f0))
		}
		values[r] = out
	}
	return Matrix{Rows: rows, Cols: cols, Values: values}
}

// labels marks Nyquist on the top row, Nyquist/2 in the middle and 0 Hz on
// the bottom.
func labels(rows, sampleRate int) []Label {
	if rows == 0 {
		return nil
	}
	nyq := float64(sampleRate) / 2
	points := []Label{
		{Row: 0, Hz: nyq},
		{Row: rows / 2, Hz: nyq / 2},
		{Row: rows - 1, Hz: 0},
	}
	for i := range points {
		points[i].Text = util.FormatHz(points[i].Hz)
	}
	return points
}
