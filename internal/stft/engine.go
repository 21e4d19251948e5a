// Package stft implements short-time Fourier analysis and overlap-add
// resynthesis over mono float64 buffers with a Hann window at 50% overlap.
package stft

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

const (
	defaultYieldEvery = 10 * time.Millisecond
	normEpsilon       = 1e-9
)

// ErrShapeMismatch is returned when a spectrogram's bin count does not
// match the engine's block size.
var ErrShapeMismatch = errors.New("spectrogram shape mismatch")

// Option configures an Engine.
type Option func(*Engine)

// WithBackend selects the FFT implementation.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithYield sets how often Synthesize hands control back and what it calls
// to do so. every <= 0 yields after every frame.
func WithYield(every time.Duration, fn func()) Option {
	return func(e *Engine) {
		e.yieldEvery = every
		if fn != nil {
			e.yield = fn
		}
	}
}

// Engine drives framing and transforms for one Params. It holds only
// immutable state, so one Engine can serve concurrent Analyze and
// Synthesize calls.
type Engine struct {
	params     Params
	window     WindowTable
	windowSq   []float64
	backend    Backend
	yieldEvery time.Duration
	yield      func()
}

// NewEngine validates p and precomputes the window.
func NewEngine(p Params, opts ...Option) (*Engine, error) {
	checked, err := NewParams(p.SampleRate, p.BlockSize)
	if err != nil {
		return nil, err
	}
	if p.Window != "" {
		if err := ValidateWindow(p.Window); err != nil {
			return nil, err
		}
	}
	e := &Engine{
		params:     checked,
		backend:    BackendGonum,
		yieldEvery: defaultYieldEvery,
		yield:      runtime.Gosched,
	}
	for _, opt := range opts {
		opt(e)
	}
	if _, err := NewTransform(e.backend, checked.BlockSize); err != nil {
		return nil, err
	}
	e.window = NewWindowTable(checked.BlockSize)
	e.windowSq = e.window.Squared()
	return e, nil
}

func (e *Engine) Params() Params      { return e.params }
func (e *Engine) Window() WindowTable { return e.window }
func (e *Engine) Backend() Backend    { return e.backend }

func (e *Engine) newTransform() Transform {
	t, err := NewTransform(e.backend, e.params.BlockSize)
	if err != nil {
		// NewEngine already proved this combination valid.
		panic(err)
	}
	return t
}

// Analyze returns the half-spectrum STFT of signal. A signal shorter than
// one block yields a zero-frame spectrogram.
func (e *Engine) Analyze(signal []float64) *Spectrogram {
	n := e.params.BlockSize
	framer := NewFramer(e.window, e.params.HopSize)
	frames := framer.Count(len(signal))
	spec := NewSpectrogram(e.params.NumBins(), frames)
	if frames == 0 {
		return spec
	}

	t := e.newTransform()
	block := make([]complex128, n)
	coeffs := make([]complex128, n)
	for f := 0; f < frames; f++ {
		block = framer.Frame(block, signal, f)
		coeffs = t.Forward(coeffs, block)
		for b := 0; b < spec.bins; b++ {
			spec.data[b][f] = coeffs[b]
		}
	}
	return spec
}

// Synthesize overlap-adds the inverse transform of every frame into a buffer
// of outputLength samples. Each block is windowed again and the sum is
// divided by the accumulated squared window wherever that exceeds 1e-9.
//
// The frame loop yields roughly every 10ms of work. ctx is checked at each
// yield; on cancellation the partial buffer is discarded and ctx.Err() is
// returned.
func (e *Engine) Synthesize(ctx context.Context, spec *Spectrogram, outputLength int) ([]float64, error) {
	if outputLength < 0 {
		outputLength = 0
	}
	out := make([]float64, outputLength)
	if spec.Empty() {
		return out, nil
	}

	if spec.bins != e.params.NumBins() {
		return nil, fmt.Errorf("%w: %d bins, engine expects %d", ErrShapeMismatch, spec.bins, e.params.NumBins())
	}

	n := e.params.BlockSize
	hop := e.params.HopSize
	half := n / 2
	norm := make([]float64, outputLength)

	t := e.newTransform()
	full := make([]complex128, n)
	block := make([]complex128, n)
	column := make([]complex128, spec.bins)

	lastYield := time.Now()
	for f := 0; f < spec.frames; f++ {
		column = spec.Frame(column, f)
		mirrorSpectrum(full, column, half)
		block = t.Inverse(block, full)

		start := f * hop
		for i := 0; i < n; i++ {
			pos := start + i
			if pos >= outputLength {
				break
			}
			out[pos] += real(block[i]) * e.window[i]
			norm[pos] += e.windowSq[i]
		}

		if time.Since(lastYield) >= e.yieldEvery {
			e.yield()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lastYield = time.Now()
		}
	}

	for i, w := range norm {
		if w > normEpsilon {
			out[i] /= w
		}
	}
	return out, nil
}

// mirrorSpectrum rebuilds a full conjugate-symmetric spectrum from its
// non-negative half. Bins 0 and half are not mirrored.
func mirrorSpectrum(full, halfSpec []complex128, half int) {
	n := len(full)
	for i := range full {
		full[i] = 0
	}
	copy(full, halfSpec[:half+1])
	for k := 1; k < half; k++ {
		v := halfSpec[k]
		full[n-k] = complex(real(v), -imag(v))
	}
}
