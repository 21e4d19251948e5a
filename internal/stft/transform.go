package stft

import (
	"fmt"
	"strings"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the FFT implementation behind a Transform.
type Backend string

const (
	BackendGonum Backend = "gonum"
	BackendGoDSP Backend = "go-dsp"
)

// ParseBackend maps a config string onto a Backend. Empty means gonum.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(BackendGonum):
		return BackendGonum, nil
	case string(BackendGoDSP), "godsp":
		return BackendGoDSP, nil
	default:
		return "", fmt.Errorf("unknown fft backend %q (supported: gonum, go-dsp)", s)
	}
}

// Transform is a complex DFT over a fixed block size. Inverse is normalized
// so that Inverse(Forward(x)) == x. Implementations keep scratch state and
// are not safe for concurrent use.
type Transform interface {
	Len() int
	Forward(dst, src []complex128) []complex128
	Inverse(dst, src []complex128) []complex128
}

// NewTransform returns a Transform of size n for the given backend.
func NewTransform(b Backend, n int) (Transform, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: transform size %d is not a power of two", ErrInvalidBlockSize, n)
	}
	switch b {
	case BackendGonum, "":
		return &gonumTransform{fft: fourier.NewCmplxFFT(n), n: n}, nil
	case BackendGoDSP:
		return &goDSPTransform{n: n}, nil
	default:
		return nil, fmt.Errorf("unknown fft backend %q", b)
	}
}

type gonumTransform struct {
	fft *fourier.CmplxFFT
	n   int
}

func (t *gonumTransform) Len() int { return t.n }

func (t *gonumTransform) Forward(dst, src []complex128) []complex128 {
	return t.fft.Coefficients(ensureLen(dst, t.n), src)
}

// gonum's Sequence is unnormalized.
func (t *gonumTransform) Inverse(dst, src []complex128) []complex128 {
	out := t.fft.Sequence(ensureLen(dst, t.n), src)
	scale := complex(1/float64(t.n), 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

type goDSPTransform struct {
	n int
}

func (t *goDSPTransform) Len() int { return t.n }

func (t *goDSPTransform) Forward(dst, src []complex128) []complex128 {
	out := ensureLen(dst, t.n)
	copy(out, dspfft.FFT(src))
	return out
}

func (t *goDSPTransform) Inverse(dst, src []complex128) []complex128 {
	out := ensureLen(dst, t.n)
	copy(out, dspfft.IFFT(src))
	return out
}

func ensureLen(buf []complex128, n int) []complex128 {
	if cap(buf) < n {
		return make([]complex128, n)
	}
	return buf[:n]
}
