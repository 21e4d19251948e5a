package stft

import (
	"errors"
	"fmt"
	"strings"
)

// WindowHann is the only supported analysis window.
const WindowHann = "hann"

var (
	ErrInvalidBlockSize = errors.New("invalid block size")
	ErrInvalidWindow    = errors.New("invalid window")
)

// BlockSizes lists the supported transform sizes in ascending order.
var BlockSizes = []int{256, 512, 1024, 2048, 4096, 8192}

// Params describes an analysis/resynthesis configuration. HopSize is always
// BlockSize/2, which keeps a Hann window at 50% overlap.
type Params struct {
	SampleRate int
	BlockSize  int
	HopSize    int
	Window     string
}

// NewParams validates blockSize and derives the hop size.
func NewParams(sampleRate, blockSize int) (Params, error) {
	if !ValidBlockSize(blockSize) {
		return Params{}, fmt.Errorf("%w: %d (supported: %s)", ErrInvalidBlockSize, blockSize, BlockSizesList())
	}
	if sampleRate <= 0 {
		return Params{}, fmt.Errorf("unsupported sample rate: %d", sampleRate)
	}
	return Params{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		HopSize:    blockSize / 2,
		Window:     WindowHann,
	}, nil
}

// ValidBlockSize reports whether n is one of BlockSizes.
func ValidBlockSize(n int) bool {
	for _, b := range BlockSizes {
		if b == n {
			return true
		}
	}
	return false
}

// ValidateWindow accepts only the Hann window, case-insensitively.
func ValidateWindow(name string) error {
	if strings.EqualFold(strings.TrimSpace(name), WindowHann) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidWindow, name)
}

// NextBlockSize cycles through BlockSizes, wrapping at the end.
func NextBlockSize(n int) int {
	for i, b := range BlockSizes {
		if b == n {
			return BlockSizes[(i+1)%len(BlockSizes)]
		}
	}
	return BlockSizes[0]
}

// BlockSizesList returns a human-readable list of supported block sizes.
func BlockSizesList() string {
	parts := make([]string, len(BlockSizes))
	for i, b := range BlockSizes {
		parts[i] = fmt.Sprint(b)
	}
	return strings.Join(parts, ", ")
}

// NumBins is the number of non-negative frequency bins per frame.
func (p Params) NumBins() int { return p.BlockSize/2 + 1 }

// Nyquist returns half the sample rate in Hz.
func (p Params) Nyquist() float64 { return float64(p.SampleRate) / 2 }

// BinHz returns the centre frequency of bin.
func (p Params) BinHz(bin int) float64 {
	return float64(bin) * float64(p.SampleRate) / float64(p.BlockSize)
}

// FrameSeconds returns the start time of frame.
func (p Params) FrameSeconds(frame int) float64 {
	return float64(frame*p.HopSize) / float64(p.SampleRate)
}
