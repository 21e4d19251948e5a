package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/olivier-w/specpaint/internal/display"
	"github.com/olivier-w/specpaint/internal/glitch"
	"github.com/olivier-w/specpaint/internal/mask"
	"github.com/olivier-w/specpaint/internal/media"
	"github.com/olivier-w/specpaint/internal/stft"
)

// Snapshot is an immutable resynthesis request.
type Snapshot struct {
	Source      media.Buffer
	Engine      *stft.Engine
	Spectrogram *stft.Spectrogram
	Mask        *mask.Mask
	EditEnabled bool
	Glitch      glitch.Params
	// Seed drives generative phases and glitch draws for this run.
	Seed uint64
}

// Result is the output of one Render.
type Result struct {
	Seq     uint64
	Audio   media.Buffer
	Edited  View
	Diff    View
	Quality Quality
	Elapsed time.Duration
	Err     error
}

// Render runs mask application, overlap-add resynthesis, glitching, quality
// measurement and display preparation for snap.
func Render(ctx context.Context, snap Snapshot) (Result, error) {
	start := time.Now()
	if snap.Engine == nil || snap.Spectrogram == nil {
		return Result{}, fmt.Errorf("render: snapshot has no analysis")
	}
	rng := rand.New(rand.NewPCG(snap.Seed, snap.Seed^0x9e3779b97f4a7c15))
	p := snap.Engine.Params()

	edited, err := mask.Apply(snap.Spectrogram, snap.Mask, snap.EditEnabled, rng)
	if err != nil {
		return Result{}, fmt.Errorf("applying mask: %w", err)
	}

	samples, err := snap.Engine.Synthesize(ctx, edited, len(snap.Source.Samples))
	if err != nil {
		return Result{}, fmt.Errorf("resynthesis: %w", err)
	}
	samples = glitch.Process(samples, p.SampleRate, snap.Glitch, rng)

	// Only the doubly-covered interior reconstructs exactly; the outer
	// half-blocks carry window taper.
	q := Measure(snap.Source.Samples, samples, p.HopSize, snap.Spectrogram.Frames()*p.HopSize)

	em, el := display.ToMatrix(edited, p.SampleRate)
	dm, dl := display.Difference(snap.Spectrogram, edited, p.SampleRate)

	return Result{
		Audio:   media.Buffer{Samples: samples, SampleRate: p.SampleRate},
		Edited:  View{Matrix: em, Labels: el},
		Diff:    View{Matrix: dm, Labels: dl},
		Quality: q,
		Elapsed: time.Since(start),
	}, nil
}
