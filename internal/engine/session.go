// Package engine wires analysis, masking, resynthesis, glitching and
// display preparation into an editing session, and coalesces bursts of
// edits into single resynthesis runs.
package engine

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/olivier-w/specpaint/internal/display"
	"github.com/olivier-w/specpaint/internal/glitch"
	"github.com/olivier-w/specpaint/internal/mask"
	"github.com/olivier-w/specpaint/internal/media"
	"github.com/olivier-w/specpaint/internal/stft"
	"github.com/sirupsen/logrus"
)

// View is a display-ready matrix with its frequency labels.
type View struct {
	Matrix display.Matrix
	Labels []display.Label
}

// Session owns the editing state for one loaded clip. It is not safe for
// concurrent use; hand Snapshots to other goroutines instead.
type Session struct {
	log     logrus.FieldLogger
	backend stft.Backend
	rng     *rand.Rand

	source   media.Buffer
	engine   *stft.Engine
	original *stft.Spectrogram
	origView View

	mask   *mask.Mask
	edit   bool
	glitch glitch.Params
}

// NewSession analyses src at blockSize and starts with a neutral mask.
func NewSession(src media.Buffer, blockSize int, backend stft.Backend, log logrus.FieldLogger) (*Session, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Session{
		log:     log,
		backend: backend,
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		source:  src,
		edit:    true,
	}
	if err := s.analyze(blockSize); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) analyze(blockSize int) error {
	p, err := stft.NewParams(s.source.SampleRate, blockSize)
	if err != nil {
		return err
	}
	eng, err := stft.NewEngine(p, stft.WithBackend(s.backend))
	if err != nil {
		return fmt.Errorf("creating stft engine: %w", err)
	}

	start := time.Now()
	spec := eng.Analyze(s.source.Samples)
	m, labels := display.ToMatrix(spec, p.SampleRate)

	s.engine = eng
	s.original = spec
	s.origView = View{Matrix: m, Labels: labels}
	s.mask = mask.New(spec.Frames(), spec.Bins())

	s.log.WithFields(logrus.Fields{
		"block_size": p.BlockSize,
		"frames":     spec.Frames(),
		"bins":       spec.Bins(),
		"backend":    s.backend,
		"elapsed":    time.Since(start),
	}).Info("analysed source")
	return nil
}

// SetBlockSize re-analyses the source and replaces the mask wholesale.
func (s *Session) SetBlockSize(n int) error {
	return s.analyze(n)
}

// Reload swaps in freshly decoded audio, keeping the block size. The mask
// is reset because its grid no longer matches.
func (s *Session) Reload(src media.Buffer) error {
	prev := s.source
	s.source = src
	if err := s.analyze(s.engine.Params().BlockSize); err != nil {
		s.source = prev
		return err
	}
	return nil
}

func (s *Session) Params() stft.Params                { return s.engine.Params() }
func (s *Session) Source() media.Buffer               { return s.source }
func (s *Session) Original() *stft.Spectrogram        { return s.original }
func (s *Session) OriginalView() View                 { return s.origView }
func (s *Session) Mask() *mask.Mask                   { return s.mask }
func (s *Session) EditEnabled() bool                  { return s.edit }
func (s *Session) Glitch() glitch.Params              { return s.glitch }
func (s *Session) SetEditEnabled(on bool)             { s.edit = on }
func (s *Session) SetGlitch(p glitch.Params)          { s.glitch = p }
func (s *Session) Dimensions() (frames int, bins int) { return s.original.Frames(), s.original.Bins() }

// Paint stamps one stroke into a new mask snapshot.
func (s *Session) Paint(st mask.Stroke) {
	s.mask = s.mask.WithStroke(st)
}

// PaintLine stamps a drag from a to b into a new mask snapshot.
func (s *Session) PaintLine(a, b mask.Stroke) {
	s.mask = s.mask.WithLine(a, b)
}

// ResetMask replaces the mask with a neutral one of the same size.
func (s *Session) ResetMask() {
	s.mask = mask.New(s.original.Frames(), s.original.Bins())
}

// Snapshot captures everything a resynthesis needs. Its contents are never
// mutated afterwards.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Source:      s.source,
		Engine:      s.engine,
		Spectrogram: s.original,
		Mask:        s.mask,
		EditEnabled: s.edit,
		Glitch:      s.glitch,
		Seed:        s.rng.Uint64(),
	}
}

