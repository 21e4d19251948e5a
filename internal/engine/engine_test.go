package engine

import (
	"context"
	"math"
	"testing"

	"github.com/olivier-w/specpaint/internal/glitch"
	"github.com/olivier-w/specpaint/internal/mask"
	"github.com/olivier-w/specpaint/internal/media"
	"github.com/olivier-w/specpaint/internal/stft"
	"github.com/sirupsen/logrus/hooks/test"
)

func sine(n, rate int, hz float64) media.Buffer {
	s := make([]float64, n)
	for i := range s {
		s[i] = 0.5 * math.Sin(2*math.Pi*hz*float64(i)/float64(rate))
	}
	return media.Buffer{Samples: s, SampleRate: rate}
}

func newTestSession(t *testing.T, src media.Buffer, blockSize int) *Session {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := NewSession(src, blockSize, stft.BackendGonum, log)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestNewSessionAnalysesSource(t *testing.T) {
	log, hook := test.NewNullLogger()
	s, err := NewSession(sine(8000, 8000, 500), 512, stft.BackendGonum, log)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	frames, bins := s.Dimensions()
	if frames != 30 || bins != 257 {
		t.Fatalf("Dimensions() = %d, %d, want 30, 257", frames, bins)
	}
	if !s.Mask().IsNeutral() {
		t.Fatal("initial mask is not neutral")
	}
	if s.OriginalView().Matrix.Empty() {
		t.Fatal("OriginalView() is empty")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "analysed source" || entry.Data["frames"] != 30 {
		t.Fatalf("last log entry = %+v, want analysis entry with frames=30", entry)
	}
}

func TestNewSessionRejectsInvalidBlockSize(t *testing.T) {
	log, _ := test.NewNullLogger()
	if _, err := NewSession(sine(8000, 8000, 500), 1000, stft.BackendGonum, log); err == nil {
		t.Fatal("NewSession(block 1000) = nil error, want error")
	}
}

func TestSnapshotIsIndependentOfLaterEdits(t *testing.T) {
	s := newTestSession(t, sine(8000, 8000, 500), 512)
	before := s.Snapshot()
	s.Paint(mask.Stroke{Frame: 10, Bin: 64, Radius: 8, Value: 12})
	after := s.Snapshot()

	if !before.Mask.IsNeutral() {
		t.Fatal("earlier snapshot's mask changed after Paint")
	}
	if after.Mask.IsNeutral() {
		t.Fatal("snapshot after Paint has a neutral mask")
	}
	if before.Seed == after.Seed {
		t.Fatal("consecutive snapshots share a seed")
	}
}

func TestSetBlockSizeReplacesMask(t *testing.T) {
	s := newTestSession(t, sine(8000, 8000, 500), 512)
	s.Paint(mask.Stroke{Frame: 10, Bin: 64, Radius: 8, Value: 12})

	if err := s.SetBlockSize(1024); err != nil {
		t.Fatalf("SetBlockSize() error = %v", err)
	}
	frames, bins := s.Dimensions()
	if frames != 14 || bins != 513 {
		t.Fatalf("Dimensions() = %d, %d, want 14, 513", frames, bins)
	}
	if !s.Mask().IsNeutral() || !s.Mask().Fits(frames, bins) {
		t.Fatal("mask was not replaced by a neutral mask of the new shape")
	}

	if err := s.SetBlockSize(3000); err == nil {
		t.Fatal("SetBlockSize(3000) = nil error, want error")
	}
	if got := s.Params().BlockSize; got != 1024 {
		t.Fatalf("BlockSize after failed change = %d, want 1024", got)
	}
}

func TestRenderWithoutEditsReconstructsSource(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		s := newTestSession(t, sine(16000, 16000, 440), 1024)
		s.SetEditEnabled(enabled)
		res, err := Render(context.Background(), s.Snapshot())
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if len(res.Audio.Samples) != 16000 || res.Audio.SampleRate != 16000 {
			t.Fatalf("Audio = %d samples @ %d, want 16000 @ 16000", len(res.Audio.Samples), res.Audio.SampleRate)
		}
		if res.Quality.MaxAbsError >= 1e-5 {
			t.Fatalf("MaxAbsError = %v, want < 1e-5", res.Quality.MaxAbsError)
		}
		for _, v := range res.Diff.Matrix.Values {
			for _, d := range v {
				if d != 0 {
					t.Fatalf("difference map has %v for an unedited render", d)
				}
			}
		}
	}
}

func TestRenderIsDeterministicPerSnapshot(t *testing.T) {
	s := newTestSession(t, sine(8000, 8000, 500), 512)
	s.Paint(mask.Stroke{Frame: 10, Bin: 100, Radius: 10, Value: -6, Mode: mask.Generative})
	s.SetGlitch(glitch.Params{Enabled: true, StutterChance: 0.3, StutterMs: 20, DropChance: 0.3})
	snap := s.Snapshot()

	a, err := Render(context.Background(), snap)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := Render(context.Background(), snap)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i := range a.Audio.Samples {
		if a.Audio.Samples[i] != b.Audio.Samples[i] {
			t.Fatalf("sample %d differs between renders: %v vs %v", i, a.Audio.Samples[i], b.Audio.Samples[i])
		}
	}
}

func TestRenderGenerativePaintShowsInDifference(t *testing.T) {
	s := newTestSession(t, sine(8000, 8000, 500), 512)
	s.Paint(mask.Stroke{Frame: 15, Bin: 200, Radius: 12, Value: 0, Mode: mask.Generative})
	res, err := Render(context.Background(), s.Snapshot())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Quality.Perfect {
		t.Fatal("Quality reports a perfect reconstruction after adding content")
	}
	maxDiff := 0.0
	for _, row := range res.Diff.Matrix.Values {
		for _, d := range row {
			maxDiff = math.Max(maxDiff, math.Abs(d))
		}
	}
	if maxDiff <= 0 || maxDiff > 1 {
		t.Fatalf("max |difference| = %v, want in (0, 1]", maxDiff)
	}
}

func TestRenderDropsToSilence(t *testing.T) {
	s := newTestSession(t, sine(8000, 8000, 500), 512)
	s.SetGlitch(glitch.Params{Enabled: true, DropChance: 1})
	res, err := Render(context.Background(), s.Snapshot())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i, v := range res.Audio.Samples {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	s := newTestSession(t, media.Buffer{Samples: make([]float64, 100), SampleRate: 8000}, 512)
	frames, _ := s.Dimensions()
	if frames != 0 {
		t.Fatalf("frames = %d, want 0", frames)
	}
	res, err := Render(context.Background(), s.Snapshot())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(res.Audio.Samples) != 100 {
		t.Fatalf("len(Audio) = %d, want 100", len(res.Audio.Samples))
	}
	if !res.Edited.Matrix.Empty() || !res.Diff.Matrix.Empty() {
		t.Fatal("expected empty views for a zero-frame spectrogram")
	}
}

func TestRenderRejectsEmptySnapshot(t *testing.T) {
	if _, err := Render(context.Background(), Snapshot{}); err == nil {
		t.Fatal("Render(Snapshot{}) = nil error, want error")
	}
}

func TestRenderHonorsCancellation(t *testing.T) {
	s := newTestSession(t, sine(16000, 16000, 440), 256)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap := s.Snapshot()
	eng, err := stft.NewEngine(s.Params(), stft.WithYield(0, func() {}))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	snap.Engine = eng
	if _, err := Render(ctx, snap); err == nil {
		t.Fatal("Render(cancelled) = nil error, want error")
	}
}

func TestMeasure(t *testing.T) {
	q := Measure([]float64{1, 2, 3}, []float64{1, 2, 3}, 0, 3)
	if !q.Perfect || !math.IsInf(q.SNR, 1) || q.MaxAbsError != 0 {
		t.Fatalf("Measure(identical) = %+v, want perfect", q)
	}

	q = Measure([]float64{1, 1, 1, 1}, []float64{1, 1, 1, 0.9}, 0, 4)
	if math.Abs(q.MaxAbsError-0.1) > 1e-12 {
		t.Fatalf("MaxAbsError = %v, want 0.1", q.MaxAbsError)
	}
	if want := 10 * math.Log10(4/0.01); math.Abs(q.SNR-want) > 1e-9 {
		t.Fatalf("SNR = %v, want %v", q.SNR, want)
	}

	// Only the window is compared.
	q = Measure([]float64{0, 1, 1, 0}, []float64{5, 1, 1, 5}, 1, 3)
	if !q.Perfect {
		t.Fatalf("Measure(window) = %+v, want perfect", q)
	}

	q = Measure([]float64{1}, []float64{1, 2}, 4, 10)
	if !q.Perfect {
		t.Fatalf("Measure(empty range) = %+v, want perfect", q)
	}
}
