package stft

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"testing"
	"time"
)

func sine(n, sampleRate int, freq, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func mustEngine(t *testing.T, sampleRate, blockSize int, opts ...Option) *Engine {
	t.Helper()
	p, err := NewParams(sampleRate, blockSize)
	if err != nil {
		t.Fatalf("NewParams() error = %v", err)
	}
	e, err := NewEngine(p, opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestNewParamsDerivesHop(t *testing.T) {
	for _, n := range BlockSizes {
		p, err := NewParams(44100, n)
		if err != nil {
			t.Fatalf("NewParams(%d) error = %v", n, err)
		}
		if p.HopSize != n/2 {
			t.Fatalf("HopSize = %d, want %d", p.HopSize, n/2)
		}
		if p.NumBins() != n/2+1 {
			t.Fatalf("NumBins() = %d, want %d", p.NumBins(), n/2+1)
		}
	}
}

func TestNewParamsRejectsInvalidBlockSize(t *testing.T) {
	for _, n := range []int{0, 100, 128, 1000, 16384, -1024} {
		if _, err := NewParams(44100, n); !errors.Is(err, ErrInvalidBlockSize) {
			t.Fatalf("NewParams(%d) error = %v, want ErrInvalidBlockSize", n, err)
		}
	}
}

func TestValidateWindow(t *testing.T) {
	if err := ValidateWindow(" Hann "); err != nil {
		t.Fatalf("ValidateWindow(Hann) error = %v", err)
	}
	if err := ValidateWindow("hamming"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("ValidateWindow(hamming) error = %v, want ErrInvalidWindow", err)
	}
}

func TestNextBlockSizeWraps(t *testing.T) {
	if got := NextBlockSize(8192); got != 256 {
		t.Fatalf("NextBlockSize(8192) = %d, want 256", got)
	}
	if got := NextBlockSize(1024); got != 2048 {
		t.Fatalf("NextBlockSize(1024) = %d, want 2048", got)
	}
}

func TestWindowTableIsHann(t *testing.T) {
	const n = 1024
	w := NewWindowTable(n)
	if w.Len() != n {
		t.Fatalf("Len() = %d, want %d", w.Len(), n)
	}
	for i, v := range w {
		want := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("w[%d] = %v, want %v", i, v, want)
		}
		if math.Abs(v-w[n-1-i]) > 1e-12 {
			t.Fatalf("window not symmetric at %d", i)
		}
	}
}

func TestTransformBackendsAgree(t *testing.T) {
	const n = 256
	src := make([]complex128, n)
	for i := range src {
		src[i] = complex(math.Sin(float64(i)*0.3)+0.25*math.Cos(float64(i)*1.7), 0)
	}

	g, err := NewTransform(BackendGonum, n)
	if err != nil {
		t.Fatalf("NewTransform(gonum) error = %v", err)
	}
	d, err := NewTransform(BackendGoDSP, n)
	if err != nil {
		t.Fatalf("NewTransform(go-dsp) error = %v", err)
	}

	a := g.Forward(nil, src)
	b := d.Forward(nil, src)
	for i := range a {
		if cmplx.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("bin %d: gonum %v, go-dsp %v", i, a[i], b[i])
		}
	}

	for name, tr := range map[string]Transform{"gonum": g, "go-dsp": d} {
		back := tr.Inverse(nil, tr.Forward(nil, src))
		for i := range back {
			if cmplx.Abs(back[i]-src[i]) > 1e-12 {
				t.Fatalf("%s: Inverse(Forward(x))[%d] = %v, want %v", name, i, back[i], src[i])
			}
		}
	}
}

func TestNewTransformRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewTransform(BackendGonum, 1000); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("NewTransform(1000) error = %v, want ErrInvalidBlockSize", err)
	}
	if _, err := ParseBackend("fftw"); err == nil {
		t.Fatal("expected ParseBackend to reject unknown backend")
	}
}

func TestFramerCountDropsPartialBlock(t *testing.T) {
	f := NewFramer(NewWindowTable(1024), 512)
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1023, 0},
		{1024, 1},
		{1535, 1},
		{1536, 2},
		{44100, 85},
	}
	for _, tt := range tests {
		if got := f.Count(tt.n); got != tt.want {
			t.Fatalf("Count(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestAnalyzeShape(t *testing.T) {
	e := mustEngine(t, 44100, 1024)
	spec := e.Analyze(sine(44100, 44100, 440, 0.5))
	if spec.Bins() != 513 {
		t.Fatalf("Bins() = %d, want 513", spec.Bins())
	}
	if spec.Frames() != 85 {
		t.Fatalf("Frames() = %d, want 85", spec.Frames())
	}

	// 440 Hz sits near bin 440*1024/44100 ≈ 10.2.
	peak := 0
	for b := 0; b < spec.Bins(); b++ {
		if cmplx.Abs(spec.At(b, 40)) > cmplx.Abs(spec.At(peak, 40)) {
			peak = b
		}
	}
	if peak != 10 {
		t.Fatalf("peak bin = %d, want 10", peak)
	}
}

func TestAnalyzeShortSignalIsEmpty(t *testing.T) {
	e := mustEngine(t, 44100, 2048)
	spec := e.Analyze(make([]float64, 2047))
	if !spec.Empty() || spec.Frames() != 0 {
		t.Fatalf("expected zero-frame spectrogram, got %d frames", spec.Frames())
	}

	out, err := e.Synthesize(context.Background(), spec, 2047)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(out) != 2047 {
		t.Fatalf("len(out) = %d, want 2047", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

func TestRoundTripFidelity(t *testing.T) {
	for _, backend := range []Backend{BackendGonum, BackendGoDSP} {
		e := mustEngine(t, 44100, 1024, WithBackend(backend))
		signal := sine(44100, 44100, 440, 0.8)

		spec := e.Analyze(signal)
		out, err := e.Synthesize(context.Background(), spec, len(signal))
		if err != nil {
			t.Fatalf("%s: Synthesize() error = %v", backend, err)
		}

		hop := e.Params().HopSize
		end := spec.Frames() * hop
		maxErr := 0.0
		for i := hop; i < end; i++ {
			maxErr = math.Max(maxErr, math.Abs(out[i]-signal[i]))
		}
		if maxErr >= 1e-5 {
			t.Fatalf("%s: max abs error = %g, want < 1e-5", backend, maxErr)
		}
	}
}

func TestSynthesizeYieldsAndHonoursCancel(t *testing.T) {
	yields := 0
	e := mustEngine(t, 44100, 256, WithYield(0, func() { yields++ }))
	signal := sine(8192, 44100, 1000, 0.5)
	spec := e.Analyze(signal)

	if _, err := e.Synthesize(context.Background(), spec, len(signal)); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if yields != spec.Frames() {
		t.Fatalf("yields = %d, want one per frame (%d)", yields, spec.Frames())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := e.Synthesize(ctx, spec, len(signal))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Synthesize() error = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Fatal("expected no partial buffer on cancellation")
	}
}

func TestSynthesizeDefaultYieldInterval(t *testing.T) {
	yields := 0
	e := mustEngine(t, 44100, 256, WithYield(time.Hour, func() { yields++ }))
	spec := e.Analyze(sine(4096, 44100, 1000, 0.5))
	if _, err := e.Synthesize(context.Background(), spec, 4096); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if yields != 0 {
		t.Fatalf("yields = %d, want 0 within one interval", yields)
	}
}

func TestSynthesizeRejectsMismatchedSpectrogram(t *testing.T) {
	e := mustEngine(t, 44100, 1024)
	other := mustEngine(t, 44100, 512)
	spec := other.Analyze(sine(4096, 44100, 440, 0.5))
	if _, err := e.Synthesize(context.Background(), spec, 4096); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Synthesize() error = %v, want ErrShapeMismatch", err)
	}
}

func TestSpectrogramCloneIsIndependent(t *testing.T) {
	s := NewSpectrogram(3, 2)
	s.Set(1, 1, 2+3i)
	c := s.Clone()
	c.Set(1, 1, 0)
	if s.At(1, 1) != 2+3i {
		t.Fatalf("original mutated through clone: %v", s.At(1, 1))
	}
}
