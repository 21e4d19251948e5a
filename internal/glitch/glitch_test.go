package glitch

import (
	"math/rand/v2"
	"testing"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i%997)/997 + 0.01
	}
	return out
}

func TestProcessDisabledCopies(t *testing.T) {
	in := ramp(4000)
	p := Params{StutterChance: 1, StutterMs: 50, DropChance: 1}
	out := Process(in, 44100, p, rand.New(rand.NewPCG(1, 1)))
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
	out[0] = -1
	if in[0] == -1 {
		t.Fatal("Process returned an alias of its input")
	}
}

func TestDropChanceOneZeroesEverything(t *testing.T) {
	in := ramp(44100 + 300)
	p := Params{Enabled: true, DropChance: 1}
	out := Process(in, 44100, p, rand.New(rand.NewPCG(2, 2)))
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
	if in[10] == 0 {
		t.Fatal("Process modified its input")
	}
}

func TestStutterRepeatsPreviousChunk(t *testing.T) {
	const sr = 44100
	in := ramp(ChunkSize * 8)
	// 1500 samples of stutter, about three chunks.
	p := Params{Enabled: true, StutterChance: 1, StutterMs: 1500.0 * 1000 / sr}
	out := Process(in, sr, p, rand.New(rand.NewPCG(3, 3)))

	for i := 0; i < ChunkSize; i++ {
		if out[i] != in[i] {
			t.Fatalf("first chunk changed at %d", i)
		}
	}
	stutter := msToSamples(p.StutterMs, sr)
	for i := ChunkSize; i < ChunkSize+stutter; i++ {
		want := in[(i-ChunkSize)%ChunkSize]
		if out[i] != want {
			t.Fatalf("out[%d] = %v, want repeat %v", i, out[i], want)
		}
	}
}

func TestMsToSamples(t *testing.T) {
	tests := []struct {
		ms   float64
		sr   int
		want int
	}{
		{0, 44100, 0},
		{-5, 44100, 0},
		{1000, 44100, 44100},
		{10, 48000, 480},
	}
	for _, tt := range tests {
		if got := msToSamples(tt.ms, tt.sr); got != tt.want {
			t.Fatalf("msToSamples(%v, %d) = %d, want %d", tt.ms, tt.sr, got, tt.want)
		}
	}
}

func TestZeroChancesLeaveSignalIntact(t *testing.T) {
	in := ramp(5000)
	out := Process(in, 44100, Params{Enabled: true, StutterMs: 100}, nil)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] changed with zero chances", i)
		}
	}
}

func TestLongDropSpansChunks(t *testing.T) {
	in := ramp(ChunkSize * 10)
	// Drops of about three chunks, back to back.
	p := Params{Enabled: true, DropChance: 1, DropMs: 1000 * float64(ChunkSize*3) / 44100}
	out := Process(in, 44100, p, rand.New(rand.NewPCG(4, 4)))
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0", i, v)
		}
	}
}

// scriptedSource replays fixed Float64 values, repeating the last one.
type scriptedSource struct {
	vals []float64
	n    int
}

func (s *scriptedSource) Uint64() uint64 {
	v := s.vals[min(s.n, len(s.vals)-1)]
	s.n++
	return uint64(v * (1 << 53))
}

func TestDropDrawnAfterStutter(t *testing.T) {
	const sr = 48000
	in := ramp(ChunkSize * 8)
	p := Params{
		Enabled:       true,
		StutterChance: 0.5,
		StutterMs:     (ChunkSize + 0.5) * 1000 / sr,
		DropChance:    0.5,
	}
	src := &scriptedSource{vals: []float64{0.9, 0.1}}
	out := Process(in, sr, p, rand.New(src))

	for i := 0; i < ChunkSize; i++ {
		if out[i] != in[i] {
			t.Fatalf("first chunk changed at %d", i)
		}
	}
	for i := ChunkSize; i < 2*ChunkSize; i++ {
		if out[i] != in[i-ChunkSize] {
			t.Fatalf("out[%d] = %v, want stutter of %v", i, out[i], in[i-ChunkSize])
		}
	}
	for i := 2 * ChunkSize; i < 3*ChunkSize; i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %v, want dropped after stutter", i, out[i])
		}
	}
}
