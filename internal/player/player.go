package player

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/specpaint/internal/media"
)

var ErrNoAudio = errors.New("nothing to play")

// countingReader wraps an io.Reader and tracks bytes read.
type countingReader struct {
	reader io.ReadSeeker
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// output is the subset of *oto.Player the Player drives.
type output interface {
	Play()
	Pause()
	SetVolume(float64)
	Close() error
}

// Player plays one buffer at a time. Starting a new buffer stops the one
// already playing.
type Player struct {
	newOutput func(io.Reader) (output, error)

	mu      sync.Mutex
	out     output
	pcm     *bytes.Reader
	counter *countingReader
	total   int64
	label   string
	volume  float64
	paused  bool
	done    chan struct{}
	finish  func()
	stopMon chan struct{}
	closed  bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New creates a Player. The audio device is opened on first Play.
func New() *Player {
	return &Player{
		newOutput: func(r io.Reader) (output, error) {
			ctx, err := initOto()
			if err != nil {
				return nil, err
			}
			return ctx.NewPlayer(r), nil
		},
		volume: 0.8,
	}
}

// Play stops whatever is playing and starts buf from the beginning. label
// names what is playing, e.g. "original" or "edited".
func (p *Player) Play(buf media.Buffer, label string) error {
	pcm := encodePCM(buf.Samples, buf.SampleRate)
	if len(pcm) == 0 {
		return ErrNoAudio
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.stopLocked()

	reader := bytes.NewReader(pcm)
	counter := &countingReader{reader: reader}
	out, err := p.newOutput(counter)
	if err != nil {
		p.pcm, p.counter, p.total = nil, nil, 0
		return err
	}
	p.pcm = reader
	p.counter = counter
	p.total = int64(len(pcm))
	p.out = out
	p.label = label
	p.paused = false
	done := make(chan struct{})
	var once sync.Once
	p.done = done
	p.finish = func() { once.Do(func() { close(done) }) }
	p.stopMon = make(chan struct{})
	p.out.SetVolume(p.volume)
	p.out.Play()

	go p.monitor(p.counter, p.total, p.finish, p.stopMon)
	return nil
}

func (p *Player) monitor(counter *countingReader, total int64, finish func(), stop chan struct{}) {
	// Poll until playback finishes or is replaced
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		paused := p.paused
		p.mu.Unlock()
		if !paused && counter.Pos() >= total {
			finish()
			return
		}
	}
}

func (p *Player) stopLocked() {
	if p.finish != nil {
		p.finish()
		p.finish = nil
	}
	if p.stopMon != nil {
		close(p.stopMon)
		p.stopMon = nil
	}
	if p.out != nil {
		p.out.Pause()
		p.out.Close()
		p.out = nil
	}
	p.label = ""
}

// Stop silences playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Done returns a channel that closes when the current buffer finishes or is
// stopped. It is nil when nothing was started.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Playing returns the label of the current buffer, or "" when idle.
func (p *Player) Playing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.label
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return
	}
	if p.paused {
		p.out.Play()
		p.paused = false
	} else {
		p.out.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	counter := p.counter
	p.mu.Unlock()
	if counter == nil {
		return 0
	}
	return bytesToDuration(counter.Pos())
}

// Duration returns the length of the current buffer.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return bytesToDuration(p.total)
}

func bytesToDuration(n int64) time.Duration {
	return time.Duration(float64(n) / float64(bytesPerSec) * float64(time.Second))
}

func clampSeekByteOffset(target time.Duration, bytesPerSec, total, frameSize int64) int64 {
	pos := int64(target.Seconds() * float64(bytesPerSec))
	if pos < 0 {
		pos = 0
	}
	if pos > total {
		pos = total
	}
	return pos - pos%frameSize
}

// Seek moves playback by delta from the current position.
func (p *Player) Seek(delta time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil || p.pcm == nil {
		return nil
	}

	target := bytesToDuration(p.counter.Pos()) + delta
	pos := clampSeekByteOffset(target, bytesPerSec, p.total, playbackFrameSize)
	if _, err := p.pcm.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	p.counter.SetPos(pos)

	// Recreate the output to flush its buffer
	p.out.Pause()
	p.out.Close()
	out, err := p.newOutput(p.counter)
	if err != nil {
		p.out = nil
		return err
	}
	p.out = out
	p.out.SetVolume(p.volume)
	if !p.paused {
		p.out.Play()
	}
	return nil
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	if p.out != nil {
		p.out.SetVolume(v)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close stops playback. The shared audio device stays open.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopLocked()
}
