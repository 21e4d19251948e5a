package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the coalescer waits for edits to settle.
const DefaultDebounce = 400 * time.Millisecond

// RenderFunc produces a Result for a Snapshot.
type RenderFunc func(context.Context, Snapshot) (Result, error)

// Coalescer collapses bursts of resynthesis requests. It holds at most one
// pending request: a Submit replaces any request whose debounce has not yet
// expired. Requests already running are left to finish, but a result is
// delivered only if no newer request has completed before it.
type Coalescer struct {
	delay   time.Duration
	render  RenderFunc
	deliver func(Result)
	log     logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
	accepted uint64
	closed   bool
	wg       sync.WaitGroup
}

// NewCoalescer creates a coalescer. deliver is called with the coalescer's
// lock held, in increasing Seq order; it must not block or call Submit.
func NewCoalescer(delay time.Duration, render RenderFunc, deliver func(Result), log logrus.FieldLogger) *Coalescer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coalescer{
		delay:   delay,
		render:  render,
		deliver: deliver,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit schedules snap after the debounce delay and returns its sequence
// number, or 0 once the coalescer is closed.
func (c *Coalescer) Submit(snap Snapshot) uint64 {
	return c.submit(snap, c.delay)
}

// SubmitNow schedules snap without waiting, still superseding any pending
// request.
func (c *Coalescer) SubmitNow(snap Snapshot) uint64 {
	return c.submit(snap, 0)
}

func (c *Coalescer) submit(snap Snapshot, delay time.Duration) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}

	c.seq++
	seq := c.seq
	if c.timer != nil && c.timer.Stop() {
		// The pending request never started.
		c.wg.Done()
	}
	c.wg.Add(1)
	c.timer = time.AfterFunc(delay, func() {
		defer c.wg.Done()
		c.run(seq, snap)
	})
	return seq
}

func (c *Coalescer) run(seq uint64, snap Snapshot) {
	res, err := c.render(c.ctx, snap)
	res.Seq = seq
	res.Err = err
	if errors.Is(err, context.Canceled) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if seq <= c.accepted {
		c.log.WithFields(logrus.Fields{
			"seq":      seq,
			"accepted": c.accepted,
		}).Debug("dropped superseded resynthesis")
		return
	}
	c.accepted = seq

	fields := logrus.Fields{"seq": seq, "elapsed": res.Elapsed}
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("resynthesis failed")
	} else {
		fields["snr_db"] = res.Quality.SNR
		c.log.WithFields(fields).Info("resynthesis accepted")
	}
	c.deliver(res)
}

// Latest returns the newest issued and newest delivered sequence numbers.
func (c *Coalescer) Latest() (issued, accepted uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq, c.accepted
}

// Close drops any pending request, cancels running renders and waits for
// them to return.
func (c *Coalescer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil && c.timer.Stop() {
		c.wg.Done()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
