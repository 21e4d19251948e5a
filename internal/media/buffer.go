package media

import "time"

// Buffer is decoded mono audio with samples in [-1, 1]. Once decoded it is
// shared read-only.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the playing time of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}
