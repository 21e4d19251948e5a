package player

import (
	"encoding/binary"
	"math"
)

const (
	playbackSampleRate     = 48000
	playbackChannels       = 2
	playbackBytesPerSample = 2
	playbackFrameSize      = playbackChannels * playbackBytesPerSample
	bytesPerSec            = playbackSampleRate * playbackFrameSize
)

// encodePCM converts mono float samples at srcRate into the 48 kHz stereo
// s16le stream the output device is opened with. Rate conversion is linear
// interpolation between neighbouring source samples.
func encodePCM(samples []float64, srcRate int) []byte {
	if srcRate <= 0 || len(samples) == 0 {
		return nil
	}
	n := int64(len(samples))
	outFrames := n * playbackSampleRate / int64(srcRate)
	if outFrames == 0 {
		outFrames = 1
	}

	out := make([]byte, outFrames*playbackFrameSize)
	for i := int64(0); i < outFrames; i++ {
		num := i * int64(srcRate)
		idx := num / playbackSampleRate
		a := samples[idx]
		b := a
		if idx+1 < n {
			b = samples[idx+1]
		}
		v := uint16(toInt16(interpolateSample(a, b, num%playbackSampleRate)))
		binary.LittleEndian.PutUint16(out[i*playbackFrameSize:], v)
		binary.LittleEndian.PutUint16(out[i*playbackFrameSize+playbackBytesPerSample:], v)
	}
	return out
}

func interpolateSample(a, b float64, fracNum int64) float64 {
	if fracNum == 0 || a == b {
		return a
	}
	return a + (b-a)*float64(fracNum)/playbackSampleRate
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
