package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// Decode reads a whole audio file, picking the decoder by extension, and
// downmixes it to mono.
func Decode(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()

	var buf Buffer
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		buf, err = decodeMP3(f)
	case ".wav":
		buf, err = decodeWAV(f)
	case ".flac":
		buf, err = decodeFLAC(f)
	case ".ogg":
		buf, err = decodeOGG(f)
	default:
		return Buffer{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Buffer{}, err
	}
	if len(buf.Samples) == 0 {
		return Buffer{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyAudio)
	}
	if buf.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("unsupported sample rate: %d", buf.SampleRate)
	}
	return buf, nil
}

// go-mp3 always produces 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Buffer{}, fmt.Errorf("decoding MP3: %w", err)
	}

	frames := len(raw) / 4
	out := make([]float64, frames)
	for i := range out {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		out[i] = (float64(left) + float64(right)) / 65536.0
	}
	return Buffer{Samples: out, SampleRate: dec.SampleRate()}, nil
}

func decodeWAV(r io.ReadSeeker) (Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, fmt.Errorf("invalid WAV file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 {
		return Buffer{}, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return Buffer{}, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned
		offset = 128
	}

	frames := len(pcm.Data) / channels
	out := make([]float64, frames)
	for i := range out {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += pcm.Data[i*channels+ch] - offset
		}
		out[i] = float64(sum) / float64(channels) / scale
	}
	return Buffer{Samples: out, SampleRate: int(dec.SampleRate)}, nil
}

func decodeFLAC(r io.Reader) (Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)
	if channels < 1 || bps < 1 {
		return Buffer{}, fmt.Errorf("decoding FLAC: invalid stream info")
	}
	scale := float64(int64(1)<<(bps-1)) * float64(channels)

	out := make([]float64, 0, info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Buffer{}, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		n := int(frame.Subframes[0].NSamples)
		for i := 0; i < n; i++ {
			var sum int64
			for ch := 0; ch < channels; ch++ {
				sum += int64(frame.Subframes[ch].Samples[i])
			}
			out = append(out, float64(sum)/scale)
		}
	}
	return Buffer{Samples: out, SampleRate: int(info.SampleRate)}, nil
}

func decodeOGG(r io.Reader) (Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return Buffer{}, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := format.Channels
	if channels < 1 {
		return Buffer{}, fmt.Errorf("unsupported channel count: %d", channels)
	}

	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := range out {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(samples[i*channels+ch])
		}
		out[i] = sum / float64(channels)
	}
	return Buffer{Samples: out, SampleRate: format.SampleRate}, nil
}
