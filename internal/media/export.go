package media

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ExportPath returns the file name used when saving an edit of src.
func ExportPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + ".edited.wav"
}

// WriteWAV writes buf as 16-bit mono PCM, clipping samples to [-1, 1].
func WriteWAV(path string, buf Buffer) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("unsupported sample rate: %d", buf.SampleRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		s = math.Max(-1, math.Min(1, s))
		data[i] = int(math.Round(s * 32767))
	}

	enc := wav.NewEncoder(f, buf.SampleRate, 16, 1, 1)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		f.Close()
		return fmt.Errorf("writing WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing WAV: %w", err)
	}
	return f.Close()
}
