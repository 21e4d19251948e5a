package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrEmptyAudio        = errors.New("no audio samples")
)

// DefaultMaxBytes caps the size of files accepted for editing.
const DefaultMaxBytes = 200 << 20

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

// IsSupportedExt returns true if the extension is a decodable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// SupportedExtsList returns a human-readable list of supported formats.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg"
}

// Validate rejects paths that are missing, directories, of an unknown type
// or larger than maxBytes. It runs before any decoding or analysis.
func Validate(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupportedExt(ext) {
		return fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, ext, SupportedExtsList())
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return fmt.Errorf("%w: %d MB (limit %d MB)", ErrFileTooLarge, info.Size()>>20, maxBytes>>20)
	}
	return nil
}
