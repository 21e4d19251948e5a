package media

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".wav", true},
		{".WAV", true},
		{".mp3", true},
		{".flac", true},
		{".ogg", true},
		{".m4a", false},
		{".txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSupportedExt(tt.ext); got != tt.want {
			t.Fatalf("IsSupportedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestSupportedExtsListMatchesExtensions(t *testing.T) {
	list := SupportedExtsList()
	for ext := range audioExts {
		if !strings.Contains(list, ext) {
			t.Fatalf("SupportedExtsList() = %q, missing %s", list, ext)
		}
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.wav")
	if err := os.WriteFile(small, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Validate(small, DefaultMaxBytes); err != nil {
		t.Fatalf("Validate(small) = %v, want nil", err)
	}
	if err := Validate(small, 512); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Validate(small, 512) = %v, want ErrFileTooLarge", err)
	}
	if err := Validate(small, 0); err != nil {
		t.Fatalf("Validate(small, 0) = %v, want nil (no limit)", err)
	}
	if err := Validate(text, DefaultMaxBytes); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Validate(text) = %v, want ErrUnsupportedFormat", err)
	}
	if err := Validate(dir, DefaultMaxBytes); err == nil {
		t.Fatal("Validate(dir) = nil, want error")
	}
	if err := Validate(filepath.Join(dir, "missing.wav"), DefaultMaxBytes); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Validate(missing) = %v, want ErrNotExist", err)
	}
}

func TestReadMetadataFallsBackToFileName(t *testing.T) {
	m := ReadMetadata(filepath.Join("some", "dir", "take 3.wav"))
	if m.Title != "take 3" {
		t.Fatalf("Title = %q, want %q", m.Title, "take 3")
	}
	if m.Label() != "take 3" {
		t.Fatalf("Label() = %q, want %q", m.Label(), "take 3")
	}
	m.Artist = "Band"
	if m.Label() != "Band - take 3" {
		t.Fatalf("Label() = %q, want %q", m.Label(), "Band - take 3")
	}
}
