package util

import (
	"math"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0:00"},
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{10*time.Minute + 3*time.Second, "10:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHz(t *testing.T) {
	tests := []struct {
		hz   float64
		want string
	}{
		{0, "0 Hz"},
		{440, "440 Hz"},
		{11025, "11.0 kHz"},
		{22050, "22.1 kHz"},
	}
	for _, tt := range tests {
		if got := FormatHz(tt.hz); got != tt.want {
			t.Fatalf("FormatHz(%v) = %q, want %q", tt.hz, got, tt.want)
		}
	}
}

func TestFormatDB(t *testing.T) {
	if got := FormatDB(math.Inf(1)); got != "inf dB" {
		t.Fatalf("FormatDB(+Inf) = %q", got)
	}
	if got := FormatDB(-6); got != "-6.0 dB" {
		t.Fatalf("FormatDB(-6) = %q", got)
	}
	if got := FormatDB(12.34); got != "+12.3 dB" {
		t.Fatalf("FormatDB(12.34) = %q", got)
	}
}
