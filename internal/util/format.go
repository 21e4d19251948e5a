package util

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatHz formats a frequency as "440 Hz" or "22.1 kHz".
func FormatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.1f kHz", hz/1000)
	}
	return fmt.Sprintf("%.0f Hz", hz)
}

// FormatDB formats a level with sign, or "inf" for an infinite ratio.
func FormatDB(db float64) string {
	switch {
	case math.IsInf(db, 1):
		return "inf dB"
	case math.IsInf(db, -1):
		return "-inf dB"
	}
	return fmt.Sprintf("%+.1f dB", db)
}
