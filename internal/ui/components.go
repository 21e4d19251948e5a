package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/olivier-w/specpaint/internal/display"
	"github.com/olivier-w/specpaint/internal/engine"
	"github.com/olivier-w/specpaint/internal/mask"
	"github.com/olivier-w/specpaint/internal/util"
)

const labelWidth = 9

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	ratio = math.Max(0, math.Min(1, ratio))

	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

func renderQuality(q engine.Quality) string {
	if q.Perfect {
		return fmt.Sprintf("max err %.1e  SNR %s (perfect)", q.MaxAbsError, util.FormatDB(q.SNR))
	}
	return fmt.Sprintf("max err %.1e  SNR %s", q.MaxAbsError, util.FormatDB(q.SNR))
}

func renderBrush(mode mask.Mode, erase bool, radius, value float64) string {
	action := "paint"
	if erase {
		action = "erase"
	}
	return fmt.Sprintf("%s %s  r=%.0f bins  %s", mode, action, radius, util.FormatDB(value))
}

// renderPane draws a matrix with its frequency labels in a left gutter.
func renderPane(v engine.View, width, height int, p display.Palette, cur display.Cursor) string {
	if width < 1 || height < 1 {
		return ""
	}
	body := strings.Split(display.Render(v.Matrix, width, height, p, cur), "\n")
	gutter := make([]string, height)
	if v.Matrix.Rows > 0 {
		for _, l := range v.Labels {
			row := min(height-1, l.Row*height/v.Matrix.Rows)
			if l.Row == v.Matrix.Rows-1 {
				row = height - 1
			}
			gutter[row] = l.Text
		}
	}

	var b strings.Builder
	for i, line := range body {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  ")
		b.WriteString(timeStyle.Render(fmt.Sprintf("%*s ", labelWidth-1, gutter[i])))
		b.WriteString(line)
	}
	return b.String()
}
