package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var shadeChars = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

// Palette maps a matrix value onto a colour and a shade in [0, 1].
type Palette int

const (
	// Heat expects values in [0, 1].
	Heat Palette = iota
	// Diverging expects values in [-1, 1]; cuts are blue, boosts red.
	Diverging
)

type rgb struct{ R, G, B uint8 }

func (c rgb) hex() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b rgb, t float64) rgb {
	t = clamp01(t)
	return rgb{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

func heat(t float64) rgb {
	t = clamp01(t)
	switch {
	case t < 0.25:
		return lerp(rgb{16, 25, 70}, rgb{0, 174, 255}, t/0.25)
	case t < 0.5:
		return lerp(rgb{0, 174, 255}, rgb{20, 255, 161}, (t-0.25)/0.25)
	case t < 0.75:
		return lerp(rgb{20, 255, 161}, rgb{255, 230, 92}, (t-0.5)/0.25)
	default:
		return lerp(rgb{255, 230, 92}, rgb{255, 80, 60}, (t-0.75)/0.25)
	}
}

func (p Palette) cell(v float64) (rgb, float64) {
	if p == Diverging {
		mid := rgb{70, 70, 80}
		if v < 0 {
			return lerp(mid, rgb{40, 120, 255}, -v), clamp01(-v)
		}
		return lerp(mid, rgb{255, 70, 50}, v), clamp01(v)
	}
	return heat(v), clamp01(v)
}

// Cursor is a position in matrix space as fractions of width and height.
type Cursor struct {
	X, Y float64
	Show bool
}

var cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))

// Render draws m into a width×height block of coloured shade characters,
// sampling the nearest matrix cell for each character.
func Render(m Matrix, width, height int, p Palette, cur Cursor) string {
	if width < 1 || height < 1 {
		return ""
	}
	if m.Empty() {
		blank := strings.Repeat(" ", width)
		lines := make([]string, height)
		for i := range lines {
			lines[i] = blank
		}
		return strings.Join(lines, "\n")
	}

	cr, cc := -1, -1
	if cur.Show {
		cr = min(height-1, int(clamp01(cur.Y)*float64(height)))
		cc = min(width-1, int(clamp01(cur.X)*float64(width)))
	}

	var out strings.Builder
	for y := range height {
		if y > 0 {
			out.WriteByte('\n')
		}
		row := m.Values[min(m.Rows-1, y*m.Rows/height)]

		var run strings.Builder
		var runColor rgb
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out.WriteString(lipgloss.NewStyle().Foreground(runColor.hex()).Render(run.String()))
			run.Reset()
		}

		for x := range width {
			if y == cr && x == cc {
				flush()
				out.WriteString(cursorStyle.Render("+"))
				continue
			}
			col, shade := p.cell(row[min(m.Cols-1, x*m.Cols/width)])
			if col != runColor {
				flush()
				runColor = col
			}
			idx := min(len(shadeChars)-1, int(shade*float64(len(shadeChars)-1)+0.5))
			run.WriteRune(shadeChars[idx])
		}
		flush()
	}
	return out.String()
}
