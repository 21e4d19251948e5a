package display

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const settleEpsilon = 1e-3

// Animator springs every cell of a displayed matrix toward a target, so a
// freshly resynthesized pane eases in instead of jumping.
type Animator struct {
	spring harmonica.Spring
	target Matrix
	pos    [][]float64
	vel    [][]float64
}

// NewAnimator creates an animator stepping at fps frames per second.
func NewAnimator(fps int, frequency, damping float64) *Animator {
	return &Animator{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// SetTarget starts a transition toward m. A shape change snaps immediately.
func (a *Animator) SetTarget(m Matrix) {
	a.target = m
	if len(a.pos) != m.Rows || (m.Rows > 0 && len(a.pos[0]) != m.Cols) {
		a.pos = make([][]float64, m.Rows)
		a.vel = make([][]float64, m.Rows)
		for r := range a.pos {
			a.pos[r] = append([]float64(nil), m.Values[r]...)
			a.vel[r] = make([]float64, m.Cols)
		}
	}
}

// Step advances one frame and reports whether every cell has settled.
func (a *Animator) Step() bool {
	settled := true
	for r := range a.pos {
		for c := range a.pos[r] {
			goal := a.target.Values[r][c]
			p, v := a.spring.Update(a.pos[r][c], a.vel[r][c], goal)
			a.pos[r][c], a.vel[r][c] = p, v
			if math.Abs(p-goal) > settleEpsilon || math.Abs(v) > settleEpsilon {
				settled = false
			}
		}
	}
	if settled {
		for r := range a.pos {
			copy(a.pos[r], a.target.Values[r])
			clear(a.vel[r])
		}
	}
	return settled
}

// Current returns the in-flight matrix. It shares storage with the animator.
func (a *Animator) Current() Matrix {
	return Matrix{Rows: a.target.Rows, Cols: a.target.Cols, Values: a.pos}
}
