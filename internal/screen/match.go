package screen

import (
	"fmt"

	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

// Match is one located pattern instance. X and Y are the top-left corner.
type Match struct {
	X, Y          int
	Width, Height int
	Score         float64
}

func matchFrom(b platform.Bounds, score float64) Match {
	return Match{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Score: score}
}

// Bounds returns the matched rectangle.
func (m Match) Bounds() platform.Bounds {
	return platform.Bounds{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// Center returns the midpoint of the match.
func (m Match) Center() platform.Location {
	return m.Bounds().Center()
}

// Target is where an action on p lands: the match centre moved by p's
// target offset.
func (m Match) Target(p pattern.Pattern) platform.Location {
	off := p.Offset()
	return m.Center().Offset(off.X, off.Y)
}

func (m Match) String() string {
	return fmt.Sprintf("%s score=%.2f", m.Bounds(), m.Score)
}
