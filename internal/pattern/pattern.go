// Package pattern holds the named visual templates the engine searches for.
package pattern

import (
	"fmt"

	"github.com/mj1618/patternpilot/internal/platform"
)

// Pattern is a reference image plus the similarity a match must reach and an
// optional offset from the match centre to the point that gets clicked.
// Patterns are values: the builder methods return modified copies.
type Pattern struct {
	name       string
	path       string
	similarity float64
	offset     platform.Location
	width      int
	height     int
}

// New returns an unresolved pattern whose path is its name. Similarity 0
// means "use the registry default".
func New(name string) Pattern {
	return Pattern{name: name, path: name}
}

// Name is the template's identity, e.g. "home_button.png".
func (p Pattern) Name() string { return p.name }

// Path is where the matcher loads the image from.
func (p Pattern) Path() string { return p.path }

// Similarity is the minimum match score; 0 when unset.
func (p Pattern) Similarity() float64 { return p.similarity }

// Offset is applied to the match centre before clicking or hovering.
func (p Pattern) Offset() platform.Location { return p.offset }

// Size returns the template dimensions. Zero for patterns that were never
// resolved through a Registry.
func (p Pattern) Size() (width, height int) { return p.width, p.height }

// Similar returns a copy with the given similarity threshold.
func (p Pattern) Similar(similarity float64) Pattern {
	p.similarity = similarity
	return p
}

// TargetOffset returns a copy that acts dx, dy away from the match centre.
func (p Pattern) TargetOffset(dx, dy int) Pattern {
	p.offset = platform.Location{X: dx, Y: dy}
	return p
}

// Template converts p for the matcher, filling in def when p has no
// similarity of its own.
func (p Pattern) Template(def float64) platform.Template {
	sim := p.similarity
	if sim == 0 {
		sim = def
	}
	return platform.Template{Name: p.name, Path: p.path, Similarity: sim}
}

func (p Pattern) String() string {
	if p.similarity == 0 {
		return p.name
	}
	return fmt.Sprintf("%s@%.2f", p.name, p.similarity)
}
