package screen

import (
	"fmt"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

// Region is a rectangle of the screen that searches are limited to. Width and
// height are always positive; the only ways to get one are the constructors
// below.
type Region struct {
	bounds platform.Bounds
}

// NewRegion returns the rectangle at x, y. A non-positive size is an
// AmbiguousPrecondition.
func NewRegion(x, y, width, height int) (Region, error) {
	if width <= 0 || height <= 0 {
		return Region{}, outcome.NewAmbiguous("region", "size must be positive, got %dx%d", width, height)
	}
	return Region{bounds: platform.Bounds{X: x, Y: y, Width: width, Height: height}}, nil
}

// Bounds returns the rectangle.
func (r Region) Bounds() platform.Bounds { return r.bounds }

// Width of the region.
func (r Region) Width() int { return r.bounds.Width }

// Height of the region.
func (r Region) Height() int { return r.bounds.Height }

// IsZero reports whether r was never constructed.
func (r Region) IsZero() bool { return r.bounds == platform.Bounds{} }

func (r Region) String() string {
	return fmt.Sprintf("region(%s)", r.bounds)
}

// ScreenRegion covers the whole screen.
func (s *Screen) ScreenRegion() Region {
	return Region{bounds: s.matcher.ScreenBounds()}
}

// FromAnchor finds anchor and returns a width x height region whose top-left
// corner sits at the anchor's top-left plus offset. The size does not depend
// on where the anchor was found.
func (s *Screen) FromAnchor(anchor pattern.Pattern, width, height int, offset platform.Location) (Region, error) {
	if width <= 0 || height <= 0 {
		return Region{}, outcome.NewAmbiguous("region from anchor", "size must be positive, got %dx%d", width, height).
			WithPattern(anchor.Name())
	}
	m, err := s.Find(anchor)
	if err != nil {
		return Region{}, outcome.Wrap(err, "region from anchor", "anchor is not on screen")
	}
	return NewRegion(m.X+offset.X, m.Y+offset.Y, width, height)
}

// Anchors describes a region by the patterns that sit on its edges. Nil edges
// fall back to the edge of the current search area. Padding moves an edge
// inward when positive and outward when negative.
type Anchors struct {
	Left, Right, Top, Bottom *pattern.Pattern

	PadLeft, PadRight, PadTop, PadBottom int
}

func (a Anchors) empty() bool {
	return a.Left == nil && a.Right == nil && a.Top == nil && a.Bottom == nil
}

// FromBounds builds a region from up to four edge anchors. The left edge is
// the left anchor's x, the right edge is the right anchor's x plus its width,
// and likewise for top and bottom. Anchors in the wrong order, or padding
// that collapses the region, fail with AmbiguousPrecondition.
func (s *Screen) FromBounds(a Anchors) (Region, error) {
	const action = "region from bounds"
	if a.empty() {
		return Region{}, outcome.NewAmbiguous(action, "at least one anchor is required")
	}

	area := s.Region().Bounds()
	left, top, right, bottom := area.X, area.Y, area.Right(), area.Bottom()

	locate := func(p *pattern.Pattern) (Match, error) {
		m, err := s.Wait(*p, s.opts.AnchorWait)
		if err != nil {
			return Match{}, outcome.Wrap(err, action, "anchor is not on screen")
		}
		return m, nil
	}

	var lm, rm, tm, bm Match
	var err error
	if a.Left != nil {
		if lm, err = locate(a.Left); err != nil {
			return Region{}, err
		}
		left = lm.X
	}
	if a.Right != nil {
		if rm, err = locate(a.Right); err != nil {
			return Region{}, err
		}
		right = rm.X + rm.Width
	}
	if a.Top != nil {
		if tm, err = locate(a.Top); err != nil {
			return Region{}, err
		}
		top = tm.Y
	}
	if a.Bottom != nil {
		if bm, err = locate(a.Bottom); err != nil {
			return Region{}, err
		}
		bottom = bm.Y + bm.Height
	}

	if a.Left != nil && a.Right != nil && lm.X >= rm.X {
		return Region{}, outcome.NewAmbiguous(action, "left anchor %s at x=%d is not left of right anchor %s at x=%d",
			a.Left.Name(), lm.X, a.Right.Name(), rm.X)
	}
	if a.Top != nil && a.Bottom != nil && tm.Y >= bm.Y {
		return Region{}, outcome.NewAmbiguous(action, "top anchor %s at y=%d is not above bottom anchor %s at y=%d",
			a.Top.Name(), tm.Y, a.Bottom.Name(), bm.Y)
	}

	left += a.PadLeft
	right -= a.PadRight
	top += a.PadTop
	bottom -= a.PadBottom
	if left >= right || top >= bottom {
		return Region{}, outcome.NewAmbiguous(action, "padding leaves no area: left=%d right=%d top=%d bottom=%d",
			left, right, top, bottom)
	}
	return NewRegion(left, top, right-left, bottom-top)
}
