package screen

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

func ptr(p pattern.Pattern) *pattern.Pattern { return &p }

func TestNewRegionRejectsEmpty(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-5, 10}} {
		_, err := NewRegion(0, 0, size[0], size[1])
		assert.Equal(t, outcome.AmbiguousPrecondition, outcome.KindOf(err), "size %v", size)
	}
}

func TestFromAnchorIsTranslationInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("region size ignores anchor position", prop.ForAll(
		func(x, y, w, h int) bool {
			sub := screentest.New()
			sub.Show("anchor.png", platform.Bounds{X: x, Y: y, Width: 30, Height: 30})
			s := newTestScreen(sub)

			r, err := s.FromAnchor(pattern.New("anchor.png"), w, h, platform.Location{X: -285})
			if err != nil {
				t.Logf("FromAnchor failed: %v", err)
				return false
			}
			b := r.Bounds()
			return b.Width == w && b.Height == h && b.X == x-285 && b.Y == y
		},
		gen.IntRange(0, 1880),
		gen.IntRange(0, 1040),
		gen.IntRange(1, 800),
		gen.IntRange(1, 800),
	))

	properties.TestingRun(t)
}

func TestFromAnchorMissingAnchor(t *testing.T) {
	s := newTestScreen(screentest.New())

	_, err := s.FromAnchor(pattern.New("anchor.png"), 100, 100, platform.Location{})
	assert.Equal(t, outcome.NotFound, outcome.KindOf(err))
	assert.Equal(t, "anchor.png", outcome.PatternOf(err))

	_, err = s.FromAnchor(pattern.New("anchor.png"), 0, 100, platform.Location{})
	assert.Equal(t, outcome.AmbiguousPrecondition, outcome.KindOf(err))
}

func TestFromBoundsRejectsReversedAnchors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("left anchor at or right of right anchor fails", prop.ForAll(
		func(rightX, gap int) bool {
			sub := screentest.New()
			sub.Show("left.png", platform.Bounds{X: rightX + gap, Y: 10, Width: 20, Height: 20})
			sub.Show("right.png", platform.Bounds{X: rightX, Y: 10, Width: 20, Height: 20})
			s := newTestScreen(sub)

			_, err := s.FromBounds(Anchors{Left: ptr(pattern.New("left.png")), Right: ptr(pattern.New("right.png"))})
			return outcome.KindOf(err) == outcome.AmbiguousPrecondition
		},
		gen.IntRange(0, 900),
		gen.IntRange(0, 900),
	))

	properties.Property("top anchor at or below bottom anchor fails", prop.ForAll(
		func(bottomY, gap int) bool {
			sub := screentest.New()
			sub.Show("top.png", platform.Bounds{X: 10, Y: bottomY + gap, Width: 20, Height: 20})
			sub.Show("bottom.png", platform.Bounds{X: 10, Y: bottomY, Width: 20, Height: 20})
			s := newTestScreen(sub)

			_, err := s.FromBounds(Anchors{Top: ptr(pattern.New("top.png")), Bottom: ptr(pattern.New("bottom.png"))})
			return outcome.KindOf(err) == outcome.AmbiguousPrecondition
		},
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}

func TestFromBoundsEdgesAndPadding(t *testing.T) {
	sub := screentest.New()
	sub.Show("history.png", platform.Bounds{X: 900, Y: 40, Width: 16, Height: 16})
	sub.Show("hamburger.png", platform.Bounds{X: 1880, Y: 40, Width: 20, Height: 20})
	sub.Show("exit.png", platform.Bounds{X: 1700, Y: 600, Width: 40, Height: 20})
	s := newTestScreen(sub)

	tests := []struct {
		name    string
		anchors Anchors
		want    platform.Bounds
	}{
		{
			name:    "left and right, screen height",
			anchors: Anchors{Left: ptr(pattern.New("history.png")), Right: ptr(pattern.New("hamburger.png"))},
			want:    platform.Bounds{X: 900, Y: 0, Width: 1000, Height: 1080},
		},
		{
			name: "inward padding",
			anchors: Anchors{Left: ptr(pattern.New("history.png")), Right: ptr(pattern.New("hamburger.png")),
				PadTop: 20, PadBottom: 20},
			want: platform.Bounds{X: 900, Y: 20, Width: 1000, Height: 1040},
		},
		{
			name: "outward padding",
			anchors: Anchors{Right: ptr(pattern.New("hamburger.png")), Top: ptr(pattern.New("hamburger.png")),
				Bottom: ptr(pattern.New("exit.png")), PadRight: -20},
			want: platform.Bounds{X: 0, Y: 40, Width: 1920, Height: 580},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.FromBounds(tt.anchors)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Bounds())
		})
	}
}

func TestFromBoundsFailures(t *testing.T) {
	sub := screentest.New()
	sub.Show("left.png", platform.Bounds{X: 100, Y: 10, Width: 20, Height: 20})
	sub.Show("right.png", platform.Bounds{X: 200, Y: 10, Width: 20, Height: 20})
	s := newTestScreen(sub)

	_, err := s.FromBounds(Anchors{})
	assert.Equal(t, outcome.AmbiguousPrecondition, outcome.KindOf(err))

	_, err = s.FromBounds(Anchors{Left: ptr(pattern.New("left.png")), Right: ptr(pattern.New("right.png")),
		PadLeft: 70, PadRight: 60})
	assert.Equal(t, outcome.AmbiguousPrecondition, outcome.KindOf(err))

	_, err = s.FromBounds(Anchors{Left: ptr(pattern.New("nowhere.png"))})
	assert.True(t, outcome.IsAbsent(err))
	assert.Equal(t, "nowhere.png", outcome.PatternOf(err))
}
