package diag

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/patternpilot/internal/mocks"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

type fakeShots struct {
	img image.Image
	err error
}

func (f fakeShots) CaptureScreen() (image.Image, error) { return f.img, f.err }

func screenOf(w, h int) func() platform.Bounds {
	return func() platform.Bounds { return platform.Bounds{Width: w, Height: h} }
}

func TestAnnotateScalesToImagePixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := Annotate(img, platform.Bounds{X: 10, Y: 10, Width: 50, Height: 40}, platform.Bounds{Width: 200, Height: 100}, "")

	// 2x image: the box corner lands on (20, 20)
	assert.Equal(t, boxColor, out.RGBAAt(20, 20))
	assert.Equal(t, boxColor, out.RGBAAt(119, 20))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(50, 50))
	// the source image is left untouched
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 20))
}

func TestRecordTimeoutSavesCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	shots := fakeShots{img: image.NewRGBA(image.Rect(0, 0, 200, 100))}
	r, err := NewRecorder(shots, screenOf(200, 100), dir, nil)
	require.NoError(t, err)

	area := platform.Bounds{X: 5, Y: 5, Width: 50, Height: 50}
	r.RecordTimeout("wait", pattern.New("win7/home button.png"), area)

	captures := r.Captures()
	require.Len(t, captures, 1)
	c := captures[0]
	assert.Equal(t, "wait", c.Action)
	assert.Equal(t, area, c.Area)
	assert.True(t, strings.HasPrefix(filepath.Base(c.Path), "home_button-"), c.Path)

	f, err := os.Open(c.Path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func TestRecordTimeoutSwallowsCaptureErrors(t *testing.T) {
	shots := new(mocks.MockScreenshotter)
	shots.On("CaptureScreen").Return(nil, errors.New("denied")).Twice()
	r, err := NewRecorder(shots, screenOf(10, 10), t.TempDir(), nil)
	require.NoError(t, err)

	r.RecordTimeout("wait", pattern.New("a.png"), platform.Bounds{})
	r.RecordTimeout("wait vanish", pattern.New("a.png"), platform.Bounds{})
	assert.Empty(t, r.Captures())
	shots.AssertExpectations(t)
}

func TestNewRecorderNeedsScreenshotter(t *testing.T) {
	_, err := NewRecorder(nil, screenOf(10, 10), t.TempDir(), nil)
	assert.Error(t, err)
}
