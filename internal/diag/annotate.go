package diag

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/patternpilot/internal/platform"
)

var (
	boxColor     = color.RGBA{R: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{A: 200}
)

// Annotate draws the searched area and a label onto a copy of img. area is in
// screen points; screen is the full screen in points and sets the scale to
// image pixels (2x on Retina displays).
func Annotate(img image.Image, area, screen platform.Bounds, label string) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	scaleX, scaleY := 1.0, 1.0
	if screen.Width > 0 {
		scaleX = float64(b.Dx()) / float64(screen.Width)
	}
	if screen.Height > 0 {
		scaleY = float64(b.Dy()) / float64(screen.Height)
	}

	x1 := b.Min.X + int(float64(area.X-screen.X)*scaleX)
	y1 := b.Min.Y + int(float64(area.Y-screen.Y)*scaleY)
	x2 := x1 + int(float64(area.Width)*scaleX)
	y2 := y1 + int(float64(area.Height)*scaleY)
	drawRectangle(rgba, image.Rect(x1, y1, x2, y2), boxColor)

	// label sits just inside the top-left corner of the box
	drawLabel(rgba, label, x1+4, y1+13+2)
	return rgba
}

func drawRectangle(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	paint := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(x+dx, y+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				paint(dx, dy, outlineColor)
			}
		}
	}
	paint(0, 0, textColor)
}
