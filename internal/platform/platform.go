package platform

import "image"

// Template is what a Matcher needs to know about a pattern: the image to look
// for and how close a candidate must be to count as a match.
type Template struct {
	Name       string
	Path       string
	Similarity float64
}

// Matcher locates templates on the current screen. Implementations do a
// single probe per call; waiting and polling are layered on top by the screen
// package.
type Matcher interface {
	// Find searches area for tmpl. found is false when nothing scored at or
	// above tmpl.Similarity; err is reserved for failures of the probe itself.
	Find(tmpl Template, area Bounds) (match Bounds, score float64, found bool, err error)

	// ScreenBounds returns the full searchable screen.
	ScreenBounds() Bounds
}

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	Click(at Location, button MouseButton) error
	MoveMouse(to Location) error
	Scroll(at Location, clicks int) error
	TypeText(text string) error
	KeyPress(key Key, mods ...Modifier) error
	KeyDown(key Key) error
	KeyUp(key Key) error
}

// ClipboardManager reads and writes the system clipboard.
type ClipboardManager interface {
	GetText() (string, error)
	SetText(text string) error
	Clear() error
}

// Screenshotter captures the whole screen. Only used for failure diagnostics.
type Screenshotter interface {
	CaptureScreen() (image.Image, error)
}

// Launcher starts the browser under test again after it has been quit.
type Launcher interface {
	Launch() error
}
