// Package diag saves annotated screenshots of the area a timed-out wait was
// searching, so a failed run can be diagnosed without re-running it.
package diag

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

// Capture describes one saved screenshot.
type Capture struct {
	Path    string          `yaml:"path" json:"path"`
	Action  string          `yaml:"action" json:"action"`
	Pattern string          `yaml:"pattern" json:"pattern"`
	Area    platform.Bounds `yaml:"area" json:"area"`
	Time    time.Time       `yaml:"time" json:"time"`
}

// Recorder implements screen.FailureRecorder.
type Recorder struct {
	shots  platform.Screenshotter
	screen func() platform.Bounds
	dir    string
	log    *zap.Logger

	mu       sync.Mutex
	captures []Capture
}

// NewRecorder writes captures under dir, creating it if needed. screen
// reports the full screen in points and is usually Matcher.ScreenBounds.
func NewRecorder(shots platform.Screenshotter, screen func() platform.Bounds, dir string, log *zap.Logger) (*Recorder, error) {
	if shots == nil {
		return nil, fmt.Errorf("screen capture not available on this platform")
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expand diag dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("create diag dir: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{shots: shots, screen: screen, dir: expanded, log: log}, nil
}

// RecordTimeout captures the screen and saves it with area outlined. Failures
// are logged; a broken capture never changes the outcome of the wait.
func (r *Recorder) RecordTimeout(action string, p pattern.Pattern, area platform.Bounds) {
	c, err := r.capture(action, p, area)
	if err != nil {
		r.log.Warn("failed to save timeout capture",
			zap.String("action", action),
			zap.String("pattern", p.Name()),
			zap.Error(err))
		return
	}
	r.log.Info("saved timeout capture",
		zap.String("action", action),
		zap.String("pattern", p.Name()),
		zap.String("path", c.Path))
}

func (r *Recorder) capture(action string, p pattern.Pattern, area platform.Bounds) (Capture, error) {
	img, err := r.shots.CaptureScreen()
	if err != nil {
		return Capture{}, fmt.Errorf("capture screen: %w", err)
	}

	label := fmt.Sprintf("%s %s", action, p.Name())
	annotated := Annotate(img, area, r.screen(), label)

	name := fmt.Sprintf("%s-%s.png", fileStem(p.Name()), uuid.NewString())
	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return Capture{}, fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, annotated); err != nil {
		f.Close()
		return Capture{}, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Capture{}, fmt.Errorf("close %s: %w", path, err)
	}

	c := Capture{Path: path, Action: action, Pattern: p.Name(), Area: area, Time: time.Now()}
	r.mu.Lock()
	r.captures = append(r.captures, c)
	r.mu.Unlock()
	return c, nil
}

// Captures returns what has been saved so far.
func (r *Recorder) Captures() []Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Capture(nil), r.captures...)
}

func fileStem(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, stem)
	if stem == "" {
		return "capture"
	}
	return stem
}
