// Package screen turns the substrate's single-probe matcher and raw input
// into the bounded wait contract the rest of the engine is written against.
package screen

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

// FailureRecorder is told about every wait that timed out, with the area
// that was searched.
type FailureRecorder interface {
	RecordTimeout(action string, p pattern.Pattern, area platform.Bounds)
}

// Options configures a Screen.
type Options struct {
	// PollInterval is the delay between two probes of a wait.
	PollInterval time.Duration
	// AnchorWait bounds each anchor lookup in FromBounds.
	AnchorWait time.Duration
	// Similarity applies to patterns without their own threshold.
	Similarity float64
	// MainModifier is held for Paste (cmd on mac, ctrl elsewhere).
	MainModifier platform.Modifier

	Clock    Clock
	Recorder FailureRecorder
	Logger   *zap.Logger
}

// Screen is the search/wait engine plus input helpers. A Screen is either
// unscoped or limited to a Region; In returns a scoped copy.
type Screen struct {
	matcher   platform.Matcher
	input     platform.Inputter
	clipboard platform.ClipboardManager

	opts   Options
	clock  Clock
	log    *zap.Logger
	region Region
}

// New builds a Screen over the provider's matcher, inputter and clipboard.
func New(p *platform.Provider, opts Options) *Screen {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.AnchorWait <= 0 {
		opts.AnchorWait = 5 * time.Second
	}
	if opts.Similarity <= 0 {
		opts.Similarity = 0.8
	}
	if opts.MainModifier == "" {
		opts.MainModifier = platform.ModCtrl
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Screen{
		matcher:   p.Matcher,
		input:     p.Inputter,
		clipboard: p.ClipboardManager,
		opts:      opts,
		clock:     clock,
		log:       log,
	}
}

// In returns a copy of s whose searches are limited to r.
func (s *Screen) In(r Region) *Screen {
	scoped := *s
	scoped.region = r
	return &scoped
}

// Region is the current search area: the scope set by In, or the whole
// screen.
func (s *Screen) Region() Region {
	if s.region.IsZero() {
		return s.ScreenRegion()
	}
	return s.region
}

// Clock returns the time source waits run on.
func (s *Screen) Clock() Clock { return s.clock }

// Pause sleeps for d on the screen's clock.
func (s *Screen) Pause(d time.Duration) {
	if d > 0 {
		s.clock.Sleep(d)
	}
}

func (s *Screen) probe(p pattern.Pattern) (Match, bool, error) {
	b, score, found, err := s.matcher.Find(p.Template(s.opts.Similarity), s.Region().Bounds())
	if err != nil {
		return Match{}, false, err
	}
	if !found {
		return Match{}, false, nil
	}
	return matchFrom(b, score), true, nil
}

// poll probes until p's visibility equals want or timeout passes. There is
// always at least one probe. failed is the last matcher error when no probe
// got an answer at all.
func (s *Screen) poll(p pattern.Pattern, want bool, timeout time.Duration) (_ Match, ok bool, failed error) {
	deadline := s.clock.Now().Add(timeout)
	answered := false
	for {
		m, found, err := s.probe(p)
		if err == nil {
			if found == want {
				return m, true, nil
			}
			answered = true
		} else {
			failed = err
		}
		if !s.clock.Now().Before(deadline) {
			if answered {
				return Match{}, false, nil
			}
			return Match{}, false, failed
		}
		s.clock.Sleep(s.opts.PollInterval)
	}
}

func (s *Screen) timedOut(action string, p pattern.Pattern) {
	s.log.Debug("wait timed out",
		zap.String("action", action),
		zap.String("pattern", p.Name()),
		zap.Stringer("area", s.Region().Bounds()))
	if s.opts.Recorder != nil {
		s.opts.Recorder.RecordTimeout(action, p, s.Region().Bounds())
	}
}

// Find probes once for p.
func (s *Screen) Find(p pattern.Pattern) (Match, error) {
	m, found, err := s.probe(p)
	if err != nil {
		return Match{}, outcome.NewSubstrate("find", "matcher failed").WithPattern(p.Name()).WithCause(err)
	}
	if !found {
		return Match{}, outcome.NewNotFound("find", "not on screen in %s", s.Region()).WithPattern(p.Name())
	}
	return m, nil
}

// Wait polls until p appears, failing with Timeout. If the matcher errored on
// every probe the failure is Substrate instead.
func (s *Screen) Wait(p pattern.Pattern, timeout time.Duration) (Match, error) {
	m, ok, failed := s.poll(p, true, timeout)
	if failed != nil {
		return Match{}, outcome.NewSubstrate("wait", "matcher failed").WithPattern(p.Name()).WithCause(failed)
	}
	if !ok {
		s.timedOut("wait", p)
		return Match{}, outcome.NewTimeout("wait", "not visible after %s", timeout).WithPattern(p.Name())
	}
	s.log.Debug("pattern found", zap.String("pattern", p.Name()), zap.Stringer("match", m))
	return m, nil
}

// Exists reports whether p shows up within timeout. Absence is not recorded
// as a timeout. The error is set only when the matcher failed on every probe.
func (s *Screen) Exists(p pattern.Pattern, timeout time.Duration) (bool, error) {
	_, ok, failed := s.poll(p, true, timeout)
	if failed != nil {
		return false, outcome.NewSubstrate("exists", "matcher failed").WithPattern(p.Name()).WithCause(failed)
	}
	return ok, nil
}

// WaitVanish polls until p stops matching, failing with Timeout. A probe that
// errors does not count as vanished.
func (s *Screen) WaitVanish(p pattern.Pattern, timeout time.Duration) error {
	_, ok, failed := s.poll(p, false, timeout)
	if failed != nil {
		return outcome.NewSubstrate("wait vanish", "matcher failed").WithPattern(p.Name()).WithCause(failed)
	}
	if !ok {
		s.timedOut("wait vanish", p)
		return outcome.NewTimeout("wait vanish", "still visible after %s", timeout).WithPattern(p.Name())
	}
	return nil
}

// Click waits for p and left-clicks its target.
func (s *Screen) Click(p pattern.Pattern, timeout time.Duration) error {
	m, err := s.Wait(p, timeout)
	if err != nil {
		return err
	}
	return s.ClickMatch(m, p)
}

// ClickMatch left-clicks the target of an already located match.
func (s *Screen) ClickMatch(m Match, p pattern.Pattern) error {
	return s.ClickLocation(m.Target(p))
}

// ClickLocation left-clicks at a fixed point.
func (s *Screen) ClickLocation(at platform.Location) error {
	if err := s.input.Click(at, platform.MouseLeft); err != nil {
		return fmt.Errorf("click at (%d,%d): %w", at.X, at.Y, err)
	}
	return nil
}

// RightClick waits for p and right-clicks its target.
func (s *Screen) RightClick(p pattern.Pattern, timeout time.Duration) error {
	m, err := s.Wait(p, timeout)
	if err != nil {
		return err
	}
	at := m.Target(p)
	if err := s.input.Click(at, platform.MouseRight); err != nil {
		return fmt.Errorf("right-click at (%d,%d): %w", at.X, at.Y, err)
	}
	return nil
}

// Hover waits for p and moves the mouse onto its target.
func (s *Screen) Hover(p pattern.Pattern, timeout time.Duration) error {
	m, err := s.Wait(p, timeout)
	if err != nil {
		return err
	}
	return s.HoverLocation(m.Target(p))
}

// HoverLocation moves the mouse to a fixed point.
func (s *Screen) HoverLocation(at platform.Location) error {
	if err := s.input.MoveMouse(at); err != nil {
		return fmt.Errorf("move mouse to (%d,%d): %w", at.X, at.Y, err)
	}
	return nil
}

// Scroll turns the wheel at a point. Positive clicks scroll up.
func (s *Screen) Scroll(at platform.Location, clicks int) error {
	if err := s.input.Scroll(at, clicks); err != nil {
		return fmt.Errorf("scroll at (%d,%d): %w", at.X, at.Y, err)
	}
	return nil
}

// Type types text in one go.
func (s *Screen) Type(text string) error {
	if err := s.input.TypeText(text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

// TypeSlow types text one character at a time with delay between them.
func (s *Screen) TypeSlow(text string, delay time.Duration) error {
	for _, r := range text {
		if err := s.Type(string(r)); err != nil {
			return err
		}
		s.Pause(delay)
	}
	return nil
}

// Press presses key with mods held.
func (s *Screen) Press(key platform.Key, mods ...platform.Modifier) error {
	if err := s.input.KeyPress(key, mods...); err != nil {
		return fmt.Errorf("press %s: %w", platform.Chord{Key: key, Mods: mods}, err)
	}
	return nil
}

// PressChord presses c.
func (s *Screen) PressChord(c platform.Chord) error {
	return s.Press(c.Key, c.Mods...)
}

// KeyDown holds key until KeyUp.
func (s *Screen) KeyDown(key platform.Key) error {
	if err := s.input.KeyDown(key); err != nil {
		return fmt.Errorf("key down %s: %w", key, err)
	}
	return nil
}

// KeyUp releases a key held by KeyDown.
func (s *Screen) KeyUp(key platform.Key) error {
	if err := s.input.KeyUp(key); err != nil {
		return fmt.Errorf("key up %s: %w", key, err)
	}
	return nil
}

// Paste puts text on the clipboard and pastes it with the main modifier.
func (s *Screen) Paste(text string) error {
	if err := s.clipboard.SetText(text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return s.Press("v", s.opts.MainModifier)
}

// Clipboard returns the current clipboard text.
func (s *Screen) Clipboard() (string, error) {
	text, err := s.clipboard.GetText()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}
