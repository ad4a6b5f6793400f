// Package screentest is a scripted, in-memory automation substrate for
// tests: a matcher whose answers follow per-pattern visibility schedules, an
// inputter and clipboard that record every event, and a clock that only moves
// when something sleeps.
package screentest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/patternpilot/internal/platform"
)

// Event kinds recorded by the Substrate.
const (
	EventClick      = "click"
	EventRightClick = "right-click"
	EventMove       = "move"
	EventScroll     = "scroll"
	EventType       = "type"
	EventKey        = "key"
	EventKeyDown    = "keydown"
	EventKeyUp      = "keyup"
	EventClipSet    = "clip-set"
	EventLaunch     = "launch"
)

// Event is one input the code under test sent to the substrate.
type Event struct {
	Kind   string
	At     platform.Location
	Text   string
	Clicks int
}

func (e Event) String() string {
	switch e.Kind {
	case EventClick, EventRightClick, EventMove:
		return fmt.Sprintf("%s(%d,%d)", e.Kind, e.At.X, e.At.Y)
	case EventScroll:
		return fmt.Sprintf("%s(%d,%d,%d)", e.Kind, e.At.X, e.At.Y, e.Clicks)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Text)
	}
}

// Schedule answers "is the pattern visible on the nth probe, and where".
// Probes are counted per pattern starting at 0.
type Schedule func(probe int) (platform.Bounds, bool)

// Always is visible at b on every probe.
func Always(b platform.Bounds) Schedule {
	return func(int) (platform.Bounds, bool) { return b, true }
}

// Never is never visible.
func Never() Schedule {
	return func(int) (platform.Bounds, bool) { return platform.Bounds{}, false }
}

// After is invisible for the first n probes and visible at b afterwards.
func After(n int, b platform.Bounds) Schedule {
	return func(probe int) (platform.Bounds, bool) { return b, probe >= n }
}

// Until is visible at b for the first n probes and gone afterwards.
func Until(n int, b platform.Bounds) Schedule {
	return func(probe int) (platform.Bounds, bool) { return b, probe < n }
}

// Clock is a fake screen clock. Sleep advances Now and never blocks.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	slept  time.Duration
	sleeps int
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept += d
	c.sleeps++
}

// Slept is the total time spent in Sleep.
func (c *Clock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Substrate implements platform.Matcher, Inputter, ClipboardManager and
// Launcher against scripted state.
type Substrate struct {
	Clock *Clock

	mu        sync.Mutex
	screen    platform.Bounds
	schedules map[string]Schedule
	probes    map[string]int
	probeErrs map[string]error
	events    []Event
	clipboard string
	inputErr  error
	reactions []func(Event)
}

// New returns a 1920x1080 substrate where nothing is visible.
func New() *Substrate {
	return &Substrate{
		Clock:     NewClock(),
		screen:    platform.Bounds{Width: 1920, Height: 1080},
		schedules: map[string]Schedule{},
		probes:    map[string]int{},
		probeErrs: map[string]error{},
	}
}

// Provider bundles the substrate for screen.New.
func (s *Substrate) Provider() *platform.Provider {
	return &platform.Provider{
		Matcher:          s,
		Inputter:         s,
		ClipboardManager: s,
		Launcher:         s,
	}
}

// SetScreen changes the screen size.
func (s *Substrate) SetScreen(b platform.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = b
}

// Set installs sched for the named pattern and resets its probe count.
func (s *Substrate) Set(name string, sched Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[name] = sched
	s.probes[name] = 0
}

// Show makes name visible at b from now on.
func (s *Substrate) Show(name string, b platform.Bounds) { s.Set(name, Always(b)) }

// Hide makes name invisible from now on.
func (s *Substrate) Hide(name string) { s.Set(name, Never()) }

// FailProbe makes every probe for name return err.
func (s *Substrate) FailProbe(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeErrs[name] = err
}

// FailInput makes every input event fail with err after being recorded.
func (s *Substrate) FailInput(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputErr = err
}

// React registers fn to run after every recorded event. Reactions change the
// scripted screen in response to input, e.g. hiding a window on a quit chord.
func (s *Substrate) React(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reactions = append(s.reactions, fn)
}

// OnKey runs fn whenever the chord (as rendered by platform.Chord.String) is
// pressed.
func (s *Substrate) OnKey(chord string, fn func()) {
	s.React(func(e Event) {
		if e.Kind == EventKey && e.Text == chord {
			fn()
		}
	})
}

// Probes returns how many times name was searched for.
func (s *Substrate) Probes(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probes[name]
}

// Events returns a copy of the event log.
func (s *Substrate) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Count returns how many events of kind were recorded.
func (s *Substrate) Count(kind string) int {
	n := 0
	for _, e := range s.Events() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Keys returns the chords pressed, in order.
func (s *Substrate) Keys() []string {
	var keys []string
	for _, e := range s.Events() {
		if e.Kind == EventKey {
			keys = append(keys, e.Text)
		}
	}
	return keys
}

// Log renders the event log one event per entry, for assertion messages.
func (s *Substrate) Log() string {
	var parts []string
	for _, e := range s.Events() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ")
}

// ResetEvents clears the event log.
func (s *Substrate) ResetEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *Substrate) record(e Event) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	err := s.inputErr
	reactions := append([]func(Event){}, s.reactions...)
	s.mu.Unlock()

	for _, fn := range reactions {
		fn(e)
	}
	return err
}

// Find implements platform.Matcher.
func (s *Substrate) Find(tmpl platform.Template, area platform.Bounds) (platform.Bounds, float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.probes[tmpl.Name]
	s.probes[tmpl.Name] = n + 1
	if err, ok := s.probeErrs[tmpl.Name]; ok {
		return platform.Bounds{}, 0, false, err
	}
	sched, ok := s.schedules[tmpl.Name]
	if !ok {
		return platform.Bounds{}, 0, false, nil
	}
	b, visible := sched(n)
	if !visible || !area.Contains(b) {
		return platform.Bounds{}, 0, false, nil
	}
	return b, 1, true, nil
}

// ScreenBounds implements platform.Matcher.
func (s *Substrate) ScreenBounds() platform.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Substrate) Click(at platform.Location, button platform.MouseButton) error {
	kind := EventClick
	if button == platform.MouseRight {
		kind = EventRightClick
	}
	return s.record(Event{Kind: kind, At: at})
}

func (s *Substrate) MoveMouse(to platform.Location) error {
	return s.record(Event{Kind: EventMove, At: to})
}

func (s *Substrate) Scroll(at platform.Location, clicks int) error {
	return s.record(Event{Kind: EventScroll, At: at, Clicks: clicks})
}

func (s *Substrate) TypeText(text string) error {
	return s.record(Event{Kind: EventType, Text: text})
}

func (s *Substrate) KeyPress(key platform.Key, mods ...platform.Modifier) error {
	return s.record(Event{Kind: EventKey, Text: platform.Chord{Key: key, Mods: mods}.String()})
}

func (s *Substrate) KeyDown(key platform.Key) error {
	return s.record(Event{Kind: EventKeyDown, Text: string(key)})
}

func (s *Substrate) KeyUp(key platform.Key) error {
	return s.record(Event{Kind: EventKeyUp, Text: string(key)})
}

// GetText implements platform.ClipboardManager.
func (s *Substrate) GetText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clipboard, nil
}

// SetText implements platform.ClipboardManager. Setting is recorded as an
// event so tests can see pasted values.
func (s *Substrate) SetText(text string) error {
	s.mu.Lock()
	s.clipboard = text
	s.mu.Unlock()
	return s.record(Event{Kind: EventClipSet, Text: text})
}

// Clear implements platform.ClipboardManager.
func (s *Substrate) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = ""
	return nil
}

// SetClipboard replaces the clipboard without recording an event, the way
// the application would on a copy.
func (s *Substrate) SetClipboard(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = text
}

// Launch implements platform.Launcher.
func (s *Substrate) Launch() error {
	return s.record(Event{Kind: EventLaunch})
}
