// Package actiontest wires an Orchestrator to the scripted substrate for
// tests of the packages built on top of it.
package actiontest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/config"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

// Templates is every catalog name the action package refers to.
var Templates = []string{
	action.HomeButton, action.HamburgerMenu, action.LibraryMenu, action.ShowHistoryButton, action.ViewMenu,
	action.HamburgerQuit, action.HamburgerHelp, action.HamburgerExit,
	action.LibraryBookmarks, action.BookmarkingTools,
	action.CancelButton, action.CustomizeDoneButton, action.CloseAllTabsButton, action.DontSavePasswordButton,
	action.ZoomControlDecrease, action.RemoveFromToolbar,
	action.WindowControls, action.UnhoveredRedControl, action.HoveredRedButton, action.WindowCloseButton,
	action.WindowMaximizeButton, action.WindowMinimizeButton, action.WindowZoomRestore,
	action.MainMenuWindow, action.TaskbarBrowser, action.TaskbarBrowserLibrary,
}

// Fixture is an Orchestrator driving a scripted substrate.
type Fixture struct {
	Sub          *screentest.Substrate
	Config       config.Config
	Registry     *pattern.Registry
	Screen       *screen.Screen
	Orchestrator *action.Orchestrator
}

// New builds a Fixture for target. extra names are added to the catalog
// next to Templates.
func New(t testing.TB, target platform.Target, extra ...string) *Fixture {
	t.Helper()
	return NewWithConfig(t, config.Default(target), extra...)
}

// NewWithConfig is New with an explicit configuration.
func NewWithConfig(t testing.TB, cfg config.Config, extra ...string) *Fixture {
	t.Helper()
	sub := screentest.New()
	names := append(append([]string{}, Templates...), extra...)
	reg, err := pattern.NewRegistry("", screentest.Catalog(names...), cfg.Target(), cfg.Patterns().Similarity)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	opts, err := action.ScreenOptions(cfg)
	if err != nil {
		t.Fatalf("screen options: %v", err)
	}
	opts.Clock = sub.Clock
	s := screen.New(sub.Provider(), opts)
	return &Fixture{
		Sub:          sub,
		Config:       cfg,
		Registry:     reg,
		Screen:       s,
		Orchestrator: action.New(cfg, s, reg, zaptest.NewLogger(t)),
	}
}

// Pattern resolves name or fails the test.
func (f *Fixture) Pattern(t testing.TB, name string) pattern.Pattern {
	t.Helper()
	p, err := f.Registry.Get(name)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return p
}

// At returns a template-sized rectangle with its top-left corner at x, y.
func At(x, y int) platform.Bounds {
	return platform.Bounds{X: x, Y: y, Width: screentest.TemplateWidth, Height: screentest.TemplateHeight}
}

// Centre is the click point of a template shown At(x, y).
func Centre(x, y int) platform.Location {
	return At(x, y).Center()
}

// ShowOnClick makes show visible at b once something clicks at the centre
// of trigger.
func (f *Fixture) ShowOnClick(trigger platform.Bounds, show string, b platform.Bounds) {
	f.Sub.React(func(e screentest.Event) {
		if e.Kind == screentest.EventClick && e.At == trigger.Center() {
			f.Sub.Show(show, b)
		}
	})
}

// HideOnClick hides name once something clicks at the centre of b.
func (f *Fixture) HideOnClick(name string, b platform.Bounds) {
	f.Sub.React(func(e screentest.Event) {
		if e.Kind == screentest.EventClick && e.At == b.Center() {
			f.Sub.Hide(name)
		}
	})
}
