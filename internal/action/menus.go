package action

import (
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen"
)

// Size of the hamburger pop-up, which opens to the left of its button.
const (
	hamburgerPopupWidth  = 285
	hamburgerPopupHeight = 655
)

// The last entry of the hamburger pop-up, used as its bottom edge.
var hamburgerLastItem = table[string]{
	"mac":     HamburgerHelp,
	"windows": HamburgerExit,
	"linux":   HamburgerQuit,
}

// ChoiceOption adjusts how a menu entry is chosen.
type ChoiceOption func(*choice)

type choice struct {
	verifyGone bool
}

// VerifyGone makes the choice wait for the entry to vanish after the click.
// Leave it off for entries that open a sub-view whose header still matches
// the entry.
func VerifyGone() ChoiceOption {
	return func(c *choice) { c.verifyGone = true }
}

// chooseOption clicks option inside region.
func (o *Orchestrator) chooseOption(action string, region screen.Region, option pattern.Pattern, opts ...ChoiceOption) error {
	var c choice
	for _, opt := range opts {
		opt(&c)
	}
	scoped := o.screen.In(region)
	timeout := o.cfg.Timeouts().Option
	if err := scoped.Click(option, timeout); err != nil {
		return outcome.Wrap(err, action, "can't find the option in the menu")
	}
	if !c.verifyGone {
		return nil
	}
	if err := scoped.WaitVanish(option, timeout); err != nil {
		return outcome.Wrap(err, action, "menu is still open after choosing the option")
	}
	return nil
}

// OpenHamburgerMenuOption opens the hamburger menu and clicks option in it.
// It returns the region of the pop-up so callers can keep working inside a
// sub-view. If the option cannot be chosen the menu is closed again.
func (o *Orchestrator) OpenHamburgerMenuOption(option pattern.Pattern, opts ...ChoiceOption) (_ screen.Region, err error) {
	const action = "open hamburger menu"
	hamburger, err := o.patternFor(action, HamburgerMenu)
	if err != nil {
		return screen.Region{}, err
	}
	if _, err := o.screen.Wait(hamburger, o.cfg.Timeouts().Element); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't find the hamburger menu")
	}
	region, err := o.screen.FromAnchor(hamburger, hamburgerPopupWidth, hamburgerPopupHeight,
		platform.Location{X: -hamburgerPopupWidth})
	if err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't place the menu pop-up")
	}
	o.log.Debug("hamburger menu found", zap.Stringer("region", region))

	if err := o.screen.Click(hamburger, o.cfg.Timeouts().Element); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't open the hamburger menu")
	}
	defer o.dismissOnError(action, &err)
	o.screen.Pause(o.cfg.Timing().UIDelay)

	if err := o.chooseOption(action, region, option, opts...); err != nil {
		return screen.Region{}, err
	}
	return region, nil
}

// HamburgerMenuRegion opens the hamburger menu and returns the region its
// pop-up covers, bounded by the menu button and the last menu entry. The
// menu is left open on success.
func (o *Orchestrator) HamburgerMenuRegion() (_ screen.Region, err error) {
	const action = "hamburger menu region"
	lastName, err := lookup(action, hamburgerLastItem, o.cfg.Target())
	if err != nil {
		return screen.Region{}, err
	}
	hamburger, err := o.patternFor(action, HamburgerMenu)
	if err != nil {
		return screen.Region{}, err
	}
	last, err := o.patternFor(action, lastName)
	if err != nil {
		return screen.Region{}, err
	}

	if err := o.screen.Click(hamburger, o.cfg.Timeouts().Element); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't find the hamburger menu")
	}
	defer o.dismissOnError(action, &err)
	o.screen.Pause(o.cfg.Timing().UIDelay)

	region, err := o.screen.FromBounds(screen.Anchors{
		Right:    &hamburger,
		Top:      &hamburger,
		Bottom:   &last,
		PadRight: -20,
	})
	if err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't bound the menu pop-up")
	}
	return region, nil
}

// OpenLibraryMenu opens the library menu and clicks option in it. The search
// for option is limited to a quarter of the screen left of the button.
func (o *Orchestrator) OpenLibraryMenu(option pattern.Pattern, opts ...ChoiceOption) (_ screen.Region, err error) {
	const action = "open library menu"
	library, err := o.patternFor(action, LibraryMenu)
	if err != nil {
		return screen.Region{}, err
	}
	if _, err := o.screen.Wait(library, o.cfg.Timeouts().Element); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't find the library menu")
	}
	full := o.screen.ScreenRegion()
	w, h := full.Width()/4, full.Height()/4
	region, err := o.screen.FromAnchor(library, w, h, platform.Location{X: -w})
	if err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't place the menu pop-up")
	}

	o.screen.Pause(o.cfg.Timing().UIDelayLong)
	if err := o.screen.Click(library, o.cfg.Timeouts().Element); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't open the library menu")
	}
	defer o.dismissOnError(action, &err)
	o.screen.Pause(2 * o.cfg.Timing().FXDelay)

	if err := o.chooseOption(action, region, option, opts...); err != nil {
		return screen.Region{}, err
	}
	return region, nil
}

// AccessBookmarkingTools opens Library > Bookmarks > Bookmarking Tools and
// clicks option there.
func (o *Orchestrator) AccessBookmarkingTools(option pattern.Pattern) (err error) {
	const action = "access bookmarking tools"
	bookmarks, err := o.patternFor(action, LibraryBookmarks)
	if err != nil {
		return err
	}
	tools, err := o.patternFor(action, BookmarkingTools)
	if err != nil {
		return err
	}
	if _, err := o.OpenLibraryMenu(bookmarks); err != nil {
		return outcome.Wrap(err, action, "can't open the bookmarks view")
	}
	defer o.dismissOnError(action, &err)

	if err := o.screen.Click(tools, o.cfg.Timeouts().Element); err != nil {
		return outcome.Wrap(err, action, "can't find the Bookmarking Tools option")
	}
	if err := o.screen.Click(option, o.cfg.Timeouts().Submenu); err != nil {
		return outcome.Wrap(err, action, "can't find the option")
	}
	return nil
}

// BookmarkOption clicks an entry of a bookmark's context menu.
func (o *Orchestrator) BookmarkOption(option pattern.Pattern) error {
	return o.clickInContextMenu("bookmark option", option)
}

// ZoomOption is an entry of View > Zoom.
type ZoomOption int

const (
	ZoomIn ZoomOption = iota
	ZoomOut
	ZoomReset
	ZoomTextOnly
)

type zoomMenuRow struct {
	// trigger is a pattern to click, or empty to use chord instead
	trigger string
	chord   platform.Chord
	downs   int
}

var zoomMenu = table[zoomMenuRow]{
	"mac":     {trigger: ViewMenu, downs: 3},
	"windows": {chord: platform.MustChord("alt+v"), downs: 2},
	"linux":   {chord: platform.MustChord("alt+v"), downs: 2},
}

// OpenZoomMenu opens View > Zoom from the menu bar.
func (o *Orchestrator) OpenZoomMenu() (err error) {
	const action = "open zoom menu"
	row, err := lookup(action, zoomMenu, o.cfg.Target())
	if err != nil {
		return err
	}
	if row.trigger != "" {
		view, err := o.patternFor(action, row.trigger)
		if err != nil {
			return err
		}
		if err := o.screen.Click(view, o.cfg.Timeouts().Element); err != nil {
			return outcome.Wrap(err, action, "can't find the View menu")
		}
	} else if err := o.screen.PressChord(row.chord); err != nil {
		return outcome.Wrap(err, action, "can't open the View menu")
	}
	defer o.dismissOnError(action, &err)

	if err := o.pressN(platform.KeyDown, row.downs); err != nil {
		return outcome.Wrap(err, action, "can't reach the Zoom entry")
	}
	if err := o.screen.Press(platform.KeyEnter); err != nil {
		return outcome.Wrap(err, action, "can't open the Zoom entry")
	}
	return nil
}

// SelectZoomMenuOption opens View > Zoom and picks opt.
func (o *Orchestrator) SelectZoomMenuOption(opt ZoomOption) (err error) {
	const action = "select zoom menu option"
	if err := o.OpenZoomMenu(); err != nil {
		return outcome.Wrap(err, action, "can't open the zoom menu")
	}
	defer o.dismissOnError(action, &err)
	if err := o.pressN(platform.KeyDown, int(opt)); err != nil {
		return outcome.Wrap(err, action, "can't reach option %d", opt)
	}
	if err := o.screen.Press(platform.KeyEnter); err != nil {
		return outcome.Wrap(err, action, "can't choose option %d", opt)
	}
	return nil
}

// LocationBarOption is an entry of the location bar's context menu.
type LocationBarOption int

const (
	LocationUndo LocationBarOption = iota
	LocationCut
	LocationCopy
	LocationPaste
	LocationPasteAndGo
	LocationDelete
	LocationSelectAll
)

// Key presses needed to reach an entry of the open location bar context
// menu. Windows starts with nothing highlighted; the others start on the
// second entry.
var locationBarDowns = table[func(LocationBarOption) int]{
	"windows": func(n LocationBarOption) int { return int(n) + 1 },
	"mac":     func(n LocationBarOption) int { return int(n) - 1 },
	"linux":   func(n LocationBarOption) int { return int(n) - 1 },
}

// SelectLocationBarOption picks opt from the location bar's context menu,
// which must already be open. The menu is closed if picking fails.
func (o *Orchestrator) SelectLocationBarOption(opt LocationBarOption) (err error) {
	const action = "select location bar option"
	downs, err := lookup(action, locationBarDowns, o.cfg.Target())
	if err != nil {
		return err
	}
	defer o.dismissOnError(action, &err)
	if err := o.pressN(platform.KeyDown, downs(opt)); err != nil {
		return outcome.Wrap(err, action, "can't reach option %d", opt)
	}
	if err := o.screen.Press(platform.KeyEnter); err != nil {
		return outcome.Wrap(err, action, "can't choose option %d", opt)
	}
	return nil
}

// URLBarRegion returns the right part of the location bar and the drop-down
// beneath it: from the history button to the hamburger menu, starting a
// little above the toolbar.
func (o *Orchestrator) URLBarRegion() (screen.Region, error) {
	const action = "url bar region"
	history, err := o.patternFor(action, ShowHistoryButton)
	if err != nil {
		return screen.Region{}, err
	}
	hamburger, err := o.patternFor(action, HamburgerMenu)
	if err != nil {
		return screen.Region{}, err
	}
	if err := o.SelectLocationBar(); err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "can't focus the location bar")
	}
	region, err := o.screen.FromBounds(screen.Anchors{
		Left:   &history,
		Right:  &hamburger,
		Top:    &hamburger,
		PadTop: -20,
	})
	if err != nil {
		return screen.Region{}, outcome.Wrap(err, action, "could not create region for URL bar")
	}
	return region, nil
}

type keyStep struct {
	chord platform.Chord
	pause bool
	// back is the "previous menu" arrow, which flips for right-to-left UIs
	back bool
}

func keys(chords ...string) []keyStep {
	steps := make([]keyStep, 0, len(chords))
	for _, c := range chords {
		switch c {
		case "<pause>":
			steps = append(steps, keyStep{pause: true})
		case "<back>":
			steps = append(steps, keyStep{back: true})
		case "alt":
			steps = append(steps, keyStep{chord: platform.Chord{Key: platform.KeyAlt}})
		default:
			steps = append(steps, keyStep{chord: platform.MustChord(c)})
		}
	}
	return steps
}

var aboutDialogKeys = table[[]keyStep]{
	"mac":     keys("ctrl+f3", "ctrl+f2", "<pause>", "right", "down", "down", "enter"),
	"windows": keys("alt", "<back>", "enter", "up", "enter"),
	"linux":   keys("f10", "<back>", "up", "enter"),
}

var rightToLeft = map[string]bool{"ar": true, "he": true, "fa": true, "ur": true}

func (o *Orchestrator) isRightToLeft() bool {
	locale := o.cfg.Locale()
	for i, r := range locale {
		if r == '-' || r == '_' {
			locale = locale[:i]
			break
		}
	}
	return rightToLeft[locale]
}

// OpenAboutDialog opens the About window through the menu bar.
func (o *Orchestrator) OpenAboutDialog() error {
	const action = "open about dialog"
	steps, err := lookup(action, aboutDialogKeys, o.cfg.Target())
	if err != nil {
		return err
	}
	for _, s := range steps {
		switch {
		case s.pause:
			o.screen.Pause(o.cfg.Timing().FXDelay)
		case s.back:
			key := platform.KeyLeft
			if o.isRightToLeft() {
				key = platform.KeyRight
			}
			err = o.screen.Press(key)
		default:
			err = o.screen.PressChord(s.chord)
		}
		if err != nil {
			return outcome.Wrap(err, action, "menu bar did not respond")
		}
	}
	return nil
}
