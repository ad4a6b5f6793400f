package action

import (
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
)

// Window control buttons accepted by ClickAuxiliaryWindowControl.
const (
	ControlClose       = "close"
	ControlMinimize    = "minimize"
	ControlMaximize    = "maximize"
	ControlFullScreen  = "full_screen"
	ControlZoomRestore = "zoom_restore"
)

type windowControlRow struct {
	// anchor proves the controls are on screen before any button is used
	anchor           string
	anchorSimilarity float64
	// park moves the pointer off the controls so they render unhovered
	park    []platform.Location
	buttons map[string]func(o *Orchestrator) error
}

var windowControls = table[windowControlRow]{
	"mac": {
		anchor:           UnhoveredRedControl,
		anchorSimilarity: 0.9,
		park:             []platform.Location{{X: 1, Y: 300}},
		buttons: map[string]func(o *Orchestrator) error{
			ControlClose: func(o *Orchestrator) error {
				if err := o.hoverNamed(UnhoveredRedControl, 0.9); err != nil {
					return err
				}
				o.screen.Pause(o.cfg.Timing().HoverDelay)
				return o.clickNamed(HoveredRedButton, centre)
			},
			ControlMinimize: func(o *Orchestrator) error {
				return o.clickNamed(WindowControls, centre)
			},
			ControlFullScreen: func(o *Orchestrator) error {
				return o.clickNamed(WindowControls, greenButton)
			},
			ControlMaximize: func(o *Orchestrator) (err error) {
				if err := o.screen.KeyDown(platform.KeyAlt); err != nil {
					return err
				}
				defer func() {
					if upErr := o.screen.KeyUp(platform.KeyAlt); upErr != nil && err == nil {
						err = upErr
					}
				}()
				return o.clickNamed(WindowControls, greenButton)
			},
			ControlZoomRestore: func(o *Orchestrator) error {
				if err := o.ResetMouse(); err != nil {
					return err
				}
				if err := o.hoverNamed(UnhoveredRedControl, 0.9); err != nil {
					return err
				}
				return o.clickNamed(WindowZoomRestore, centre)
			},
		},
	},
	"windows": {
		anchor: WindowCloseButton,
		park:   []platform.Location{{X: 1, Y: 300}},
		buttons: map[string]func(o *Orchestrator) error{
			ControlClose:       clickControl(WindowCloseButton),
			ControlMinimize:    clickControl(WindowMinimizeButton),
			ControlMaximize:    clickControl(WindowMaximizeButton),
			ControlZoomRestore: clickControl(WindowZoomRestore),
		},
	},
	"linux": {
		anchor: WindowCloseButton,
		park:   []platform.Location{{X: 1, Y: 300}, {X: 80, Y: 0}},
		buttons: map[string]func(o *Orchestrator) error{
			ControlClose:    clickControl(WindowCloseButton),
			ControlMinimize: clickControl(WindowMinimizeButton),
			ControlMaximize: func(o *Orchestrator) error {
				if err := o.clickNamed(WindowMaximizeButton, centre); err != nil {
					return err
				}
				return o.screen.HoverLocation(platform.Location{X: 80, Y: 0})
			},
			ControlZoomRestore: clickControl(WindowZoomRestore),
		},
	},
}

// offsetFn picks a click target within a template of the given size,
// relative to its centre.
type offsetFn func(w, h int) (dx, dy int)

func centre(int, int) (int, int) { return 0, 0 }

// greenButton is the rightmost of the three mac window buttons.
func greenButton(w, _ int) (int, int) { return w/2 - 10, 0 }

func clickControl(name string) func(o *Orchestrator) error {
	return func(o *Orchestrator) error { return o.clickNamed(name, centre) }
}

func (o *Orchestrator) clickNamed(name string, at offsetFn) error {
	p, err := o.Pattern(name)
	if err != nil {
		return err
	}
	w, h := p.Size()
	dx, dy := at(w, h)
	return o.screen.Click(p.TargetOffset(dx, dy), o.cfg.Timeouts().Control)
}

func (o *Orchestrator) hoverNamed(name string, similarity float64) error {
	p, err := o.Pattern(name)
	if err != nil {
		return err
	}
	return o.screen.Hover(p.Similar(similarity), o.cfg.Timeouts().Control)
}

// ClickAuxiliaryWindowControl clicks one of the window's title bar buttons:
// close, minimize, maximize, full_screen or zoom_restore. A button the
// platform does not have is an AmbiguousPrecondition.
func (o *Orchestrator) ClickAuxiliaryWindowControl(button string) error {
	const action = "click window control"
	row, err := lookup(action, windowControls, o.cfg.Target())
	if err != nil {
		return err
	}
	click, ok := row.buttons[button]
	if !ok {
		return outcome.NewAmbiguous(action, "no %q button on %s", button, o.cfg.Target())
	}

	for _, at := range row.park {
		if err := o.screen.HoverLocation(at); err != nil {
			return outcome.Wrap(err, action, "can't move the pointer away")
		}
	}
	anchor, err := o.patternFor(action, row.anchor)
	if err != nil {
		return err
	}
	if row.anchorSimilarity > 0 {
		anchor = anchor.Similar(row.anchorSimilarity)
	}
	if _, err := o.screen.Wait(anchor, o.cfg.Timeouts().Control); err != nil {
		return outcome.Wrap(err, action, "can't find the window controls")
	}
	o.log.Debug("window controls found", zap.String("button", button))

	if err := click(o); err != nil {
		return outcome.Wrap(err, action, "can't use the %s button", button)
	}
	return nil
}

type taskbarRow struct {
	run func(o *Orchestrator, option string) error
}

var taskbar = table[taskbarRow]{
	"mac": {run: func(o *Orchestrator, _ string) error {
		if err := o.clickNamed(MainMenuWindow, centre); err != nil {
			return err
		}
		if err := o.screen.Press(platform.KeyDown); err != nil {
			return err
		}
		o.screen.Pause(o.cfg.Timing().FXDelay)
		return o.screen.Press(platform.KeyEnter)
	}},
	"win7": {run: func(o *Orchestrator, option string) error {
		if err := o.clickNamed(TaskbarBrowser, centre); err != nil {
			return err
		}
		if option == TaskbarLibrary {
			return o.clickNamed(TaskbarBrowserLibrary, centre)
		}
		return nil
	}},
	"windows": {run: func(o *Orchestrator, _ string) error {
		return o.screen.Press(platform.KeyTab, platform.ModAlt)
	}},
	"linux": {run: func(o *Orchestrator, _ string) error {
		if err := o.screen.Press(platform.KeyTab, platform.ModAlt); err != nil {
			return err
		}
		return o.screen.HoverLocation(platform.Location{X: 0, Y: 50})
	}},
}

// TaskbarLibrary asks RestoreWindowFromTaskbar on Windows 7 to restore the
// Library window instead of the browser window.
const TaskbarLibrary = "library_menu"

// RestoreWindowFromTaskbar brings a minimized browser window back.
func (o *Orchestrator) RestoreWindowFromTaskbar(option string) error {
	const action = "restore window from taskbar"
	row, err := lookup(action, taskbar, o.cfg.Target())
	if err != nil {
		return err
	}
	if err := row.run(o, option); err != nil {
		return outcome.Wrap(err, action, "restore window from taskbar unsuccessful")
	}
	o.screen.Pause(o.cfg.Timing().UIDelay)
	return nil
}

// RestoreFocus gives the browser window focus by clicking the empty toolbar
// space right of the home button.
func (o *Orchestrator) RestoreFocus() error {
	const action = "restore focus"
	home, err := o.patternFor(action, HomeButton)
	if err != nil {
		return err
	}
	w, _ := home.Size()
	if err := o.screen.Click(home.TargetOffset(w*2, 0), o.cfg.Timeouts().Element); err != nil {
		return outcome.Wrap(err, action, "could not restore browser focus")
	}
	return nil
}

// ResetMouse parks the pointer in the top-left corner.
func (o *Orchestrator) ResetMouse() error {
	if err := o.screen.HoverLocation(platform.Location{}); err != nil {
		return outcome.Wrap(err, "reset mouse", "can't move the pointer")
	}
	return nil
}

// ZoomDirection is the sign of a mouse wheel zoom.
type ZoomDirection int

const (
	ZoomWheelIn  ZoomDirection = 1
	ZoomWheelOut ZoomDirection = -1
)

// Wheel clicks per zoom step.
var wheelStep = table[int]{
	"mac":     1,
	"windows": 300,
	"linux":   1,
}

// ZoomWithMouseWheel zooms the page times steps in dir by scrolling with the
// main modifier held.
func (o *Orchestrator) ZoomWithMouseWheel(times int, dir ZoomDirection) error {
	const action = "zoom with mouse wheel"
	step, err := lookup(action, wheelStep, o.cfg.Target())
	if err != nil {
		return err
	}
	mod, err := o.MainModifier()
	if err != nil {
		return err
	}
	full := o.screen.ScreenRegion()
	at := platform.Location{X: full.Width() / 4, Y: full.Height() / 2}
	if err := o.screen.HoverLocation(at); err != nil {
		return outcome.Wrap(err, action, "can't move the pointer onto the page")
	}
	for i := 0; i < times; i++ {
		if err := o.scrollHolding(platform.Key(mod), at, step*int(dir)); err != nil {
			return outcome.Wrap(err, action, "zoom step %d failed", i+1)
		}
		o.screen.Pause(o.cfg.Timing().UIDelay)
	}
	return o.ResetMouse()
}

func (o *Orchestrator) scrollHolding(key platform.Key, at platform.Location, clicks int) (err error) {
	if err := o.screen.KeyDown(key); err != nil {
		return err
	}
	defer func() {
		if upErr := o.screen.KeyUp(key); upErr != nil && err == nil {
			err = upErr
		}
	}()
	return o.screen.Scroll(at, clicks)
}
