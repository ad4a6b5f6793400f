// Package recovery confirms the disruptive transitions of the browser under
// test: quitting, restarting and getting rid of the crash reporter. Each flow
// waits for the browser's home button to vanish or reappear and allows at
// most one escalation before giving up.
package recovery

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen"
)

// Template names used only by the recovery flows.
const (
	LaunchLogo      = "launch_logo.png"
	CrashReporter   = "crash_sorry.png"
	CrashQuitButton = "crash_quit_button.png"
)

// Controller runs the recovery flows. Calls are serialized: every flow needs
// the foreground window and the input devices to itself.
type Controller struct {
	mu       sync.Mutex
	o        *action.Orchestrator
	launcher platform.Launcher
	log      *zap.Logger
}

// New builds a Controller. launcher may be nil when Restart is never used.
func New(o *action.Orchestrator, launcher platform.Launcher, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{o: o, launcher: launcher, log: log.Named("recovery")}
}

func (c *Controller) screen() *screen.Screen { return c.o.Screen() }

func (c *Controller) pattern(flow, name string) (pattern.Pattern, error) {
	p, err := c.o.Pattern(name)
	if err != nil {
		return pattern.Pattern{}, outcome.Wrap(err, flow, "template is missing from the catalog")
	}
	return p, nil
}

// Quit asks the browser to quit and confirms it went away, dismissing a crash
// reporter if one shows up. If the home button is still there after the
// first wait, Quit escalates exactly once before failing.
func (c *Controller) Quit() (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var r Report
	err := c.quit(&r)
	return r, err
}

func (c *Controller) quit(r *Report) error {
	const flow = "quit"
	timeouts := c.o.Config().Timeouts()
	r.Crash = CrashUnknown
	r.enter(Running)

	home, err := c.pattern(flow, action.HomeButton)
	if err != nil {
		r.enter(Failed)
		return err
	}

	r.enter(Quitting)
	if err := c.o.Quit(); err != nil {
		r.enter(Failed)
		return outcome.Wrap(err, flow, "can't send the quit shortcut")
	}
	err = c.screen().WaitVanish(home, timeouts.QuitVanish)
	if err == nil {
		return c.finishQuit(r)
	}
	if !outcome.IsAbsent(err) {
		r.enter(Failed)
		return outcome.Wrap(err, flow, "can't watch the browser quit")
	}

	r.enter(StillPresent)
	c.log.Warn("browser still around, reattempting quit")
	r.enter(Escalating)
	r.Escalations++
	c.escalate(home)

	if err := c.screen().WaitVanish(home, timeouts.QuitVanish); err != nil {
		r.enter(Failed)
		c.log.Error("browser still around after escalation")
		return outcome.Wrap(err, flow, "browser did not quit after one escalation")
	}
	return c.finishQuit(r)
}

func (c *Controller) finishQuit(r *Report) error {
	r.enter(Vanished)
	state, err := c.dismissCrashReporter()
	r.Crash = state
	if err != nil {
		r.enter(Failed)
		return outcome.Wrap(err, "quit", "crash reporter would not close")
	}
	r.enter(QuitComplete)
	return nil
}

// escalate confirms any pending quit prompt, closes whatever else is open
// and sends the quit shortcut again. Step failures are only logged: the
// following wait decides whether the quit worked.
func (c *Controller) escalate(home pattern.Pattern) {
	s := c.screen()
	timing := c.o.Config().Timing()
	steps := []struct {
		name string
		run  func() error
	}{
		{"confirm", func() error { return s.Press(platform.KeyEnter) }},
		{"pause", func() error { s.Pause(timing.FXDelay); return nil }},
		{"dismiss", func() error { return s.Press(platform.KeyEscape) }},
		{"pause", func() error { s.Pause(timing.FXDelay); return nil }},
		{"focus", func() error { return s.Click(home, c.o.Config().Timeouts().Control) }},
		{"quit", c.o.Quit},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			c.log.Warn("escalation step failed", zap.String("step", step.name), zap.Error(err))
		}
	}
}

// Restart quits the browser, launches it again and waits for check (the home
// button when nil) to show up.
func (c *Controller) Restart(check *pattern.Pattern) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const flow = "restart"
	var r Report

	if c.launcher == nil {
		r.enter(Running)
		r.enter(Failed)
		return r, outcome.NewAmbiguous(flow, "no launcher configured")
	}
	if err := c.quit(&r); err != nil {
		return r, outcome.Wrap(err, flow, "browser still around, cannot restart")
	}

	want := check
	if want == nil {
		home, err := c.pattern(flow, action.HomeButton)
		if err != nil {
			r.enter(Failed)
			return r, err
		}
		want = &home
	}

	r.enter(Relaunching)
	c.screen().Pause(c.o.Config().Timing().SystemDelay)
	c.log.Debug("relaunching browser")
	if err := c.launcher.Launch(); err != nil {
		r.enter(Failed)
		return r, outcome.Wrap(err, flow, "launch failed")
	}
	timeout := c.o.Config().Timeouts().RelaunchWait
	back, err := c.screen().Exists(*want, timeout)
	if err != nil {
		r.enter(Failed)
		return r, outcome.Wrap(err, flow, "can't look for the browser")
	}
	if !back {
		r.enter(Failed)
		return r, outcome.NewTimeout(flow, "browser not relaunched after %s", timeout).WithPattern(want.Name())
	}
	r.enter(Restored)
	c.log.Info("browser restarted", zap.Stringer("report", r))
	return r, nil
}

// WaitForRestart follows a restart the browser does on its own, e.g. after
// an update: the home button goes away and then comes back.
func (c *Controller) WaitForRestart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const flow = "wait for restart"
	home, err := c.pattern(flow, action.HomeButton)
	if err != nil {
		return err
	}
	timeouts := c.o.Config().Timeouts()
	if err := c.screen().WaitVanish(home, timeouts.RestartVanish); err != nil {
		return outcome.Wrap(err, flow, "browser did not close")
	}
	c.log.Debug("browser closed")
	if _, err := c.screen().Wait(home, timeouts.RestartAppear); err != nil {
		return outcome.Wrap(err, flow, "browser did not come back")
	}
	return nil
}

// ConfirmLaunch waits for the launch page logo.
func (c *Controller) ConfirmLaunch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const flow = "confirm launch"
	logo, err := c.pattern(flow, LaunchLogo)
	if err != nil {
		return err
	}
	if _, err := c.screen().Wait(logo, c.o.Config().Timeouts().LaunchWait); err != nil {
		return outcome.Wrap(err, flow, "browser did not launch")
	}
	return nil
}

// DismissCrashReporter closes the crash reporter if it is showing. Its
// absence is the normal case and not an error.
func (c *Controller) DismissCrashReporter() (CrashState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dismissCrashReporter()
}

func (c *Controller) dismissCrashReporter() (CrashState, error) {
	const flow = "dismiss crash reporter"
	reporter, err := c.pattern(flow, CrashReporter)
	if err != nil {
		return CrashUnknown, err
	}
	quit, err := c.pattern(flow, CrashQuitButton)
	if err != nil {
		return CrashUnknown, err
	}
	s := c.screen()
	cfg := c.o.Config()

	present, err := s.Exists(reporter, cfg.Timeouts().CrashExists)
	if err != nil {
		return CrashUnknown, outcome.Wrap(err, flow, "can't look for the crash reporter")
	}
	if !present {
		return CrashAbsent, nil
	}
	c.log.Info("crash reporter found", zap.String("crash", string(CrashPresent)))

	err = s.Click(reporter, cfg.Timeouts().Element)
	if err == nil {
		err = s.Type(cfg.Crash().Annotation)
	}
	if err == nil {
		err = s.Click(quit, cfg.Timeouts().Element)
	}
	if err == nil {
		err = s.WaitVanish(reporter, cfg.Timeouts().CrashVanish)
	}
	if err == nil {
		c.log.Debug("crash report sent")
		return CrashDismissed, nil
	}

	c.log.Warn("crash reporter did not close, closing its window", zap.Error(err))
	if closeErr := c.o.ClickAuxiliaryWindowControl(action.ControlClose); closeErr != nil {
		return CrashStuck, outcome.Wrap(closeErr, flow, "crash reporter is stuck")
	}
	return CrashForceClosed, nil
}
