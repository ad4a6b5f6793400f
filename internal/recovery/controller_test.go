package recovery_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/action/actiontest"
	"github.com/mj1618/patternpilot/internal/mocks"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/recovery"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

var (
	linux  = platform.Target{OS: platform.Linux}
	homeAt = actiontest.At(100, 40)
)

func newController(t *testing.T, launcher platform.Launcher) (*recovery.Controller, *actiontest.Fixture) {
	t.Helper()
	f := actiontest.New(t, linux, recovery.LaunchLogo, recovery.CrashReporter, recovery.CrashQuitButton)
	return recovery.New(f.Orchestrator, launcher, zaptest.NewLogger(t)), f
}

// quitAfter hides the home button on the nth quit shortcut.
func quitAfter(f *actiontest.Fixture, n int) {
	pressed := 0
	f.Sub.OnKey("ctrl+q", func() {
		pressed++
		if pressed == n {
			f.Sub.Hide(action.HomeButton)
		}
	})
}

func TestQuitWithoutEscalation(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)

	r, err := c.Quit()
	require.NoError(t, err)
	assert.Equal(t, []recovery.QuitState{
		recovery.Running, recovery.Quitting, recovery.Vanished, recovery.QuitComplete,
	}, r.States)
	assert.Equal(t, 0, r.Escalations)
	assert.Equal(t, recovery.CrashAbsent, r.Crash)
	assert.Equal(t, []string{"ctrl+q"}, f.Sub.Keys())
	assert.Equal(t, 0, f.Sub.Count(screentest.EventClick))
}

func TestQuitEscalatesExactlyOnce(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 2)

	r, err := c.Quit()
	require.NoError(t, err)
	assert.Equal(t, []recovery.QuitState{
		recovery.Running, recovery.Quitting, recovery.StillPresent, recovery.Escalating,
		recovery.Vanished, recovery.QuitComplete,
	}, r.States)
	assert.Equal(t, 1, r.Escalations)
	assert.Equal(t, []string{"ctrl+q", "enter", "esc", "ctrl+q"}, f.Sub.Keys())
	assert.Equal(t, []screentest.Event{
		{Kind: screentest.EventKey, Text: "ctrl+q"},
		{Kind: screentest.EventKey, Text: "enter"},
		{Kind: screentest.EventKey, Text: "esc"},
		{Kind: screentest.EventClick, At: homeAt.Center()},
		{Kind: screentest.EventKey, Text: "ctrl+q"},
	}, f.Sub.Events())
}

func TestQuitFailsAfterSecondMiss(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)

	r, err := c.Quit()
	require.Error(t, err)
	assert.Equal(t, outcome.Timeout, outcome.KindOf(err))
	assert.Equal(t, action.HomeButton, outcome.PatternOf(err))
	assert.Equal(t, recovery.Failed, r.Final())
	assert.Equal(t, 1, r.Escalations)
	assert.Equal(t, recovery.CrashUnknown, r.Crash)

	quits := 0
	for _, k := range f.Sub.Keys() {
		if k == "ctrl+q" {
			quits++
		}
	}
	assert.Equal(t, 2, quits)
	// two full vanish waits plus the escalation pauses
	timing := f.Config.Timing()
	assert.Equal(t, 2*f.Config.Timeouts().QuitVanish+2*timing.FXDelay, f.Sub.Clock.Slept())
}

func TestQuitEscalationStepFailureStillRewaits(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)
	// the browser goes away while the escalation confirms the quit prompt
	f.Sub.OnKey("enter", func() { f.Sub.Hide(action.HomeButton) })

	r, err := c.Quit()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Escalations)
	assert.Equal(t, recovery.QuitComplete, r.Final())
	// the focus click found nothing to click
	assert.Equal(t, 0, f.Sub.Count(screentest.EventClick))
	assert.Equal(t, []string{"ctrl+q", "enter", "esc", "ctrl+q"}, f.Sub.Keys())
}

func TestQuitDoesNotEscalateOnBrokenMatcher(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.FailProbe(action.HomeButton, errors.New("screen capture failed"))

	r, err := c.Quit()
	require.Error(t, err)
	assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
	assert.Equal(t, 0, r.Escalations)
	assert.Equal(t, recovery.Failed, r.Final())
	assert.Equal(t, []string{"ctrl+q"}, f.Sub.Keys())
}

func TestQuitDismissesCrashReporter(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	reporterAt := actiontest.At(800, 400)
	quitButtonAt := actiontest.At(900, 600)
	f.Sub.Show(recovery.CrashReporter, reporterAt)
	f.Sub.Show(recovery.CrashQuitButton, quitButtonAt)
	f.HideOnClick(recovery.CrashReporter, quitButtonAt)

	r, err := c.Quit()
	require.NoError(t, err)
	assert.Equal(t, recovery.CrashDismissed, r.Crash)
	assert.Equal(t, recovery.QuitComplete, r.Final())
	assert.Equal(t, []screentest.Event{
		{Kind: screentest.EventKey, Text: "ctrl+q"},
		{Kind: screentest.EventClick, At: reporterAt.Center()},
		{Kind: screentest.EventType, Text: f.Config.Crash().Annotation},
		{Kind: screentest.EventClick, At: quitButtonAt.Center()},
	}, f.Sub.Events())
}

func TestDismissCrashReporterAbsent(t *testing.T) {
	c, f := newController(t, nil)

	state, err := c.DismissCrashReporter()
	require.NoError(t, err)
	assert.Equal(t, recovery.CrashAbsent, state)
	assert.Empty(t, f.Sub.Events())
	assert.Equal(t, f.Config.Timeouts().CrashExists, f.Sub.Clock.Slept())
}

func TestDismissCrashReporterBrokenMatcherIsNotAbsent(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.FailProbe(recovery.CrashReporter, errors.New("screen capture failed"))

	state, err := c.DismissCrashReporter()
	require.Error(t, err)
	assert.Equal(t, recovery.CrashUnknown, state)
	assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
	assert.Empty(t, f.Sub.Events())
}

func TestDismissCrashReporterFallsBackToClose(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(recovery.CrashReporter, actiontest.At(800, 400))
	f.Sub.Show(recovery.CrashQuitButton, actiontest.At(900, 600))
	closeAt := actiontest.At(1880, 5)
	f.Sub.Show(action.WindowCloseButton, closeAt)

	state, err := c.DismissCrashReporter()
	require.NoError(t, err)
	assert.Equal(t, recovery.CrashForceClosed, state)
	events := f.Sub.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, screentest.Event{Kind: screentest.EventClick, At: closeAt.Center()}, events[len(events)-1])
	assert.Equal(t, 3, f.Sub.Count(screentest.EventClick))
}

func TestDismissCrashReporterStuck(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(recovery.CrashReporter, actiontest.At(800, 400))

	state, err := c.DismissCrashReporter()
	assert.Equal(t, recovery.CrashStuck, state)
	require.Error(t, err)
	assert.Equal(t, action.WindowCloseButton, outcome.PatternOf(err))
	assert.Contains(t, err.Error(), "dismiss crash reporter")
}

func TestQuitFailsWhenCrashReporterIsStuck(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	f.Sub.Show(recovery.CrashReporter, actiontest.At(800, 400))

	r, err := c.Quit()
	require.Error(t, err)
	assert.Equal(t, recovery.CrashStuck, r.Crash)
	assert.Equal(t, recovery.Failed, r.Final())
	assert.Equal(t, 0, r.Escalations)
}

func TestRestart(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	c, f := newController(t, launcher)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	launcher.On("Launch").Return(nil).Run(func(mock.Arguments) {
		f.Sub.Set(action.HomeButton, screentest.After(3, homeAt))
	}).Once()

	r, err := c.Restart(nil)
	require.NoError(t, err)
	assert.Equal(t, []recovery.QuitState{
		recovery.Running, recovery.Quitting, recovery.Vanished, recovery.QuitComplete,
		recovery.Relaunching, recovery.Restored,
	}, r.States)
	launcher.AssertExpectations(t)
}

func TestRestartWithCheckPattern(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	c, f := newController(t, launcher)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	launcher.On("Launch").Return(nil).Once()
	logo := f.Pattern(t, recovery.LaunchLogo)

	r, err := c.Restart(&logo)
	require.Error(t, err)
	assert.Equal(t, outcome.Timeout, outcome.KindOf(err))
	assert.Equal(t, recovery.LaunchLogo, outcome.PatternOf(err))
	assert.Equal(t, recovery.Failed, r.Final())
	assert.Contains(t, r.States, recovery.Relaunching)
}

func TestRestartLaunchFails(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	c, f := newController(t, launcher)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	launcher.On("Launch").Return(errors.New("binary missing")).Once()

	r, err := c.Restart(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary missing")
	assert.Equal(t, recovery.Failed, r.Final())
}

func TestRestartStopsWhenQuitFails(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	c, f := newController(t, launcher)
	f.Sub.Show(action.HomeButton, homeAt)

	r, err := c.Restart(nil)
	require.Error(t, err)
	assert.Equal(t, recovery.Failed, r.Final())
	assert.NotContains(t, r.States, recovery.Relaunching)
	launcher.AssertNotCalled(t, "Launch")
}

func TestRestartNeedsLauncher(t *testing.T) {
	c, f := newController(t, nil)

	r, err := c.Restart(nil)
	assert.Equal(t, outcome.AmbiguousPrecondition, outcome.KindOf(err))
	assert.Equal(t, []recovery.QuitState{recovery.Running, recovery.Failed}, r.States)
	assert.Empty(t, f.Sub.Events())
}

func TestRestartReportsBrokenMatcherAfterLaunch(t *testing.T) {
	launcher := new(mocks.MockLauncher)
	c, f := newController(t, launcher)
	f.Sub.Show(action.HomeButton, homeAt)
	quitAfter(f, 1)
	launcher.On("Launch").Return(nil).Run(func(mock.Arguments) {
		f.Sub.FailProbe(action.HomeButton, errors.New("screen capture failed"))
	}).Once()

	r, err := c.Restart(nil)
	require.Error(t, err)
	assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
	assert.Equal(t, recovery.Failed, r.Final())
}

func TestWaitForRestart(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Set(action.HomeButton, func(probe int) (platform.Bounds, bool) {
		return homeAt, probe < 2 || probe >= 6
	})

	require.NoError(t, c.WaitForRestart())
	assert.Equal(t, 7, f.Sub.Probes(action.HomeButton))
}

func TestWaitForRestartNeverCloses(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Show(action.HomeButton, homeAt)

	err := c.WaitForRestart()
	assert.Equal(t, outcome.Timeout, outcome.KindOf(err))
	assert.Contains(t, err.Error(), "did not close")
}

func TestConfirmLaunch(t *testing.T) {
	c, f := newController(t, nil)
	f.Sub.Set(recovery.LaunchLogo, screentest.After(4, actiontest.At(900, 500)))
	require.NoError(t, c.ConfirmLaunch())

	c, f = newController(t, nil)
	err := c.ConfirmLaunch()
	assert.Equal(t, recovery.LaunchLogo, outcome.PatternOf(err))
	assert.Equal(t, f.Config.Timeouts().LaunchWait, f.Sub.Clock.Slept())
}

func TestReportString(t *testing.T) {
	r := recovery.Report{
		States:      []recovery.QuitState{recovery.Running, recovery.Quitting, recovery.Failed},
		Escalations: 1,
		Crash:       recovery.CrashUnknown,
	}
	assert.Equal(t, "RUNNING -> QUITTING -> FAILED (escalations=1, crash=UNKNOWN)", r.String())
	assert.Equal(t, recovery.Running, recovery.Report{}.Final())
}
