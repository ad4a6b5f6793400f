package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/patternpilot/internal/action/actiontest"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

var (
	mac   = platform.Target{OS: platform.Mac}
	win7  = platform.Target{OS: platform.Windows, Version: "win7"}
	win10 = platform.Target{OS: platform.Windows, Version: "win10"}
	linux = platform.Target{OS: platform.Linux}
)

func TestModifiers(t *testing.T) {
	tests := []struct {
		target     platform.Target
		main, menu platform.Modifier
	}{
		{mac, platform.ModCmd, platform.ModCtrl},
		{win10, platform.ModCtrl, platform.ModCmd},
		{linux, platform.ModCtrl, platform.ModCmd},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			o := actiontest.New(t, tt.target).Orchestrator
			main, err := o.MainModifier()
			require.NoError(t, err)
			menu, err := o.MenuModifier()
			require.NoError(t, err)
			assert.Equal(t, tt.main, main)
			assert.Equal(t, tt.menu, menu)
		})
	}
}

func TestQuitChord(t *testing.T) {
	for target, want := range map[platform.Target]string{
		mac:   "cmd+q",
		win7:  "ctrl+shift+q",
		linux: "ctrl+q",
	} {
		f := actiontest.New(t, target)
		require.NoError(t, f.Orchestrator.Quit())
		assert.Equal(t, []string{want}, f.Sub.Keys(), target.String())
	}
}

func TestNavigatePastesURL(t *testing.T) {
	f := actiontest.New(t, mac)

	require.NoError(t, f.Orchestrator.Navigate("about:config"))
	assert.Equal(t, []screentest.Event{
		{Kind: screentest.EventKey, Text: "cmd+l"},
		{Kind: screentest.EventClipSet, Text: "about:config"},
		{Kind: screentest.EventKey, Text: "cmd+v"},
		{Kind: screentest.EventKey, Text: "enter"},
	}, f.Sub.Events())
}

func TestNavigateSlowTypesEachCharacter(t *testing.T) {
	f := actiontest.New(t, linux)

	require.NoError(t, f.Orchestrator.NavigateSlow("a.b"))
	assert.Equal(t, 3, f.Sub.Count(screentest.EventType))
	assert.Equal(t, []string{"ctrl+l", "enter"}, f.Sub.Keys())
}

func TestNavigateWithoutWindow(t *testing.T) {
	f := actiontest.New(t, linux)
	f.Sub.FailInput(assert.AnError)

	err := f.Orchestrator.Navigate("about:blank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigate")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
	assert.False(t, outcome.IsAbsent(err))
}

func TestCopyToClipboardTrims(t *testing.T) {
	f := actiontest.New(t, win10)
	f.Sub.OnKey("ctrl+c", func() { f.Sub.SetClipboard("  browser.test.pref;42\n") })

	value, err := f.Orchestrator.CopyToClipboard()
	require.NoError(t, err)
	assert.Equal(t, "browser.test.pref;42", value)
	assert.Equal(t, []string{"ctrl+a", "ctrl+c"}, f.Sub.Keys())
}

func TestTabsAndFocus(t *testing.T) {
	f := actiontest.New(t, mac)
	o := f.Orchestrator

	require.NoError(t, o.NewTab())
	require.NoError(t, o.FocusNextItem())
	require.NoError(t, o.CloseTab())
	assert.Equal(t, []string{"cmd+t", "tab", "cmd+w"}, f.Sub.Keys())
}

func TestLoginSite(t *testing.T) {
	f := actiontest.New(t, linux)

	require.NoError(t, f.Orchestrator.LoginSite("user", "secret"))
	assert.Equal(t, []string{"ctrl+v", "tab", "ctrl+v", "tab", "enter"}, f.Sub.Keys())
	text, _ := f.Sub.GetText()
	assert.Equal(t, "secret", text)
}
