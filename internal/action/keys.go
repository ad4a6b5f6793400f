package action

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
)

var mainModifiers = table[platform.Modifier]{
	"mac":     platform.ModCmd,
	"windows": platform.ModCtrl,
	"linux":   platform.ModCtrl,
}

var menuModifiers = table[platform.Modifier]{
	"mac":     platform.ModCtrl,
	"windows": platform.ModCmd,
	"linux":   platform.ModCmd,
}

type shortcutSet struct {
	selectLocationBar platform.Chord
	newTab            platform.Chord
	closeTab          platform.Chord
	selectAll         platform.Chord
	copy              platform.Chord
	quit              platform.Chord
}

var shortcuts = table[shortcutSet]{
	"mac": {
		selectLocationBar: platform.MustChord("cmd+l"),
		newTab:            platform.MustChord("cmd+t"),
		closeTab:          platform.MustChord("cmd+w"),
		selectAll:         platform.MustChord("cmd+a"),
		copy:              platform.MustChord("cmd+c"),
		quit:              platform.MustChord("cmd+q"),
	},
	"windows": {
		selectLocationBar: platform.MustChord("ctrl+l"),
		newTab:            platform.MustChord("ctrl+t"),
		closeTab:          platform.MustChord("ctrl+w"),
		selectAll:         platform.MustChord("ctrl+a"),
		copy:              platform.MustChord("ctrl+c"),
		quit:              platform.MustChord("ctrl+shift+q"),
	},
	"linux": {
		selectLocationBar: platform.MustChord("ctrl+l"),
		newTab:            platform.MustChord("ctrl+t"),
		closeTab:          platform.MustChord("ctrl+w"),
		selectAll:         platform.MustChord("ctrl+a"),
		copy:              platform.MustChord("ctrl+c"),
		quit:              platform.MustChord("ctrl+q"),
	},
}

// MainModifier is the modifier for application shortcuts: cmd on mac, ctrl
// elsewhere.
func (o *Orchestrator) MainModifier() (platform.Modifier, error) {
	return lookup("main modifier", mainModifiers, o.cfg.Target())
}

// MenuModifier is the modifier for menu navigation.
func (o *Orchestrator) MenuModifier() (platform.Modifier, error) {
	return lookup("menu modifier", menuModifiers, o.cfg.Target())
}

func (o *Orchestrator) shortcut(action string, pick func(shortcutSet) platform.Chord) error {
	set, err := lookup(action, shortcuts, o.cfg.Target())
	if err != nil {
		return err
	}
	if err := o.screen.PressChord(pick(set)); err != nil {
		return outcome.Wrap(err, action, "no active window")
	}
	return nil
}

// SelectLocationBar focuses the location bar.
func (o *Orchestrator) SelectLocationBar() error {
	return o.shortcut("select location bar", func(s shortcutSet) platform.Chord { return s.selectLocationBar })
}

// NewTab opens a tab and focuses its location bar.
func (o *Orchestrator) NewTab() error {
	return o.shortcut("new tab", func(s shortcutSet) platform.Chord { return s.newTab })
}

// CloseTab closes the active tab.
func (o *Orchestrator) CloseTab() error {
	return o.shortcut("close tab", func(s shortcutSet) platform.Chord { return s.closeTab })
}

// Quit sends the platform quit shortcut. It does not wait for the window to
// go away; see the recovery package for that.
func (o *Orchestrator) Quit() error {
	return o.shortcut("quit", func(s shortcutSet) platform.Chord { return s.quit })
}

// FocusNextItem moves keyboard focus forward.
func (o *Orchestrator) FocusNextItem() error {
	if err := o.screen.Press(platform.KeyTab); err != nil {
		return outcome.Wrap(err, "focus next item", "no active window")
	}
	return nil
}

// Navigate pastes url into the location bar and loads it.
func (o *Orchestrator) Navigate(url string) error {
	err := o.SelectLocationBar()
	if err == nil {
		err = o.screen.Paste(url)
	}
	if err == nil {
		err = o.screen.Press(platform.KeyEnter)
	}
	if err != nil {
		return outcome.Wrap(err, "navigate", "cannot navigate to %s", url)
	}
	return nil
}

// NavigateSlow types url into the location bar one character at a time, for
// pages that react to keystrokes.
func (o *Orchestrator) NavigateSlow(url string) error {
	err := o.SelectLocationBar()
	if err == nil {
		err = o.screen.TypeSlow(url, o.cfg.Timing().TypeDelay)
	}
	if err == nil {
		err = o.screen.Press(platform.KeyEnter)
	}
	if err != nil {
		return outcome.Wrap(err, "navigate slow", "cannot navigate to %s", url)
	}
	return nil
}

// CopyToClipboard selects everything in the focused element, copies it and
// returns the clipboard text with surrounding whitespace removed.
func (o *Orchestrator) CopyToClipboard() (string, error) {
	const action = "copy to clipboard"
	if err := o.shortcut(action, func(s shortcutSet) platform.Chord { return s.selectAll }); err != nil {
		return "", err
	}
	if err := o.shortcut(action, func(s shortcutSet) platform.Chord { return s.copy }); err != nil {
		return "", err
	}
	o.screen.Pause(o.cfg.Timing().FXDelay)
	text, err := o.screen.Clipboard()
	if err != nil {
		return "", outcome.Wrap(err, action, "clipboard unavailable")
	}
	value := strings.TrimSpace(text)
	o.log.Debug("copied to clipboard", zap.String("value", value))
	return value, nil
}

// LoginSite fills a focused login form: username, next field, password,
// submit.
func (o *Orchestrator) LoginSite(username, password string) error {
	steps := []func() error{
		func() error { return o.screen.Paste(username) },
		o.FocusNextItem,
		func() error { return o.screen.Paste(password) },
		o.FocusNextItem,
		func() error { return o.screen.Press(platform.KeyEnter) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return outcome.Wrap(err, "login", "cannot fill login form")
		}
	}
	return nil
}
