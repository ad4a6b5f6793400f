package action

import (
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
)

// clickButton waits for a named button and clicks it.
func (o *Orchestrator) clickButton(action, name string) error {
	p, err := o.patternFor(action, name)
	if err != nil {
		return err
	}
	if err := o.screen.Click(p, o.cfg.Timeouts().Element); err != nil {
		return outcome.Wrap(err, action, "can't find the button")
	}
	o.log.Debug("button clicked", zap.String("action", action), zap.String("pattern", name))
	return nil
}

// ClickCancelButton clicks Cancel in the open dialog.
func (o *Orchestrator) ClickCancelButton() error {
	return o.clickButton("click cancel button", CancelButton)
}

// CloseCustomizePage leaves the Customize page through its Done button.
func (o *Orchestrator) CloseCustomizePage() error {
	return o.clickButton("close customize page", CustomizeDoneButton)
}

// DontSavePassword declines the save-password prompt.
func (o *Orchestrator) DontSavePassword() error {
	return o.clickButton("don't save password", DontSavePasswordButton)
}

// ConfirmCloseMultipleTabs accepts the "close all tabs" warning. The warning
// only shows with several tabs open, so its absence is not an error.
func (o *Orchestrator) ConfirmCloseMultipleTabs() error {
	const action = "confirm close multiple tabs"
	p, err := o.patternFor(action, CloseAllTabsButton)
	if err != nil {
		return err
	}
	if _, err := o.screen.Wait(p, o.cfg.Timeouts().Control); err != nil {
		if outcome.IsAbsent(err) {
			o.log.Debug("close all tabs warning not shown")
			return nil
		}
		return outcome.Wrap(err, action, "can't look for the warning")
	}
	if err := o.screen.Press(platform.KeyEnter); err != nil {
		return outcome.Wrap(err, action, "can't confirm the warning")
	}
	return nil
}

// RemoveZoomIndicatorFromToolbar removes the zoom control through its
// context menu and checks that it is gone.
func (o *Orchestrator) RemoveZoomIndicatorFromToolbar() error {
	const action = "remove zoom indicator"
	decrease, err := o.patternFor(action, ZoomControlDecrease)
	if err != nil {
		return err
	}
	remove, err := o.patternFor(action, RemoveFromToolbar)
	if err != nil {
		return err
	}
	timeout := o.cfg.Timeouts().Element

	if err := o.screen.RightClick(decrease, timeout); err != nil {
		return outcome.Wrap(err, action, "can't find the Decrease zoom control")
	}
	if err := o.clickInContextMenu(action, remove); err != nil {
		return err
	}
	if err := o.screen.WaitVanish(decrease, timeout); err != nil {
		return outcome.Wrap(err, action, "zoom indicator not removed from toolbar")
	}
	return nil
}

// clickInContextMenu clicks an entry of a context menu that was just opened,
// closing the menu again if the entry is not there.
func (o *Orchestrator) clickInContextMenu(action string, entry pattern.Pattern) (err error) {
	defer o.dismissOnError(action, &err)
	if err := o.screen.Click(entry, o.cfg.Timeouts().Element); err != nil {
		return outcome.Wrap(err, action, "can't find the context menu entry")
	}
	return nil
}
