package action_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/action/actiontest"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

func TestClickButtons(t *testing.T) {
	tests := []struct {
		name   string
		button string
		run    func(o *action.Orchestrator) error
	}{
		{"cancel", action.CancelButton, (*action.Orchestrator).ClickCancelButton},
		{"customize done", action.CustomizeDoneButton, (*action.Orchestrator).CloseCustomizePage},
		{"don't save password", action.DontSavePasswordButton, (*action.Orchestrator).DontSavePassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := actiontest.New(t, linux)
			f.Sub.Show(tt.button, actiontest.At(900, 500))

			require.NoError(t, tt.run(f.Orchestrator))
			assert.Equal(t, []screentest.Event{
				{Kind: screentest.EventClick, At: actiontest.Centre(900, 500)},
			}, f.Sub.Events())
		})
	}
}

func TestClickButtonMissing(t *testing.T) {
	f := actiontest.New(t, linux)

	err := f.Orchestrator.ClickCancelButton()
	assert.Equal(t, outcome.Timeout, outcome.KindOf(err))
	assert.Equal(t, action.CancelButton, outcome.PatternOf(err))
	assert.Contains(t, err.Error(), "click cancel button")
}

func TestConfirmCloseMultipleTabs(t *testing.T) {
	t.Run("warning shown", func(t *testing.T) {
		f := actiontest.New(t, win10)
		f.Sub.Show(action.CloseAllTabsButton, actiontest.At(900, 500))

		require.NoError(t, f.Orchestrator.ConfirmCloseMultipleTabs())
		assert.Equal(t, []string{"enter"}, f.Sub.Keys())
	})

	t.Run("no warning", func(t *testing.T) {
		f := actiontest.New(t, win10)

		require.NoError(t, f.Orchestrator.ConfirmCloseMultipleTabs())
		assert.Empty(t, f.Sub.Events())
		assert.Equal(t, f.Config.Timeouts().Control, f.Sub.Clock.Slept())
	})

	t.Run("matcher broken", func(t *testing.T) {
		f := actiontest.New(t, win10)
		f.Sub.FailProbe(action.CloseAllTabsButton, errors.New("screen capture failed"))

		err := f.Orchestrator.ConfirmCloseMultipleTabs()
		require.Error(t, err)
		assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
		assert.Equal(t, action.CloseAllTabsButton, outcome.PatternOf(err))
		assert.Empty(t, f.Sub.Events())
	})
}

func TestRemoveZoomIndicatorFromToolbar(t *testing.T) {
	decreaseAt := actiontest.At(1400, 40)
	removeAt := actiontest.At(1400, 120)

	t.Run("removed", func(t *testing.T) {
		f := actiontest.New(t, mac)
		f.Sub.Show(action.ZoomControlDecrease, decreaseAt)
		f.Sub.React(func(e screentest.Event) {
			if e.Kind == screentest.EventRightClick && e.At == decreaseAt.Center() {
				f.Sub.Show(action.RemoveFromToolbar, removeAt)
			}
		})
		f.Sub.React(func(e screentest.Event) {
			if e.Kind == screentest.EventClick && e.At == removeAt.Center() {
				f.Sub.Hide(action.RemoveFromToolbar)
				f.Sub.Hide(action.ZoomControlDecrease)
			}
		})

		require.NoError(t, f.Orchestrator.RemoveZoomIndicatorFromToolbar())
		assert.Equal(t, []screentest.Event{
			{Kind: screentest.EventRightClick, At: decreaseAt.Center()},
			{Kind: screentest.EventClick, At: removeAt.Center()},
		}, f.Sub.Events())
	})

	t.Run("context menu entry missing", func(t *testing.T) {
		f := actiontest.New(t, mac)
		f.Sub.Show(action.ZoomControlDecrease, decreaseAt)

		err := f.Orchestrator.RemoveZoomIndicatorFromToolbar()
		assert.True(t, outcome.IsAbsent(err))
		assert.Equal(t, action.RemoveFromToolbar, outcome.PatternOf(err))
		assert.Equal(t, []string{"esc"}, f.Sub.Keys())
	})

	t.Run("indicator stays", func(t *testing.T) {
		f := actiontest.New(t, mac)
		f.Sub.Show(action.ZoomControlDecrease, decreaseAt)
		f.Sub.Show(action.RemoveFromToolbar, removeAt)

		err := f.Orchestrator.RemoveZoomIndicatorFromToolbar()
		assert.Equal(t, outcome.Timeout, outcome.KindOf(err))
		assert.Equal(t, action.ZoomControlDecrease, outcome.PatternOf(err))
		assert.Empty(t, f.Sub.Keys())
	})
}

func TestBookmarkOption(t *testing.T) {
	const entry = "delete_bookmark.png"
	f := actiontest.New(t, linux, entry)

	err := f.Orchestrator.BookmarkOption(f.Pattern(t, entry))
	assert.True(t, outcome.IsAbsent(err))
	assert.Equal(t, []string{"esc"}, f.Sub.Keys())

	f.Sub.ResetEvents()
	f.Sub.Show(entry, actiontest.At(600, 300))
	require.NoError(t, f.Orchestrator.BookmarkOption(f.Pattern(t, entry)))
	assert.Empty(t, f.Sub.Keys())
	assert.Equal(t, 1, f.Sub.Count(screentest.EventClick))
}
