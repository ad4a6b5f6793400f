package prefs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/patternpilot/internal/action/actiontest"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/prefs"
	"github.com/mj1618/patternpilot/internal/screen/screentest"
)

var linux = platform.Target{OS: platform.Linux}

// keys the reader sends to open about:config and copy a filtered row
var readKeys = []string{
	"ctrl+t", "ctrl+l", "ctrl+v", "enter",
	"space", "ctrl+v", "tab", "ctrl+a", "ctrl+c",
}

func newReader(t *testing.T) (*prefs.Reader, *actiontest.Fixture) {
	t.Helper()
	f := actiontest.New(t, linux,
		prefs.PreferenceDialogIcon, prefs.SupportCopyRawData,
		prefs.TelemetryRawJSON, prefs.TelemetryRawData, prefs.TelemetryCopyRawData)
	return prefs.New(f.Orchestrator, zaptest.NewLogger(t)), f
}

// copies makes the copy shortcut put text on the clipboard.
func copies(f *actiontest.Fixture, text string) {
	f.Sub.OnKey("ctrl+c", func() { f.Sub.SetClipboard(text) })
}

// copiesRows answers each copy with the next of texts.
func copiesRows(f *actiontest.Fixture, texts ...string) {
	n := 0
	f.Sub.OnKey("ctrl+c", func() {
		if n < len(texts) {
			f.Sub.SetClipboard(texts[n])
		}
		n++
	})
}

func TestGet(t *testing.T) {
	r, f := newReader(t)
	copies(f, "browser.test.pref;42\n")

	v, err := r.Get("browser.test.pref")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.Equal(t, append(append([]string{}, readKeys...), "ctrl+w"), f.Sub.Keys())
}

func TestGetClosesTabOnParseFailure(t *testing.T) {
	r, f := newReader(t)
	copies(f, "no separator here")

	_, err := r.Get("browser.test.pref")
	assert.Equal(t, outcome.ProtocolFormat, outcome.KindOf(err))
	assert.Contains(t, err.Error(), "browser.test.pref")
	keys := f.Sub.Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, "ctrl+w", keys[len(keys)-1])
}

func TestGetClosesTabOnInputFailure(t *testing.T) {
	r, f := newReader(t)
	f.Sub.OnKey("space", func() { f.Sub.FailInput(assert.AnError) })

	_, err := r.Get("browser.test.pref")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	keys := f.Sub.Keys()
	assert.Equal(t, "ctrl+w", keys[len(keys)-1])
}

func TestSetAlreadySetWritesNothing(t *testing.T) {
	r, f := newReader(t)
	copies(f, "browser.test.pref;42")

	res, err := r.Set("browser.test.pref", "42")
	require.NoError(t, err)
	assert.Equal(t, prefs.AlreadySet, res)
	// only the tab is closed after the copy
	assert.Equal(t, append(append([]string{}, readKeys...), "ctrl+w"), f.Sub.Keys())
	assert.Equal(t, 0, f.Sub.Probes(prefs.PreferenceDialogIcon))
}

func TestSetThroughDialog(t *testing.T) {
	r, f := newReader(t)
	copies(f, "browser.test.pref;41")
	f.Sub.OnKey("enter", func() { f.Sub.Show(prefs.PreferenceDialogIcon, actiontest.At(900, 500)) })

	res, err := r.Set("browser.test.pref", "42")
	require.NoError(t, err)
	assert.Equal(t, prefs.Changed, res)

	var pasted []string
	for _, e := range f.Sub.Events() {
		if e.Kind == screentest.EventClipSet {
			pasted = append(pasted, e.Text)
		}
	}
	assert.Equal(t, []string{"about:config", "browser.test.pref", "42"}, pasted)
	want := append(append([]string{}, readKeys...), "enter", "ctrl+v", "enter", "ctrl+w")
	assert.Equal(t, want, f.Sub.Keys())
}

func TestSetTogglesBooleans(t *testing.T) {
	r, f := newReader(t)
	copies(f, "browser.test.flag;true")

	res, err := r.Set("browser.test.flag", "false")
	require.NoError(t, err)
	assert.Equal(t, prefs.Toggled, res)
	want := append(append([]string{}, readKeys...), "enter", "ctrl+w")
	assert.Equal(t, want, f.Sub.Keys())
}

func TestSetFailsWhenDialogCannotBeSearched(t *testing.T) {
	r, f := newReader(t)
	copies(f, "browser.test.pref;41")
	f.Sub.FailProbe(prefs.PreferenceDialogIcon, errors.New("screen capture failed"))

	res, err := r.Set("browser.test.pref", "42")
	require.Error(t, err)
	assert.Empty(t, res)
	assert.Equal(t, outcome.Substrate, outcome.KindOf(err))
	assert.Contains(t, err.Error(), "can't look for the edit dialog")
	// nothing is pasted and the tab is still closed
	want := append(append([]string{}, readKeys...), "enter", "ctrl+w")
	assert.Equal(t, want, f.Sub.Keys())
}

func TestBuildIDFallsBack(t *testing.T) {
	r, f := newReader(t)
	copiesRows(f, "garbage", prefs.BuildIDFallback+";20240101000000")

	id, err := r.BuildID()
	require.NoError(t, err)
	assert.Equal(t, "20240101000000", id)
	closes := 0
	for _, k := range f.Sub.Keys() {
		if k == "ctrl+w" {
			closes++
		}
	}
	assert.Equal(t, 2, closes)
}

func TestBuildIDBothMissing(t *testing.T) {
	r, f := newReader(t)
	copies(f, "")

	_, err := r.BuildID()
	assert.Equal(t, outcome.ProtocolFormat, outcome.KindOf(err))
	assert.Contains(t, err.Error(), "browser build id")
}

func TestVersionAndChannel(t *testing.T) {
	r, f := newReader(t)
	copiesRows(f, prefs.VersionPref+";128.0", prefs.ChannelPref+";nightly")

	v, err := r.Version()
	require.NoError(t, err)
	assert.Equal(t, "128.0", v)
	c, err := r.Channel()
	require.NoError(t, err)
	assert.Equal(t, "nightly", c)
}

func TestLocale(t *testing.T) {
	r, f := newReader(t)
	copies(f, prefs.LocalePref+`;{"api_key_pref":"extensions.pocket.oAuthConsumerKey","stories_endpoint":"https://getpocket.cdn.mozilla.net/v3/firefox/global-recs?version=3&consumer_key=$apiKey&locale_lang=de-DE&feed_variant=default"}`)

	locale, err := r.Locale()
	require.NoError(t, err)
	assert.Equal(t, "de-DE", locale)
}

func TestLocaleFromStoriesOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{"},
		{"no endpoint", `{"show_spocs":true}`},
		{"no locale", `{"stories_endpoint":"https://example.com/recs?version=3"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prefs.LocaleFromStoriesOptions(tt.raw)
			assert.Equal(t, outcome.ProtocolFormat, outcome.KindOf(err))
		})
	}
}

func TestSupportInfo(t *testing.T) {
	r, f := newReader(t)
	buttonAt := actiontest.At(1500, 200)
	f.Sub.Show(prefs.SupportCopyRawData, buttonAt)
	f.Sub.React(func(e screentest.Event) {
		if e.Kind == screentest.EventClick && e.At == buttonAt.Center() {
			f.Sub.SetClipboard(`{"application":{"name":"Browser","version":"128.0"}}`)
		}
	})

	info, err := r.SupportInfo()
	require.NoError(t, err)
	app, ok := info["application"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "128.0", app["version"])
	keys := f.Sub.Keys()
	assert.Equal(t, "ctrl+w", keys[len(keys)-1])
}

func TestSupportInfoMalformed(t *testing.T) {
	r, f := newReader(t)
	f.Sub.Show(prefs.SupportCopyRawData, actiontest.At(1500, 200))
	f.Sub.SetClipboard("about:support")

	_, err := r.SupportInfo()
	assert.Equal(t, outcome.ProtocolFormat, outcome.KindOf(err))
	keys := f.Sub.Keys()
	assert.Equal(t, "ctrl+w", keys[len(keys)-1])
}

func TestTelemetryInfo(t *testing.T) {
	r, f := newReader(t)
	jsonAt := actiontest.At(200, 150)
	dataAt := actiontest.At(200, 250)
	copyAt := actiontest.At(600, 150)
	f.Sub.Show(prefs.TelemetryRawJSON, jsonAt)
	f.ShowOnClick(jsonAt, prefs.TelemetryRawData, dataAt)
	f.ShowOnClick(dataAt, prefs.TelemetryCopyRawData, copyAt)
	f.Sub.React(func(e screentest.Event) {
		if e.Kind == screentest.EventClick && e.At == copyAt.Center() {
			f.Sub.SetClipboard(`{"environment":{"settings":{"locale":"en-US"}}}`)
		}
	})

	info, err := r.TelemetryInfo()
	require.NoError(t, err)
	assert.Contains(t, info, "environment")
	assert.Equal(t, 3, f.Sub.Count(screentest.EventClick))
}

func TestTelemetryInfoMissingButton(t *testing.T) {
	r, f := newReader(t)
	f.Sub.Show(prefs.TelemetryRawJSON, actiontest.At(200, 150))

	_, err := r.TelemetryInfo()
	assert.True(t, outcome.IsAbsent(err))
	assert.Equal(t, prefs.TelemetryRawData, outcome.PatternOf(err))
	keys := f.Sub.Keys()
	assert.Equal(t, "ctrl+w", keys[len(keys)-1])
}
