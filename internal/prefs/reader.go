// Package prefs reads and changes browser preferences through the browser's
// own about: pages. There is no programmatic API: every read opens a tab,
// filters the page, copies the result through the clipboard and closes the
// tab again, whatever happened in between.
package prefs

import (
	"net/url"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
)

// Internal pages.
const (
	ConfigPage    = "about:config"
	SupportPage   = "about:support"
	TelemetryPage = "about:telemetry"
)

// Template names used by the reader.
const (
	PreferenceDialogIcon = "preference_dialog_icon.png"
	SupportCopyRawData   = "about_support_copy_raw_data_button.png"
	TelemetryRawJSON     = "raw_json.png"
	TelemetryRawData     = "raw_data.png"
	TelemetryCopyRawData = "copy_raw_data_to_clipboard.png"
)

// Preferences the info getters read.
const (
	VersionPref     = "extensions.lastAppVersion"
	BuildIDPref     = "browser.startup.homepage_override.buildID"
	BuildIDFallback = "extensions.lastAppBuildId"
	ChannelPref     = "app.update.channel"
	LocalePref      = "browser.newtabpage.activity-stream.feeds.section.topstories.options"
)

// SetResult says what Set had to do.
type SetResult string

const (
	// AlreadySet means the preference had the value; nothing was written.
	AlreadySet SetResult = "already_set"
	// Changed means the value was entered in the edit dialog.
	Changed SetResult = "changed"
	// Toggled means the preference has no edit dialog and was flipped with
	// ENTER. Boolean preferences behave this way.
	Toggled SetResult = "toggled"
)

// Reader drives the about: pages through an Orchestrator.
type Reader struct {
	o   *action.Orchestrator
	log *zap.Logger
}

// New returns a Reader.
func New(o *action.Orchestrator, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{o: o, log: log.Named("prefs")}
}

// openPage opens page in a fresh tab.
func (r *Reader) openPage(act, page string) error {
	if err := r.o.NewTab(); err != nil {
		return outcome.Wrap(err, act, "can't open a tab")
	}
	if err := r.o.Navigate(page); err != nil {
		// the tab is open even though navigation failed
		r.closeTab(act, &err)
		return outcome.Wrap(err, act, "can't open %s", page)
	}
	r.o.Screen().Pause(r.o.Config().Timing().UIDelay)
	return nil
}

// closeTab closes the active tab. A close failure replaces a nil *err and is
// logged otherwise.
func (r *Reader) closeTab(act string, err *error) {
	closeErr := r.o.CloseTab()
	if closeErr == nil {
		return
	}
	if *err == nil {
		*err = outcome.Wrap(closeErr, act, "can't close the tab")
		return
	}
	r.log.Warn("failed to close tab after error", zap.String("action", act), zap.Error(closeErr))
}

// readRow filters about:config, which must be open, for name and copies the
// matching row.
func (r *Reader) readRow(act, name string) (Row, error) {
	s := r.o.Screen()
	timing := r.o.Config().Timing()

	if err := s.Press(platform.KeySpace); err != nil {
		return Row{}, outcome.Wrap(err, act, "can't focus the filter")
	}
	s.Pause(timing.UIDelay)
	if err := s.Paste(name); err != nil {
		return Row{}, outcome.Wrap(err, act, "can't enter the filter")
	}
	s.Pause(timing.UIDelayLong)
	if err := r.o.FocusNextItem(); err != nil {
		return Row{}, outcome.Wrap(err, act, "can't select the row")
	}
	s.Pause(timing.UIDelayLong)

	text, err := r.o.CopyToClipboard()
	if err != nil {
		return Row{}, outcome.Wrap(err, act, "can't copy the row")
	}
	row, err := ParseRow(name, text)
	if err != nil {
		return Row{}, outcome.Wrap(err, act, "failed to retrieve preference value")
	}
	return row, nil
}

// Get returns the value of preference name.
func (r *Reader) Get(name string) (_ string, err error) {
	act := "get preference " + name
	if err := r.openPage(act, ConfigPage); err != nil {
		return "", err
	}
	defer r.closeTab(act, &err)

	row, err := r.readRow(act, name)
	if err != nil {
		return "", err
	}
	r.log.Debug("preference read", zap.String("name", name), zap.String("value", row.Value))
	return row.Value, nil
}

// Set changes preference name to value. A preference that already has the
// value is left alone.
func (r *Reader) Set(name, value string) (_ SetResult, err error) {
	act := "set preference " + name
	if err := r.openPage(act, ConfigPage); err != nil {
		return "", err
	}
	defer r.closeTab(act, &err)

	row, err := r.readRow(act, name)
	if err != nil {
		return "", err
	}
	if row.Value == value {
		r.log.Debug("preference already set", zap.String("name", name), zap.String("value", value))
		return AlreadySet, nil
	}

	s := r.o.Screen()
	if err := s.Press(platform.KeyEnter); err != nil {
		return "", outcome.Wrap(err, act, "can't edit the preference")
	}
	dialog, err := r.o.Pattern(PreferenceDialogIcon)
	if err != nil {
		return "", outcome.Wrap(err, act, "template is missing from the catalog")
	}
	if _, err := s.Wait(dialog, r.o.Config().Timeouts().Dialog); err != nil {
		if outcome.IsAbsent(err) {
			r.log.Debug("no edit dialog, preference toggled", zap.String("name", name))
			return Toggled, nil
		}
		return "", outcome.Wrap(err, act, "can't look for the edit dialog")
	}
	if err := s.Paste(value); err != nil {
		return "", outcome.Wrap(err, act, "can't enter the new value")
	}
	if err := s.Press(platform.KeyEnter); err != nil {
		return "", outcome.Wrap(err, act, "can't confirm the new value")
	}
	return Changed, nil
}

// Version is the browser version recorded in about:config.
func (r *Reader) Version() (string, error) {
	v, err := r.Get(VersionPref)
	if err != nil {
		return "", outcome.Wrap(err, "browser version", "could not retrieve version information from about:config")
	}
	return v, nil
}

// BuildID is the browser build id. The homepage override preference is
// missing on some profiles, so the extension manager's copy is tried next.
func (r *Reader) BuildID() (string, error) {
	v, err := r.Get(BuildIDPref)
	if err == nil {
		return v, nil
	}
	r.log.Debug("build id preference unavailable, trying fallback", zap.Error(err))
	v, err = r.Get(BuildIDFallback)
	if err != nil {
		return "", outcome.Wrap(err, "browser build id", "could not retrieve build id information from about:config")
	}
	return v, nil
}

// Channel is the update channel: release, beta, nightly...
func (r *Reader) Channel() (string, error) {
	v, err := r.Get(ChannelPref)
	if err != nil {
		return "", outcome.Wrap(err, "browser channel", "could not retrieve channel information from about:config")
	}
	return v, nil
}

type storiesOptions struct {
	StoriesEndpoint string `json:"stories_endpoint"`
}

// Locale is the UI locale, taken from the locale_lang parameter of the
// new tab page's stories endpoint.
func (r *Reader) Locale() (string, error) {
	const act = "browser locale"
	raw, err := r.Get(LocalePref)
	if err != nil {
		return "", outcome.Wrap(err, act, "could not retrieve locale information from about:config")
	}
	return LocaleFromStoriesOptions(raw)
}

// LocaleFromStoriesOptions extracts locale_lang from the JSON value of the
// top stories preference.
func LocaleFromStoriesOptions(raw string) (string, error) {
	const act = "browser locale"
	var opts storiesOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return "", outcome.NewFormat(act, "pref format to determine locale has changed").WithCause(err)
	}
	if opts.StoriesEndpoint == "" {
		return "", outcome.NewFormat(act, "pref format to determine locale has changed: no stories_endpoint")
	}
	u, err := url.Parse(opts.StoriesEndpoint)
	if err != nil {
		return "", outcome.NewFormat(act, "stories_endpoint is not a URL").WithCause(err)
	}
	locale := u.Query().Get("locale_lang")
	if locale == "" {
		return "", outcome.NewFormat(act, "stories_endpoint has no locale_lang: %s", opts.StoriesEndpoint)
	}
	return locale, nil
}

// Info is a decoded JSON dump of an about: page.
type Info map[string]interface{}

func decodeInfo(act, text string) (Info, error) {
	var info Info
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		return nil, outcome.NewFormat(act, "copied data is not a JSON object").WithCause(err)
	}
	if info == nil {
		return nil, outcome.NewFormat(act, "copied data is empty")
	}
	return info, nil
}

func (r *Reader) clickAll(act string, names ...string) error {
	timeout := r.o.Config().Timeouts().Element
	for _, name := range names {
		p, err := r.o.Pattern(name)
		if err != nil {
			return outcome.Wrap(err, act, "template is missing from the catalog")
		}
		if err := r.o.Screen().Click(p, timeout); err != nil {
			return outcome.Wrap(err, act, "%s button not present in the page", name)
		}
	}
	return nil
}

func (r *Reader) copiedInfo(act string) (Info, error) {
	text, err := r.o.Screen().Clipboard()
	if err != nil {
		return nil, outcome.Wrap(err, act, "clipboard unavailable")
	}
	return decodeInfo(act, text)
}

// SupportInfo returns the raw data of about:support.
func (r *Reader) SupportInfo() (_ Info, err error) {
	const act = "support info"
	if err := r.openPage(act, SupportPage); err != nil {
		return nil, err
	}
	defer r.closeTab(act, &err)

	if err := r.clickAll(act, SupportCopyRawData); err != nil {
		return nil, err
	}
	r.o.Screen().Pause(r.o.Config().Timing().UIDelayLong)
	return r.copiedInfo(act)
}

// TelemetryInfo returns the raw telemetry ping shown by about:telemetry.
func (r *Reader) TelemetryInfo() (_ Info, err error) {
	const act = "telemetry info"
	if err := r.openPage(act, TelemetryPage); err != nil {
		return nil, err
	}
	defer r.closeTab(act, &err)

	if err := r.clickAll(act, TelemetryRawJSON, TelemetryRawData, TelemetryCopyRawData); err != nil {
		return nil, err
	}
	r.o.Screen().Pause(r.o.Config().Timing().UIDelay)
	return r.copiedInfo(act)
}
