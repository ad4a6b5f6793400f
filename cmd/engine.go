package cmd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/config"
	"github.com/mj1618/patternpilot/internal/diag"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/prefs"
	"github.com/mj1618/patternpilot/internal/recovery"
	"github.com/mj1618/patternpilot/internal/screen"
)

// engine is everything a command needs to drive the browser.
type engine struct {
	provider *platform.Provider
	actions  *action.Orchestrator
	recovery *recovery.Controller
	prefs    *prefs.Reader
}

// newProviderFunc is platform.NewProvider; tests replace it.
var newProviderFunc = platform.NewProvider

// newEngine wires the substrate backends, the pattern catalog and the
// engine layers for cfg.
func newEngine(cfg config.Config, log *zap.Logger) (*engine, error) {
	provider, err := newProviderFunc()
	if err != nil {
		return nil, err
	}
	if missing := provider.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%s not available on %s", strings.Join(missing, ", "), cfg.Target())
	}
	return buildEngine(cfg, provider, log)
}

func buildEngine(cfg config.Config, provider *platform.Provider, log *zap.Logger) (*engine, error) {
	patterns, err := pattern.Open(cfg.Patterns().Dir, cfg.Target(), cfg.Patterns().Similarity)
	if err != nil {
		return nil, err
	}
	opts, err := action.ScreenOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = log

	if cfg.Diag().Enabled {
		rec, err := diag.NewRecorder(provider.Screenshotter, provider.Matcher.ScreenBounds, cfg.Diag().Dir, log.Named("diag"))
		if err != nil {
			// run without timeout screenshots
			log.Warn("timeout screenshots disabled", zap.Error(err))
		} else {
			opts.Recorder = rec
		}
	}

	return wireEngine(provider, action.New(cfg, screen.New(provider, opts), patterns, log), log), nil
}

// wireEngine stacks the recovery controller and the preference reader on
// actions.
func wireEngine(provider *platform.Provider, actions *action.Orchestrator, log *zap.Logger) *engine {
	return &engine{
		provider: provider,
		actions:  actions,
		recovery: recovery.New(actions, provider.Launcher, log),
		prefs:    prefs.New(actions, log),
	}
}

// pattern resolves a catalog name, applying an optional similarity.
func (e *engine) pattern(name string, similarity float64) (pattern.Pattern, error) {
	p, err := e.actions.Pattern(name)
	if err != nil {
		return pattern.Pattern{}, err
	}
	if similarity > 0 {
		p = p.Similar(similarity)
	}
	return p, nil
}
