// Package action composes screen primitives into named browser interactions.
// Every action locates what it needs, acts, and optionally verifies, and
// fails with an *outcome.Error naming the action and the pattern involved.
package action

import (
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/config"
	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/platform"
	"github.com/mj1618/patternpilot/internal/screen"
)

// Orchestrator runs interactions against one browser window. It is not safe
// for concurrent use: every action assumes it owns the keyboard, mouse and
// clipboard until it returns.
type Orchestrator struct {
	cfg      config.Config
	screen   *screen.Screen
	patterns *pattern.Registry
	log      *zap.Logger
}

// New builds an Orchestrator. The platform is read from cfg only.
func New(cfg config.Config, s *screen.Screen, patterns *pattern.Registry, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{cfg: cfg, screen: s, patterns: patterns, log: log.Named("action")}
}

// ScreenOptions derives the screen engine settings for cfg's platform.
func ScreenOptions(cfg config.Config) (screen.Options, error) {
	mod, err := lookup("main modifier", mainModifiers, cfg.Target())
	if err != nil {
		return screen.Options{}, err
	}
	return screen.Options{
		PollInterval: cfg.Timing().PollInterval,
		AnchorWait:   cfg.Timing().AnchorWait,
		Similarity:   cfg.Patterns().Similarity,
		MainModifier: mod,
	}, nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() config.Config { return o.cfg }

// Screen returns the underlying screen engine.
func (o *Orchestrator) Screen() *screen.Screen { return o.screen }

// Logger returns the orchestrator's logger.
func (o *Orchestrator) Logger() *zap.Logger { return o.log }

// Pattern resolves a catalog name for the running platform.
func (o *Orchestrator) Pattern(name string) (pattern.Pattern, error) {
	return o.patterns.Get(name)
}

func (o *Orchestrator) patternFor(action, name string) (pattern.Pattern, error) {
	p, err := o.patterns.Get(name)
	if err != nil {
		return pattern.Pattern{}, outcome.Wrap(err, action, "template is missing from the catalog")
	}
	return p, nil
}

// table maps a platform variant ("mac", "win7", "windows", "linux") to the
// behaviour of one action on that platform.
type table[T any] map[string]T

// lookup returns the row for target, trying the variant before the OS. A
// missing row is an AmbiguousPrecondition: the action is not defined there.
func lookup[T any](action string, t table[T], target platform.Target) (T, error) {
	if row, ok := t[target.Variant()]; ok {
		return row, nil
	}
	if row, ok := t[string(target.OS)]; ok {
		return row, nil
	}
	var zero T
	return zero, outcome.NewAmbiguous(action, "not defined for %s", target)
}

// dismissOnError presses ESC when *err is set, closing whatever transient
// surface the failing action had opened.
func (o *Orchestrator) dismissOnError(action string, err *error) {
	if *err == nil {
		return
	}
	if escErr := o.screen.Press(platform.KeyEscape); escErr != nil {
		o.log.Warn("failed to dismiss surface after error",
			zap.String("action", action),
			zap.Error(escErr))
	}
}

// pressN presses key n times.
func (o *Orchestrator) pressN(key platform.Key, n int) error {
	for i := 0; i < n; i++ {
		if err := o.screen.Press(key); err != nil {
			return err
		}
	}
	return nil
}
