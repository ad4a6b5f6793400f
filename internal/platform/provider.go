package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles the automation substrate backends for the current OS.
// Matcher and Inputter come from the embedding automation library; the
// clipboard backends in this module register themselves for darwin and linux.
type Provider struct {
	Matcher          Matcher
	Inputter         Inputter
	ClipboardManager ClipboardManager
	Screenshotter    Screenshotter
	Launcher         Launcher
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("patternpilot is not supported on %s/%s; supported: darwin, linux, windows", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/darwin/init.go for the macOS registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Missing lists the backends required for driving the browser that p lacks.
func (p *Provider) Missing() []string {
	var missing []string
	if p.Matcher == nil {
		missing = append(missing, "pattern matcher")
	}
	if p.Inputter == nil {
		missing = append(missing, "input simulation")
	}
	if p.ClipboardManager == nil {
		missing = append(missing, "clipboard")
	}
	return missing
}

// Register layers fill on top of whatever NewProviderFunc currently builds.
// Substrate packages call it from init() to contribute the backends they own.
func Register(fill func(*Provider) error) {
	prev := NewProviderFunc
	NewProviderFunc = func() (*Provider, error) {
		p := &Provider{}
		if prev != nil {
			base, err := prev()
			if err != nil {
				return nil, err
			}
			p = base
		}
		if err := fill(p); err != nil {
			return nil, err
		}
		return p, nil
	}
}
