//go:build darwin

package darwin

import "github.com/mj1618/patternpilot/internal/platform"

func init() {
	platform.Register(func(p *platform.Provider) error {
		if p.ClipboardManager == nil {
			p.ClipboardManager = NewClipboard()
		}
		return nil
	})
}
