//go:build linux

// Package linux provides the X11 clipboard backend using xclip.
package linux

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/mj1618/patternpilot/internal/platform"
)

func init() {
	platform.Register(func(p *platform.Provider) error {
		if p.ClipboardManager == nil {
			p.ClipboardManager = NewClipboard()
		}
		return nil
	})
}

// Clipboard implements platform.ClipboardManager on top of xclip's
// CLIPBOARD selection.
type Clipboard struct {
	bin string
}

// NewClipboard returns a Clipboard that runs xclip from $PATH.
func NewClipboard() *Clipboard {
	return &Clipboard{bin: "xclip"}
}

// GetText reads the clipboard. An empty selection is reported as "" rather
// than as xclip's non-zero exit.
func (c *Clipboard) GetText() (string, error) {
	out, err := exec.Command(c.bin, "-selection", "clipboard", "-o").Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && strings.Contains(string(ee.Stderr), "target STRING not available") {
			return "", nil
		}
		return "", fmt.Errorf("xclip -o: %w", err)
	}
	return string(out), nil
}

// SetText writes text to the clipboard.
func (c *Clipboard) SetText(text string) error {
	return c.write(strings.NewReader(text))
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() error {
	return c.write(strings.NewReader(""))
}

func (c *Clipboard) write(r io.Reader) error {
	cmd := exec.Command(c.bin, "-selection", "clipboard", "-i")
	cmd.Stdin = r
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("xclip -i: %w", err)
	}
	return nil
}
