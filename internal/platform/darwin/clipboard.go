//go:build darwin

package darwin

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Clipboard implements platform.ClipboardManager on top of the pbcopy and
// pbpaste tools of the general pasteboard.
type Clipboard struct {
	copyBin  string
	pasteBin string
}

// NewClipboard returns a Clipboard that runs pbcopy and pbpaste from $PATH.
func NewClipboard() *Clipboard {
	return &Clipboard{copyBin: "pbcopy", pasteBin: "pbpaste"}
}

// GetText reads the pasteboard as plain text.
func (c *Clipboard) GetText() (string, error) {
	out, err := exec.Command(c.pasteBin, "-Prefer", "txt").Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.pasteBin, err)
	}
	return string(out), nil
}

// SetText replaces the pasteboard with text.
func (c *Clipboard) SetText(text string) error {
	return c.write(strings.NewReader(text))
}

// Clear empties the pasteboard.
func (c *Clipboard) Clear() error {
	return c.write(strings.NewReader(""))
}

func (c *Clipboard) write(r io.Reader) error {
	cmd := exec.Command(c.copyBin)
	cmd.Stdin = r
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.copyBin, err, strings.TrimSpace(string(out)))
	}
	return nil
}
