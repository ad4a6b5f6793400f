package platform

import (
	"fmt"
	"strings"
)

// Key is a named key understood by an Inputter.
type Key string

const (
	KeyEnter     Key = "enter"
	KeyEscape    Key = "esc"
	KeyTab       Key = "tab"
	KeySpace     Key = "space"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
	KeyAlt       Key = "alt"
	KeyF2        Key = "f2"
	KeyF3        Key = "f3"
	KeyF10       Key = "f10"
)

// Modifier is a key held while another key is pressed.
type Modifier string

const (
	ModCmd   Modifier = "cmd"
	ModCtrl  Modifier = "ctrl"
	ModAlt   Modifier = "alt"
	ModShift Modifier = "shift"
)

var modifierAliases = map[string]Modifier{
	"cmd": ModCmd, "command": ModCmd,
	"ctrl": ModCtrl, "control": ModCtrl,
	"alt": ModAlt, "opt": ModAlt, "option": ModAlt,
	"shift": ModShift,
}

var keyAliases = map[string]Key{
	"return": KeyEnter, "enter": KeyEnter,
	"escape": KeyEscape, "esc": KeyEscape,
	"tab": KeyTab, "space": KeySpace,
	"backspace": KeyBackspace, "delete": KeyDelete,
	"up": KeyUp, "down": KeyDown, "left": KeyLeft, "right": KeyRight,
	"home": KeyHome, "end": KeyEnd,
}

// Chord is a key plus the modifiers held while pressing it.
type Chord struct {
	Key  Key
	Mods []Modifier
}

func (c Chord) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, string(c.Key)), "+")
}

// ParseChord parses "cmd+shift+t" style combos. Single characters and
// function keys pass through as keys.
func ParseChord(s string) (Chord, error) {
	var c Chord
	found := false
	for _, part := range strings.Split(s, "+") {
		k := strings.ToLower(strings.TrimSpace(part))
		if k == "" {
			return Chord{}, fmt.Errorf("empty key in combo %q", s)
		}
		if mod, ok := modifierAliases[k]; ok {
			c.Mods = append(c.Mods, mod)
			continue
		}
		if found {
			return Chord{}, fmt.Errorf("combo %q names more than one key", s)
		}
		found = true
		if alias, ok := keyAliases[k]; ok {
			c.Key = alias
		} else if len(k) == 1 || (k[0] == 'f' && len(k) <= 3) {
			c.Key = Key(k)
		} else {
			return Chord{}, fmt.Errorf("unknown key: %q", k)
		}
	}
	if !found {
		return Chord{}, fmt.Errorf("no key specified in combo %q, only modifiers", s)
	}
	return c, nil
}

// MustChord is ParseChord for package-level tables.
func MustChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}
