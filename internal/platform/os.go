package platform

import (
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// OS is the execution context a run targets. It is read once at startup and
// never changes afterwards.
type OS string

const (
	Mac     OS = "mac"
	Windows OS = "windows"
	Linux   OS = "linux"
)

// ParseOS converts a config or flag value to OS. GOOS spellings are accepted.
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "darwin", "osx", "macos":
		return Mac, nil
	case "windows", "win":
		return Windows, nil
	case "linux":
		return Linux, nil
	default:
		return "", fmt.Errorf("unknown platform: %q (expected mac, windows, or linux)", s)
	}
}

// Target is the platform plus the OS version string. Version matters only
// where an interaction differs between releases of the same OS (Windows 7).
type Target struct {
	OS      OS
	Version string
}

// Variant names the row a platform table should use: "mac", "win7",
// "windows" or "linux".
func (t Target) Variant() string {
	if t.OS == Windows && t.Version == "win7" {
		return "win7"
	}
	return string(t.OS)
}

func (t Target) String() string {
	if t.Version == "" {
		return string(t.OS)
	}
	return fmt.Sprintf("%s (%s)", t.OS, t.Version)
}

// versionCommand returns the OS version string. Tests replace it.
var versionCommand = func(goos string) (string, error) {
	var out []byte
	var err error
	switch goos {
	case "darwin":
		out, err = exec.Command("sw_vers", "-productVersion").Output()
	case "windows":
		out, err = exec.Command("cmd", "/c", "ver").Output()
	default:
		out, err = exec.Command("uname", "-r").Output()
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

var windowsVersionRe = regexp.MustCompile(`(\d+)\.(\d+)\.\d+`)

// windowsVersionName maps the NT kernel version reported by `ver` to the
// release names interactions are keyed on.
func windowsVersionName(raw string) string {
	m := windowsVersionRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	switch m[1] + "." + m[2] {
	case "6.1":
		return "win7"
	case "6.2", "6.3":
		return "win8"
	case "10.0":
		return "win10"
	default:
		return raw
	}
}

// Detect returns the Target for the running machine. A failed version probe
// leaves Version empty rather than failing detection.
func Detect() (Target, error) {
	current, err := ParseOS(runtime.GOOS)
	if err != nil {
		return Target{}, ErrUnsupported
	}
	t := Target{OS: current}
	if raw, err := versionCommand(runtime.GOOS); err == nil {
		t.Version = raw
		if current == Windows {
			t.Version = windowsVersionName(raw)
		}
	}
	return t, nil
}
