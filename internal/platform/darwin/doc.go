//go:build darwin

// Package darwin provides the macOS clipboard backend using pbcopy/pbpaste.
// Pattern matching and input simulation are contributed by the automation
// substrate through platform.Register.
package darwin
