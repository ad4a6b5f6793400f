package output

import (
	"errors"

	"github.com/mj1618/patternpilot/internal/outcome"
	"github.com/mj1618/patternpilot/internal/platform"
)

// PrefResult is the output of `pref get` and `pref set`.
type PrefResult struct {
	Name   string `yaml:"name"             json:"name"`
	Value  string `yaml:"value"            json:"value"`
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
}

// InfoResult is the output of the `info` scalar subcommands.
type InfoResult struct {
	Field string `yaml:"field" json:"field"`
	Value string `yaml:"value" json:"value"`
}

// ActionResult reports a UI action that has nothing else to return.
type ActionResult struct {
	Action string           `yaml:"action"           json:"action"`
	OK     bool             `yaml:"ok"               json:"ok"`
	Region *platform.Bounds `yaml:"region,omitempty" json:"region,omitempty"`
	Detail string           `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// ErrorResult is printed in place of a result when a command fails.
type ErrorResult struct {
	Error   string `yaml:"error"             json:"error"`
	Kind    string `yaml:"kind,omitempty"    json:"kind,omitempty"`
	Action  string `yaml:"action,omitempty"  json:"action,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// NewErrorResult describes err, keeping its outcome tags when it has them.
func NewErrorResult(err error) ErrorResult {
	res := ErrorResult{Error: err.Error()}
	var e *outcome.Error
	if errors.As(err, &e) {
		res.Kind = string(e.Kind)
		res.Action = e.Action
		res.Pattern = e.Pattern
	}
	return res
}
