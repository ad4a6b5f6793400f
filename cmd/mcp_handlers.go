package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/output"
	"github.com/mj1618/patternpilot/internal/pattern"
)

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// run locks the engine, executes fn and turns its result or error into a
// tool result. Engine failures are tool errors, not protocol errors.
func (s *mcpServer) run(fn func(*engine) (interface{}, error)) (*mcp.CallToolResult, error) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	result, err := fn(s.engine)
	if err != nil {
		return mcp.NewToolResultError(resultToText(output.NewErrorResult(err))), nil
	}
	return mcp.NewToolResultText(resultToText(result)), nil
}

func requireParam(params map[string]interface{}, key string) (string, error) {
	v := stringParam(params, key, "")
	if v == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return v, nil
}

func (s *mcpServer) handleWait(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name, err := requireParam(params, "pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := waitRequest{
		Pattern:    name,
		Similarity: floatParam(params, "similarity", 0),
		Gone:       boolParam(params, "gone", false),
		Timeout:    time.Duration(floatParam(params, "timeout", 10) * float64(time.Second)),
		Region:     stringParam(params, "region", ""),
	}
	return s.run(func(e *engine) (interface{}, error) {
		return e.wait(req)
	})
}

func (s *mcpServer) handlePrefGet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireParam(request.GetArguments(), "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func(e *engine) (interface{}, error) {
		value, err := e.prefs.Get(name)
		return output.PrefResult{Name: name, Value: value}, err
	})
}

func (s *mcpServer) handlePrefSet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	name, err := requireParam(params, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, ok := params["value"].(string)
	if !ok {
		return mcp.NewToolResultError(`missing required parameter "value"`), nil
	}
	return s.run(func(e *engine) (interface{}, error) {
		res, err := e.prefs.Set(name, value)
		return output.PrefResult{Name: name, Value: value, Result: string(res)}, err
	})
}

func (s *mcpServer) handleInfo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field := stringParam(request.GetArguments(), "field", "")
	return s.run(func(e *engine) (interface{}, error) {
		if get, ok := infoFields[field]; ok {
			value, err := get(e.prefs)
			return output.InfoResult{Field: field, Value: value}, err
		}
		if dump, ok := infoDumps[field]; ok {
			return dump(e.prefs)
		}
		return nil, fmt.Errorf("unknown info field %q", field)
	})
}

func (s *mcpServer) handleQuit(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func(e *engine) (interface{}, error) {
		r, err := e.recovery.Quit()
		return RecoveryResult{Action: "quit", OK: err == nil, Final: string(r.Final()), Report: &r}, err
	})
}

func (s *mcpServer) handleRestart(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	checkName := stringParam(params, "check", "")
	similarity := floatParam(params, "similarity", 0)
	return s.run(func(e *engine) (interface{}, error) {
		var check *pattern.Pattern
		if checkName != "" {
			p, err := e.pattern(checkName, similarity)
			if err != nil {
				return nil, err
			}
			check = &p
		}
		r, err := e.recovery.Restart(check)
		return RecoveryResult{Action: "restart", OK: err == nil, Final: string(r.Final()), Report: &r}, err
	})
}

func (s *mcpServer) handleWaitRestart(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func(e *engine) (interface{}, error) {
		err := e.recovery.WaitForRestart()
		return RecoveryResult{Action: "wait-restart", OK: err == nil}, err
	})
}

func (s *mcpServer) handleConfirmLaunch(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func(e *engine) (interface{}, error) {
		err := e.recovery.ConfirmLaunch()
		return RecoveryResult{Action: "confirm-launch", OK: err == nil}, err
	})
}

func (s *mcpServer) handleCrashReporter(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func(e *engine) (interface{}, error) {
		state, err := e.recovery.DismissCrashReporter()
		return RecoveryResult{Action: "crash-reporter", OK: err == nil, Crash: string(state)}, err
	})
}

func (s *mcpServer) handleMenu(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	menu := stringParam(params, "menu", "")
	optionName, err := requireParam(params, "option")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var opts []action.ChoiceOption
	if boolParam(params, "verify", false) {
		opts = append(opts, action.VerifyGone())
	}
	return s.run(func(e *engine) (interface{}, error) {
		option, err := e.pattern(optionName, 0)
		if err != nil {
			return nil, err
		}
		switch menu {
		case "hamburger":
			r, err := e.actions.OpenHamburgerMenuOption(option, opts...)
			if err != nil {
				return nil, err
			}
			return regionResult("hamburger menu", r), nil
		case "library":
			r, err := e.actions.OpenLibraryMenu(option, opts...)
			if err != nil {
				return nil, err
			}
			return regionResult("library menu", r), nil
		case "bookmarking":
			if err := e.actions.AccessBookmarkingTools(option); err != nil {
				return nil, err
			}
			return output.ActionResult{Action: "bookmarking tools", OK: true, Detail: optionName}, nil
		default:
			return nil, fmt.Errorf("unknown menu %q (want hamburger, library or bookmarking)", menu)
		}
	})
}

func (s *mcpServer) handleZoomMenu(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringParam(request.GetArguments(), "option", "")
	opt, err := parseOption("zoom", zoomOptions, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func(e *engine) (interface{}, error) {
		if err := e.actions.SelectZoomMenuOption(opt); err != nil {
			return nil, err
		}
		return output.ActionResult{Action: "zoom menu", OK: true, Detail: name}, nil
	})
}

func (s *mcpServer) handleDialog(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringParam(request.GetArguments(), "name", "")
	run, err := parseOption("dialog", dialogActions, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.run(func(e *engine) (interface{}, error) {
		if err := run(e.actions); err != nil {
			return nil, err
		}
		return output.ActionResult{Action: "dialog", OK: true, Detail: name}, nil
	})
}

func (s *mcpServer) handleWindow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	control := stringParam(params, "control", "")
	restore := boolParam(params, "restore", false)
	library := boolParam(params, "library", false)
	focus := boolParam(params, "focus", false)
	resetMouse := boolParam(params, "reset_mouse", false)
	if control == "" && !restore && !focus && !resetMouse {
		return mcp.NewToolResultError("specify control, restore, focus or reset_mouse"), nil
	}

	return s.run(func(e *engine) (interface{}, error) {
		var done []string
		if restore {
			option := ""
			if library {
				option = action.TaskbarLibrary
			}
			if err := e.actions.RestoreWindowFromTaskbar(option); err != nil {
				return nil, err
			}
			done = append(done, "restore")
		}
		if control != "" {
			if err := e.actions.ClickAuxiliaryWindowControl(control); err != nil {
				return nil, err
			}
			done = append(done, control)
		}
		if focus {
			if err := e.actions.RestoreFocus(); err != nil {
				return nil, err
			}
			done = append(done, "focus")
		}
		if resetMouse {
			if err := e.actions.ResetMouse(); err != nil {
				return nil, err
			}
			done = append(done, "reset_mouse")
		}
		return output.ActionResult{Action: "window", OK: true, Detail: strings.Join(done, ",")}, nil
	})
}

func (s *mcpServer) handleNavigate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	url, err := requireParam(params, "url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slow := boolParam(params, "slow", false)
	newTab := boolParam(params, "new_tab", false)
	return s.run(func(e *engine) (interface{}, error) {
		if newTab {
			if err := e.actions.NewTab(); err != nil {
				return nil, err
			}
		}
		navigate := e.actions.Navigate
		if slow {
			navigate = e.actions.NavigateSlow
		}
		if err := navigate(url); err != nil {
			return nil, err
		}
		return output.ActionResult{Action: "navigate", OK: true, Detail: url}, nil
	})
}

func (s *mcpServer) handleCopy(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.run(func(e *engine) (interface{}, error) {
		text, err := e.actions.CopyToClipboard()
		if err != nil {
			return nil, err
		}
		return output.ActionResult{Action: "copy", OK: true, Detail: text}, nil
	})
}
