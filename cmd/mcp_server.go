package cmd

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// mcpServer wraps the MCP server with the engine it drives.
type mcpServer struct {
	engine   *engine
	engineMu sync.Mutex
	mcp      *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer creates and configures an MCP server with all patternpilot
// tools.
func newMCPServer(e *engine) *mcpServer {
	s := &mcpServer{engine: e}
	s.mcp = mcpserver.NewMCPServer(
		"patternpilot",
		Version,
	)
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// wait
	s.mcp.AddTool(
		mcp.NewTool("wait",
			mcp.WithDescription("Wait until an image pattern appears on screen, or with gone=true until it vanishes"),
			mcp.WithString("pattern", mcp.Description("Pattern file name from the catalog, e.g. 'home_button.png'"), mcp.Required()),
			mcp.WithBoolean("gone", mcp.Description("Wait for the pattern to vanish instead")),
			mcp.WithNumber("timeout", mcp.Description("Max seconds to wait (default 10)")),
			mcp.WithNumber("similarity", mcp.Description("Match similarity between 0 and 1 (default: catalog setting)")),
			mcp.WithString("region", mcp.Description("Limit the search to 'x,y,w,h'")),
		),
		s.handleWait,
	)

	// pref_get
	s.mcp.AddTool(
		mcp.NewTool("pref_get",
			mcp.WithDescription("Read a browser preference through about:config"),
			mcp.WithString("name", mcp.Description("Preference name, e.g. 'browser.startup.page'"), mcp.Required()),
		),
		s.handlePrefGet,
	)

	// pref_set
	s.mcp.AddTool(
		mcp.NewTool("pref_set",
			mcp.WithDescription("Change a browser preference through about:config. Boolean preferences are toggled."),
			mcp.WithString("name", mcp.Description("Preference name"), mcp.Required()),
			mcp.WithString("value", mcp.Description("New value"), mcp.Required()),
		),
		s.handlePrefSet,
	)

	// info
	s.mcp.AddTool(
		mcp.NewTool("info",
			mcp.WithDescription("Report browser version, build id, channel, locale, or the raw about:support / about:telemetry data"),
			mcp.WithString("field", mcp.Description("One of: build-id, channel, locale, support, telemetry, version"), mcp.Required()),
		),
		s.handleInfo,
	)

	// quit
	s.mcp.AddTool(
		mcp.NewTool("quit",
			mcp.WithDescription("Quit the browser and confirm it went away. Escalates at most once and dismisses a crash reporter."),
		),
		s.handleQuit,
	)

	// restart
	s.mcp.AddTool(
		mcp.NewTool("restart",
			mcp.WithDescription("Quit the browser, launch it again and wait for it to come back"),
			mcp.WithString("check", mcp.Description("Pattern that proves the browser is back (default: home button)")),
			mcp.WithNumber("similarity", mcp.Description("Similarity for the check pattern")),
		),
		s.handleRestart,
	)

	// wait_restart
	s.mcp.AddTool(
		mcp.NewTool("wait_restart",
			mcp.WithDescription("Follow a restart the browser does on its own: wait for it to close and come back"),
		),
		s.handleWaitRestart,
	)

	// confirm_launch
	s.mcp.AddTool(
		mcp.NewTool("confirm_launch",
			mcp.WithDescription("Wait for the launch page to show up"),
		),
		s.handleConfirmLaunch,
	)

	// crash_reporter
	s.mcp.AddTool(
		mcp.NewTool("crash_reporter",
			mcp.WithDescription("Dismiss the crash reporter if it is showing"),
		),
		s.handleCrashReporter,
	)

	// menu
	s.mcp.AddTool(
		mcp.NewTool("menu",
			mcp.WithDescription("Open the hamburger menu, the library menu or Library > Bookmarking Tools and click an entry"),
			mcp.WithString("menu", mcp.Description("One of: hamburger, library, bookmarking"), mcp.Required()),
			mcp.WithString("option", mcp.Description("Pattern of the entry to click"), mcp.Required()),
			mcp.WithBoolean("verify", mcp.Description("Hamburger and library only: fail unless the entry disappears after the click")),
		),
		s.handleMenu,
	)

	// zoom_menu
	s.mcp.AddTool(
		mcp.NewTool("zoom_menu",
			mcp.WithDescription("Choose an entry of View > Zoom"),
			mcp.WithString("option", mcp.Description("One of: in, out, reset, text-only"), mcp.Required()),
		),
		s.handleZoomMenu,
	)

	// dialog
	s.mcp.AddTool(
		mcp.NewTool("dialog",
			mcp.WithDescription("Answer a browser dialog or prompt"),
			mcp.WithString("name", mcp.Description("One of: cancel, close-tabs, customize-done, dont-save-password, remove-zoom-indicator"), mcp.Required()),
		),
		s.handleDialog,
	)

	// window
	s.mcp.AddTool(
		mcp.NewTool("window",
			mcp.WithDescription("Operate the browser window: click a title bar button, restore it from the taskbar, refocus it or park the pointer"),
			mcp.WithString("control", mcp.Description("Title bar button: close, minimize, maximize, full_screen, zoom_restore")),
			mcp.WithBoolean("restore", mcp.Description("Restore the window from the taskbar or dock")),
			mcp.WithBoolean("library", mcp.Description("With restore: restore the Library window (Windows 7)")),
			mcp.WithBoolean("focus", mcp.Description("Give the window focus")),
			mcp.WithBoolean("reset_mouse", mcp.Description("Move the pointer to the top-left corner")),
		),
		s.handleWindow,
	)

	// navigate
	s.mcp.AddTool(
		mcp.NewTool("navigate",
			mcp.WithDescription("Load a URL in the current tab"),
			mcp.WithString("url", mcp.Description("URL to load"), mcp.Required()),
			mcp.WithBoolean("slow", mcp.Description("Type the URL instead of pasting it")),
			mcp.WithBoolean("new_tab", mcp.Description("Open a new tab first")),
		),
		s.handleNavigate,
	)

	// copy
	s.mcp.AddTool(
		mcp.NewTool("copy",
			mcp.WithDescription("Select everything in the focused field, copy it and return the text"),
		),
		s.handleCopy,
	)
}
