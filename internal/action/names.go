package action

// Template names in the pattern catalog. The registry resolves each one to
// the image for the running platform.
const (
	HomeButton        = "home_button.png"
	HamburgerMenu     = "hamburger_menu.png"
	LibraryMenu       = "library_menu.png"
	ShowHistoryButton = "show_history_button.png"
	ViewMenu          = "view_menu.png"

	HamburgerQuit = "quit.png"
	HamburgerHelp = "help.png"
	HamburgerExit = "exit.png"

	LibraryBookmarks = "library_bookmarks.png"
	BookmarkingTools = "bookmarking_tools.png"

	CancelButton           = "cancel_button.png"
	CustomizeDoneButton    = "customize_done_button.png"
	CloseAllTabsButton     = "close_all_tabs_button.png"
	DontSavePasswordButton = "dont_save_password_button.png"
	ZoomControlDecrease    = "zoom_control_toolbar_decrease.png"
	RemoveFromToolbar      = "remove_from_toolbar.png"

	WindowControls       = "auxiliary_window_controls.png"
	UnhoveredRedControl  = "unhovered_red_control.png"
	HoveredRedButton     = "hovered_red_button.png"
	WindowCloseButton    = "auxiliary_window_close_button.png"
	WindowMaximizeButton = "auxiliary_window_maximize.png"
	WindowMinimizeButton = "auxiliary_window_minimize.png"
	WindowZoomRestore    = "minimize_full_screen_auxiliary_window.png"

	MainMenuWindow        = "main_menu_window.png"
	TaskbarBrowser        = "taskbar_browser.png"
	TaskbarBrowserLibrary = "taskbar_browser_library.png"
)
