package main

// ActionDefinition defines an action with its default keybindings and description
type ActionDefinition struct {
	Name        string
	Keys        []string
	Description string
}

// actionDefinitions contains all discrete actions with default keybindings.
// Zoom and pan steps are not listed here: their behavior depends on the held
// modifier, so the input handler dispatches them directly.
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"Escape", "KeyQ"}, "Quit application"},
	{"next", []string{"Space", "KeyN", "PageDown"}, "Next image"},
	{"previous", []string{"Backspace", "KeyP", "PageUp"}, "Previous image"},
	{"jump_first", []string{"Home"}, "Jump to first image"},
	{"jump_last", []string{"End"}, "Jump to last image"},
	{"cycle_sort", []string{"Shift+KeyS"}, "Cycle sort method (Alphabetical/Modified/Natural)"},
	{"expand_directory", []string{"KeyS"}, "Scan directory images (single file mode)"},
	{"fullscreen", []string{"Enter"}, "Toggle fullscreen"},
	{"info", []string{"KeyI"}, "Show/hide info display"},
	{"help", []string{"KeyH"}, "Show/hide keybinding help"},
	{"zoom_fit", []string{"KeyF"}, "Toggle fit to window mode"},
	{"zoom_reset", []string{"Key0"}, "Reset to 100% zoom"},
	{"toggle_filters", []string{"KeyE"}, "Enable/disable image filters"},
	{"brightness_up", []string{"KeyB"}, "Increase brightness"},
	{"brightness_down", []string{"Shift+KeyB"}, "Decrease brightness"},
	{"contrast_up", []string{"KeyC"}, "Increase contrast"},
	{"contrast_down", []string{"Shift+KeyC"}, "Decrease contrast"},
	{"gamma_up", []string{"KeyG"}, "Increase gamma"},
	{"gamma_down", []string{"Shift+KeyG"}, "Decrease gamma"},
	{"play_pause", []string{"KeyA"}, "Play/pause animation"},
	{"next_frame", []string{"Period"}, "Step one animation frame forward"},
	{"previous_frame", []string{"Comma"}, "Step one animation frame backward"},
}

// ActionExecutor provides centralized action execution logic so keyboard and
// any future binding source share a single dispatch table.
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "jump_first":
		inputActions.JumpFirst()
	case "jump_last":
		inputActions.JumpLast()
	case "cycle_sort":
		inputActions.CycleSortMethod()
	case "expand_directory":
		inputActions.ExpandToDirectory()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "info":
		inputActions.ToggleInfo()
	case "help":
		inputActions.ToggleHelp()
	case "zoom_fit":
		inputActions.ZoomFit()
	case "zoom_reset":
		inputActions.ZoomReset()
	case "toggle_filters":
		inputActions.ToggleFilters()
	case "brightness_up":
		inputActions.BrightnessUp()
	case "brightness_down":
		inputActions.BrightnessDown()
	case "contrast_up":
		inputActions.ContrastUp()
	case "contrast_down":
		inputActions.ContrastDown()
	case "gamma_up":
		inputActions.GammaUp()
	case "gamma_down":
		inputActions.GammaDown()
	case "play_pause":
		inputActions.TogglePlayback()
	case "next_frame":
		inputActions.NextFrame()
	case "previous_frame":
		inputActions.PreviousFrame()
	default:
		return false
	}
	return true
}

// globalActionExecutor is the shared ActionExecutor instance
var globalActionExecutor = NewActionExecutor()

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}
