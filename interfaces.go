package main

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// DisplayContent is everything the renderer needs for one frame: the
// resident image (or nil while the decode is still in flight), the view
// state to apply, and the error descriptor when the load failed.
type DisplayContent struct {
	Image     *ebiten.Image
	State     ViewState
	Loading   bool
	Err       error
	Path      string
	PageIndex int // 1-based, 0 when the session is empty
	PageCount int
}

// RenderState provides read-only access to engine state for the renderer
type RenderState interface {
	GetDisplayContent() *DisplayContent
	IsShowingInfo() bool
	IsShowingHelp() bool
	IsFullscreen() bool
	SortMethodName() string
	Keybindings() map[string][]string
}

// InputActions provides the discrete operations the input layer dispatches
type InputActions interface {
	// Application control
	Exit()

	// Display toggles
	ToggleInfo()
	ToggleHelp()
	ToggleFullscreen()

	// Navigation
	NavigateNext()
	NavigatePrevious()
	JumpFirst()
	JumpLast()

	// Settings
	CycleSortMethod()
	ExpandToDirectory()

	// Zoom and pan
	ZoomReset()
	ZoomFit()
	StepZoomInput(dir ZoomDirection, mod StepModifier)
	WheelZoomInput(notches, cursorX, cursorY float64)
	PanInput(dir PanDirection, mod StepModifier)
	DragPan(deltaX, deltaY float64)
	DragZoomInput(deltaPx float64)

	// Filters
	ToggleFilters()
	BrightnessUp()
	BrightnessDown()
	ContrastUp()
	ContrastDown()
	GammaUp()
	GammaDown()

	// Animation
	TogglePlayback()
	NextFrame()
	PreviousFrame()
}
