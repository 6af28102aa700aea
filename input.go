package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler translates Ebiten input into engine operations. Discrete
// actions go through the keybinding manager; zoom and pan steps are handled
// directly because their behavior depends on the held modifier.
type InputHandler struct {
	inputActions      InputActions
	keybindingManager *KeybindingManager

	dragging     bool
	zoomDragging bool
	lastCursorX  int
	lastCursorY  int
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, keybindingManager *KeybindingManager) *InputHandler {
	return &InputHandler{
		inputActions:      inputActions,
		keybindingManager: keybindingManager,
	}
}

// HandleInput processes all input for the current frame.
// Returns true if any input was processed, false otherwise.
func (h *InputHandler) HandleInput() bool {
	inputProcessed := false

	inputProcessed = h.handleBoundActions() || inputProcessed
	inputProcessed = h.handleZoomKeys() || inputProcessed
	inputProcessed = h.handlePanKeys() || inputProcessed
	inputProcessed = h.handleWheel() || inputProcessed
	inputProcessed = h.handleDrag() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) handleBoundActions() bool {
	inputProcessed := false
	for _, def := range actionDefinitions {
		if h.keybindingManager.ExecuteAction(def.Name, h.inputActions) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

// currentStepModifier reads the held modifier combination for zoom/pan steps.
// Control is the platform modifier.
func currentStepModifier() StepModifier {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	platform := ebiten.IsKeyPressed(ebiten.KeyControl)
	switch {
	case shift && platform:
		return ModifierShiftPlatform
	case shift:
		return ModifierShift
	case platform:
		return ModifierPlatform
	default:
		return ModifierNone
	}
}

func (h *InputHandler) handleZoomKeys() bool {
	mod := currentStepModifier()
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		h.inputActions.StepZoomInput(ZoomDirectionIn, mod)
		return true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		h.inputActions.StepZoomInput(ZoomDirectionOut, mod)
		return true
	}
	return false
}

func (h *InputHandler) handlePanKeys() bool {
	mod := currentStepModifier()
	processed := false
	// Pan repeats while held, so this checks pressed state, not edges.
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		h.inputActions.PanInput(PanUp, mod)
		processed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		h.inputActions.PanInput(PanDown, mod)
		processed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		h.inputActions.PanInput(PanLeft, mod)
		processed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		h.inputActions.PanInput(PanRight, mod)
		processed = true
	}
	return processed
}

func (h *InputHandler) handleWheel() bool {
	_, wheelY := ebiten.Wheel()
	if wheelY == 0 {
		return false
	}

	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		cx, cy := ebiten.CursorPosition()
		h.inputActions.WheelZoomInput(wheelY, float64(cx), float64(cy))
		return true
	}

	// Plain wheel navigates
	if wheelY < 0 {
		h.inputActions.NavigateNext()
	} else {
		h.inputActions.NavigatePrevious()
	}
	return true
}

func (h *InputHandler) handleDrag() bool {
	cx, cy := ebiten.CursorPosition()
	processed := false

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		h.dragging = true
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		h.zoomDragging = true
	}

	if h.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		dx, dy := cx-h.lastCursorX, cy-h.lastCursorY
		if dx != 0 || dy != 0 {
			h.inputActions.DragPan(float64(dx), float64(dy))
			processed = true
		}
	} else {
		h.dragging = false
	}

	if h.zoomDragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		// Incremental vertical delta, not total drag distance: zoom must
		// stop changing when the pointer stops moving.
		dy := cy - h.lastCursorY
		if dy != 0 {
			h.inputActions.DragZoomInput(float64(-dy))
			processed = true
		}
	} else {
		h.zoomDragging = false
	}

	h.lastCursorX, h.lastCursorY = cx, cy
	return processed
}
