package main

import "math"

// Pure coordinate-space math for the viewer. No state lives here; every
// function maps inputs to outputs and every zoom it returns is clamped to
// [MinZoom, MaxZoom].
//
// Convention shared by the transform and the functions below: an image is
// drawn scaled by zoom and centered at the viewport center offset by
// (PanX, PanY) screen pixels; cursor coordinates are viewport-relative.
// The image point under a viewport position p is therefore (p - pan) / zoom.

// ZoomDirection selects step direction for keyed zoom.
type ZoomDirection int

const (
	ZoomDirectionIn ZoomDirection = iota
	ZoomDirectionOut
)

// StepModifier selects the speed variant of a keyed zoom or pan step.
type StepModifier int

const (
	ModifierNone StepModifier = iota
	ModifierShift
	ModifierPlatform
	ModifierShiftPlatform
)

// PanDirection selects the axis and sign of a keyed pan step.
type PanDirection int

const (
	PanUp PanDirection = iota
	PanDown
	PanLeft
	PanRight
)

// PanSpeeds carries the keyed pan magnitudes in pixels.
type PanSpeeds struct {
	Normal float64
	Fast   float64
	Slow   float64
}

// DefaultPanSpeeds are the stock magnitudes: 10px, shift 3x, platform 0.3x.
func DefaultPanSpeeds() PanSpeeds {
	return PanSpeeds{Normal: 10, Fast: 30, Slow: 3}
}

const (
	shiftZoomFactor    = 1.5
	platformZoomFactor = 1.05
	fineZoomFraction   = 0.01 // shift+platform: additive 1% of current
	dragZoomFraction   = 0.01 // zoom change per pixel of drag
)

// ClampZoom forces z into the hard zoom invariant [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return clampFloat(z, MinZoom, MaxZoom)
}

// FitToWindowZoom returns the zoom at which the image's larger relative
// dimension exactly fills the viewport.
func FitToWindowZoom(imageW, imageH, viewportW, viewportH float64) float64 {
	if imageW <= 0 || imageH <= 0 || viewportW <= 0 || viewportH <= 0 {
		return 1.0
	}
	return ClampZoom(math.Min(viewportW/imageW, viewportH/imageH))
}

// StepZoom applies one keyed zoom step. The modifier picks the factor:
// none uses stepFactor (1.2 stock), shift 1.5, platform 1.05, and
// shift+platform adjusts additively by 1% of the current zoom.
func StepZoom(current float64, dir ZoomDirection, mod StepModifier, stepFactor float64) float64 {
	if stepFactor <= 1.0 {
		stepFactor = 1.2
	}
	if mod == ModifierShiftPlatform {
		delta := current * fineZoomFraction
		if dir == ZoomDirectionOut {
			delta = -delta
		}
		return ClampZoom(current + delta)
	}

	factor := stepFactor
	switch mod {
	case ModifierShift:
		factor = shiftZoomFactor
	case ModifierPlatform:
		factor = platformZoomFactor
	}
	if dir == ZoomDirectionOut {
		return ClampZoom(current / factor)
	}
	return ClampZoom(current * factor)
}

// WheelZoom applies factor^notches to the current zoom. Notches may be
// negative (wheel down) or fractional (high-resolution wheels).
func WheelZoom(current, notches, factor float64) float64 {
	if factor <= 1.0 {
		factor = 1.1
	}
	return ClampZoom(current * math.Pow(factor, notches))
}

// CursorCenteredZoom solves for the pan that keeps the image point under the
// cursor stationary across a zoom change:
//
//	newPan = cursor - (cursor - oldPan) * (newZoom / currentZoom)
func CursorCenteredZoom(currentZoom, newZoom, cursorX, cursorY, oldPanX, oldPanY float64) (float64, float64) {
	if currentZoom == 0 {
		return oldPanX, oldPanY
	}
	ratio := newZoom / currentZoom
	newPanX := cursorX - (cursorX-oldPanX)*ratio
	newPanY := cursorY - (cursorY-oldPanY)*ratio
	return newPanX, newPanY
}

// DragZoomDelta scales the current zoom by the incremental pointer movement
// since the last sample. Sensitivity grows with the zoom level so drag zoom
// feels uniform; feeding total drag distance here would run away, so callers
// must pass frame-to-frame deltas.
func DragZoomDelta(deltaPx, currentZoom float64) float64 {
	return ClampZoom(currentZoom * (1 + deltaPx*dragZoomFraction))
}

// PanStep returns the pan delta for one keyed step in the given direction.
func PanStep(dir PanDirection, mod StepModifier, speeds PanSpeeds) (float64, float64) {
	magnitude := speeds.Normal
	switch mod {
	case ModifierShift:
		magnitude = speeds.Fast
	case ModifierPlatform, ModifierShiftPlatform:
		magnitude = speeds.Slow
	}

	switch dir {
	case PanUp:
		return 0, magnitude
	case PanDown:
		return 0, -magnitude
	case PanLeft:
		return magnitude, 0
	case PanRight:
		return -magnitude, 0
	}
	return 0, 0
}

// ConstrainPan clamps the pan so that at least min(10% of the scaled image
// extent, 50px) of the image stays inside the viewport on each axis. Axes
// are clamped independently.
func ConstrainPan(panX, panY, zoom, imageW, imageH, viewportW, viewportH float64) (float64, float64) {
	return constrainPanAxis(panX, zoom, imageW, viewportW),
		constrainPanAxis(panY, zoom, imageH, viewportH)
}

func constrainPanAxis(pan, zoom, imageDim, viewportDim float64) float64 {
	scaled := imageDim * zoom
	minVisible := math.Min(scaled*0.1, 50)
	// The image spans [vc+pan-scaled/2, vc+pan+scaled/2]; keeping minVisible
	// inside the viewport bounds |pan| by this limit.
	limit := viewportDim/2 + scaled/2 - minVisible
	if limit < 0 {
		limit = 0
	}
	return clampFloat(pan, -limit, limit)
}
