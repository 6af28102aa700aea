package main

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Common colors used in rendering
var (
	colorWhite   = color.RGBA{255, 255, 255, 255}
	bgColorLight = color.RGBA{0, 0, 0, 128}
)

const infoFontSize = 18.0

// Renderer draws the current image according to its ViewState. All layout
// decisions are already made by the engine; the renderer only applies the
// transform and overlays.
type Renderer struct {
	renderState RenderState
	fontSource  *text.GoTextFaceSource

	// Cached placeholders, regenerated when the path or reason changes
	placeholder     *ebiten.Image
	placeholderPath string
	placeholderErr  string
}

// NewRenderer creates a new Renderer
func NewRenderer(renderState RenderState) *Renderer {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Fatal(err)
	}
	return &Renderer{
		renderState: renderState,
		fontSource:  s,
	}
}

// Draw renders the entire screen
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Clear()

	content := r.renderState.GetDisplayContent()
	if content == nil {
		return
	}

	img := content.Image
	if img == nil {
		img = r.placeholderFor(content)
	}
	if img != nil {
		r.drawImageTransformed(screen, img, content.State)
	}

	if r.renderState.IsShowingInfo() {
		r.drawInfoDisplay(screen, content)
	}
	if r.renderState.IsShowingHelp() {
		r.drawHelpOverlay(screen)
	}
}

// placeholderFor returns the loading or error placeholder for the current
// content, reusing the cached texture while path and reason are unchanged.
func (r *Renderer) placeholderFor(content *DisplayContent) *ebiten.Image {
	reason := ""
	if content.Err != nil {
		reason = content.Err.Error()
	} else if !content.Loading {
		return nil
	}

	if r.placeholder != nil && r.placeholderPath == content.Path && r.placeholderErr == reason {
		return r.placeholder
	}
	if r.placeholder != nil {
		r.placeholder.Deallocate()
	}

	if content.Err != nil {
		r.placeholder = CreateErrorImage(400, 300, content.Path, reason)
	} else {
		r.placeholder = CreateLoadingImage(400, 300, content.Path)
	}
	r.placeholderPath = content.Path
	r.placeholderErr = reason
	return r.placeholder
}

// drawImageTransformed applies the ViewState transform: fit-to-window
// scaling, or manual zoom with the pan offset measured from the viewport
// center and constrained so part of the image stays visible.
func (r *Renderer) drawImageTransformed(screen *ebiten.Image, img *ebiten.Image, state ViewState) {
	iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	var scale, panX, panY float64
	if state.FitToWindow {
		scale = FitToWindowZoom(iw, ih, w, h)
	} else {
		scale = ClampZoom(state.Zoom)
		panX, panY = ConstrainPan(state.PanX, state.PanY, scale, iw, ih, w, h)
	}

	sw, sh := iw*scale, ih*scale

	if state.FiltersEnabled && (state.Brightness != 0 || state.Contrast != 0) {
		op := &colorm.DrawImageOptions{}
		op.Filter = ebiten.FilterLinear
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(w/2-sw/2+panX, h/2-sh/2+panY)

		var c colorm.ColorM
		// Contrast scales around mid-gray, brightness offsets all channels.
		s := 1 + state.Contrast/100
		c.Scale(s, s, s, 1)
		offset := state.Brightness/200 + 0.5*(1-s)
		c.Translate(offset, offset, offset, 0)

		colorm.DrawImage(screen, img, c, op)
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(w/2-sw/2+panX, h/2-sh/2+panY)

	screen.DrawImage(img, op)
}

func (r *Renderer) drawInfoDisplay(screen *ebiten.Image, content *DisplayContent) {
	infoFont := &text.GoTextFace{
		Source: r.fontSource,
		Size:   infoFontSize,
	}

	infoText := r.buildInfoString(content)

	textWidth, textHeight := text.Measure(infoText, infoFont, 0)

	// Bottom right corner
	padding := 10.0
	textX := float64(screen.Bounds().Dx()) - textWidth - padding
	textY := float64(screen.Bounds().Dy()) - textHeight - padding

	bgPadding := 5.0
	DrawFilledRect(screen, textX-bgPadding, textY-bgPadding,
		textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)

	DrawText(screen, infoText, infoFont, textX, textY, colorWhite)
}

// drawHelpOverlay lists every action with its active bindings, top-left.
func (r *Renderer) drawHelpOverlay(screen *ebiten.Image) {
	helpFont := &text.GoTextFace{
		Source: r.fontSource,
		Size:   infoFontSize,
	}
	lineSpacing := infoFontSize * 1.4

	helpText := r.buildHelpText()
	textWidth, textHeight := text.Measure(helpText, helpFont, lineSpacing)

	padding := 10.0
	bgPadding := 5.0
	DrawFilledRect(screen, padding-bgPadding, padding-bgPadding,
		textWidth+bgPadding*2, textHeight+bgPadding*2, bgColorLight)

	op := &text.DrawOptions{}
	op.GeoM.Translate(padding, padding)
	op.ColorScale.ScaleWithColor(colorWhite)
	op.LineSpacing = lineSpacing
	text.Draw(screen, helpText, helpFont, op)
}

// buildHelpText renders one line per action: the currently configured keys
// and the action's description.
func (r *Renderer) buildHelpText() string {
	descriptions := GetActionDescriptions()
	bindings := r.renderState.Keybindings()

	var b strings.Builder
	for _, def := range actionDefinitions {
		keys := bindings[def.Name]
		if len(keys) == 0 {
			keys = def.Keys
		}
		fmt.Fprintf(&b, "%-28s %s\n", strings.Join(keys, ", "), descriptions[def.Name])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) buildInfoString(content *DisplayContent) string {
	if content.PageCount == 0 {
		return "0 / 0"
	}

	zoomText := "fit"
	if !content.State.FitToWindow {
		zoomText = fmt.Sprintf("%.0f%%", content.State.Zoom*100)
	}

	s := fmt.Sprintf("%d / %d  [%s]  %s",
		content.PageIndex, content.PageCount, zoomText, r.renderState.SortMethodName())
	if content.State.FiltersEnabled {
		s += fmt.Sprintf("  B%+.0f C%+.0f G%.2f",
			content.State.Brightness, content.State.Contrast, content.State.Gamma)
	}
	if content.Loading {
		s += "  loading"
	}
	return s
}
