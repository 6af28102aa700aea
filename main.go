package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	brightnessStep = 5.0
	contrastStep   = 5.0
	gammaStep      = 0.1
)

// Game is the single-threaded control loop. It exclusively owns the session,
// the view-state cache, and the frame cache; the only concurrent work is
// decoding, which the loader hands back through Poll.
type Game struct {
	config     Config
	session    *SessionStore
	viewStates *ViewStateCache
	loader     *AsyncLoader
	resident   *ResidentCache
	scheduler  *PreloadScheduler

	keybindings  *KeybindingManager
	inputHandler *InputHandler
	renderer     *Renderer

	// State of the current image
	current    ViewState
	currentErr error

	// Animation state, nil when the current image is single-frame
	frameCache *FrameCache
	frameTex   *ebiten.Image // texture of the frame under the playhead
	nextTex    *ebiten.Image // texture kept resident for the next frame
	nextFrame  int

	showInfo   bool
	showHelp   bool
	fullscreen bool
	savedWinW  int
	savedWinH  int
	viewportW  int
	viewportH  int
}

// NewGame wires up the engine from a loaded configuration.
func NewGame(config Config) *Game {
	g := &Game{
		config:     config,
		session:    NewSessionStore(config.SortMethod),
		viewStates: NewViewStateCache(config.CacheCapacity),
		loader:     NewAsyncLoader(StdDecode, config.LoadWorkers),
		resident:   NewResidentCache(),
		current:    NewViewState(),
		fullscreen: config.Fullscreen,
		viewportW:  config.WindowWidth,
		viewportH:  config.WindowHeight,
	}
	g.scheduler = NewPreloadScheduler(g.session, g.loader, g.resident)
	g.scheduler.SetEnabled(config.PreloadEnabled)
	g.keybindings = NewKeybindingManager(config.Keybindings)
	g.inputHandler = NewInputHandler(g, g.keybindings)
	g.renderer = NewRenderer(g)
	return g
}

// LoadPaths replaces the session contents and arrives at the first image.
func (g *Game) LoadPaths(refs []ImageRef) error {
	if err := g.session.Load(refs); err != nil {
		return err
	}
	g.arrive()
	return nil
}

// currentPath returns the path of the current image, or "" when empty.
func (g *Game) currentPath() string {
	ref, ok := g.session.Current()
	if !ok {
		return ""
	}
	return ref.Path
}

// navigate saves the outgoing view state, moves the session pointer, and
// restores (or defaults) the incoming one.
func (g *Game) navigate(move func()) {
	before := g.currentPath()
	g.saveCurrentState()
	move()
	if g.currentPath() != before {
		g.arrive()
	}
}

// saveCurrentState writes the working copy back into the cache, including
// the animation position owned by the frame cache.
func (g *Game) saveCurrentState() {
	path := g.currentPath()
	if path == "" {
		return
	}
	g.syncAnimationState()
	g.viewStates.Put(path, g.current)
}

func (g *Game) syncAnimationState() {
	if g.frameCache != nil {
		g.current.CurrentFrame = g.frameCache.CurrentFrame()
		g.current.Playing = g.frameCache.Playing()
	}
}

// arrive makes the session's current image the displayed one: restores its
// view state and requests a decode unless it is already resident.
func (g *Game) arrive() {
	g.discardAnimation()
	g.currentErr = nil

	ref, ok := g.session.Current()
	if !ok {
		return
	}
	g.current = g.viewStates.GetOrDefault(ref.Path)

	// Animated images always need the full frame data, which only a fresh
	// decode provides; the resident first frame covers the transition.
	if !g.resident.Contains(ref.Path) || ref.Format == "gif" {
		g.loader.Request(ref, false)
	}
}

// discardAnimation drops the frame cache and its textures. FrameSets are
// not kept across navigation; the preload window covers the way back.
func (g *Game) discardAnimation() {
	g.frameCache = nil
	g.invalidateFrameTextures()
}

// applyLoadResults consumes finished decodes. Stale tokens never get here;
// the loader filters them at the single consumption point.
func (g *Game) applyLoadResults(now time.Time) {
	for _, res := range g.loader.Poll() {
		if res.Err != nil {
			if res.Ref.Path == g.currentPath() {
				g.currentErr = res.Err
				log.Printf("Error: Failed to load %s: %v", res.Ref.Path, res.Err)
			} else {
				// Preload failure: nothing cached, a revisit retries fresh.
				debugLog("Preload failed for %s: %v", res.Ref.Path, res.Err)
			}
			continue
		}

		g.resident.Add(res.Ref.Path, ebiten.NewImageFromImage(res.Img))
		debugLog("Loaded %s (resident: %d items)", res.Ref.Path, g.resident.Len())

		if res.Anim != nil && res.Ref.Path == g.currentPath() {
			set := NewFrameSet(res.Anim)
			g.frameCache = NewFrameCache(res.Ref.Path, set, g.current.CurrentFrame, g.current.Playing, now)
		}
	}
}

// updateAnimation advances playback and keeps the playhead frame plus the
// next one resident as textures, so the frame transition never flashes.
func (g *Game) updateAnimation(now time.Time) {
	if g.frameCache == nil {
		return
	}

	advanced := g.frameCache.Update(now)
	cur := g.frameCache.CurrentFrame()

	if g.frameTex == nil || advanced {
		if g.nextTex != nil && g.nextFrame == cur {
			// The preloaded texture becomes the displayed one.
			if g.frameTex != nil {
				g.frameTex.Deallocate()
			}
			g.frameTex = g.nextTex
			g.nextTex = nil
		} else if img := g.frameCache.CurrentImage(); img != nil {
			if g.frameTex != nil {
				g.frameTex.Deallocate()
			}
			g.frameTex = ebiten.NewImageFromImage(img)
		}
	}

	want := (cur + 1) % g.frameCache.set.Count()
	if g.nextTex != nil && g.nextFrame != want {
		g.nextTex.Deallocate()
		g.nextTex = nil
	}
	if g.nextTex == nil {
		if img := g.frameCache.NextImage(); img != nil {
			g.nextTex = ebiten.NewImageFromImage(img)
			g.nextFrame = want
		}
	}

	g.syncAnimationState()
}

// effectiveZoom resolves the zoom actually in effect, computing the
// fit-to-window value from the resident image when needed.
func (g *Game) effectiveZoom() float64 {
	if !g.current.FitToWindow {
		return ClampZoom(g.current.Zoom)
	}
	if img := g.displayImage(); img != nil {
		return FitToWindowZoom(float64(img.Bounds().Dx()), float64(img.Bounds().Dy()),
			float64(g.viewportW), float64(g.viewportH))
	}
	return 1.0
}

func (g *Game) displayImage() *ebiten.Image {
	if g.frameCache != nil && g.frameTex != nil {
		return g.frameTex
	}
	if img, ok := g.resident.Get(g.currentPath()); ok {
		return img
	}
	return nil
}

// Update runs one control-loop cycle.
func (g *Game) Update() error {
	now := time.Now()

	g.inputHandler.HandleInput()
	g.applyLoadResults(now)
	g.updateAnimation(now)
	g.ensureCurrentRequested()
	g.scheduler.Tick()

	return nil
}

// ensureCurrentRequested re-issues the decode for the current image if its
// request fell out of a full queue: nothing else retries it, and without a
// request the viewer would sit on a blank frame forever.
func (g *Game) ensureCurrentRequested() {
	if g.currentErr != nil {
		return
	}
	ref, ok := g.session.Current()
	if !ok {
		return
	}
	if g.resident.Contains(ref.Path) || g.loader.IsPending(ref.Path) {
		return
	}
	g.loader.Request(ref, false)
}

// Draw renders the frame.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

// Layout reports the viewport size back to Ebiten and records it for the
// transform math.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.viewportW, g.viewportH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// RenderState implementation

func (g *Game) GetDisplayContent() *DisplayContent {
	path := g.currentPath()
	if path == "" {
		return &DisplayContent{}
	}
	img := g.displayImage()
	return &DisplayContent{
		Image:     img,
		State:     g.current,
		Loading:   img == nil && g.currentErr == nil && g.loader.IsPending(path),
		Err:       g.currentErr,
		Path:      path,
		PageIndex: g.session.Index() + 1,
		PageCount: g.session.Len(),
	}
}

func (g *Game) IsShowingInfo() bool {
	return g.showInfo
}

func (g *Game) IsShowingHelp() bool {
	return g.showHelp
}

func (g *Game) Keybindings() map[string][]string {
	return g.keybindings.GetKeybindings()
}

func (g *Game) IsFullscreen() bool {
	return g.fullscreen
}

func (g *Game) SortMethodName() string {
	return GetSortStrategy(g.session.SortMethod()).Name()
}

// InputActions implementation

func (g *Game) Exit() {
	g.saveCurrentState()
	g.saveCurrentWindowSize()
	g.loader.Stop()
	os.Exit(0)
}

func (g *Game) saveCurrentWindowSize() {
	if g.fullscreen {
		if g.savedWinW > 0 && g.savedWinH > 0 {
			g.config.WindowWidth = g.savedWinW
			g.config.WindowHeight = g.savedWinH
		}
	} else {
		w, h := ebiten.WindowSize()
		g.config.WindowWidth = w
		g.config.WindowHeight = h
	}
	g.config.SortMethod = g.session.SortMethod()
	g.config.Fullscreen = g.fullscreen
	saveConfig(g.config)
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
}

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleFullscreen() {
	g.fullscreen = !g.fullscreen
	if g.fullscreen {
		g.savedWinW, g.savedWinH = ebiten.WindowSize()
		ebiten.SetFullscreen(true)
	} else {
		ebiten.SetFullscreen(false)
		if g.savedWinW > 0 && g.savedWinH > 0 {
			ebiten.SetWindowSize(g.savedWinW, g.savedWinH)
		}
	}
}

func (g *Game) NavigateNext() {
	g.navigate(g.session.Next)
}

func (g *Game) NavigatePrevious() {
	g.navigate(g.session.Previous)
}

func (g *Game) JumpFirst() {
	g.navigate(func() { g.session.JumpTo(0) })
}

func (g *Game) JumpLast() {
	g.navigate(func() { g.session.JumpTo(g.session.Len() - 1) })
}

func (g *Game) CycleSortMethod() {
	name := g.session.CycleSortMethod()
	g.config.SortMethod = g.session.SortMethod()
	debugLog("Sort method: %s", name)
}

func (g *Game) ExpandToDirectory() {
	ref, ok := g.session.Current()
	if !ok || ref.ArchivePath != "" {
		return
	}
	refs, err := collectImagesFromSameDirectory(ref.Path)
	if err != nil {
		log.Printf("Error: Failed to scan directory: %v", err)
		return
	}
	if err := g.session.Load(refs); err != nil {
		log.Printf("Error: %v", err)
		return
	}
	// Stay on the image that triggered the scan
	for i := 0; i < g.session.Len(); i++ {
		if r, _ := g.session.At(i); r.Path == ref.Path {
			g.session.JumpTo(i)
			break
		}
	}
}

func (g *Game) ZoomReset() {
	g.current.FitToWindow = false
	g.current.Zoom = 1.0
	g.current.PanX, g.current.PanY = 0, 0
}

func (g *Game) ZoomFit() {
	if g.current.FitToWindow {
		// Leave fit mode keeping the zoom the fit produced
		g.current.Zoom = g.effectiveZoom()
		g.current.FitToWindow = false
	} else {
		g.current.FitToWindow = true
		g.current.PanX, g.current.PanY = 0, 0
	}
}

// applyZoom switches to manual zoom while keeping the viewport center
// stationary: the pan scales with the zoom ratio.
func (g *Game) applyZoom(newZoom float64) {
	old := g.effectiveZoom()
	g.current.FitToWindow = false
	g.current.PanX, g.current.PanY = CursorCenteredZoom(old, newZoom, 0, 0, g.current.PanX, g.current.PanY)
	g.current.Zoom = newZoom
	g.constrainCurrentPan()
}

func (g *Game) StepZoomInput(dir ZoomDirection, mod StepModifier) {
	g.applyZoom(StepZoom(g.effectiveZoom(), dir, mod, g.config.ZoomStepFactor))
}

func (g *Game) WheelZoomInput(notches, cursorX, cursorY float64) {
	old := g.effectiveZoom()
	newZoom := WheelZoom(old, notches, g.config.WheelZoomFactor)
	// Cursor coordinates arrive in window space; the transform convention
	// wants them relative to the viewport center.
	cx := cursorX - float64(g.viewportW)/2
	cy := cursorY - float64(g.viewportH)/2
	g.current.FitToWindow = false
	g.current.PanX, g.current.PanY = CursorCenteredZoom(old, newZoom, cx, cy, g.current.PanX, g.current.PanY)
	g.current.Zoom = newZoom
	g.constrainCurrentPan()
}

func (g *Game) DragZoomInput(deltaPx float64) {
	g.applyZoom(DragZoomDelta(deltaPx, g.effectiveZoom()))
}

func (g *Game) PanInput(dir PanDirection, mod StepModifier) {
	if g.current.FitToWindow {
		return
	}
	dx, dy := PanStep(dir, mod, g.config.PanSpeeds())
	g.current.PanX += dx
	g.current.PanY += dy
	g.constrainCurrentPan()
}

func (g *Game) DragPan(deltaX, deltaY float64) {
	if g.current.FitToWindow {
		return
	}
	g.current.PanX += deltaX
	g.current.PanY += deltaY
	g.constrainCurrentPan()
}

func (g *Game) constrainCurrentPan() {
	img := g.displayImage()
	if img == nil {
		return
	}
	g.current.PanX, g.current.PanY = ConstrainPan(
		g.current.PanX, g.current.PanY, g.effectiveZoom(),
		float64(img.Bounds().Dx()), float64(img.Bounds().Dy()),
		float64(g.viewportW), float64(g.viewportH))
}

func (g *Game) ToggleFilters() {
	g.current.FiltersEnabled = !g.current.FiltersEnabled
}

func (g *Game) BrightnessUp()   { g.current.SetBrightness(g.current.Brightness + brightnessStep) }
func (g *Game) BrightnessDown() { g.current.SetBrightness(g.current.Brightness - brightnessStep) }
func (g *Game) ContrastUp()     { g.current.SetContrast(g.current.Contrast + contrastStep) }
func (g *Game) ContrastDown()   { g.current.SetContrast(g.current.Contrast - contrastStep) }
func (g *Game) GammaUp()        { g.current.SetGamma(g.current.Gamma + gammaStep) }
func (g *Game) GammaDown()      { g.current.SetGamma(g.current.Gamma - gammaStep) }

func (g *Game) TogglePlayback() {
	if g.frameCache != nil {
		g.frameCache.TogglePlayback(time.Now())
		g.syncAnimationState()
	}
}

func (g *Game) NextFrame() {
	if g.frameCache != nil {
		g.frameCache.NextFrame()
		g.invalidateFrameTextures()
		g.syncAnimationState()
	}
}

func (g *Game) PreviousFrame() {
	if g.frameCache != nil {
		g.frameCache.PreviousFrame()
		g.invalidateFrameTextures()
		g.syncAnimationState()
	}
}

// invalidateFrameTextures forces the next update to rebuild the playhead
// textures after a manual frame step.
func (g *Game) invalidateFrameTextures() {
	if g.frameTex != nil {
		g.frameTex.Deallocate()
		g.frameTex = nil
	}
	if g.nextTex != nil {
		g.nextTex.Deallocate()
		g.nextTex = nil
	}
}

func main() {
	flag.BoolVar(&debugMode, "debug", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file|directory|archive ...\n", os.Args[0])
		os.Exit(2)
	}

	if err := InitGraphics(); err != nil {
		log.Fatal(err)
	}

	result := loadConfig()
	if result.HasError {
		for _, w := range result.Warnings {
			log.Printf("Warning: %s", w)
		}
	}

	refs, err := collectImages(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	g := NewGame(result.Config)
	if err := g.LoadPaths(refs); err != nil {
		if errors.Is(err, ErrNoImagesFound) {
			log.Fatal("no image files found in the given paths")
		}
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("Miru Image Viewer")
	ebiten.SetWindowSize(result.Config.WindowWidth, result.Config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)
	if result.Config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
