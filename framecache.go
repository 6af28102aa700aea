package main

import (
	"image"
	"image/draw"
	"image/gif"
	"time"
)

const (
	// Frames composited synchronously when an animation becomes current.
	eagerFrameCount = 3
	// Frames kept ahead of the playhead while playing.
	lookaheadFrames = 3
	// Used when a frame's delay metadata is missing or invalid.
	defaultFrameDuration = 100 * time.Millisecond
)

type animFrame struct {
	img      image.Image
	duration time.Duration
}

// FrameSet holds an animation's frames with progressive materialization:
// GIF frames are deltas against a compositing canvas, so frame n can only be
// materialized after frames 0..n-1. The first eagerFrameCount frames are
// composited at construction, the remainder on demand.
type FrameSet struct {
	frames   []animFrame
	source   *gif.GIF
	canvas   *image.RGBA
	composed int
}

// NewFrameSet builds a FrameSet from a decoded GIF and eagerly materializes
// the first few frames.
func NewFrameSet(anim *gif.GIF) *FrameSet {
	fs := &FrameSet{
		frames: make([]animFrame, len(anim.Image)),
		source: anim,
	}
	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	if bounds.Empty() && len(anim.Image) > 0 {
		bounds = anim.Image[0].Bounds()
	}
	fs.canvas = image.NewRGBA(bounds)

	for i := range anim.Image {
		d := time.Duration(0)
		if i < len(anim.Delay) {
			d = time.Duration(anim.Delay[i]) * 10 * time.Millisecond
		}
		if d <= 0 {
			d = defaultFrameDuration
		}
		fs.frames[i].duration = d
	}

	n := eagerFrameCount
	if n > len(anim.Image) {
		n = len(anim.Image)
	}
	for i := 0; i < n; i++ {
		fs.materialize(i)
	}
	return fs
}

// Count returns the number of frames. Always at least 1 for a valid set.
func (fs *FrameSet) Count() int {
	return len(fs.frames)
}

// Frame returns the materialized image for index i, compositing lazily if
// needed. Out-of-range indices return nil.
func (fs *FrameSet) Frame(i int) image.Image {
	if i < 0 || i >= len(fs.frames) {
		return nil
	}
	fs.materialize(i)
	return fs.frames[i].img
}

// Duration returns the display duration of frame i.
func (fs *FrameSet) Duration(i int) time.Duration {
	if i < 0 || i >= len(fs.frames) {
		return defaultFrameDuration
	}
	return fs.frames[i].duration
}

// Materialized reports whether frame i has been composited. Diagnostics only.
func (fs *FrameSet) Materialized(i int) bool {
	return i >= 0 && i < len(fs.frames) && fs.frames[i].img != nil
}

// disposal returns frame n's disposal byte, treating missing metadata as
// leave-in-place.
func (fs *FrameSet) disposal(n int) byte {
	if n < len(fs.source.Disposal) {
		return fs.source.Disposal[n]
	}
	return gif.DisposalNone
}

func (fs *FrameSet) materialize(i int) {
	for fs.composed <= i && fs.composed < len(fs.frames) {
		n := fs.composed
		src := fs.source.Image[n]

		var restore []uint8
		if fs.disposal(n) == gif.DisposalPrevious {
			restore = append([]uint8(nil), fs.canvas.Pix...)
		}

		draw.Draw(fs.canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		snapshot := image.NewRGBA(fs.canvas.Bounds())
		copy(snapshot.Pix, fs.canvas.Pix)
		fs.frames[n].img = snapshot

		// The disposal byte dictates the canvas the next delta composites
		// against: background clears the frame's rect, previous restores
		// the canvas to its pre-frame state.
		switch fs.disposal(n) {
		case gif.DisposalBackground:
			draw.Draw(fs.canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(fs.canvas.Pix, restore)
		}
		fs.composed++
	}
}

// FrameCache drives playback of the current image's animation. It exists
// only while the current image is multi-frame and is discarded on
// navigation; neighbor preloading covers the transition instant.
type FrameCache struct {
	path        string
	set         *FrameSet
	current     int
	playing     bool
	lastAdvance time.Time
}

// NewFrameCache starts playback state for an animation at the given frame.
// startFrame comes from the restored ViewState and is wrapped into range.
func NewFrameCache(path string, set *FrameSet, startFrame int, playing bool, now time.Time) *FrameCache {
	if set.Count() > 0 {
		startFrame = ((startFrame % set.Count()) + set.Count()) % set.Count()
	} else {
		startFrame = 0
	}
	return &FrameCache{
		path:        path,
		set:         set,
		current:     startFrame,
		playing:     playing,
		lastAdvance: now,
	}
}

// Path returns the image this cache belongs to.
func (fc *FrameCache) Path() string {
	return fc.path
}

// CurrentFrame returns the playhead position.
func (fc *FrameCache) CurrentFrame() int {
	return fc.current
}

// Playing reports whether the playback timer is running.
func (fc *FrameCache) Playing() bool {
	return fc.playing
}

// CurrentImage returns the decoded buffer for the frame under the playhead.
func (fc *FrameCache) CurrentImage() image.Image {
	return fc.set.Frame(fc.current)
}

// Update advances the playback timer and keeps the materialization phases
// warm. Returns true when the displayed frame changed.
func (fc *FrameCache) Update(now time.Time) bool {
	advanced := false
	if fc.playing {
		for now.Sub(fc.lastAdvance) >= fc.set.Duration(fc.current) {
			fc.lastAdvance = fc.lastAdvance.Add(fc.set.Duration(fc.current))
			fc.current = (fc.current + 1) % fc.set.Count()
			advanced = true
		}
		// Look-ahead: keep the next few frames materialized just before
		// they are needed.
		for i := 1; i <= lookaheadFrames; i++ {
			fc.set.Frame((fc.current + i) % fc.set.Count())
		}
	} else {
		fc.lastAdvance = now
	}
	debugAssert(fc.current >= 0 && fc.current < fc.set.Count(),
		"frame index %d out of range [0,%d)", fc.current, fc.set.Count())
	return advanced
}

// NextImage returns the frame after the playhead, materializing it if
// needed, so the rendering backend can keep it resident ahead of display.
// This runs independently of playback.
func (fc *FrameCache) NextImage() image.Image {
	return fc.set.Frame((fc.current + 1) % fc.set.Count())
}

// TogglePlayback starts or stops the playback timer.
func (fc *FrameCache) TogglePlayback(now time.Time) {
	fc.playing = !fc.playing
	if fc.playing {
		fc.lastAdvance = now
	}
}

// NextFrame steps the playhead forward manually. Manual stepping stops
// playback.
func (fc *FrameCache) NextFrame() {
	fc.playing = false
	fc.current = (fc.current + 1) % fc.set.Count()
}

// PreviousFrame steps the playhead backward manually. Manual stepping stops
// playback.
func (fc *FrameCache) PreviousFrame() {
	fc.playing = false
	fc.current = (fc.current - 1 + fc.set.Count()) % fc.set.Count()
}
