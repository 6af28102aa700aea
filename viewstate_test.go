package main

import (
	"fmt"
	"testing"
)

func TestNewViewStateDefaults(t *testing.T) {
	v := NewViewState()
	if v.Zoom != 1.0 {
		t.Errorf("Zoom = %v, want 1.0", v.Zoom)
	}
	if !v.FitToWindow {
		t.Error("FitToWindow should default to true")
	}
	if v.Gamma != 1.0 {
		t.Errorf("Gamma = %v, want 1.0", v.Gamma)
	}
	if v.Brightness != 0 || v.Contrast != 0 {
		t.Errorf("Brightness/Contrast = %v/%v, want 0/0", v.Brightness, v.Contrast)
	}
	if v.FiltersEnabled {
		t.Error("FiltersEnabled should default to false")
	}
	if v.CurrentFrame != 0 || v.Playing {
		t.Errorf("animation state = %d/%v, want 0/false", v.CurrentFrame, v.Playing)
	}
}

func TestViewStateFilterClamping(t *testing.T) {
	tests := []struct {
		name     string
		set      func(v *ViewState, val float64)
		get      func(v ViewState) float64
		input    float64
		expected float64
	}{
		{"brightness in range", (*ViewState).SetBrightness, func(v ViewState) float64 { return v.Brightness }, 50, 50},
		{"brightness too high", (*ViewState).SetBrightness, func(v ViewState) float64 { return v.Brightness }, 150, 100},
		{"brightness too low", (*ViewState).SetBrightness, func(v ViewState) float64 { return v.Brightness }, -150, -100},
		{"contrast too high", (*ViewState).SetContrast, func(v ViewState) float64 { return v.Contrast }, 101, 100},
		{"contrast too low", (*ViewState).SetContrast, func(v ViewState) float64 { return v.Contrast }, -101, -100},
		{"gamma in range", (*ViewState).SetGamma, func(v ViewState) float64 { return v.Gamma }, 2.2, 2.2},
		{"gamma too low", (*ViewState).SetGamma, func(v ViewState) float64 { return v.Gamma }, 0, 0.1},
		{"gamma too high", (*ViewState).SetGamma, func(v ViewState) float64 { return v.Gamma }, 15, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewState()
			tt.set(&v, tt.input)
			if got := tt.get(v); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestViewStateCachePutGet(t *testing.T) {
	c := NewViewStateCache(10)

	state := NewViewState()
	state.Zoom = 2.5
	state.PanX = 42
	state.FitToWindow = false
	c.Put("/x/a.png", state)

	got := c.GetOrDefault("/x/a.png")
	if got.Zoom != 2.5 || got.PanX != 42 || got.FitToWindow {
		t.Errorf("GetOrDefault returned %+v, want the stored state", got)
	}
}

func TestViewStateCacheMissReturnsDefault(t *testing.T) {
	c := NewViewStateCache(10)

	got := c.GetOrDefault("/x/never-seen.png")
	if !got.FitToWindow || got.Zoom != 1.0 {
		t.Errorf("miss should return the default state, got %+v", got)
	}
	// A miss must not create an entry
	if c.Len() != 0 {
		t.Errorf("Len() = %d after a miss, want 0", c.Len())
	}
	if c.Contains("/x/never-seen.png") {
		t.Error("miss should not insert the path")
	}
}

func TestViewStateCacheOverwrite(t *testing.T) {
	c := NewViewStateCache(10)

	first := NewViewState()
	first.Zoom = 2.0
	c.Put("/x/a.png", first)

	second := NewViewState()
	second.Zoom = 4.0
	c.Put("/x/a.png", second)

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after overwrite", c.Len())
	}
	if got := c.GetOrDefault("/x/a.png"); got.Zoom != 4.0 {
		t.Errorf("Zoom = %v, want the overwritten 4.0", got.Zoom)
	}
}

func TestViewStateCacheEviction(t *testing.T) {
	c := NewViewStateCache(3)

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("/x/%d.png", i), NewViewState())
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if c.Contains("/x/0.png") {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if !c.Contains(fmt.Sprintf("/x/%d.png", i)) {
			t.Errorf("entry %d should still be cached", i)
		}
	}
}

func TestViewStateCacheGetProtectsFromEviction(t *testing.T) {
	c := NewViewStateCache(3)

	c.Put("/x/0.png", NewViewState())
	c.Put("/x/1.png", NewViewState())
	c.Put("/x/2.png", NewViewState())

	// Touch the oldest so it becomes the most recent
	c.GetOrDefault("/x/0.png")

	c.Put("/x/3.png", NewViewState())

	if !c.Contains("/x/0.png") {
		t.Error("recently read entry was evicted")
	}
	if c.Contains("/x/1.png") {
		t.Error("least recently used entry survived")
	}
}

func TestViewStateCacheContainsDoesNotPromote(t *testing.T) {
	c := NewViewStateCache(3)

	c.Put("/x/0.png", NewViewState())
	c.Put("/x/1.png", NewViewState())
	c.Put("/x/2.png", NewViewState())

	// Contains must not count as use
	c.Contains("/x/0.png")
	c.Put("/x/3.png", NewViewState())

	if c.Contains("/x/0.png") {
		t.Error("Contains bumped recency; the oldest entry survived eviction")
	}
}

func TestViewStateCacheAtFullCapacity(t *testing.T) {
	c := NewViewStateCache(DefaultViewStateCacheCapacity)

	for i := 0; i < DefaultViewStateCacheCapacity+1; i++ {
		state := NewViewState()
		state.Zoom = float64(i)
		c.Put(fmt.Sprintf("/x/%04d.png", i), state)
	}

	if c.Len() != DefaultViewStateCacheCapacity {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultViewStateCacheCapacity)
	}
	if c.Contains("/x/0000.png") {
		t.Error("the single oldest entry should have been evicted")
	}
	if !c.Contains("/x/0001.png") {
		t.Error("the second-oldest entry should survive")
	}
	// Survivors keep their stored state
	if got := c.GetOrDefault("/x/0500.png"); got.Zoom != 500 {
		t.Errorf("entry 500 zoom = %v, want 500", got.Zoom)
	}
}

// Evicted slots are recycled through the free list, so the arena never grows
// past the capacity.
func TestViewStateCacheArenaReuse(t *testing.T) {
	c := NewViewStateCache(5)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("/x/%d.png", i), NewViewState())
	}

	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}
	if len(c.entries) > 6 {
		t.Errorf("arena grew to %d entries for capacity 5", len(c.entries))
	}
}

func TestViewStateCacheInvalidCapacity(t *testing.T) {
	c := NewViewStateCache(0)
	if c.Capacity() != DefaultViewStateCacheCapacity {
		t.Errorf("Capacity() = %d, want default %d", c.Capacity(), DefaultViewStateCacheCapacity)
	}
}
