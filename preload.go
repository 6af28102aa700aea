package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// The resident cache holds the current image plus the two wraparound
// neighbors, never more.
const residentCacheSize = 3

// ResidentCache is the bounded store of decoded images uploaded to the
// rendering backend. Eviction releases the GPU texture immediately instead
// of waiting for the finalizer.
type ResidentCache struct {
	cache *lru.Cache[string, *ebiten.Image]
}

// NewResidentCache creates the resident image cache.
func NewResidentCache() *ResidentCache {
	cache, err := lru.NewWithEvict[string, *ebiten.Image](residentCacheSize, func(_ string, img *ebiten.Image) {
		if img != nil {
			img.Deallocate()
		}
	})
	if err != nil {
		// Only reachable with a non-positive size constant.
		log.Printf("Error: Failed to create resident cache: %v", err)
		cache, _ = lru.NewWithEvict[string, *ebiten.Image](1, func(_ string, img *ebiten.Image) {
			if img != nil {
				img.Deallocate()
			}
		})
	}
	return &ResidentCache{cache: cache}
}

// Get returns the resident image for path, marking it recently used.
func (rc *ResidentCache) Get(path string) (*ebiten.Image, bool) {
	return rc.cache.Get(path)
}

// Add makes path resident, evicting the least recently used entry when the
// bound is hit.
func (rc *ResidentCache) Add(path string, img *ebiten.Image) {
	rc.cache.Add(path, img)
}

// Contains reports residency without affecting recency.
func (rc *ResidentCache) Contains(path string) bool {
	return rc.cache.Contains(path)
}

// Remove drops path, releasing its texture.
func (rc *ResidentCache) Remove(path string) {
	rc.cache.Remove(path)
}

// Len returns the number of resident images.
func (rc *ResidentCache) Len() int {
	return rc.cache.Len()
}

// PreloadScheduler keeps the two neighbor images warm. It runs every update
// cycle, not just on navigation, and holds no state of its own beyond the
// collaborators it reads: the session for neighbor identity, the loader for
// in-flight checks, the resident cache for what is already warm. That keeps
// preload state bounded no matter how large the session grows.
type PreloadScheduler struct {
	session  *SessionStore
	loader   *AsyncLoader
	resident *ResidentCache
	enabled  bool
}

// NewPreloadScheduler wires the scheduler to its collaborators.
func NewPreloadScheduler(session *SessionStore, loader *AsyncLoader, resident *ResidentCache) *PreloadScheduler {
	return &PreloadScheduler{
		session:  session,
		loader:   loader,
		resident: resident,
		enabled:  true,
	}
}

// SetEnabled turns preloading on or off.
func (ps *PreloadScheduler) SetEnabled(enabled bool) {
	ps.enabled = enabled
}

// Tick issues low-priority decode requests for exactly the next and previous
// images, skipping anything already resident or in flight.
func (ps *PreloadScheduler) Tick() {
	if !ps.enabled {
		return
	}

	if next, ok := ps.session.NextRef(); ok {
		ps.warm(next)
	}
	if prev, ok := ps.session.PreviousRef(); ok {
		ps.warm(prev)
	}
}

func (ps *PreloadScheduler) warm(ref ImageRef) {
	if cur, ok := ps.session.Current(); ok && cur.Path == ref.Path {
		return
	}
	if ps.resident.Contains(ref.Path) || ps.loader.IsPending(ref.Path) {
		return
	}
	ps.loader.Request(ref, true)
	debugLog("Preload requested for %s", ref.Path)
}
