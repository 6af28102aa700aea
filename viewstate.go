package main

// Zoom bounds enforced everywhere a zoom value is produced.
const (
	MinZoom = 0.1
	MaxZoom = 20.0
)

// Filter parameter bounds. The engine only tracks these values; the pixel
// kernels live in the rendering backend.
const (
	minBrightness = -100.0
	maxBrightness = 100.0
	minContrast   = -100.0
	maxContrast   = 100.0
	minGamma      = 0.1
	maxGamma      = 10.0
)

// ViewState is the per-image view snapshot: zoom, pan, filter parameters and
// animation position. Saved when navigating away from an image and restored
// when it becomes current again.
type ViewState struct {
	Zoom        float64
	PanX        float64
	PanY        float64
	FitToWindow bool

	Brightness     float64
	Contrast       float64
	Gamma          float64
	FiltersEnabled bool

	CurrentFrame int
	Playing      bool
}

// NewViewState returns the state used the first time an image is shown:
// fit-to-window with neutral, disabled filters.
func NewViewState() ViewState {
	return ViewState{
		Zoom:        1.0,
		FitToWindow: true,
		Gamma:       1.0,
	}
}

// SetBrightness clamps and stores the brightness parameter.
func (v *ViewState) SetBrightness(b float64) {
	v.Brightness = clampFloat(b, minBrightness, maxBrightness)
}

// SetContrast clamps and stores the contrast parameter.
func (v *ViewState) SetContrast(c float64) {
	v.Contrast = clampFloat(c, minContrast, maxContrast)
}

// SetGamma clamps and stores the gamma parameter.
func (v *ViewState) SetGamma(g float64) {
	v.Gamma = clampFloat(g, minGamma, maxGamma)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const noIndex = -1

type cacheEntry struct {
	path    string
	state   ViewState
	recency uint64
	// intrusive recency list, addressed by arena index
	prev int
	next int
}

// ViewStateCache is a bounded LRU store of per-image ViewState. Entries live
// in a dense arena and the recency order is an index-linked list, so promote
// and evict are O(1) without pointer cycles. The cache is owned by the update
// loop; it is not safe for concurrent use.
type ViewStateCache struct {
	capacity int
	entries  []cacheEntry
	index    map[string]int
	free     []int
	head     int // most recently used
	tail     int // least recently used
	clock    uint64
}

// DefaultViewStateCacheCapacity bounds how many per-image states are kept.
const DefaultViewStateCacheCapacity = 1000

// NewViewStateCache creates a cache holding at most capacity entries.
func NewViewStateCache(capacity int) *ViewStateCache {
	if capacity < 1 {
		capacity = DefaultViewStateCacheCapacity
	}
	return &ViewStateCache{
		capacity: capacity,
		entries:  make([]cacheEntry, 0, capacity),
		index:    make(map[string]int, capacity),
		head:     noIndex,
		tail:     noIndex,
	}
}

// Len returns the number of cached states.
func (c *ViewStateCache) Len() int {
	return len(c.index)
}

// Capacity returns the configured bound.
func (c *ViewStateCache) Capacity() int {
	return c.capacity
}

// GetOrDefault returns the cached state for path, bumping its recency, or a
// fresh default. The default is not inserted; callers Put it back when
// navigating away, which is what creates the entry.
func (c *ViewStateCache) GetOrDefault(path string) ViewState {
	if i, ok := c.index[path]; ok {
		c.promote(i)
		return c.entries[i].state
	}
	return NewViewState()
}

// Put inserts or overwrites the state for path and bumps its recency. When
// the bound is exceeded the single least-recently-used entry is evicted.
func (c *ViewStateCache) Put(path string, state ViewState) {
	if i, ok := c.index[path]; ok {
		c.entries[i].state = state
		c.promote(i)
		return
	}

	var i int
	if n := len(c.free); n > 0 {
		i = c.free[n-1]
		c.free = c.free[:n-1]
		c.entries[i] = cacheEntry{path: path, prev: noIndex, next: noIndex}
	} else {
		i = len(c.entries)
		c.entries = append(c.entries, cacheEntry{path: path, prev: noIndex, next: noIndex})
	}
	c.index[path] = i
	c.pushFront(i)
	c.entries[i].recency = c.nextRecency()

	if len(c.index) > c.capacity {
		c.evictOldest()
	}
	debugAssert(len(c.index) <= c.capacity,
		"view state cache size %d exceeds capacity %d", len(c.index), c.capacity)
}

// Contains reports whether path has a cached state without touching its
// recency. Used by diagnostics, never by the navigation path.
func (c *ViewStateCache) Contains(path string) bool {
	_, ok := c.index[path]
	return ok
}

func (c *ViewStateCache) nextRecency() uint64 {
	c.clock++
	return c.clock
}

func (c *ViewStateCache) promote(i int) {
	c.unlink(i)
	c.pushFront(i)
	c.entries[i].recency = c.nextRecency()
}

func (c *ViewStateCache) pushFront(i int) {
	c.entries[i].prev = noIndex
	c.entries[i].next = c.head
	if c.head != noIndex {
		c.entries[c.head].prev = i
	}
	c.head = i
	if c.tail == noIndex {
		c.tail = i
	}
}

func (c *ViewStateCache) unlink(i int) {
	e := &c.entries[i]
	if e.prev != noIndex {
		c.entries[e.prev].next = e.next
	} else if c.head == i {
		c.head = e.next
	}
	if e.next != noIndex {
		c.entries[e.next].prev = e.prev
	} else if c.tail == i {
		c.tail = e.prev
	}
	e.prev = noIndex
	e.next = noIndex
}

func (c *ViewStateCache) evictOldest() {
	i := c.tail
	debugAssert(i != noIndex, "eviction requested on empty recency list")
	if i == noIndex {
		return
	}
	path := c.entries[i].path
	c.unlink(i)
	delete(c.index, path)
	c.entries[i] = cacheEntry{prev: noIndex, next: noIndex}
	c.free = append(c.free, i)
	debugLog("Evicted view state for %s (cache: %d items)", path, len(c.index))
}
