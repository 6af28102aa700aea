package main

import (
	"fmt"
	"image"
	"testing"
	"time"
)

// blockedDecode parks every decode until release is closed, keeping requests
// pending for the duration of a test.
func blockedDecode(release chan struct{}) DecodeFunc {
	return func(data []byte) (image.Image, error) {
		<-release
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}
}

func newPreloadFixture(t *testing.T, imageCount int) (*PreloadScheduler, *SessionStore, *AsyncLoader) {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, imageCount)
	refs := make([]ImageRef, imageCount)
	for i := range refs {
		paths[i] = writeTestPNG(t, dir, fmt.Sprintf("%05d.png", i), 2, 2)
		refs[i] = newFileRef(paths[i], time.Time{})
	}

	release := make(chan struct{})
	loader := NewAsyncLoader(blockedDecode(release), 1)
	t.Cleanup(func() {
		close(release)
		loader.Stop()
	})

	session := NewSessionStore(SortAlphabetical)
	if err := session.Load(refs); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	return NewPreloadScheduler(session, loader, NewResidentCache()), session, loader
}

func TestPreloadSchedulerWarmsNeighborsOnly(t *testing.T) {
	scheduler, session, loader := newPreloadFixture(t, 5)

	session.JumpTo(2)
	scheduler.Tick()

	for i := 0; i < session.Len(); i++ {
		ref, _ := session.At(i)
		wantPending := i == 1 || i == 3
		if loader.IsPending(ref.Path) != wantPending {
			t.Errorf("image %d: pending = %v, want %v", i, loader.IsPending(ref.Path), wantPending)
		}
	}
}

func TestPreloadSchedulerWrapsAroundEnds(t *testing.T) {
	scheduler, session, loader := newPreloadFixture(t, 5)

	// At the first image the previous neighbor is the last image
	scheduler.Tick()

	next, _ := session.At(1)
	last, _ := session.At(4)
	if !loader.IsPending(next.Path) {
		t.Error("next neighbor not requested")
	}
	if !loader.IsPending(last.Path) {
		t.Error("wraparound previous neighbor not requested")
	}
}

// Repeated ticks must not stack duplicate requests while one is in flight.
func TestPreloadSchedulerDoesNotReRequest(t *testing.T) {
	scheduler, session, loader := newPreloadFixture(t, 5)

	for i := 0; i < 20; i++ {
		scheduler.Tick()
	}

	next, _ := session.At(1)
	prev, _ := session.At(4)
	if loader.tokens[next.Path] != 1 {
		t.Errorf("next neighbor requested %d times, want 1", loader.tokens[next.Path])
	}
	if loader.tokens[prev.Path] != 1 {
		t.Errorf("previous neighbor requested %d times, want 1", loader.tokens[prev.Path])
	}
}

// Session size does not change how much the scheduler or the resident cache
// touch: two neighbor requests per position, at most three resident images,
// no matter how many paths the session holds.
func TestPreloadSchedulerBoundedWork(t *testing.T) {
	refs := make([]ImageRef, 10000)
	for i := range refs {
		refs[i] = newFileRef(fmt.Sprintf("/x/%05d.png", i), time.Time{})
	}
	session := NewSessionStore(SortAlphabetical)
	if err := session.Load(refs); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loader := NewAsyncLoader(StdDecode, 1)
	t.Cleanup(loader.Stop)
	resident := NewResidentCache()
	scheduler := NewPreloadScheduler(session, loader, resident)

	session.JumpTo(5000)
	scheduler.Tick()
	if got := len(loader.pending); got != 2 {
		t.Errorf("pending requests = %d, want exactly 2", got)
	}

	// Walking the session keeps residency bounded however far it goes
	for i := 0; i < 100; i++ {
		session.Next()
		cur, _ := session.Current()
		resident.Add(cur.Path, nil)
		scheduler.Tick()
		loader.Poll()
		if resident.Len() > residentCacheSize {
			t.Fatalf("step %d: %d resident images, bound is %d", i, resident.Len(), residentCacheSize)
		}
	}
}

func TestPreloadSchedulerDisabled(t *testing.T) {
	scheduler, _, loader := newPreloadFixture(t, 5)

	scheduler.SetEnabled(false)
	scheduler.Tick()

	if len(loader.pending) != 0 {
		t.Errorf("disabled scheduler issued %d requests", len(loader.pending))
	}
}

func TestPreloadSchedulerSingleImage(t *testing.T) {
	scheduler, _, loader := newPreloadFixture(t, 1)

	scheduler.Tick()

	if len(loader.pending) != 0 {
		t.Error("single-image session has no neighbors to preload")
	}
}

func TestPreloadSchedulerSkipsResident(t *testing.T) {
	scheduler, session, loader := newPreloadFixture(t, 5)

	next, _ := session.At(1)
	scheduler.resident.Add(next.Path, nil)
	scheduler.Tick()

	if loader.IsPending(next.Path) {
		t.Error("resident neighbor should not be re-requested")
	}
	prev, _ := session.At(4)
	if !loader.IsPending(prev.Path) {
		t.Error("non-resident neighbor should still be requested")
	}
}

// The resident cache never holds more than the current image plus two
// neighbors.
func TestResidentCacheBound(t *testing.T) {
	rc := NewResidentCache()

	for i := 0; i < 10; i++ {
		rc.Add(fmt.Sprintf("/x/%d.png", i), nil)
	}

	if rc.Len() != residentCacheSize {
		t.Errorf("Len() = %d, want %d", rc.Len(), residentCacheSize)
	}
	for i := 7; i < 10; i++ {
		if !rc.Contains(fmt.Sprintf("/x/%d.png", i)) {
			t.Errorf("most recent entry %d missing", i)
		}
	}
	if rc.Contains("/x/0.png") {
		t.Error("oldest entries should have been evicted")
	}
}

func TestResidentCacheRemove(t *testing.T) {
	rc := NewResidentCache()
	rc.Add("/x/a.png", nil)
	rc.Remove("/x/a.png")
	if rc.Contains("/x/a.png") {
		t.Error("removed entry still resident")
	}
}
