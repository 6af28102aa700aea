package main

import "testing"

func newTestGame(t *testing.T, paths ...string) *Game {
	t.Helper()
	g := NewGame(defaultConfig())
	t.Cleanup(g.loader.Stop)
	if err := g.LoadPaths(makeRefs(paths...)); err != nil {
		t.Fatalf("LoadPaths: %v", err)
	}
	return g
}

func TestGameRetriesDroppedCurrentRequest(t *testing.T) {
	g := newTestGame(t, "/pics/a.png", "/pics/b.png")
	path := g.currentPath()

	// A full queue drops the request at issue time; nothing else retries the
	// current image.
	delete(g.loader.pending, path)
	if g.loader.IsPending(path) {
		t.Fatal("request still pending after simulated drop")
	}

	g.ensureCurrentRequested()
	if !g.loader.IsPending(path) {
		t.Error("current image not re-requested after its request was dropped")
	}

	// An in-flight request must not be superseded: a second token would
	// discard the decode already running.
	token := g.loader.tokens[path]
	g.ensureCurrentRequested()
	if got := g.loader.tokens[path]; got != token {
		t.Errorf("token = %d after guard with request pending, want %d", got, token)
	}
}

func TestGameDoesNotRetryFailedOrResident(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		g := newTestGame(t, "/pics/a.png")
		path := g.currentPath()
		delete(g.loader.pending, path)
		g.currentErr = ErrNotFound

		g.ensureCurrentRequested()
		if g.loader.IsPending(path) {
			t.Error("re-requested an image whose load already failed")
		}
	})

	t.Run("already resident", func(t *testing.T) {
		g := newTestGame(t, "/pics/a.png")
		path := g.currentPath()
		delete(g.loader.pending, path)
		g.resident.Add(path, nil)

		g.ensureCurrentRequested()
		if g.loader.IsPending(path) {
			t.Error("re-requested an image that is already resident")
		}
	})
}

func TestGameViewStateRoundTrip(t *testing.T) {
	g := newTestGame(t, "/pics/a.png", "/pics/b.png")

	g.current.Zoom = 2.5
	g.current.FitToWindow = false
	g.current.PanX = 40

	g.NavigateNext()
	if !g.current.FitToWindow {
		t.Error("arriving at a new image should start from the default state")
	}

	g.NavigatePrevious()
	if g.current.Zoom != 2.5 || g.current.PanX != 40 {
		t.Errorf("restored state = zoom %v pan %v, want zoom 2.5 pan 40",
			g.current.Zoom, g.current.PanX)
	}
}
