package main

import (
	"testing"
	"time"
)

func makeRefs(paths ...string) []ImageRef {
	refs := make([]ImageRef, len(paths))
	for i, p := range paths {
		refs[i] = newFileRef(p, time.Time{})
	}
	return refs
}

func TestSessionLoad(t *testing.T) {
	t.Run("filters unsupported and deduplicates", func(t *testing.T) {
		s := NewSessionStore(SortAlphabetical)
		refs := makeRefs("/a/one.png", "/a/readme.txt", "/a/one.png", "/a/two.jpg")
		if err := s.Load(refs); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Len() != 2 {
			t.Errorf("Len() = %d, want 2", s.Len())
		}
	})

	t.Run("no images found", func(t *testing.T) {
		s := NewSessionStore(SortAlphabetical)
		err := s.Load(makeRefs("/a/readme.txt", "/a/notes.md"))
		if err != ErrNoImagesFound {
			t.Errorf("Load = %v, want ErrNoImagesFound", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		s := NewSessionStore(SortAlphabetical)
		if err := s.Load(nil); err != ErrNoImagesFound {
			t.Errorf("Load(nil) = %v, want ErrNoImagesFound", err)
		}
	})

	t.Run("archive entries filter on entry name", func(t *testing.T) {
		s := NewSessionStore(SortAlphabetical)
		refs := []ImageRef{
			newArchiveRef("/a/book.zip", "page1.png", time.Time{}),
			newArchiveRef("/a/book.zip", "cover.txt", time.Time{}),
		}
		if err := s.Load(refs); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})

	t.Run("sorts on load and resets index", func(t *testing.T) {
		s := NewSessionStore(SortAlphabetical)
		if err := s.Load(makeRefs("/a/c.png", "/a/a.png", "/a/b.png")); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		ref, ok := s.Current()
		if !ok || ref.Path != "/a/a.png" {
			t.Errorf("Current() = %v, want /a/a.png", ref.Path)
		}
	})
}

func TestSessionNavigationWraparound(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(makeRefs("/x/a.png", "/x/b.png", "/x/c.png")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		name     string
		move     func()
		wantPath string
	}{
		{"next from first", s.Next, "/x/b.png"},
		{"next again", s.Next, "/x/c.png"},
		{"next wraps to first", s.Next, "/x/a.png"},
		{"previous wraps to last", s.Previous, "/x/c.png"},
		{"previous again", s.Previous, "/x/b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.move()
			ref, ok := s.Current()
			if !ok || ref.Path != tt.wantPath {
				t.Errorf("Current() = %q, want %q", ref.Path, tt.wantPath)
			}
		})
	}
}

func TestSessionSingleImage(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(makeRefs("/x/only.png")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s.Next()
	if s.Index() != 0 {
		t.Errorf("Next on single image moved index to %d", s.Index())
	}
	s.Previous()
	if s.Index() != 0 {
		t.Errorf("Previous on single image moved index to %d", s.Index())
	}
	if _, ok := s.NextRef(); ok {
		t.Error("NextRef should report no neighbor for a single image")
	}
	if _, ok := s.PreviousRef(); ok {
		t.Error("PreviousRef should report no neighbor for a single image")
	}
}

func TestSessionEmptyNavigation(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	s.Next()
	s.Previous()
	s.JumpTo(5)
	if _, ok := s.Current(); ok {
		t.Error("Current on empty session should report false")
	}
}

func TestSessionJumpTo(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(makeRefs("/x/a.png", "/x/b.png", "/x/c.png")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s.JumpTo(2)
	if s.Index() != 2 {
		t.Errorf("JumpTo(2): index = %d", s.Index())
	}
	s.JumpTo(99)
	if s.Index() != 2 {
		t.Errorf("out-of-range JumpTo moved index to %d", s.Index())
	}
	s.JumpTo(-1)
	if s.Index() != 2 {
		t.Errorf("negative JumpTo moved index to %d", s.Index())
	}
}

func TestSessionNeighborRefs(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(makeRefs("/x/a.png", "/x/b.png", "/x/c.png")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	next, ok := s.NextRef()
	if !ok || next.Path != "/x/b.png" {
		t.Errorf("NextRef = %q, want /x/b.png", next.Path)
	}
	prev, ok := s.PreviousRef()
	if !ok || prev.Path != "/x/c.png" {
		t.Errorf("PreviousRef at first image = %q, want wraparound /x/c.png", prev.Path)
	}
}

// Switching the sort method may change the index but never the image shown.
func TestSetSortMethodKeepsCurrentImage(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	refs := []ImageRef{
		newFileRef("/x/img2.png", base.Add(3*time.Hour)),
		newFileRef("/x/img10.png", base.Add(1*time.Hour)),
		newFileRef("/x/img1.png", base.Add(2*time.Hour)),
	}

	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(refs); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// Alphabetical: img1, img10, img2
	s.JumpTo(1)
	before, _ := s.Current()

	for _, method := range []int{SortModifiedDesc, SortNatural, SortAlphabetical} {
		s.SetSortMethod(method)
		after, ok := s.Current()
		if !ok || after.Path != before.Path {
			t.Errorf("after SetSortMethod(%d): current = %q, want %q", method, after.Path, before.Path)
		}
	}
}

func TestCycleSortMethod(t *testing.T) {
	s := NewSessionStore(SortAlphabetical)
	if err := s.Load(makeRefs("/x/a.png", "/x/b.png")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	seen := map[int]bool{s.SortMethod(): true}
	n := len(GetAllSortStrategies())
	for i := 1; i < n; i++ {
		s.CycleSortMethod()
		seen[s.SortMethod()] = true
	}
	if len(seen) != n {
		t.Errorf("cycling visited %d methods, want %d", len(seen), n)
	}
	s.CycleSortMethod()
	if s.SortMethod() != SortAlphabetical {
		t.Errorf("cycle did not wrap back, got method %d", s.SortMethod())
	}
}
