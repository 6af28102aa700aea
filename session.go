package main

// SessionStore holds the ordered image list and the current position.
// It is owned exclusively by the update loop; navigation never blocks and
// never triggers loading by itself.
type SessionStore struct {
	refs       []ImageRef
	idx        int
	sortMethod int
}

// NewSessionStore creates an empty session with the given sort method.
func NewSessionStore(sortMethod int) *SessionStore {
	return &SessionStore{sortMethod: sortMethod}
}

// Load replaces the session contents wholesale. The input is deduplicated,
// filtered to supported formats, sorted with the current strategy, and the
// pointer reset to the first image. Returns ErrNoImagesFound if nothing
// survives the filter.
func (s *SessionStore) Load(refs []ImageRef) error {
	filtered := make([]ImageRef, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		name := ref.Path
		if ref.ArchivePath != "" {
			name = ref.EntryPath
		}
		if seen[ref.Path] || !isSupportedExt(name) {
			continue
		}
		seen[ref.Path] = true
		filtered = append(filtered, ref)
	}
	if len(filtered) == 0 {
		return ErrNoImagesFound
	}

	s.refs = GetSortStrategy(s.sortMethod).Sort(filtered)
	s.idx = 0
	return nil
}

// Len returns the number of images in the session.
func (s *SessionStore) Len() int {
	return len(s.refs)
}

// Index returns the current position. Meaningless when the session is empty.
func (s *SessionStore) Index() int {
	return s.idx
}

// Current returns the ImageRef under the pointer, or false when empty.
func (s *SessionStore) Current() (ImageRef, bool) {
	if len(s.refs) == 0 {
		return ImageRef{}, false
	}
	debugAssert(s.idx >= 0 && s.idx < len(s.refs),
		"current index %d out of range [0,%d)", s.idx, len(s.refs))
	return s.refs[s.idx], true
}

// At returns the ImageRef at the given index, or false when out of range.
func (s *SessionStore) At(idx int) (ImageRef, bool) {
	if idx < 0 || idx >= len(s.refs) {
		return ImageRef{}, false
	}
	return s.refs[idx], true
}

// Next advances the pointer with wraparound. No-op on empty sessions.
func (s *SessionStore) Next() {
	if len(s.refs) == 0 {
		return
	}
	s.idx = (s.idx + 1) % len(s.refs)
}

// Previous retreats the pointer with wraparound. No-op on empty sessions.
func (s *SessionStore) Previous() {
	if len(s.refs) == 0 {
		return
	}
	s.idx = (s.idx - 1 + len(s.refs)) % len(s.refs)
}

// JumpTo moves the pointer to the given index if it is in range.
func (s *SessionStore) JumpTo(idx int) {
	if idx >= 0 && idx < len(s.refs) {
		s.idx = idx
	}
}

// NextRef returns the wraparound neighbor after the current image.
// False for empty and single-image sessions: there is no distinct neighbor
// to preload.
func (s *SessionStore) NextRef() (ImageRef, bool) {
	if len(s.refs) < 2 {
		return ImageRef{}, false
	}
	return s.refs[(s.idx+1)%len(s.refs)], true
}

// PreviousRef returns the wraparound neighbor before the current image.
func (s *SessionStore) PreviousRef() (ImageRef, bool) {
	if len(s.refs) < 2 {
		return ImageRef{}, false
	}
	return s.refs[(s.idx-1+len(s.refs))%len(s.refs)], true
}

// SortMethod returns the active sort method ID.
func (s *SessionStore) SortMethod() int {
	return s.sortMethod
}

// SetSortMethod re-sorts the sequence and re-locates the previously current
// image in the new order, so sorting changes the numeric index but never
// which image is shown.
func (s *SessionStore) SetSortMethod(sortMethod int) {
	current, ok := s.Current()
	s.sortMethod = sortMethod
	if !ok {
		return
	}

	s.refs = GetSortStrategy(sortMethod).Sort(s.refs)
	for i, ref := range s.refs {
		if ref.Path == current.Path {
			s.idx = i
			return
		}
	}
	// The set is unchanged by sorting, so this should not happen.
	debugAssert(false, "current image %s lost after re-sort", current.Path)
	s.idx = 0
}

// CycleSortMethod switches to the next strategy and returns its name.
func (s *SessionStore) CycleSortMethod() string {
	strategies := GetAllSortStrategies()
	next := (s.sortMethod + 1) % len(strategies)
	s.SetSortMethod(strategies[next].ID())
	return strategies[next].Name()
}
