package main

import (
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortStrategy defines the interface for different sorting strategies
type SortStrategy interface {
	// Sort returns a new sorted slice without modifying the original
	Sort(refs []ImageRef) []ImageRef
	// Name returns the human-readable name of the strategy
	Name() string
	// ID returns the numeric identifier for config storage
	ID() int
}

// AlphabeticalSortStrategy sorts by path, case-insensitively
type AlphabeticalSortStrategy struct{}

func (s *AlphabeticalSortStrategy) Sort(refs []ImageRef) []ImageRef {
	result := copyRefs(refs)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Path), strings.ToLower(result[j].Path)
		if a != b {
			return a < b
		}
		return result[i].Path < result[j].Path
	})
	return result
}

func (s *AlphabeticalSortStrategy) Name() string {
	return "Alphabetical"
}

func (s *AlphabeticalSortStrategy) ID() int {
	return SortAlphabetical
}

// ModifiedDateSortStrategy sorts newest-first by modification time
type ModifiedDateSortStrategy struct{}

func (s *ModifiedDateSortStrategy) Sort(refs []ImageRef) []ImageRef {
	result := copyRefs(refs)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ModTime.Equal(result[j].ModTime) {
			return result[i].ModTime.After(result[j].ModTime)
		}
		// Equal timestamps fall back to path so the order is deterministic
		return result[i].Path < result[j].Path
	})
	return result
}

func (s *ModifiedDateSortStrategy) Name() string {
	return "Modified Date"
}

func (s *ModifiedDateSortStrategy) ID() int {
	return SortModifiedDesc
}

// NaturalSortStrategy implements natural sorting using maruel/natural
// (file2 before file10)
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(refs []ImageRef) []ImageRef {
	result := copyRefs(refs)
	sort.SliceStable(result, func(i, j int) bool {
		return natural.Less(result[i].Path, result[j].Path)
	})
	return result
}

func (s *NaturalSortStrategy) Name() string {
	return "Natural"
}

func (s *NaturalSortStrategy) ID() int {
	return SortNatural
}

func copyRefs(refs []ImageRef) []ImageRef {
	if len(refs) == 0 {
		return []ImageRef{}
	}
	result := make([]ImageRef, len(refs))
	copy(result, refs)
	return result
}

// GetSortStrategy returns the appropriate strategy based on the sort method ID
func GetSortStrategy(sortMethod int) SortStrategy {
	switch sortMethod {
	case SortAlphabetical:
		return &AlphabeticalSortStrategy{}
	case SortModifiedDesc:
		return &ModifiedDateSortStrategy{}
	case SortNatural:
		return &NaturalSortStrategy{}
	default:
		return &AlphabeticalSortStrategy{} // Default fallback
	}
}

// GetAllSortStrategies returns all available sort strategies
func GetAllSortStrategies() []SortStrategy {
	return []SortStrategy{
		&AlphabeticalSortStrategy{},
		&ModifiedDateSortStrategy{},
		&NaturalSortStrategy{},
	}
}
