package domain

import (
	"github.com/rpattn/profilematrix/pkg/keypath"
)

// Record is one user's entry from the input collection.
type Record struct {
	ID      string         `json:"id"`
	Profile map[string]any `json:"profile"`
}

// PathDescriptor identifies a key path observed in at least one profile.
type PathDescriptor struct {
	Path        keypath.Path
	Depth       int
	LastKey     string
	IsContainer bool
}

// NewPathDescriptor builds a descriptor whose depth and last key are derived from the path.
func NewPathDescriptor(path keypath.Path, isContainer bool) PathDescriptor {
	return PathDescriptor{
		Path:        keypath.New(path...),
		Depth:       path.Depth(),
		LastKey:     path.LastKey(),
		IsContainer: isContainer,
	}
}

// DisplayName renders the indented item-name label for this descriptor.
func (d PathDescriptor) DisplayName(indent string) string {
	return keypath.DisplayName(d.Path, indent)
}

// CompareDescriptors orders descriptors for row emission: shallower paths
// first, leaves before containers at equal depth, then lexical path order.
func CompareDescriptors(a, b PathDescriptor) int {
	if a.Depth != b.Depth {
		if a.Depth < b.Depth {
			return -1
		}
		return 1
	}
	if a.IsContainer != b.IsContainer {
		if !a.IsContainer {
			return -1
		}
		return 1
	}
	return keypath.Compare(a.Path, b.Path)
}
