package keypath

import (
	"strconv"
	"strings"
)

// Path is an ordered sequence of keys from a profile root to a node.
type Path []string

// New copies the given keys into a fresh path.
func New(keys ...string) Path {
	p := make(Path, len(keys))
	copy(p, keys)
	return p
}

// Child returns a new path extended by key. The receiver is never aliased.
func (p Path) Child(key string) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = key
	return child
}

// Depth returns the number of keys in the path
func (p Path) Depth() int {
	return len(p)
}

// LastKey returns the final key of the path, or "" for the root
func (p Path) LastKey() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Key renders the path as a single map key. Each component is quoted so
// that no key content, including NUL or the separator, can make two
// different paths collide.
func (p Path) Key() string {
	quoted := make([]string, len(p))
	for i, key := range p {
		quoted[i] = strconv.Quote(key)
	}
	return strings.Join(quoted, ",")
}

// String renders the path in dotted form for logs and error messages.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Compare orders two paths lexically.
// Returns -1 if a < b, 0 if equal, 1 if a > b
func Compare(a, b Path) int {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	// Compare common components
	for i := 0; i < minLen; i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}

	// If all common components are equal, shorter path comes first
	if len(a) < len(b) {
		return -1
	} else if len(a) > len(b) {
		return 1
	}

	return 0
}

// DisplayName renders the indented label used in the item-name column:
// one indent unit per level below the root, followed by the last key.
func DisplayName(p Path, indent string) string {
	if len(p) == 0 {
		return ""
	}
	return strings.Repeat(indent, len(p)-1) + p.LastKey()
}

// Resolve walks the path through a decoded JSON tree. The second return is
// false when a key is absent or a node on the way is not an object.
func Resolve(root map[string]any, p Path) (any, bool) {
	if root == nil {
		return nil, false
	}
	var current any = root
	for _, key := range p {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, exists := node[key]
		if !exists {
			return nil, false
		}
		current = next
	}
	return current, true
}
