package backend

import (
	"fmt"
	"strings"
)

// Namer hands out unique identifiers. Names are escaped first and then
// suffixed with a counter until unused.
type Namer struct {
	escape  func(string) string
	fold    bool
	used    map[string]struct{}
	counter uint32
}

// NewNamer returns a namer using escape for reserved words. With fold set
// names are compared case-insensitively.
func NewNamer(escape func(string) string, fold bool) *Namer {
	return &Namer{
		escape: escape,
		fold:   fold,
		used:   make(map[string]struct{}),
	}
}

func (n *Namer) key(name string) string {
	if n.fold {
		return strings.ToLower(name)
	}
	return name
}

// Call returns a unique name derived from base.
func (n *Namer) Call(base string) string {
	escaped := n.escape(base)
	if !n.IsUsed(escaped) {
		n.Reserve(escaped)
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		if !n.IsUsed(candidate) {
			n.Reserve(candidate)
			return candidate
		}
	}
}

// Reserve marks name as used without escaping it.
func (n *Namer) Reserve(name string) {
	n.used[n.key(name)] = struct{}{}
}

// IsUsed reports whether name has been handed out or reserved.
func (n *Namer) IsUsed(name string) bool {
	_, ok := n.used[n.key(name)]
	return ok
}

// Clone returns an independent namer that starts with the names of n.
// Function scopes clone the global namer so local names never shadow
// globals.
func (n *Namer) Clone() *Namer {
	c := &Namer{
		escape:  n.escape,
		fold:    n.fold,
		used:    make(map[string]struct{}, len(n.used)),
		counter: n.counter,
	}
	for k := range n.used {
		c.used[k] = struct{}{}
	}
	return c
}
