// Package snapshot defines an immutable fragment tree, a typical payload for
// a handoff channel: produced often by an upstream computation, shared by
// pointer, and never modified after construction.
package snapshot

import "fmt"

// A Fragment is a node of a fragment tree.
type Fragment struct {
	Name     string
	Children []Fragment
}

// Size reports the number of fragments in the subtree rooted at f.
func (f Fragment) Size() int {
	n := 1
	for _, c := range f.Children {
		n += c.Size()
	}
	return n
}

func (f Fragment) clone() Fragment {
	out := Fragment{Name: f.Name}
	if len(f.Children) != 0 {
		out.Children = make([]Fragment, len(f.Children))
		for i, c := range f.Children {
			out.Children[i] = c.clone()
		}
	}
	return out
}

// A Tree is an immutable snapshot of a fragment tree. A *Tree may be shared
// freely among goroutines.
type Tree struct {
	gen   uint64
	roots []Fragment
}

// New constructs a tree with the given generation number and top-level
// fragments. The fragments are copied, so later changes by the caller do not
// affect the tree.
func New(gen uint64, roots ...Fragment) *Tree {
	t := &Tree{gen: gen, roots: make([]Fragment, len(roots))}
	for i, r := range roots {
		t.roots[i] = r.clone()
	}
	return t
}

// Gen reports the generation number of t.
func (t *Tree) Gen() uint64 { return t.gen }

// Len reports the number of top-level fragments in t.
func (t *Tree) Len() int { return len(t.roots) }

// Roots returns a copy of the top-level fragments of t.
func (t *Tree) Roots() []Fragment {
	out := make([]Fragment, len(t.roots))
	for i, r := range t.roots {
		out[i] = r.clone()
	}
	return out
}

// Size reports the total number of fragments in t.
func (t *Tree) Size() int {
	var n int
	for _, r := range t.roots {
		n += r.Size()
	}
	return n
}

// String summarizes t for logging.
func (t *Tree) String() string {
	return fmt.Sprintf("fragment tree (gen %d) with %d top-level fragments", t.gen, t.Len())
}
