package lineage

import "github.com/google/uuid"

// DisjointSet is a union-find forest over dense indices [0, n).
//
// Each set carries a label. Unlike a textbook union-find, the label is not the
// internal representative: Union(child, parent) always keeps the label of the
// parent's set while the tree shape is chosen by size.
type DisjointSet struct {
	parent []int
	size   []int
	label  []uuid.UUID
}

// NewDisjointSet creates one singleton set per label.
func NewDisjointSet(labels []uuid.UUID) *DisjointSet {
	n := len(labels)
	d := &DisjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
		label:  make([]uuid.UUID, n),
	}
	for i := range n {
		d.parent[i] = i
		d.size[i] = 1
	}
	copy(d.label, labels)
	return d
}

// Len returns the number of elements.
func (d *DisjointSet) Len() int {
	return len(d.parent)
}

// Find returns the representative of x's set, compressing the path to it.
// Iterative so deep chains cannot exhaust the stack.
func (d *DisjointSet) Find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges child's set into parent's set. The merged set takes the label
// of parent's set. Returns false when both already share a set.
func (d *DisjointSet) Union(child, parent int) bool {
	rc, rp := d.Find(child), d.Find(parent)
	if rc == rp {
		return false
	}
	label := d.label[rp]
	if d.size[rc] > d.size[rp] {
		rc, rp = rp, rc
	}
	d.parent[rc] = rp
	d.size[rp] += d.size[rc]
	d.label[rp] = label
	return true
}

// Label returns the label of x's set.
func (d *DisjointSet) Label(x int) uuid.UUID {
	return d.label[d.Find(x)]
}

// Same reports whether a and b share a set.
func (d *DisjointSet) Same(a, b int) bool {
	return d.Find(a) == d.Find(b)
}
