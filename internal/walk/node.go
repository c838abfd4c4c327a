package walk

// Node is a replication node in the tree: the span of (expanded)
// descriptors it covers, how many times it iterates, how wide its
// delayed-count field was (0 if not delayed), where its bits start,
// how many bits one iteration occupies, and its nested replication
// children in descriptor order.
//
// The root node represents "outside any replication": NIt==1, spanning
// the whole expanded descriptor list. One explicit tree value replaces
// the parallel per-depth dictionaries a dictionary-of-dictionaries
// design would otherwise need.
type Node struct {
	DescrLo, DescrHi int // span [DescrLo, DescrHi) in the expanded descriptor list
	HeaderIndex      int // index of the F=1 descriptor that introduced this node (0 for the root)
	NIt              int // number of iterations
	WDelay           int // width in bits of the delayed-count field, 0 if non-delayed
	StartBit         int // absolute bit offset where this node's single-iteration body begins
	BitsPerIt        int // bits consumed by exactly one iteration
	Depth            int // nesting depth, root is 0
	Children         []*Node
}

// TotalBits returns bits_per_it * n_it, the full bit footprint of this
// node across all of its iterations.
func (n *Node) TotalBits() int {
	return n.BitsPerIt * n.NIt
}

// RelativeStartBit returns this node's StartBit relative to parent's
// own StartBit, the offset used by the rectangular slicer
// (internal/slicer) to carve this node's bits out of its parent's
// view. For the root, parent is nil and the absolute StartBit applies.
func (n *Node) RelativeStartBit(parent *Node) int {
	if parent == nil {
		return n.StartBit
	}
	return n.StartBit - parent.StartBit
}
