// Package slicer implements a rectangular slicer: given the
// replication tree produced by internal/walk, it resolves the absolute
// bit offset of any element inside a (possibly nested) loop nest
// without re-walking the descriptor list or materializing a reshaped
// copy of the bit buffer.
//
// There is no array/tensor library in this module's domain stack to
// reach for (stdlib only, matching internal/walk's reasoning in
// DESIGN.md), so offsets are computed in closed form instead of
// copied into a materialized reshaped array:
//
// Every node's StartBit, as recorded by the structural walker, is the
// absolute bit offset of that node's body when every ancestor loop is
// at iteration 0 (the walker visits each loop body exactly once,
// assuming -- as the "rectangular" framing requires -- that the nested
// structure is identical across all outer iterations). Picking
// iteration index i_k at chain level k therefore shifts everything
// nested under it by i_k * (that level's BitsPerIt), independently and
// additively per level, giving:
//
//	offset = innermost.StartBit + Σ_k indices[k]*chain[k].BitsPerIt + localOffset
package slicer

import "github.com/Bram94/numpy-bufr/internal/walk"

// Shape returns the iteration counts of a replication chain, outermost
// first: the shape of a loop nest's rectangular view,
// (n_it_1, ..., n_it_k).
func Shape(chain []*walk.Node) []int {
	shape := make([]int, len(chain))
	for i, n := range chain {
		shape[i] = n.NIt
	}
	return shape
}

// Offset returns the absolute bit offset, within the Section 4 payload,
// of local offset localOff inside one iteration of chain's innermost
// node, when the ancestor chain is positioned at indices (one per
// chain entry, outermost first; indices[k] must be in [0, chain[k].NIt)).
func Offset(chain []*walk.Node, indices []int, localOff int) int {
	innermost := chain[len(chain)-1]
	off := innermost.StartBit + localOff
	for k, n := range chain {
		off += indices[k] * n.BitsPerIt
	}
	return off
}

// NumIterations returns the total number of (outer, ..., inner)
// index combinations spanned by shape, i.e. the product of its
// dimensions (1 for an empty shape).
func NumIterations(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Indices decomposes a row-major flat index (0 <= flat < NumIterations(shape))
// into one index per dimension of shape, outermost first.
func Indices(shape []int, flat int) []int {
	idx := make([]int, len(shape))
	for k := len(shape) - 1; k >= 0; k-- {
		d := shape[k]
		if d == 0 {
			idx[k] = 0
			continue
		}
		idx[k] = flat % d
		flat /= d
	}
	return idx
}
