// Package walk implements the structural walker, the central algorithm
// of this repository: a recursive descent over the expanded descriptor
// list that, in lock-step with an advancing bit cursor and the Table C
// operator state, produces the replication tree (internal/walk.Node)
// and an effective-parameter table recording the width/scale/reference
// value/type in force at every element descriptor occurrence.
//
// It is deliberately stdlib-only: the walk is synchronous,
// single-threaded, and free of side effects beyond reading the bit
// buffer, so there is no concurrency primitive or I/O library to wire
// in here (see DESIGN.md).
package walk

import (
	"github.com/Bram94/numpy-bufr/bufrerr"
	"github.com/Bram94/numpy-bufr/descriptor"
	"github.com/Bram94/numpy-bufr/internal/bitbuf"
	"github.com/Bram94/numpy-bufr/tables"
)

// Occurrence is the effective-parameter table entry recording the
// operator-state snapshot captured at the moment a specific element
// descriptor occurrence was visited. IsRedef marks an occurrence that
// was consumed to redefine a reference value: it is not a data-bearing
// element and internal/extract must skip it.
type Occurrence struct {
	Width     int
	Scale     int
	RefVal    int64
	Type      tables.ElementType
	IsRedef   bool
	BitOffset int // absolute bit offset this occurrence was read from, iteration 0 of every enclosing loop
}

// Result is the structural walker's output: the replication tree and
// the effective-parameter table, keyed by index into the expanded
// descriptor list that was walked.
type Result struct {
	Root        *Node
	Occurrences map[int]Occurrence
}

type options struct {
	allowlist map[int]bool
}

// Option configures Walk.
type Option func(*options)

// WithOperatorAllowlist marks additional Table C operator descriptor
// codes (packed FXXYYY) as explicit no-ops instead of faulting with
// UnsupportedOperator. Empty by default.
func WithOperatorAllowlist(codes ...int) Option {
	return func(o *options) {
		for _, c := range codes {
			o.allowlist[c] = true
		}
	}
}

// Walk runs the structural walker over descrs (the already fully
// expanded descriptor list) starting at absolute bit offset startBit
// in buf, consulting reg for Table B definitions.
func Walk(descrs []descriptor.Descriptor, buf *bitbuf.Buffer, reg *tables.Registry, startBit int, opts ...Option) (*Result, error) {
	o := options{allowlist: map[int]bool{}}
	for _, fn := range opts {
		fn(&o)
	}
	w := &walker{
		descr: descrs,
		reg:   reg,
		buf:   buf,
		n:     startBit,
		state: NewOperatorState(),
		occ:   map[int]Occurrence{},
		opts:  o,
	}
	root := &Node{DescrLo: 0, DescrHi: len(descrs), NIt: 1, StartBit: w.n, Depth: 0}
	if err := w.walkSpan(root, 0, len(descrs), false); err != nil {
		return nil, err
	}
	root.BitsPerIt = w.n - root.StartBit
	return &Result{Root: root, Occurrences: w.occ}, nil
}

type walker struct {
	descr []descriptor.Descriptor
	reg   *tables.Registry
	buf   *bitbuf.Buffer
	n     int
	state OperatorState
	occ   map[int]Occurrence
	opts  options
}

// walkSpan processes descriptors [lo, hi) of a single node's body (the
// root's full span, or a replication node's single representative
// iteration), appending any nested replication nodes to node.Children.
// insideLoop is true whenever this span lives inside any replication,
// used to fault on string-typed elements with UnsupportedStringInLoop.
func (w *walker) walkSpan(node *Node, lo, hi int, insideLoop bool) error {
	i := lo
	for i < hi {
		d := w.descr[i]
		switch d.Kind() {
		case descriptor.Element:
			if err := w.visitElement(d, i, insideLoop); err != nil {
				return err
			}
			i++
		case descriptor.Replication:
			child, consumed, err := w.walkReplication(i, node.Depth+1)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, child)
			i += consumed
		case descriptor.Operator:
			if err := w.applyOperator(d); err != nil {
				return err
			}
			i++
		default:
			return bufrerr.At(bufrerr.UnsupportedFeature, "section4", w.n,
				"sequence descriptor encountered after expansion: "+d.String())
		}
	}
	// A nested replication whose own body runs past hi extends this
	// node's span to cover it.
	if i > node.DescrHi {
		node.DescrHi = i
	}
	return nil
}

func (w *walker) visitElement(d descriptor.Descriptor, idx int, insideLoop bool) error {
	if w.state.RedefMode {
		width := w.state.RedefWidth
		val, err := w.buf.ReadSigned(w.n, width)
		if err != nil {
			return err
		}
		w.state.RefOverride[d.Code()] = val
		w.occ[idx] = Occurrence{Width: width, IsRedef: true, BitOffset: w.n}
		w.n += width
		return nil
	}

	elem, ok := w.reg.LookupElement(d.Code())
	if !ok {
		return bufrerr.At(bufrerr.UnknownElement, "section4", w.n, d.String())
	}

	if insideLoop && elem.Type == tables.String {
		return bufrerr.At(bufrerr.UnsupportedStringInLoop, "section4", w.n, d.String())
	}

	width := elem.Width + w.state.DeltaWidth
	scale := elem.Scale + w.state.DeltaScale
	refval := int64(elem.RefVal)
	if rv, ok := w.state.RefOverride[d.Code()]; ok {
		refval = rv
	}
	w.occ[idx] = Occurrence{Width: width, Scale: scale, RefVal: refval, Type: elem.Type, BitOffset: w.n}
	w.n += width
	return nil
}

func (w *walker) applyOperator(d descriptor.Descriptor) error {
	if w.state.Apply(d.OperatorClass(), d.OperatorArg()) {
		return nil
	}
	if w.opts.allowlist[d.Code()] {
		return nil
	}
	return bufrerr.At(bufrerr.UnsupportedOperator, "section4", w.n, d.String())
}

// walkReplication processes the F=1 descriptor at w.descr[i]: it
// determines the iteration count (fixed, or delayed via the following
// 0-31-YYY element), recurses into the loop body for exactly one
// iteration to learn its bit footprint, then advances the
// cursor for the remaining iterations without re-walking them. It
// returns the new node and the number of descriptors consumed in the
// parent's span (the F=1 header, plus the delayed-count element if
// any, plus the loop body).
func (w *walker) walkReplication(i int, depth int) (*Node, int, error) {
	d := w.descr[i]
	x, y := d.ReplicationCount()

	headerConsumed := 1
	bodyStart := i + 1
	var wDelay, nIt int

	if y == 0 {
		if i+1 >= len(w.descr) {
			return nil, 0, bufrerr.At(bufrerr.UnsupportedFeature, "section4", w.n,
				"delayed replication missing its count descriptor")
		}
		countDescr := w.descr[i+1]
		elem, ok := w.reg.LookupElement(countDescr.Code())
		if !ok {
			return nil, 0, bufrerr.At(bufrerr.UnknownElement, "section4", w.n, countDescr.String())
		}
		wDelay = elem.Width
		v, err := w.buf.ReadUnsigned(w.n, wDelay)
		if err != nil {
			return nil, 0, err
		}
		nIt = int(v)
		w.n += wDelay
		headerConsumed = 2
		bodyStart = i + 2
	} else {
		nIt = int(y)
	}

	node := &Node{DescrLo: bodyStart, DescrHi: bodyStart + x, HeaderIndex: i, NIt: nIt, WDelay: wDelay, Depth: depth}
	bodyStartBit := w.n
	node.StartBit = bodyStartBit

	if nIt == 0 {
		// Zero iterations: the body contributes no bits.
		node.BitsPerIt = 0
		return node, headerConsumed + x, nil
	}

	if err := w.walkSpan(node, bodyStart, bodyStart+x, true); err != nil {
		return nil, 0, err
	}
	node.BitsPerIt = w.n - bodyStartBit
	w.n += node.BitsPerIt * (nIt - 1)

	return node, node.DescrHi - i, nil
}
