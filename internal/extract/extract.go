package extract

import (
	"math"

	"github.com/Bram94/numpy-bufr/descriptor"
	"github.com/Bram94/numpy-bufr/internal/bitbuf"
	"github.com/Bram94/numpy-bufr/internal/slicer"
	"github.com/Bram94/numpy-bufr/internal/walk"
	"github.com/Bram94/numpy-bufr/tables"
)

// ReadModeKind selects which subset of a message's data Extract
// assembles.
type ReadModeKind uint8

const (
	// ReadAll extracts both outside-loop data and every base loop.
	ReadAll ReadModeKind = iota
	// ReadOutsideLoops extracts only data outside any replication;
	// the inside-loop container comes back empty.
	ReadOutsideLoops
	// ReadOnly restricts inside-loop extraction to the descriptor
	// codes named in ReadMode.Codes. Outside-loop data is unaffected.
	ReadOnly
)

// ReadMode configures Extract. The zero value is ReadAll.
type ReadMode struct {
	Kind  ReadModeKind
	Codes map[string]bool
}

// All returns the default read mode: everything.
func All() ReadMode { return ReadMode{Kind: ReadAll} }

// OutsideLoopsOnly restricts extraction to data outside any replication.
func OutsideLoopsOnly() ReadMode { return ReadMode{Kind: ReadOutsideLoops} }

// Only restricts inside-loop extraction to the given descriptor codes
// (canonical "FXXYYY" strings). Outside-loop data is always extracted
// in full regardless of mode.
func Only(codes ...string) ReadMode {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return ReadMode{Kind: ReadOnly, Codes: set}
}

func (m ReadMode) allows(code string) bool {
	if m.Kind != ReadOnly {
		return true
	}
	return m.Codes[code]
}

// Extract assembles the two data containers from a structural walk
// result: data holds every descriptor occurrence outside any
// replication (one slice entry per occurrence, in encounter order);
// loops holds one container per base loop (1-indexed, by a running
// base-loop counter), each mapping a descriptor code to its
// rectangular Array.
//
// A trailing, always-empty container one past the last base loop is
// always included, even for a scalar-only message with no loops at
// all (data_loops == {1: {}}), since the loop counter advances -- and
// the next container is pre-created -- immediately after finishing a
// base loop, regardless of whether another loop follows.
func Extract(descrs []descriptor.Descriptor, res *walk.Result, buf *bitbuf.Buffer, mode ReadMode) (map[string][]Value, map[int]map[string]Array, error) {
	data, err := extractOutside(descrs, res.Occurrences, res.Root, buf)
	if err != nil {
		return nil, nil, err
	}

	loops := map[int]map[string]Array{}
	if mode.Kind == ReadOutsideLoops {
		return data, loops, nil
	}

	n := len(res.Root.Children)
	for i := 1; i <= n+1; i++ {
		loops[i] = map[string]Array{}
	}
	for i, child := range res.Root.Children {
		if err := extractLoop(child, nil, descrs, res.Occurrences, buf, loops[i+1], mode.allows); err != nil {
			return nil, nil, err
		}
	}
	return data, loops, nil
}

// extractOutside walks the root span in descriptor order, appending
// one Value per non-redefinition element occurrence encountered
// outside any replication, and skipping every replication's full span
// (its F=1 header, delayed-count element if any, and body) wholesale.
func extractOutside(descrs []descriptor.Descriptor, occ map[int]walk.Occurrence, root *walk.Node, buf *bitbuf.Buffer) (map[string][]Value, error) {
	data := map[string][]Value{}
	childIdx := 0
	for i := 0; i < len(descrs); {
		if childIdx < len(root.Children) && i == root.Children[childIdx].HeaderIndex {
			i = root.Children[childIdx].DescrHi
			childIdx++
			continue
		}
		d := descrs[i]
		if d.Kind() == descriptor.Element {
			if o, ok := occ[i]; ok && !o.IsRedef {
				v, err := readValue(buf, o.BitOffset, o)
				if err != nil {
					return nil, err
				}
				code := d.String()
				data[code] = append(data[code], v)
			}
		}
		i++
	}
	return data, nil
}

// extractLoop recursively populates out with every descriptor code
// found anywhere within node's subtree, each as a rectangular Array
// whose shape is the full ancestor-to-node replication chain (spec
// §4.5: all nesting levels within one base loop share that base loop's
// container). allowed restricts which codes are recorded; pass a
// function that always returns true to record everything.
func extractLoop(node *walk.Node, chain []*walk.Node, descrs []descriptor.Descriptor, occ map[int]walk.Occurrence, buf *bitbuf.Buffer, out map[string]Array, allowed func(string) bool) error {
	fullChain := make([]*walk.Node, len(chain)+1)
	copy(fullChain, chain)
	fullChain[len(chain)] = node

	shape := slicer.Shape(fullChain)
	n := slicer.NumIterations(shape)

	childIdx := 0
	for i := node.DescrLo; i < node.DescrHi; {
		if childIdx < len(node.Children) && i == node.Children[childIdx].HeaderIndex {
			child := node.Children[childIdx]
			if err := extractLoop(child, fullChain, descrs, occ, buf, out, allowed); err != nil {
				return err
			}
			i = child.DescrHi
			childIdx++
			continue
		}
		d := descrs[i]
		if d.Kind() == descriptor.Element && !d.IsDelayedReplicationCount() {
			if o, ok := occ[i]; ok && !o.IsRedef {
				code := d.String()
				if allowed(code) {
					localOff := o.BitOffset - node.StartBit
					arr := Array{Shape: append([]int{}, shape...), Values: make([]Value, n)}
					for flat := 0; flat < n; flat++ {
						idx := slicer.Indices(shape, flat)
						off := slicer.Offset(fullChain, idx, localOff)
						v, err := readValue(buf, off, o)
						if err != nil {
							return err
						}
						arr.Values[flat] = v
					}
					out[code] = arr
				}
			}
		}
		i++
	}
	return nil
}

// readValue decodes the field described by o at absolute bit offset
// off: null if every bit is set (the missing-value rule, which applies
// uniformly to numeric and string fields alike), the raw 8-bit
// text otherwise for string types, or (raw + refval) / 10^scale -- as a
// float when scale > 0, otherwise as an exact integer -- for everything
// else.
func readValue(buf *bitbuf.Buffer, off int, o walk.Occurrence) (Value, error) {
	allOnes, err := buf.AllOnes(off, o.Width)
	if err != nil {
		return Value{}, err
	}
	if allOnes {
		return Value{IsNull: true}, nil
	}

	if o.Type == tables.String {
		s, err := buf.ReadString(off, o.Width)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindText, Text: s}, nil
	}

	raw, err := buf.ReadUnsigned(off, o.Width)
	if err != nil {
		return Value{}, err
	}
	numer := int64(raw) + o.RefVal
	if o.Scale > 0 {
		return Value{Kind: KindFloat, Float: float64(numer) / math.Pow10(o.Scale)}, nil
	}
	mult := int64(math.Pow10(-o.Scale))
	return Value{Kind: KindInt, Int: numer * mult}, nil
}
