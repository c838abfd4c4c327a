// Package tables holds an in-memory view of BUFR Tables A/B/C/D/CF,
// populated by an external Provider (the table loader contract). The
// core decoder (internal/walk, internal/extract) depends only on
// Tables B and D.
package tables

import "fmt"

// ElementType is the semantic type of a Table B element.
type ElementType uint8

const (
	Floating ElementType = iota
	Integral
	String
	CodeList
	BitFlag
)

func (t ElementType) String() string {
	switch t {
	case Floating:
		return "floating"
	case Integral:
		return "integral"
	case String:
		return "string"
	case CodeList:
		return "code"
	case BitFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// ElementB is a Table B entry: the definition of a single F=0 element
// descriptor. Width > 0 always; for Type == String, Scale and RefVal
// are ignored.
type ElementB struct {
	Code      int // packed FXXYYY, always F=0
	Type      ElementType
	Unit      string
	ShortName string
	LongName  string
	Scale     int
	RefVal    int
	Width     int
}

func (e ElementB) String() string {
	return fmt.Sprintf("%06d : '%s' (%s, %d, %d, %d) [%s]",
		e.Code, e.LongName, e.Type, e.Scale, e.Width, e.RefVal, e.Unit)
}

// OperatorC names a Table C operator descriptor for display purposes
// only: the structural walker in internal/walk hard-codes the
// supported operator semantics, and Table C is consulted only to
// produce human-readable text.
type OperatorC struct {
	Code int
	Name string
}

// SequenceD is a Table D entry: the ordered expansion of an F=3
// sequence descriptor into its member descriptors (packed FXXYYY
// codes).
type SequenceD []int

// Registry is an immutable, per-decode snapshot of the tables needed
// to interpret one BUFR message; it is not mutated after a decode
// begins.
type Registry struct {
	B  map[int]ElementB
	D  map[int]SequenceD
	C  map[int]OperatorC
	A  map[int]string
	CF map[int]map[int]string // descr -> {numeric value -> meaning}
}

// NewRegistry returns an empty, ready to populate Registry.
func NewRegistry() *Registry {
	return &Registry{
		B:  map[int]ElementB{},
		D:  map[int]SequenceD{},
		C:  map[int]OperatorC{},
		A:  map[int]string{},
		CF: map[int]map[int]string{},
	}
}

// LookupElement returns the Table B entry for the given packed FXXYYY
// code.
func (r *Registry) LookupElement(code int) (ElementB, bool) {
	e, ok := r.B[code]
	return e, ok
}

// LookupSequence returns the Table D expansion for the given packed
// FXXYYY sequence code.
func (r *Registry) LookupSequence(code int) (SequenceD, bool) {
	s, ok := r.D[code]
	return s, ok
}

// LookupOperatorName returns a human name for a Table C operator, or
// ("", false) if Table C wasn't loaded or doesn't name this operator;
// a missing Table C only degrades display, it never fails a decode.
func (r *Registry) LookupOperatorName(code int) (string, bool) {
	c, ok := r.C[code]
	if !ok {
		return "", false
	}
	return c.Name, true
}

// LookupCodeFlag resolves a decoded integer value through the code or
// flag table associated with descr. If Table CF wasn't loaded for
// descr, or descr isn't a code/flag typed element, the numeric value
// is returned unchanged as text.
func (r *Registry) LookupCodeFlag(descr int, value int64) string {
	elem, ok := r.B[descr]
	if !ok {
		return fmt.Sprintf("%d", value)
	}
	cf, ok := r.CF[descr]
	if !ok {
		return fmt.Sprintf("%d", value)
	}
	switch elem.Type {
	case CodeList:
		if s, ok := cf[int(value)]; ok {
			return s
		}
		return "N/A"
	case BitFlag:
		var out string
		for bit, name := range cf {
			if value&(1<<(uint(elem.Width)-uint(bit))) != 0 {
				if out != "" {
					out += "|"
				}
				out += name
			}
		}
		if out == "" {
			return "N/A"
		}
		return out
	default:
		return fmt.Sprintf("%d", value)
	}
}
