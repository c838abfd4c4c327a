// Package extract implements the value extractor and result assembler:
// two traversals of the expanded descriptor list -- one for data
// outside any replication, one per base loop -- that read raw bit
// fields (directly, or through internal/slicer for loop nests), apply
// (raw + refval) / 10^scale, and route the results into two
// containers: the outside-loop map and the per-loop array map.
package extract

import "fmt"

// ValueKind discriminates an extracted value's underlying type.
type ValueKind uint8

const (
	KindFloat ValueKind = iota
	KindInt
	KindText
)

// Value is a single decoded field: a floating number, an integral
// number, text, or null. Missingness (IsNull) is a first-class variant,
// not a sentinel value layered on top of Float/Int/Text.
type Value struct {
	Kind   ValueKind
	Float  float64
	Int    int64
	Text   string
	IsNull bool
}

func (v Value) String() string {
	if v.IsNull {
		return "null"
	}
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindText:
		return v.Text
	default:
		return "?"
	}
}

// Array is a rectangular numeric buffer plus its shape vector: Values
// is stored flat, row-major, outermost iteration dimension first,
// ending with the innermost loop's iteration axis, so inside-loop
// arrays preserve iteration-axis order outer-to-inner.
type Array struct {
	Shape  []int
	Values []Value
}

// At returns the value at the given per-dimension index (outermost
// first), decomposing it against Shape internally.
func (a Array) At(index ...int) Value {
	flat := 0
	for i, ix := range index {
		flat = flat*a.Shape[i] + ix
	}
	return a.Values[flat]
}
