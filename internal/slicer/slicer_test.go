package slicer

import (
	"testing"

	"github.com/Bram94/numpy-bufr/internal/walk"
)

func TestShapeAndOffsetSingleLevel(t *testing.T) {
	node := &walk.Node{StartBit: 32, BitsPerIt: 8, NIt: 3}
	chain := []*walk.Node{node}
	if got := Shape(chain); len(got) != 1 || got[0] != 3 {
		t.Fatalf("Shape = %v", got)
	}
	for it := 0; it < 3; it++ {
		off := Offset(chain, []int{it}, 0)
		want := 32 + it*8
		if off != want {
			t.Fatalf("Offset(it=%d) = %d, want %d", it, off, want)
		}
	}
}

func TestOffsetNested(t *testing.T) {
	// Outer loop: 2 iterations of 16 bits each (one inner loop of 2x8).
	outer := &walk.Node{StartBit: 32, BitsPerIt: 16, NIt: 2}
	inner := &walk.Node{StartBit: 32, BitsPerIt: 8, NIt: 2}
	chain := []*walk.Node{outer, inner}

	// bytes 0x01 0x02 0x03 0x04 at bit 32.
	// outer=0,inner=0 -> byte 0; outer=0,inner=1 -> byte1;
	// outer=1,inner=0 -> byte2; outer=1,inner=1 -> byte3.
	cases := []struct{ outerIdx, innerIdx, wantByteOffset int }{
		{0, 0, 0}, {0, 1, 1}, {1, 0, 2}, {1, 1, 3},
	}
	for _, c := range cases {
		off := Offset(chain, []int{c.outerIdx, c.innerIdx}, 0)
		want := 32 + c.wantByteOffset*8
		if off != want {
			t.Fatalf("Offset(outer=%d,inner=%d) = %d, want %d", c.outerIdx, c.innerIdx, off, want)
		}
	}
}

func TestNumIterationsAndIndicesRoundTrip(t *testing.T) {
	shape := []int{2, 3}
	if n := NumIterations(shape); n != 6 {
		t.Fatalf("NumIterations = %d, want 6", n)
	}
	seen := map[[2]int]bool{}
	for flat := 0; flat < 6; flat++ {
		idx := Indices(shape, flat)
		seen[[2]int{idx[0], idx[1]}] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct index combinations, got %d", len(seen))
	}
}
