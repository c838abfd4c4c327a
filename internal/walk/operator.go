package walk

// OperatorState is the Table C operator accumulator: an additive width
// delta, an additive scale delta, a reference-value override map, and
// a "redefine reference value" mode. It is mutated in lock-step as the
// structural walker scans the expanded descriptor list; the override
// map is consulted when the walker records an Occurrence, which snapshots a value per
// descriptor *occurrence*, not per code, so two occurrences of the
// same code under different operator states never collide.
type OperatorState struct {
	DeltaWidth  int
	DeltaScale  int
	RefOverride map[int]int64 // descriptor code -> reference value override
	RedefMode   bool
	RedefWidth  int // valid only while RedefMode is true
}

// NewOperatorState returns the initial operator state: no deltas, no
// overrides, redefinition off.
func NewOperatorState() OperatorState {
	return OperatorState{RefOverride: map[int]int64{}}
}

// Apply mutates the state according to a Table C operator descriptor
// (F=2). x is the operator class (2-XX-YYY's XX), y its argument
// (YYY). It returns false if the operator class is not one of 2-01
// (width), 2-02 (scale), 2-03 (reference value redefinition).
func (s *OperatorState) Apply(x uint8, y uint16) (supported bool) {
	switch x {
	case 1:
		if y == 0 {
			s.DeltaWidth = 0
		} else {
			s.DeltaWidth = int(y) - 128
		}
	case 2:
		if y == 0 {
			s.DeltaScale = 0
		} else {
			s.DeltaScale = int(y) - 128
		}
	case 3:
		if y != 255 {
			s.RedefMode = true
			s.RedefWidth = int(y)
		} else {
			s.RedefMode = false
		}
	default:
		return false
	}
	return true
}
