package section

import (
	"fmt"

	"github.com/Bram94/numpy-bufr/descriptor"
	"github.com/Bram94/numpy-bufr/tables"
)

// FullDescription renders one human-readable line per descriptor:
// Table B elements use their ElementB.String() form, replication
// descriptors render as "NNNNNN : LOOP, M desc., N times", and operator
// descriptors render as "NNNNNN : OPERATOR <name>: <arg>" (or
// "OPERATOR '<name>'" for class >= 22, which carries no argument).
// descrs must already be post-expansion (see ExpandSequences): no F=3
// sequence descriptor ever reaches this function.
func FullDescription(descrs []descriptor.Descriptor, reg *tables.Registry) []string {
	lines := make([]string, 0, len(descrs))
	for _, d := range descrs {
		switch d.Kind() {
		case descriptor.Element:
			if elem, ok := reg.LookupElement(d.Code()); ok {
				lines = append(lines, elem.String())
			} else {
				lines = append(lines, fmt.Sprintf("%06d : <unknown element>", d.Code()))
			}
		case descriptor.Replication:
			m, n := d.ReplicationCount()
			lines = append(lines, fmt.Sprintf("%06d : LOOP, %d desc., %d times", d.Code(), m, n))
		case descriptor.Operator:
			name, ok := reg.LookupOperatorName(d.Code())
			if !ok {
				name = fmt.Sprintf("%d", d.OperatorClass())
			}
			if d.OperatorClass() < 22 {
				lines = append(lines, fmt.Sprintf("%06d : OPERATOR %s: %d", d.Code(), name, d.OperatorArg()))
			} else {
				lines = append(lines, fmt.Sprintf("%06d : OPERATOR '%s'", d.Code(), name))
			}
		}
	}
	return lines
}
