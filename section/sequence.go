package section

import (
	"github.com/Bram94/numpy-bufr/bufrerr"
	"github.com/Bram94/numpy-bufr/descriptor"
	"github.com/Bram94/numpy-bufr/tables"
)

// ExpandSequences replaces every F=3 sequence descriptor in descrs with
// its Table D expansion, repeating until no sequence descriptors
// remain (a sequence may itself expand to further sequences).
func ExpandSequences(descrs []descriptor.Descriptor, reg *tables.Registry) ([]descriptor.Descriptor, error) {
	cur := descrs
	for containsSequence(cur) {
		next := make([]descriptor.Descriptor, 0, len(cur))
		for _, d := range cur {
			if d.Kind() != descriptor.Sequence {
				next = append(next, d)
				continue
			}
			seq, ok := reg.LookupSequence(d.Code())
			if !ok {
				return nil, bufrerr.New(bufrerr.UnknownSequence, "section3", d.String())
			}
			for _, code := range seq {
				next = append(next, descriptor.FromCode(code))
			}
		}
		cur = next
	}
	return cur, nil
}

func containsSequence(descrs []descriptor.Descriptor) bool {
	for _, d := range descrs {
		if d.Kind() == descriptor.Sequence {
			return true
		}
	}
	return false
}
