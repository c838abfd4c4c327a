// Package descriptor implements the BUFR FXY descriptor code: a six
// character identifier made up of a kind F, a class X, and a member Y.
package descriptor

import "fmt"

// Kind identifies what an FXY descriptor denotes.
type Kind uint8

const (
	// Element descriptors (F=0) name a single Table B value.
	Element Kind = 0
	// Replication descriptors (F=1) introduce a loop.
	Replication Kind = 1
	// Operator descriptors (F=2) are Table C directives.
	Operator Kind = 2
	// Sequence descriptors (F=3) expand to a Table D entry.
	Sequence Kind = 3
)

// Descriptor is an FXY code: F in {0,1,2,3}, X a two digit class, Y a
// three digit member.
type Descriptor struct {
	F uint8
	X uint8
	Y uint16
}

// New builds a Descriptor from its numeric components.
func New(f, x uint8, y uint16) Descriptor {
	return Descriptor{F: f, X: x, Y: y}
}

// FromCode builds a Descriptor from its packed decimal representation,
// i.e. the integer obtained by reading the six digit string FXXYYY.
func FromCode(code int) Descriptor {
	return Descriptor{
		F: uint8(code / 100000),
		X: uint8((code / 1000) % 100),
		Y: uint16(code % 1000),
	}
}

// Parse parses the canonical six character string form "FXXYYY".
func Parse(s string) (Descriptor, error) {
	if len(s) != 6 {
		return Descriptor{}, fmt.Errorf("descriptor: %q is not 6 characters", s)
	}
	var f, x, y int
	if _, err := fmt.Sscanf(s, "%1d%2d%3d", &f, &x, &y); err != nil {
		return Descriptor{}, fmt.Errorf("descriptor: %q: %w", s, err)
	}
	return Descriptor{F: uint8(f), X: uint8(x), Y: uint16(y)}, nil
}

// Kind classifies the descriptor by its F value.
func (d Descriptor) Kind() Kind {
	return Kind(d.F)
}

// Code returns the packed decimal representation FXXYYY as an integer,
// e.g. the Table B/D lookup key used throughout this package and its
// siblings.
func (d Descriptor) Code() int {
	return int(d.F)*100000 + int(d.X)*1000 + int(d.Y)
}

// String returns the canonical six digit "FXXYYY" form.
func (d Descriptor) String() string {
	return fmt.Sprintf("%01d%02d%03d", d.F, d.X, d.Y)
}

// IsDelayedReplicationCount reports whether d is a 0-31-YYY element,
// the class of element descriptors used as a delayed replication's
// iteration count. Such occurrences are never emitted as data (spec
// §4.5).
func (d Descriptor) IsDelayedReplicationCount() bool {
	return d.F == 0 && d.X == 31
}

// ReplicationCount returns the number of descriptors covered by a
// replication descriptor (its X field) and the fixed iteration count
// (its Y field, 0 meaning delayed).
func (d Descriptor) ReplicationCount() (descriptors int, iterations uint16) {
	return int(d.X), d.Y
}

// OperatorClass and OperatorArg split a Table C operator descriptor
// into its class (X) and argument (Y), as used by the operator-state
// transitions in internal/walk.
func (d Descriptor) OperatorClass() uint8  { return d.X }
func (d Descriptor) OperatorArg() uint16   { return d.Y }
