package descriptor

import "testing"

func TestParseAndString(t *testing.T) {
	cases := []struct {
		s    string
		want Descriptor
	}{
		{"001001", Descriptor{F: 0, X: 1, Y: 1}},
		{"101003", Descriptor{F: 1, X: 1, Y: 3}},
		{"201132", Descriptor{F: 2, X: 1, Y: 132}},
		{"301000", Descriptor{F: 3, X: 1, Y: 0}},
	}
	for _, c := range cases {
		got, err := Parse(c.s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.s, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %+v, want %+v", c.s, got, c.want)
		}
		if got.String() != c.s {
			t.Errorf("String() = %q, want %q", got.String(), c.s)
		}
	}
}

func TestFromCode(t *testing.T) {
	d := FromCode(31001)
	if d.F != 0 || d.X != 31 || d.Y != 1 {
		t.Fatalf("FromCode(31001) = %+v", d)
	}
	if !d.IsDelayedReplicationCount() {
		t.Fatalf("expected 0-31-001 to be a delayed replication count")
	}
}

func TestKind(t *testing.T) {
	if (Descriptor{F: 0}).Kind() != Element {
		t.Fatal("F=0 should be Element")
	}
	if (Descriptor{F: 1}).Kind() != Replication {
		t.Fatal("F=1 should be Replication")
	}
	if (Descriptor{F: 2}).Kind() != Operator {
		t.Fatal("F=2 should be Operator")
	}
	if (Descriptor{F: 3}).Kind() != Sequence {
		t.Fatal("F=3 should be Sequence")
	}
}

func TestReplicationCount(t *testing.T) {
	d := New(1, 10, 0)
	n, y := d.ReplicationCount()
	if n != 10 || y != 0 {
		t.Fatalf("ReplicationCount() = %d, %d, want 10, 0", n, y)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("1"); err == nil {
		t.Fatal("expected error for short descriptor")
	}
}
