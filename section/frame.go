// Package section implements the framing and metadata extraction:
// locating the "BUFR" magic, splitting the message into its
// byte-aligned sections, decoding Sections 0/1/3 into Metadata and the
// raw descriptor list, and verifying the "7777" terminator. Every field
// offset is fixed by the WMO layout per edition, so there is nothing
// left for a caller to supply.
package section

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Bram94/numpy-bufr/bufrerr"
	"github.com/Bram94/numpy-bufr/descriptor"
	"github.com/Bram94/numpy-bufr/internal/bitbuf"
)

// Frame holds the raw bytes of every section of a BUFR message, sliced
// out of the original buffer. Sec2 is nil when Metadata.Sect2Present is
// false.
type Frame struct {
	Sec0, Sec1, Sec2, Sec3, Sec4, Sec5 []byte
}

// sect1Fields gives, per edition, the byte offset and width of
// every Section 1 field that isn't the variable-length datetime
// (handled separately).
type fieldSpan struct{ byteOffset, byteWidth int }

var sect1Fields = map[int]struct {
	master, centre, subcentre, update, sect2, cat, catInt, catLoc, mver, lver fieldSpan
	dtOffset, dtWidth                                                        int
}{
	3: {
		master:    fieldSpan{3, 1},
		centre:    fieldSpan{5, 1},
		subcentre: fieldSpan{4, 1},
		update:    fieldSpan{6, 1},
		sect2:     fieldSpan{7, 1},
		cat:       fieldSpan{8, 1},
		catInt:    fieldSpan{9, 1},
		catLoc:    fieldSpan{9, 1},
		mver:      fieldSpan{10, 1},
		lver:      fieldSpan{11, 1},
		dtOffset:  12, dtWidth: 5,
	},
	4: {
		master:    fieldSpan{3, 1},
		centre:    fieldSpan{4, 2},
		subcentre: fieldSpan{6, 2},
		update:    fieldSpan{8, 1},
		sect2:     fieldSpan{9, 1},
		cat:       fieldSpan{10, 1},
		catInt:    fieldSpan{11, 1},
		catLoc:    fieldSpan{12, 1},
		mver:      fieldSpan{13, 1},
		lver:      fieldSpan{14, 1},
		dtOffset:  15, dtWidth: 7,
	},
}

// Parse locates the "BUFR" magic in data, splits the message into its
// sections, and decodes Sections 0/1/3. It does not expand F=3 sequence
// descriptors (see ExpandSequences) or verify Section 4's content --
// only its own framing concerns: magic, lengths, terminator.
func Parse(data []byte) (*Frame, Metadata, []descriptor.Descriptor, error) {
	idx := bytes.Index(data, []byte("BUFR"))
	if idx < 0 {
		return nil, Metadata{}, nil, bufrerr.New(bufrerr.BadMagic, "section0", "\"BUFR\" magic not found")
	}
	msg := data[idx:]
	buf := bitbuf.New(msg)

	size, err := buf.ReadUnsignedIn(32, 24, "section0")
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	edition, err := buf.ReadUnsignedIn(56, 8, "section0")
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	if edition != 3 && edition != 4 {
		return nil, Metadata{}, nil, bufrerr.At(bufrerr.UnsupportedEdition, "section0", 56,
			fmt.Sprintf("edition %d", edition))
	}
	md := Metadata{Size: int(size), Edition: int(edition)}
	fields, ok := sect1Fields[md.Edition]
	if !ok {
		return nil, Metadata{}, nil, bufrerr.At(bufrerr.UnsupportedEdition, "section0", 56,
			fmt.Sprintf("edition %d", edition))
	}

	frame := &Frame{Sec0: byteSlice(msg, 0, 8)}

	n := 64 // bit cursor, past Section 0
	sec1LenBytes, err := readLen(buf, n, "section1")
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	frame.Sec1 = byteSlice(msg, n/8, sec1LenBytes)

	readField := func(fs fieldSpan, section string) (uint64, error) {
		return buf.ReadUnsignedIn(n+fs.byteOffset*8, fs.byteWidth*8, section)
	}
	var masterV, centreV, subcentreV, updateV, sect2V, catV, catIntV, catLocV, mverV, lverV uint64
	for _, f := range []struct {
		dst *uint64
		fs  fieldSpan
	}{
		{&masterV, fields.master}, {&centreV, fields.centre}, {&subcentreV, fields.subcentre},
		{&updateV, fields.update}, {&sect2V, fields.sect2}, {&catV, fields.cat},
		{&catIntV, fields.catInt}, {&catLocV, fields.catLoc}, {&mverV, fields.mver}, {&lverV, fields.lver},
	} {
		v, err := readField(f.fs, "section1")
		if err != nil {
			return nil, Metadata{}, nil, err
		}
		*f.dst = v
	}
	md.Master = int(masterV)
	md.Centre = int(centreV)
	md.SubCentre = int(subcentreV)
	md.Update = int(updateV)
	md.Sect2Present = sect2V&0x80 != 0
	md.Category = int(catV)
	md.CategoryInt = int(catIntV)
	md.CategoryLoc = int(catLocV)
	md.MasterVersion = int(mverV)
	md.LocalVersion = int(lverV)

	dt, err := decodeDateTime(buf, n+fields.dtOffset*8, md.Edition)
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	md.DateTime = dt

	n += sec1LenBytes * 8

	if md.Sect2Present {
		sec2LenBytes, err := readLen(buf, n, "section2")
		if err != nil {
			return nil, Metadata{}, nil, err
		}
		frame.Sec2 = byteSlice(msg, n/8, sec2LenBytes)
		n += sec2LenBytes * 8
	}

	sec3LenBytes, err := readLen(buf, n, "section3")
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	frame.Sec3 = byteSlice(msg, n/8, sec3LenBytes)
	descrs, err := decodeSect3(buf, n, sec3LenBytes)
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	n += sec3LenBytes * 8

	sec4LenBytes, err := readLen(buf, n, "section4")
	if err != nil {
		return nil, Metadata{}, nil, err
	}
	frame.Sec4 = byteSlice(msg, n/8, sec4LenBytes)
	n += sec4LenBytes * 8

	frame.Sec5 = byteSlice(msg, n/8, 4)
	if string(frame.Sec5) != "7777" {
		return nil, Metadata{}, nil, bufrerr.At(bufrerr.Truncated, "section5", n,
			"missing \"7777\" terminator")
	}

	return frame, md, descrs, nil
}

func readLen(buf *bitbuf.Buffer, bitOffset int, section string) (int, error) {
	v, err := buf.ReadUnsignedIn(bitOffset, 24, section)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func byteSlice(msg []byte, byteOffset, byteLen int) []byte {
	return msg[byteOffset : byteOffset+byteLen]
}

// decodeDateTime reproduces bufr_functions.dtg: edition 3 carries a two
// digit year windowed at 50 (>50 => 19xx, else 20xx) and no seconds
// field; edition 4 carries a full four digit year and seconds.
func decodeDateTime(buf *bitbuf.Buffer, bitOffset, edition int) (time.Time, error) {
	yearWidth := 8
	if edition >= 4 {
		yearWidth = 16
	}
	year, err := buf.ReadUnsignedIn(bitOffset, yearWidth, "section1")
	if err != nil {
		return time.Time{}, err
	}
	off := bitOffset + yearWidth
	month, err := buf.ReadUnsignedIn(off, 8, "section1")
	if err != nil {
		return time.Time{}, err
	}
	day, err := buf.ReadUnsignedIn(off+8, 8, "section1")
	if err != nil {
		return time.Time{}, err
	}
	hour, err := buf.ReadUnsignedIn(off+16, 8, "section1")
	if err != nil {
		return time.Time{}, err
	}
	minute, err := buf.ReadUnsignedIn(off+24, 8, "section1")
	if err != nil {
		return time.Time{}, err
	}
	var second uint64
	if edition == 4 {
		second, err = buf.ReadUnsignedIn(off+32, 8, "section1")
		if err != nil {
			return time.Time{}, err
		}
	}
	return assembleDateTime(edition, int(year), int(month), int(day), int(hour), int(minute), int(second)), nil
}

// decodeSect3 decodes Section 3: its 7 byte header (length, reserved,
// subset count, flags) is followed by
// a packed list of 16 bit FXY descriptors (2 bits F, 6 bits X, 8 bits
// Y); a single trailing padding byte, if present to keep the section
// byte-aligned, is silently dropped.
func decodeSect3(buf *bitbuf.Buffer, sectionStart, lenBytes int) ([]descriptor.Descriptor, error) {
	const header = 7
	bodyBytes := lenBytes - header
	n := bodyBytes / 2
	descrs := make([]descriptor.Descriptor, n)
	for i := 0; i < n; i++ {
		off := sectionStart + (header+i*2)*8
		f, err := buf.ReadUnsignedIn(off, 2, "section3")
		if err != nil {
			return nil, err
		}
		x, err := buf.ReadUnsignedIn(off+2, 6, "section3")
		if err != nil {
			return nil, err
		}
		y, err := buf.ReadUnsignedIn(off+8, 8, "section3")
		if err != nil {
			return nil, err
		}
		descrs[i] = descriptor.New(uint8(f), uint8(x), uint16(y))
	}
	return descrs, nil
}
