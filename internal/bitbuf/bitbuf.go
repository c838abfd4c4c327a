// Package bitbuf wraps a byte slice as an addressable sequence of bits
// and offers unsigned, BUFR-signed, string, and all-ones-test reads at
// an arbitrary bit offset. Unlike internal/bz2core's bitReader, which
// is a forward-only streaming reader (bzip2 is consumed strictly left
// to right), the structural walker (internal/walk) and the rectangular
// slicer (internal/slicer) both need to seek to arbitrary bit offsets
// computed ahead of time, so Buffer is addressed by an explicit offset
// on every read instead of carrying an internal cursor.
package bitbuf

import "github.com/Bram94/numpy-bufr/bufrerr"

// Buffer is a read-only, bit-addressable view over a byte slice.
type Buffer struct {
	data []byte
	bits int // total number of addressable bits
}

// New wraps data as a Buffer of len(data)*8 bits.
func New(data []byte) *Buffer {
	return &Buffer{data: data, bits: len(data) * 8}
}

// Len returns the total number of addressable bits.
func (b *Buffer) Len() int {
	return b.bits
}

func (b *Buffer) checkRange(off, w int, section string) error {
	if w < 0 || off < 0 || off+w > b.bits {
		return bufrerr.At(bufrerr.Truncated, section, off,
			"read past end of buffer")
	}
	return nil
}

// ReadUnsigned reads w bits (w<=64) at bit offset off as a big-endian
// unsigned integer.
func (b *Buffer) ReadUnsigned(off, w int) (uint64, error) {
	return b.readUnsignedIn(off, w, "section4")
}

// ReadUnsignedIn is identical to ReadUnsigned but tags a Truncated
// error, if any, with the given section name for callers outside
// Section 4 (e.g. the section framer reading Section 1 fields).
func (b *Buffer) ReadUnsignedIn(off, w int, section string) (uint64, error) {
	return b.readUnsignedIn(off, w, section)
}

func (b *Buffer) readUnsignedIn(off, w int, section string) (uint64, error) {
	if err := b.checkRange(off, w, section); err != nil {
		return 0, err
	}
	if w == 0 {
		return 0, nil
	}
	var n uint64
	for i := 0; i < w; i++ {
		n <<= 1
		n |= uint64(b.bitAt(off + i))
	}
	return n, nil
}

// ReadSigned reads w bits at bit offset off using the BUFR "first bit
// is sign flag" convention: bit 0 is the sign flag, 0 for positive and
// 1 for negative; the remaining w-1 bits are the unsigned magnitude.
// This is NOT two's complement, and is used only for reference-value
// redefinition reads.
func (b *Buffer) ReadSigned(off, w int) (int64, error) {
	if err := b.checkRange(off, w, "section4"); err != nil {
		return 0, err
	}
	if w == 0 {
		return 0, nil
	}
	sign := b.bitAt(off)
	mag, err := b.readUnsignedIn(off+1, w-1, "section4")
	if err != nil {
		return 0, err
	}
	if sign == 1 {
		return -int64(mag), nil
	}
	return int64(mag), nil
}

// ReadString reads w bits at bit offset off as a sequence of 8 bit code
// units (treated as UTF-8 bytes), trimming trailing NUL bytes.
func (b *Buffer) ReadString(off, w int) (string, error) {
	if err := b.checkRange(off, w, "section4"); err != nil {
		return "", err
	}
	if w%8 != 0 {
		return "", bufrerr.At(bufrerr.Truncated, "section4", off,
			"string field width is not a multiple of 8 bits")
	}
	n := w / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := b.readUnsignedIn(off+i*8, 8, "section4")
		if err != nil {
			return "", err
		}
		out[i] = byte(v)
	}
	end := len(out)
	for end > 0 && out[end-1] == 0 {
		end--
	}
	return string(out[:end]), nil
}

// AllOnes reports whether every bit in [off, off+w) is set, the
// missing-value sentinel used throughout Section 4 decoding.
func (b *Buffer) AllOnes(off, w int) (bool, error) {
	if err := b.checkRange(off, w, "section4"); err != nil {
		return false, err
	}
	for i := 0; i < w; i++ {
		if b.bitAt(off+i) == 0 {
			return false, nil
		}
	}
	return true, nil
}

// bitAt returns the bit at absolute bit offset off (0 = most
// significant bit of the first byte), assuming the caller has already
// range-checked off.
func (b *Buffer) bitAt(off int) byte {
	byteIdx := off / 8
	bitIdx := uint(off % 8)
	return (b.data[byteIdx] >> (7 - bitIdx)) & 1
}
