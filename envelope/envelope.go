// Copyright 2019 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package envelope implements transparent bzip2 decompression: a BUFR
// message is occasionally distributed bzip2-compressed (the DWD radar
// feed this decoder targets being the motivating case), and Open hides
// that from bufrdec entirely -- it detects the envelope by magic bytes
// and, when present, decompresses it with a scanner that locates block
// boundaries and a decompressor that decodes each block as it is found,
// streaming plaintext to the caller. A single BUFR message rarely spans
// more than a handful of bzip2 blocks, so blocks are decompressed in the
// order the scanner finds them rather than fanned out across workers.
package envelope

import (
	"bytes"
	"context"
	"io"
)

// Open inspects the first bytes of r for the bzip2 file magic ("BZh")
// and, if present, returns a Reader that transparently decompresses
// the envelope; otherwise it returns r unchanged. ctx governs the
// background goroutine that drives scanning and decompression (see
// NewReader) and should be canceled by the caller once decompression
// is no longer needed.
func Open(ctx context.Context, r io.Reader) (io.Reader, error) {
	br := newBufReader(r)
	magic, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(magic, []byte("BZh")) {
		return NewReader(ctx, br), nil
	}
	return br, nil
}

// peekReader is the minimal peekable reader Open needs; it avoids
// pulling in bufio just for a 3 byte magic sniff beyond what the
// scanner already requires downstream.
func newBufReader(r io.Reader) *peekReader {
	return &peekReader{r: r}
}

type peekReader struct {
	r        io.Reader
	buf      []byte
	consumed int
}

// Peek returns the next n bytes without advancing the reader, reading
// ahead from the underlying reader as needed.
func (p *peekReader) Peek(n int) ([]byte, error) {
	for len(p.buf)-p.consumed < n {
		chunk := make([]byte, n)
		m, err := p.r.Read(chunk)
		p.buf = append(p.buf, chunk[:m]...)
		if err != nil {
			if len(p.buf)-p.consumed >= n {
				break
			}
			return p.buf[p.consumed:], err
		}
		if m == 0 {
			break
		}
	}
	end := p.consumed + n
	if end > len(p.buf) {
		end = len(p.buf)
	}
	return p.buf[p.consumed:end], nil
}

// Read implements io.Reader, draining any peeked bytes first.
func (p *peekReader) Read(buf []byte) (int, error) {
	if p.consumed < len(p.buf) {
		n := copy(buf, p.buf[p.consumed:])
		p.consumed += n
		if n == len(buf) {
			return n, nil
		}
		m, err := p.r.Read(buf[n:])
		return n + m, err
	}
	return p.r.Read(buf)
}
