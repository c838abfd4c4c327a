// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package envelope

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"time"

	"github.com/Bram94/numpy-bufr/internal/bz2core"
)

func updateStreamCRC(streamCRC, blockCRC uint32) uint32 {
	return (streamCRC<<1 | streamCRC>>31) ^ blockCRC
}

type decompressorOpts struct {
	verbose    bool
	progressCh chan<- Progress
}

// DecompressorOption configures a Decompressor.
type DecompressorOption func(*decompressorOpts)

// BZVerbose controls verbose logging for decompression.
func BZVerbose(v bool) DecompressorOption {
	return func(o *decompressorOpts) {
		o.verbose = v
	}
}

// BZSendUpdates sets the channel for sending progress updates over.
func BZSendUpdates(ch chan<- Progress) DecompressorOption {
	return func(o *decompressorOpts) {
		o.progressCh = ch
	}
}

// Decompressor decompresses the sequence of bzip2 blocks a Scanner finds.
// A BUFR message's bzip2 envelope rarely holds more than a handful of
// blocks, so Append decompresses and emits each block as it arrives
// instead of fanning blocks out across a worker pool and reassembling
// them in order afterwards.
type Decompressor struct {
	ctx        context.Context
	progressCh chan<- Progress
	verbose    bool
	order      uint64
	streamCRC  uint32
	prd        *io.PipeReader
	pwr        *io.PipeWriter
}

// Progress is used to report the progress of decompression. Each report
// pertains to one decompressed block, in stream order.
type Progress struct {
	Duration         time.Duration
	Block            uint64
	CRC              uint32
	Compressed, Size int
}

// NewDecompressor creates a new sequential decompressor.
func NewDecompressor(ctx context.Context, opts ...DecompressorOption) *Decompressor {
	o := decompressorOpts{}
	for _, fn := range opts {
		fn(&o)
	}
	dc := &Decompressor{
		ctx:        ctx,
		progressCh: o.progressCh,
		verbose:    o.verbose,
	}
	dc.prd, dc.pwr = io.Pipe()
	return dc
}

type blockDesc struct {
	order         uint64
	crc           uint32
	bzipBlockSize int
	block         []byte
	offset        int

	err      error
	data     []byte
	duration time.Duration
}

func (b *blockDesc) String() string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v: crc %v, size %v, offset %v", b.order, b.crc, len(b.block), b.offset)
}

func (dc *Decompressor) trace(format string, args ...interface{}) {
	if dc.verbose {
		log.Printf(format, args...)
	}
}

func (b *blockDesc) decompress() {
	start := time.Now()
	rd := bzip2.NewBlockReader(b.bzipBlockSize, b.block, b.offset)
	b.data, b.err = ioutil.ReadAll(rd)
	b.duration = time.Since(start)
}

// Append decompresses cb and writes its plaintext to the decompressed
// stream. It is called once per block, in the order the Scanner found
// them in.
func (dc *Decompressor) Append(cb CompressedBlock) error {
	dc.order++
	b := &blockDesc{
		order:         dc.order,
		crc:           cb.CRC,
		block:         cb.Data,
		bzipBlockSize: cb.StreamBlockSize,
		offset:        cb.BitOffset,
	}
	dc.trace("decompressing: %s", b)
	b.decompress()
	if b.err != nil {
		dc.pwr.CloseWithError(b.err)
		return b.err
	}
	dc.trace("decompressed: %s", b)
	if _, err := dc.pwr.Write(b.data); err != nil {
		return err
	}
	dc.streamCRC = updateStreamCRC(dc.streamCRC, b.crc)
	if dc.progressCh != nil {
		select {
		case dc.progressCh <- Progress{
			Duration:   b.duration,
			Block:      b.order,
			CRC:        b.crc,
			Compressed: len(b.block),
			Size:       len(b.data),
		}:
		case <-dc.ctx.Done():
			return dc.ctx.Err()
		}
	}
	return nil
}

// Cancel can be called to unblock any readers that are reading from
// this decompressor and/or the Finish method.
func (dc *Decompressor) Cancel(err error) {
	dc.pwr.CloseWithError(err)
}

// Finish must be called once every block has been Appended. It closes
// the decompressed stream so the final Read sees io.EOF.
func (dc *Decompressor) Finish() (crc uint32, err error) {
	select {
	case <-dc.ctx.Done():
		err = dc.ctx.Err()
	default:
	}
	dc.pwr.Close()
	crc = dc.streamCRC
	return
}

// Read implements io.Reader.
func (dc *Decompressor) Read(buf []byte) (int, error) {
	return dc.prd.Read(buf)
}
