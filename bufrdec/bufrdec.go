// Package bufrdec is the top-level decoder: it frames a raw message
// (section), expands its sequence descriptors (section), walks its
// replication structure (internal/walk), and extracts its values
// (internal/extract) into a single Output.
package bufrdec

import (
	"context"

	"github.com/Bram94/numpy-bufr/internal/bitbuf"
	"github.com/Bram94/numpy-bufr/internal/extract"
	"github.com/Bram94/numpy-bufr/internal/walk"
	"github.com/Bram94/numpy-bufr/section"
	"github.com/Bram94/numpy-bufr/tables"
)

// Output is the decode result handed back to the caller: the Section
// 0/1/3 metadata, a human-readable listing of every descriptor after
// sequence expansion, the data found outside any replication, and the data
// found inside each base loop.
type Output struct {
	Metadata        section.Metadata
	FullDescription []string
	Data            map[string][]extract.Value
	DataLoops       map[int]map[string]extract.Array
}

type options struct {
	mode      extract.ReadMode
	allowlist []int
}

// Option configures Decode.
type Option func(*options)

// WithReadMode selects which part of the message gets extracted. The
// default, if WithReadMode is never supplied, is extract.All().
func WithReadMode(mode extract.ReadMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithOperatorAllowlist marks Table C operator descriptor codes
// (packed FXXYYY) that the structural walker should silently treat as
// no-ops instead of faulting with UnsupportedOperator.
func WithOperatorAllowlist(codes ...int) Option {
	return func(o *options) { o.allowlist = append(o.allowlist, codes...) }
}

// Decode decodes a single BUFR message in payload, using reg to
// interpret Table B/D/C descriptors. payload must already be the raw,
// decompressed message bytes (see envelope.Open for the bzip2
// envelope step, which callers run first).
func Decode(_ context.Context, payload []byte, reg *tables.Registry, opts ...Option) (*Output, error) {
	o := options{mode: extract.All()}
	for _, fn := range opts {
		fn(&o)
	}

	frame, md, rawDescrs, err := section.Parse(payload)
	if err != nil {
		return nil, err
	}

	expanded, err := section.ExpandSequences(rawDescrs, reg)
	if err != nil {
		return nil, err
	}

	fullDescription := section.FullDescription(expanded, reg)

	buf := bitbuf.New(frame.Sec4)
	var walkOpts []walk.Option
	if len(o.allowlist) > 0 {
		walkOpts = append(walkOpts, walk.WithOperatorAllowlist(o.allowlist...))
	}
	// Section 4's first 4 octets are its length + reserved byte, not data.
	res, err := walk.Walk(expanded, buf, reg, 32, walkOpts...)
	if err != nil {
		return nil, err
	}

	data, loops, err := extract.Extract(expanded, res, buf, o.mode)
	if err != nil {
		return nil, err
	}

	return &Output{
		Metadata:        md,
		FullDescription: fullDescription,
		Data:            data,
		DataLoops:       loops,
	}, nil
}
