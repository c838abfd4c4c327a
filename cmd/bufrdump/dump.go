// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"

	"github.com/Bram94/numpy-bufr/bufrdec"
	"github.com/Bram94/numpy-bufr/envelope"
	"github.com/Bram94/numpy-bufr/internal/extract"
	"github.com/Bram94/numpy-bufr/tables"
)

func dump(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*dumpFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	reg, err := registryFromFlags(ctx, &cl.CommonFlags)
	if err != nil {
		return err
	}
	mode := parseReadMode(cl.ReadMode)

	wr, writerCleanup, err := createFile(ctx, cl.OutputFile)
	if err != nil {
		return err
	}
	defer writerCleanup(ctx)

	errs := &errors.M{}
	enc := json.NewEncoder(wr)
	enc.SetIndent("", "  ")

	for _, arg := range args {
		if err := dumpFile(ctx, arg, reg, mode, enc); err != nil {
			errs.Append(fmt.Errorf("%s: %w", arg, err))
		}
	}
	return errs.Err()
}

// readMessageData opens name (local, S3, URL) and transparently
// decompresses its bzip2 envelope, if any, returning the raw message
// bytes ready for forEachMessage/bufrdec.Decode.
func readMessageData(ctx context.Context, name string) ([]byte, error) {
	rd, _, cleanup, err := openFileOrURL(ctx, name)
	if err != nil {
		return nil, err
	}
	defer cleanup(ctx)
	decompressed, err := envelope.Open(ctx, rd)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(decompressed)
}

func dumpFile(ctx context.Context, name string, reg *tables.Registry, mode extract.ReadMode, enc *json.Encoder) error {
	data, err := readMessageData(ctx, name)
	if err != nil {
		return err
	}
	return forEachMessage(data, func(index int, payload []byte) error {
		out, err := bufrdec.Decode(ctx, payload, reg, bufrdec.WithReadMode(mode))
		if err != nil {
			return fmt.Errorf("message %d: %w", index, err)
		}
		return enc.Encode(out)
	})
}
