// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"

	"github.com/Bram94/numpy-bufr/section"
	"github.com/Bram94/numpy-bufr/tables"
)

func describe(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*describeFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	reg, err := registryFromFlags(ctx, &cl.CommonFlags)
	if err != nil {
		return err
	}

	errs := &errors.M{}
	for _, arg := range args {
		if err := describeFile(ctx, arg, reg); err != nil {
			errs.Append(fmt.Errorf("%s: %w", arg, err))
		}
	}
	return errs.Err()
}

func describeFile(ctx context.Context, name string, reg *tables.Registry) error {
	data, err := readMessageData(ctx, name)
	if err != nil {
		return err
	}
	return forEachMessage(data, func(index int, payload []byte) error {
		_, md, descrs, err := section.Parse(payload)
		if err != nil {
			return fmt.Errorf("message %d: %w", index, err)
		}
		expanded, err := section.ExpandSequences(descrs, reg)
		if err != nil {
			return fmt.Errorf("message %d: %w", index, err)
		}
		fmt.Printf("=== %s message %d: edition %d, centre %d, category %d, %s ===\n",
			name, index, md.Edition, md.Centre, md.Category, md.DateTime.Format("2006-01-02T15:04:05"))
		for _, line := range section.FullDescription(expanded, reg) {
			fmt.Println(line)
		}
		return nil
	})
}
