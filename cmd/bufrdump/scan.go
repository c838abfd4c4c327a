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
)

func scanFile(ctx context.Context, name string) error {
	data, err := readMessageData(ctx, name)
	if err != nil {
		return err
	}
	return forEachMessage(data, func(index int, payload []byte) error {
		_, md, _, err := section.Parse(payload)
		if err != nil {
			return fmt.Errorf("message %d: %w", index, err)
		}
		fmt.Printf("%s message %d: %d bytes, edition %d, centre %d, subcentre %d, category %d, update %d, %s\n",
			name, index, md.Size, md.Edition, md.Centre, md.SubCentre, md.Category, md.Update,
			md.DateTime.Format("2006-01-02T15:04:05"))
		return nil
	})
}

func scan(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	cmdutil.HandleSignals(cancel, os.Interrupt)
	errs := &errors.M{}
	for _, arg := range args {
		errs.Append(scanFile(ctx, arg))
	}
	return errs.Err()
}
