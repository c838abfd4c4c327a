// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bytes"

	"github.com/Bram94/numpy-bufr/bufrerr"
	"github.com/Bram94/numpy-bufr/section"
)

// forEachMessage splits data, which may hold one or more concatenated
// BUFR messages, and invokes fn with each message's raw bytes in turn
// (Section 0's length field gives each message's total byte length, so
// the next "BUFR" magic is searched for starting right after it). If
// data is non-empty and holds no "BUFR" magic at all, it returns a
// BadMagic error. Otherwise it stops at the first error fn returns, or
// at the first stretch of data after a message with no further "BUFR"
// magic.
func forEachMessage(data []byte, fn func(index int, payload []byte) error) error {
	rest := data
	index := 0
	for len(rest) > 0 {
		idx := bytes.Index(rest, []byte("BUFR"))
		if idx < 0 {
			if index == 0 {
				return bufrerr.New(bufrerr.BadMagic, "section0", "\"BUFR\" magic not found")
			}
			return nil
		}
		_, md, _, err := section.Parse(rest[idx:])
		if err != nil {
			return err
		}
		payload := rest[idx : idx+md.Size]
		if err := fn(index, payload); err != nil {
			return err
		}
		index++
		rest = rest[idx+md.Size:]
	}
	return nil
}
