// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/Bram94/numpy-bufr/internal/extract"
)

// parseReadMode turns the --read-mode flag value into an extract.ReadMode:
// "all", "outside_loops", or a comma separated list of descriptor codes
// to read only.
func parseReadMode(s string) extract.ReadMode {
	switch s {
	case "", "all":
		return extract.All()
	case "outside_loops":
		return extract.OutsideLoopsOnly()
	default:
		codes := strings.Split(s, ",")
		for i := range codes {
			codes[i] = strings.TrimSpace(codes[i])
		}
		return extract.Only(codes...)
	}
}
