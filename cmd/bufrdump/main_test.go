// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Bram94/numpy-bufr/internal/extract"
	"github.com/Bram94/numpy-bufr/tables"
)

// buildMessage assembles a minimal edition 4 BUFR message: one Table B
// element (001001, width 16) outside any loop, value 42.
func buildMessage() []byte {
	var msg []byte
	msg = append(msg, []byte("BUFR")...)
	msg = append(msg, 0x00, 0x00, 0x31)
	msg = append(msg, 0x04)

	sec1 := []byte{
		0x00, 0x00, 0x16,
		0x00,
		0x00, 0x00,
		0x00, 0x00,
		0x00,
		0x00,
		0x00,
		0x00,
		0x00,
		0x00,
		0x00,
		0x07, 0xE4,
		0x01,
		0x01,
		0x00,
		0x00,
		0x00,
	}
	msg = append(msg, sec1...)

	sec3 := []byte{
		0x00, 0x00, 0x09,
		0x00,
		0x00, 0x01,
		0x00,
		0x01, 0x01,
	}
	msg = append(msg, sec3...)

	sec4 := []byte{
		0x00, 0x00, 0x06,
		0x00,
		0x00, 0x2A,
	}
	msg = append(msg, sec4...)

	msg = append(msg, []byte("7777")...)
	return msg
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseReadMode(t *testing.T) {
	if parseReadMode("all").Kind != extract.ReadAll {
		t.Errorf("parseReadMode(all) wrong kind")
	}
	if parseReadMode("").Kind != extract.ReadAll {
		t.Errorf("parseReadMode('') wrong kind")
	}
	if parseReadMode("outside_loops").Kind != extract.ReadOutsideLoops {
		t.Errorf("parseReadMode(outside_loops) wrong kind")
	}
	if parseReadMode("001001").Kind != extract.ReadOnly {
		t.Errorf("parseReadMode(001001) wrong kind")
	}
}

func TestForEachMessage(t *testing.T) {
	one := buildMessage()
	both := append(append([]byte{}, one...), one...)

	var seen []int
	err := forEachMessage(both, func(index int, payload []byte) error {
		seen = append(seen, index)
		if len(payload) != len(one) {
			t.Errorf("message %d: len = %d, want %d", index, len(payload), len(one))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Fatalf("seen = %v, want [0 1]", seen)
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "msg.bufr", buildMessage())
	if err := scanFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
}

func TestDescribeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "msg.bufr", buildMessage())
	reg := tables.NewRegistry()
	reg.B[1001] = tables.ElementB{Code: 1001, Width: 16, Type: tables.Integral}
	if err := describeFile(context.Background(), path, reg); err != nil {
		t.Fatal(err)
	}
}

func TestDumpFileBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "junk.bufr", []byte("not a bufr message"))
	reg := tables.NewRegistry()
	enc := json.NewEncoder(io.Discard)
	if err := dumpFile(context.Background(), path, reg, extract.All(), enc); err == nil {
		t.Fatal("expected an error dumping a non-BUFR file")
	}
}

func TestDumpFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "msg.bufr", buildMessage())
	reg := tables.NewRegistry()
	reg.B[1001] = tables.ElementB{Code: 1001, Width: 16, Type: tables.Integral}
	enc := json.NewEncoder(io.Discard)
	if err := dumpFile(context.Background(), path, reg, extract.All(), enc); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeBatch(t *testing.T) {
	reg := tables.NewRegistry()
	reg.B[1001] = tables.ElementB{Code: 1001, Width: 16, Type: tables.Integral}

	msg := buildMessage()
	tasks := []batchTask{
		{file: "a", index: 0, payload: msg},
		{file: "b", index: 0, payload: msg},
		{file: "c", index: 0, payload: []byte("not a bufr message")},
	}
	err := decodeBatch(context.Background(), tasks, reg, extract.All(), 2, nil)
	if err == nil {
		t.Fatal("expected an aggregated error from the bad message")
	}
}
