// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command bufrdump decodes WMO BUFR messages. Files may be local, on S3
// or a URL, and may be bzip2 compressed (detected by magic bytes, see
// envelope.Open).
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"cloudeng.io/cmdutil/subcmd"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"

	"github.com/Bram94/numpy-bufr/tables"
)

// CommonFlags are shared by every subcommand that needs a table set to
// interpret Table B/D descriptors.
type CommonFlags struct {
	TablePath string `subcmd:"table-path,,'root path (local, s3://, or http(s)://) of the Table A/B/C/D/CF set to load; omit to decode structure only, against an empty table set'"`
	TableType string `subcmd:"table-type,bufrdc,'table dialect: bufrdc, eccodes, or libdwd'"`
	Verbose   bool   `subcmd:"verbose,false,verbose debug/trace information"`
}

type dumpFlags struct {
	CommonFlags
	ReadMode   string `subcmd:"read-mode,all,'all, outside_loops, or a comma separated list of descriptor codes to read only'"`
	OutputFile string `subcmd:"output,,'output file or s3 path for the JSON, omit for stdout'"`
}

type describeFlags struct {
	CommonFlags
}

type noFlags struct{}

type batchFlags struct {
	CommonFlags
	ReadMode    string `subcmd:"read-mode,all,'all, outside_loops, or a comma separated list of descriptor codes to read only'"`
	Concurrency int    `subcmd:"concurrency,4,'number of messages to decode concurrently'"`
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
}

var cmdSet *subcmd.CommandSet

func init() {
	dumpCmd := subcmd.NewCommand("dump",
		subcmd.MustRegisterFlagStruct(&dumpFlags{}, nil, nil),
		dump, subcmd.AtLeastNArguments(1))
	dumpCmd.Document(`decode BUFR messages and print their data as JSON. Files may be local, on S3 or a URL.`)

	describeCmd := subcmd.NewCommand("describe",
		subcmd.MustRegisterFlagStruct(&describeFlags{}, nil, nil),
		describe, subcmd.AtLeastNArguments(1))
	describeCmd.Document(`print the human readable Section 3 descriptor listing for BUFR messages, without decoding Section 4.`)

	scanCmd := subcmd.NewCommand("scan",
		subcmd.MustRegisterFlagStruct(&noFlags{}, nil, nil),
		scan, subcmd.AtLeastNArguments(1))
	scanCmd.Document(`scan files for BUFR message boundaries and print each message's Section 0/1 metadata.`)

	batchCmd := subcmd.NewCommand("batch",
		subcmd.MustRegisterFlagStruct(&batchFlags{}, nil, nil),
		batch, subcmd.AtLeastNArguments(1))
	batchCmd.Document(`decode every BUFR message in one or more files concurrently, reporting per-message failures without aborting the run.`)

	cmdSet = subcmd.NewCommandSet(dumpCmd, describeCmd, scanCmd, batchCmd)
	cmdSet.Document(`decode and inspect WMO BUFR messages. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

// registryFromFlags loads the table set named by cl.TablePath/TableType.
// When TablePath is empty it returns an empty Registry: the decoder
// core still runs, but every Table B/D lookup misses, which is enough
// to exercise describe and scan without requiring a real table set.
// Parsing the on-disk table grammar itself is out of scope for this
// module (tables.TableParser is the seam a caller plugs a real parser
// into); decoding Section 4 against real data requires registering one.
func registryFromFlags(ctx context.Context, cl *CommonFlags) (*tables.Registry, error) {
	if cl.TablePath == "" {
		return tables.NewRegistry(), nil
	}
	provider := tables.NewFileProvider(map[tables.Format]tables.TableParser{})
	return provider.Get(ctx, tables.Key{
		Root:   cl.TablePath,
		Format: tables.Format(cl.TableType),
	})
}

func openFileOrURL(ctx context.Context, name string) (io.Reader, int64, func(context.Context) error, error) {
	if strings.HasPrefix(name, "http") {
		resp, err := http.Get(name)
		if err != nil {
			return nil, 0, nil, err
		}
		return resp.Body,
			resp.ContentLength,
			func(context.Context) error {
				resp.Body.Close()
				return nil
			},
			err
	}
	info, err := file.Stat(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, 0, nil, err
	}
	return f.Reader(ctx), info.Size(), f.Close, nil
}

func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if len(name) == 0 {
		return os.Stdout,
			func(context.Context) error {
				return nil
			},
			nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}
