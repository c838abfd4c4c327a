// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"cloudeng.io/cmdutil"
	"cloudeng.io/errors"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/Bram94/numpy-bufr/bufrdec"
	"github.com/Bram94/numpy-bufr/internal/extract"
	"github.com/Bram94/numpy-bufr/tables"
)

// batchTask is one message pulled out of one input file, queued for
// concurrent decoding.
type batchTask struct {
	file    string
	index   int
	payload []byte
}

// progressUpdate signals one completed unit of work, emitted once per
// message decoded.
type progressUpdate struct{}

func batchProgressBar(wr *os.File, ch <-chan progressUpdate, total int) {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	for range ch {
		bar.Add(1)
	}
	fmt.Fprintln(wr)
}

func batch(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*batchFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	reg, err := registryFromFlags(ctx, &cl.CommonFlags)
	if err != nil {
		return err
	}
	mode := parseReadMode(cl.ReadMode)

	var tasks []batchTask
	readErrs := &errors.M{}
	for _, arg := range args {
		data, err := readMessageData(ctx, arg)
		if err != nil {
			readErrs.Append(fmt.Errorf("%s: %w", arg, err))
			continue
		}
		err = forEachMessage(data, func(index int, payload []byte) error {
			tasks = append(tasks, batchTask{file: arg, index: index, payload: payload})
			return nil
		})
		readErrs.Append(err)
	}

	var progressCh chan progressUpdate
	var progressWg sync.WaitGroup
	if cl.ProgressBar && len(tasks) > 0 {
		progressCh = make(chan progressUpdate, cl.Concurrency)
		wr := os.Stdout
		if !terminal.IsTerminal(int(os.Stdout.Fd())) {
			wr = os.Stderr
		}
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			batchProgressBar(wr, progressCh, len(tasks))
		}()
	}

	decodeErrs := &errors.M{}
	decodeErrs.Append(decodeBatch(ctx, tasks, reg, mode, cl.Concurrency, progressCh))

	if progressCh != nil {
		close(progressCh)
		progressWg.Wait()
	}

	readErrs.Append(decodeErrs.Err())
	return readErrs.Err()
}

// decodeBatch runs tasks through bufrdec.Decode using up to concurrency
// worker goroutines, aggregating per-message failures instead of
// aborting the run.
func decodeBatch(ctx context.Context, tasks []batchTask, reg *tables.Registry, mode extract.ReadMode, concurrency int, progressCh chan<- progressUpdate) error {
	if concurrency < 1 {
		concurrency = 1
	}
	in := make(chan batchTask)
	errs := &errors.M{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range in {
				_, err := bufrdec.Decode(ctx, t.payload, reg, bufrdec.WithReadMode(mode))
				if err != nil {
					mu.Lock()
					errs.Append(fmt.Errorf("%s message %d: %w", t.file, t.index, err))
					mu.Unlock()
				}
				if progressCh != nil {
					progressCh <- progressUpdate{}
				}
			}
		}()
	}

	for _, t := range tasks {
		in <- t
	}
	close(in)
	wg.Wait()
	return errs.Err()
}
