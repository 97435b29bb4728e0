/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/suparena/redismodel/errors"
	"github.com/suparena/redismodel/query"
)

// Stream scans in a background goroutine and sends every match on the
// returned channel, which is closed when the scan ends or ctx is done.
// Scan failures are sent as a final result carrying Error. Records that
// fail to decode go to the ErrorHandler, which decides whether to skip
// them; without a handler they end the stream.
func (s *KVStore[T]) Stream(ctx context.Context, filters query.Filters, opts ...query.StreamOption) <-chan query.StreamResult[T] {
	options := query.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.BufferSize < 0 {
		options.BufferSize = 0
	}

	resultCh := make(chan query.StreamResult[T], options.BufferSize)
	go s.streamWorker(ctx, filters, options, resultCh)
	return resultCh
}

func (s *KVStore[T]) streamWorker(
	ctx context.Context,
	filters query.Filters,
	options query.StreamOptions,
	resultCh chan<- query.StreamResult[T],
) {
	defer close(resultCh)

	var matched int64
	var skipped []error
	startTime := time.Now()

	reportProgress := func(done bool) {
		if options.ProgressHandler == nil {
			return
		}
		progress := query.StreamProgress{
			ItemsMatched: matched,
			Errors:       skipped,
			StartTime:    startTime,
			Done:         done,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(matched) / elapsed
		}
		options.ProgressHandler(progress)
	}

	send := func(r query.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}
	fail := func(err error, scannedSoFar int64) {
		send(query.StreamResult[T]{
			Error: err,
			Meta:  query.StreamMeta{Index: matched, Scanned: scannedSoFar, Timestamp: time.Now()},
		})
	}

	preds, err := query.Parse(filters)
	if err != nil {
		fail(err, 0)
		return
	}
	if s.strict && len(preds) > 0 {
		fail(errors.NewStrictPerformanceError(s.Namespace(), "stream"), 0)
		return
	}

	var lastIndex int64
	err = s.scan(ctx, func(r scanned[T]) error {
		lastIndex = r.index
		if err := ctx.Err(); err != nil {
			return err
		}

		var item *T
		recErr := r.err
		if recErr == nil {
			if !query.MatchAll(preds, r.prim) {
				return nil
			}
			item, recErr = s.codec.FromPrimitive(r.prim)
		}
		if recErr != nil {
			if options.ErrorHandler != nil && options.ErrorHandler(recErr) {
				skipped = append(skipped, recErr)
				return nil
			}
			return recErr
		}

		result := query.StreamResult[T]{
			Item:      item,
			Primitive: r.prim,
			Meta:      query.StreamMeta{Index: matched, Scanned: r.index, Timestamp: time.Now()},
		}
		if !send(result) {
			return errStop
		}
		matched++
		reportProgress(false)
		return nil
	})

	switch {
	case err == nil:
	case stderrors.Is(err, errStop), ctx.Err() != nil:
		return
	default:
		fail(err, lastIndex)
		return
	}
	reportProgress(true)
}
