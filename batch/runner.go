package batch

import (
	"context"
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bsaid97/go-buffer-overlap/overlap"
	"github.com/bsaid97/go-buffer-overlap/pair"
)

// Runner fans a batch of items out across a bounded worker pool. Items
// are fully independent (each engine invocation owns its geometry state),
// so scheduling never changes the output: outcome i always belongs to
// item i.
type Runner struct {
	Workers  int     // 0 or less means one worker per CPU
	BufferM  float64 // batch buffer distance in meters, zero legal
	QuadSegs int     // buffer arc approximation, 0 means the engine default
}

// Run processes every item and returns one outcome per item, in input
// order. Item failures land in their own outcome and never stop the
// batch. Cancelling ctx abandons items not yet started, marking them with
// the context error; items already in flight run to completion and keep
// their results.
func (r *Runner) Run(ctx context.Context, items []json.RawMessage) []Outcome {
	outcomes := make([]Outcome, len(items))
	if len(items) == 0 {
		return outcomes
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	type job struct {
		idx  int
		item json.RawMessage
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.idx] = r.one(j.item)
			}
		}()
	}

	next := 0
feed:
	for ; next < len(items); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- job{idx: next, item: items[next]}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for ; next < len(items); next++ {
			outcomes[next] = Outcome{Err: err}
		}
	}
	return outcomes
}

// one resolves and processes a single item.
func (r *Runner) one(item json.RawMessage) Outcome {
	started := time.Now()
	source, target, bufferM, err := pair.Resolve(item)
	if err != nil {
		log.Warn().Err(err).Msg("item failed to resolve")
		return Outcome{Err: err}
	}

	eng := overlap.Engine{BufferM: r.BufferM, QuadSegs: r.QuadSegs}
	if bufferM != nil {
		eng.BufferM = *bufferM
	}
	res, err := eng.Overlap(source, target)
	if err != nil {
		log.Warn().Err(err).
			Str("coop", source.Name).
			Str("protected", target.Name).
			Msg("item failed")
		return Outcome{Err: err}
	}

	log.Info().
		Str("coop", res.Source).
		Str("protected", res.Target).
		Int("pieces", res.PieceCount).
		Float64("area_km2", res.AreaKm2).
		Dur("took", time.Since(started)).
		Msg("item processed")
	return Outcome{Record: NewRecord(res)}
}
