package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momentics/hioload-pool/core/concurrency"
	"github.com/momentics/hioload-pool/core/handoff"
	"github.com/momentics/hioload-pool/core/mailbox"
)

const scaleFactor = 2.0

type batch struct {
	id   int
	data []float64
}

type batchResult struct {
	sum float64
	err error
}

// pipeline is a two-stage actor dataflow: scale multiplies a batch in place,
// reduce sums it. Both stages fan out over the pool with ParallelLaunch from
// inside their handlers. Results are handed back to the caller by batch id.
type pipeline struct {
	pool    *concurrency.InterThreadPool
	threads int
	log     *slog.Logger

	scale   *mailbox.Actor[batch]
	reduce  *mailbox.Actor[batch]
	results *handoff.Slots[int, batchResult]
}

func newPipeline(ctx context.Context, pool *concurrency.InterThreadPool, log *slog.Logger) *pipeline {
	p := &pipeline{
		pool:    pool,
		threads: pool.NumWorkers(),
		log:     log,
		results: handoff.New[int, batchResult](),
	}
	p.reduce = mailbox.New(pool, func(b batch) error {
		sum, err := p.sum(b.data)
		return p.results.Store(ctx, b.id, batchResult{sum: sum, err: err})
	}, mailbox.Options{})
	p.scale = mailbox.New(pool, func(b batch) error {
		if err := p.scaleInPlace(b.data); err != nil {
			return p.results.Store(ctx, b.id, batchResult{err: err})
		}
		return p.reduce.Send(b)
	}, mailbox.Options{Batch: 4})
	return p
}

func (p *pipeline) scaleInPlace(data []float64) error {
	return p.pool.ParallelLaunch(func(_, start, end int) error {
		for i := start; i < end; i++ {
			data[i] *= scaleFactor
		}
		return nil
	}, len(data), p.threads)
}

func (p *pipeline) sum(data []float64) (float64, error) {
	partials := make([]float64, p.threads)
	err := p.pool.ParallelLaunch(func(part, start, end int) error {
		s := 0.0
		for i := start; i < end; i++ {
			s += data[i]
		}
		partials[part] = s
		return nil
	}, len(data), p.threads)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range partials {
		total += v
	}
	return total, nil
}

// Run pushes batches through the pipeline and checks every result.
func (p *pipeline) Run(ctx context.Context, batches, items int) ([]float64, error) {
	expected := 0.0
	for i := 0; i < items; i++ {
		expected += float64(i%100) * scaleFactor
	}

	for id := 0; id < batches; id++ {
		data := make([]float64, items)
		for i := range data {
			data[i] = float64(i % 100)
		}
		if err := p.scale.Send(batch{id: id, data: data}); err != nil {
			return nil, fmt.Errorf("submit batch %d: %w", id, err)
		}
	}

	sums := make([]float64, batches)
	for id := 0; id < batches; id++ {
		r, err := p.results.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("wait for batch %d: %w", id, err)
		}
		if r.err != nil {
			return nil, fmt.Errorf("batch %d: %w", id, r.err)
		}
		if r.sum != expected {
			return nil, fmt.Errorf("batch %d: sum %.0f, want %.0f", id, r.sum, expected)
		}
		sums[id] = r.sum
		p.log.Debug("batch done", "batch", id, "sum", r.sum)
	}
	return sums, nil
}
