// Package decode turns sequencing read pairs into codon-tuple counts.
//
// Pairs are read on the caller's goroutine, grouped into batches and decoded
// by a pool of workers, each holding its own qc.Checker. Every batch yields a
// partial result.Result; a single reducer merges partials as they complete.
// Because merging is associative and commutative the final Result does not
// depend on the number of workers or the completion order.
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delgen/internal/fastq"
	"delgen/internal/qc"
	"delgen/internal/result"
)

// DefaultBatchSize is the number of pairs handed to a worker at once.
const DefaultBatchSize = 1000

// Pair is one read pair. In unpaired mode R2 is empty.
type Pair struct {
	R1, R2 fastq.Record
}

// Source yields read pairs until io.EOF.
type Source interface {
	Next() (fastq.Record, fastq.Record, error)
}

var _ Source = fastq.PairReader{}

// Config controls a decode run.
type Config struct {
	Threads   int
	BatchSize int
	Progress  func(pairs int) // called by the reducer after each merged batch; optional
	Logger    *zap.Logger
}

// Summary reports throughput of a run.
type Summary struct {
	Batches int
	Pairs   int
	Elapsed time.Duration
}

// Tally records the verdict for one pair into r.
func Tally(r *result.Result, p Pair, out qc.Outcome) {
	r.MustAdd(result.ReadsProcessed, 1)
	if !r.Paired() {
		if !out.R1.Pass {
			r.MustAdd(result.LowQualitySkips, 1)
			r.AddFailedRead(p.R1, p.R2)
			return
		}
		r.MustAdd(result.ReadsUseful, 1)
		r.CountCodon(result.NewTuple(out.R1.Codons))
		return
	}
	switch {
	case !out.R1.Pass && !out.R2.Pass:
		r.MustAdd(result.BothLowQualitySkips, 1)
	case !out.R1.Pass:
		r.MustAdd(result.R1LowQualitySkips, 1)
	case !out.R2.Pass:
		r.MustAdd(result.R2LowQualitySkips, 1)
	default:
		t1, t2 := result.NewTuple(out.R1.Codons), result.NewTuple(out.R2.Codons)
		if t1 != t2 {
			r.MustAdd(result.InvalidPairs, 1)
			break
		}
		r.MustAdd(result.ValidPairs, 1)
		r.MustAdd(result.ReadsUseful, 1)
		r.CountCodon(t1)
		return
	}
	r.AddFailedRead(p.R1, p.R2)
}

// Batch decodes pairs with c into a fresh partial result.
func Batch(c *qc.Checker, pairs []Pair) *result.Result {
	r := result.New(c.Metadata().Paired)
	for _, p := range pairs {
		Tally(r, p, c.Check(p.R1.Seq, p.R2.Seq))
	}
	return r
}

// Run decodes every pair of src under meta. On error the partial result
// merged so far is returned together with the error.
func Run(parent context.Context, cfg Config, meta qc.Metadata, src Source) (*result.Result, Summary, error) {
	start := time.Now()
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	batches := make(chan []Pair, cfg.Threads*2)
	partials := make(chan *result.Result, cfg.Threads*2)

	// Reader
	g.Go(func() error {
		defer close(batches)
		batch := make([]Pair, 0, cfg.BatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case batches <- batch:
			}
			batch = make([]Pair, 0, cfg.BatchSize)
			return nil
		}
		for n := 0; ; n++ {
			r1, r2, err := src.Next()
			if errors.Is(err, io.EOF) {
				return flush()
			}
			if err != nil {
				return fmt.Errorf("read pair %d: %w", n+1, err)
			}
			batch = append(batch, Pair{R1: r1, R2: r2})
			if len(batch) == cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	})

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer wg.Done()
			c := qc.NewChecker(meta)
			for b := range batches {
				if err := gctx.Err(); err != nil {
					return err
				}
				part := Batch(c, b)
				log.Debug("decode batch done", zap.Int("worker", w), zap.Int("pairs", len(b)))
				select {
				case partials <- part:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(partials)
	}()

	// Reducer
	total := result.New(meta.Paired)
	var sum Summary
	for part := range partials {
		total.Absorb(part)
		sum.Batches++
		sum.Pairs = mustGet(total, result.ReadsProcessed)
		if cfg.Progress != nil {
			cfg.Progress(sum.Pairs)
		}
	}

	err := g.Wait()
	sum.Elapsed = time.Since(start)
	if err == nil {
		err = parent.Err()
	}
	if err != nil {
		log.Error("decode aborted", zap.Int("pairs", sum.Pairs), zap.Error(err))
	}
	return total, sum, err
}

func mustGet(r *result.Result, k result.Key) int {
	v, err := r.Get(k)
	if err != nil {
		panic(err)
	}
	return v
}
