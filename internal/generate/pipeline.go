package generate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"delgen/internal/enumerate"
	"delgen/internal/library"
	"delgen/internal/molecule"
)

// Config controls a generation run.
type Config struct {
	Threads  int // number of worker goroutines (>=1)
	Flags    molecule.FlagSet
	Progress func(done, total int) // called by the collector after each batch; optional
	Logger   *zap.Logger
}

// Summary reports what a run produced.
type Summary struct {
	Jobs      int
	Molecules int
	Total     int
	Elapsed   time.Duration
}

// Fraction is Molecules/Total in [0,1]. An empty run counts as complete.
func (s Summary) Fraction() float64 {
	if s.Total <= 0 {
		return 1
	}
	return float64(s.Molecules) / float64(s.Total)
}

// WorkerError wraps the failure of one work item.
type WorkerError struct {
	Outer enumerate.Selection
	Err   error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker failed on %s#%d: %v", e.Outer.Category, e.Outer.Index, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }

// TotalOf counts the combinations covered by queue.
func TotalOf(queue []library.WorkItem) int {
	n := 0
	for _, it := range queue {
		n += enumerate.Total(it.Rest)
	}
	return n
}

// Run processes queue on cfg.Threads workers and calls emit for every record
// as batches complete. It returns the first error encountered: an emit error,
// a *WorkerError, or the context error.
func Run(
	parent context.Context,
	cfg Config,
	queue []library.WorkItem,
	src Source,
	ev molecule.Evaluator,
	emit func(molecule.Record) error,
) (Summary, error) {
	start := time.Now()
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sum := Summary{Total: TotalOf(queue)}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan library.WorkItem, cfg.Threads*2)
	results := make(chan []molecule.Record, cfg.Threads*2)

	// Feed work
	g.Go(func() error {
		defer close(jobs)
		for _, it := range queue {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- it:
			}
		}
		return nil
	})

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		g.Go(func() error {
			defer wg.Done()
			for it := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				recs, err := Process(it, src, ev, cfg.Flags)
				if err != nil {
					log.Error("generation job failed",
						zap.String("category", it.Outer.Category),
						zap.Int("index", it.Outer.Index),
						zap.Error(err))
					return &WorkerError{Outer: it.Outer, Err: err}
				}
				log.Debug("generation job done",
					zap.String("category", it.Outer.Category),
					zap.Int("index", it.Outer.Index),
					zap.Int("molecules", len(recs)))
				select {
				case results <- recs:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector: the only writer.
	var cerr error
	for recs := range results {
		if cerr != nil {
			continue
		}
		for _, r := range recs {
			if err := emit(r); err != nil {
				cerr = err
				cancel()
				break
			}
			sum.Molecules++
		}
		sum.Jobs++
		if cfg.Progress != nil {
			cfg.Progress(sum.Molecules, sum.Total)
		}
	}

	werr := g.Wait()
	sum.Elapsed = time.Since(start)
	switch {
	case cerr != nil:
		return sum, cerr
	case werr != nil:
		return sum, werr
	case parent.Err() != nil:
		return sum, parent.Err()
	}
	return sum, nil
}
