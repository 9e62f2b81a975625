package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"delgen/internal/config"
	"delgen/internal/generate"
	"delgen/internal/molecule"
	"delgen/internal/progress"
	"delgen/internal/writers"
)

// GenerateOptions configures a library generation run.
type GenerateOptions struct {
	Library   string // library definition (YAML)
	Threads   int    // <=0 means runtime.NumCPU()
	Flags     molecule.FlagSet
	Format    string // row format; "" means csv
	Output    string // file path, "-" for stdout, "" for the format default
	Timing    bool
	Progress  bool
	Evaluator molecule.Evaluator // nil means molecule.Verbatim
}

// Generate enumerates the library, evaluates every member and writes one row
// per member.
func Generate(ctx context.Context, stdout, stderr io.Writer, log *zap.Logger, o GenerateOptions) (generate.Summary, error) {
	if o.Format == "" {
		o.Format = writers.FormatCSV
	}
	if !writers.ValidRowFormat(o.Format) {
		return generate.Summary{}, &UsageError{Err: fmt.Errorf("unknown --format %q (want one of %v)", o.Format, writers.RowFormats())}
	}
	if o.Output == "" {
		o.Output = writers.DefaultRowsFile(o.Format)
	}
	if writers.NeedsStore(o.Format) && o.Output == "-" {
		return generate.Summary{}, &UsageError{Err: errors.New("--format sqlite needs a file --output")}
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	if o.Flags == nil {
		o.Flags = molecule.NewFlagSet(false)
	}
	ev := o.Evaluator
	if ev == nil {
		ev = molecule.Verbatim{}
	}

	lib, err := config.LoadLibrary(o.Library)
	if err != nil {
		return generate.Summary{}, err
	}
	queue, ids := lib.GenerateQueue()
	header := molecule.Header{Categories: ids, Descriptors: o.Flags.Headers()}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	log.Info("generation started",
		zap.String("library", lib.Name()),
		zap.Int("size", lib.Size()),
		zap.Int("jobs", len(queue)),
		zap.Int("threads", o.Threads),
		zap.String("format", o.Format),
		zap.String("output", o.Output))

	tgt := writers.Target{RunID: runID}
	var closeOut func() error
	if writers.NeedsStore(o.Format) {
		st, err := writers.OpenStore(ctx, o.Output)
		if err != nil {
			return generate.Summary{}, &OutputError{Err: err}
		}
		defer st.Close()
		if err := st.BeginRun(ctx, writers.Run{ID: runID, Kind: "generate", Label: lib.Name(), StartedAt: time.Now()}); err != nil {
			return generate.Summary{}, &OutputError{Err: err}
		}
		tgt.Store = st
		closeOut = func() error { return nil }
	} else {
		w, closeFn, err := openOutput(o.Output, stdout)
		if err != nil {
			return generate.Summary{}, err
		}
		tgt.W, closeOut = w, closeFn
	}

	in, done := writers.StartRowWriter(ctx, tgt, o.Format, header, o.Threads*4)
	sink := writers.NewSink(in, done)
	bar := progress.New(progressOut(stderr, o.Progress), "generate", "molecules", log)

	sum, runErr := generate.Run(ctx,
		generate.Config{Threads: o.Threads, Flags: o.Flags, Progress: bar.Update, Logger: log},
		queue, lib, ev,
		func(r molecule.Record) error {
			if err := sink.Put(r); err != nil {
				return &OutputError{Err: err}
			}
			return nil
		})
	bar.Done()
	werr := sink.Close()
	cerr := closeOut()

	if errors.Is(runErr, writers.ErrWriterClosed) {
		log.Debug("output closed early", zap.Int("molecules", sum.Molecules))
		return sum, nil
	}
	if runErr != nil {
		return sum, runErr
	}
	if werr != nil {
		return sum, &OutputError{Err: werr}
	}
	if cerr != nil && !writers.IsBrokenPipe(cerr) {
		return sum, &OutputError{Err: cerr}
	}
	if tgt.Store != nil {
		if err := tgt.Store.FinishRun(context.WithoutCancel(ctx), runID, sum.Molecules, sum.Elapsed); err != nil {
			return sum, &OutputError{Err: err}
		}
	}

	log.Debug("generation finished",
		zap.String("library", lib.Name()),
		zap.Int("jobs", sum.Jobs),
		zap.Int("molecules", sum.Molecules),
		zap.Duration("elapsed", sum.Elapsed))
	writeRunSummary(stderr, sum, o.Timing)
	return sum, nil
}

// writeRunSummary prints the end-of-run report. It is independent of the
// log level so --quiet still shows it.
func writeRunSummary(w io.Writer, sum generate.Summary, timing bool) {
	fmt.Fprintf(w, "Number of jobs: %d\n", sum.Jobs)
	fmt.Fprintf(w, "Number of molecules generated: %s\n", humanize.Comma(int64(sum.Molecules)))
	if timing {
		fmt.Fprintf(w, "Time required: %.2fs\n", sum.Elapsed.Seconds())
	}
}
