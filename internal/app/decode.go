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
	"delgen/internal/decode"
	"delgen/internal/fastq"
	"delgen/internal/library"
	"delgen/internal/progress"
	"delgen/internal/result"
	"delgen/internal/writers"
)

// DecodeOptions configures a decode run. Zero values defer to the decode
// config file; set fields override it.
type DecodeOptions struct {
	Config    string // decode config (YAML); optional
	Library   string // library definition; needed unless both templates are given
	R1, R2    string // FASTQ inputs; "-" reads R1 from stdin; R2 enables paired mode
	Template1 string
	Template2 string
	Reverse1  *bool
	Reverse2  *bool
	Quality   *float64
	Threads   int
	BatchSize int

	Counts       string // "-" for stdout, "" to skip
	CountsFormat string // "" means tsv
	FailedPrefix string // "" skips the failed-read export
	Progress     bool
	Stdin        io.Reader
}

func (o DecodeOptions) apply(cfg *config.DecodeConfig) {
	if o.Library != "" {
		cfg.Library = o.Library
	}
	if o.R2 != "" {
		cfg.Paired = true
	}
	if o.Template1 != "" {
		cfg.R1.Template = o.Template1
	}
	if o.Template2 != "" {
		cfg.R2.Template = o.Template2
	}
	if o.Reverse1 != nil {
		cfg.R1.Reverse = *o.Reverse1
	}
	if o.Reverse2 != nil {
		cfg.R2.Reverse = *o.Reverse2
	}
	if o.Quality != nil {
		cfg.Quality = o.Quality
	}
	if o.Threads > 0 {
		cfg.Threads = o.Threads
	}
	if o.BatchSize > 0 {
		cfg.BatchSize = o.BatchSize
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
}

func openReads(path string, stdin io.Reader) (*fastq.Reader, error) {
	if path == "-" && stdin != nil {
		return fastq.NewReader(stdin)
	}
	return fastq.Open(path)
}

// Decode aligns every read pair against the library's read templates and
// tallies codon combinations. The summary table goes to stdout unless the
// counts do; then it goes to stderr.
func Decode(ctx context.Context, stdout, stderr io.Writer, log *zap.Logger, o DecodeOptions) (*result.Result, error) {
	if o.R1 == "" {
		return nil, &UsageError{Err: errors.New("--r1 is required")}
	}
	if o.CountsFormat == "" {
		o.CountsFormat = writers.FormatTSV
	}
	if _, ok := writers.CountWriters[o.CountsFormat]; !ok {
		return nil, &UsageError{Err: fmt.Errorf("unknown --counts-format %q (want one of %v)", o.CountsFormat, writers.CountFormats())}
	}
	if writers.NeedsStore(o.CountsFormat) && (o.Counts == "" || o.Counts == "-") {
		return nil, &UsageError{Err: errors.New("--counts-format sqlite needs a file --counts")}
	}

	cfg, err := config.LoadDecode(o.Config)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if cfg.Paired && o.R2 == "" {
		return nil, &UsageError{Err: errors.New("paired decoding needs --r2")}
	}

	var lib *library.Library
	if cfg.Library != "" {
		if lib, err = config.LoadLibrary(cfg.Library); err != nil {
			return nil, err
		}
	}
	meta, err := cfg.Metadata(lib)
	if err != nil {
		return nil, err
	}

	r1, err := openReads(o.R1, o.Stdin)
	if err != nil {
		return nil, err
	}
	defer r1.Close()
	src := fastq.PairReader{R1: r1}
	if cfg.Paired {
		r2, err := fastq.Open(o.R2)
		if err != nil {
			return nil, err
		}
		defer r2.Close()
		src.R2 = r2
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	log.Info("decode started",
		zap.String("r1", o.R1),
		zap.String("r2", o.R2),
		zap.Bool("paired", meta.Paired),
		zap.Float64("quality", meta.EffectiveQuality()),
		zap.Int("threads", cfg.Threads))
	log.Debug("read templates", zap.String("r1", meta.R1.Template), zap.String("r2", meta.R2.Template))

	bar := progress.New(progressOut(stderr, o.Progress), "decode", "pairs", log)
	started := time.Now()
	res, sum, err := decode.Run(ctx,
		decode.Config{Threads: cfg.Threads, BatchSize: cfg.BatchSize, Progress: bar.Count, Logger: log},
		meta, src)
	bar.Done()
	if err != nil {
		return res, err
	}
	log.Info("decode finished",
		zap.String("pairs", humanize.Comma(int64(sum.Pairs))),
		zap.Int("tuples", len(res.Codons())),
		zap.Int("failed", len(res.FailedReads())),
		zap.Duration("elapsed", sum.Elapsed))

	summaryOut := stdout
	if o.Counts == "-" {
		summaryOut = stderr
	}
	if err := writers.WriteSummary(summaryOut, res); err != nil {
		return res, &OutputError{Err: err}
	}
	if o.Counts != "" {
		if err := writeCounts(ctx, stdout, o, runID, res, started, sum.Elapsed); err != nil {
			return res, err
		}
	}
	if o.FailedPrefix != "" {
		paths, err := writers.WriteFailedReads(o.FailedPrefix, res.FailedReads(), res.Paired())
		if err != nil {
			return res, &OutputError{Err: err}
		}
		log.Info("failed reads exported", zap.Strings("files", paths), zap.Int("pairs", len(res.FailedReads())))
	}
	return res, nil
}

func writeCounts(ctx context.Context, stdout io.Writer, o DecodeOptions, runID string, res *result.Result, started time.Time, elapsed time.Duration) error {
	rep := writers.Report(runID, res)
	tgt := writers.Target{RunID: runID}
	if writers.NeedsStore(o.CountsFormat) {
		st, err := writers.OpenStore(ctx, o.Counts)
		if err != nil {
			return &OutputError{Err: err}
		}
		defer st.Close()
		if err := st.BeginRun(ctx, writers.Run{ID: runID, Kind: "decode", Label: o.R1, StartedAt: started}); err != nil {
			return &OutputError{Err: err}
		}
		tgt.Store = st
		if err := writers.WriteCounts(ctx, tgt, o.CountsFormat, rep); err != nil {
			return &OutputError{Err: err}
		}
		if err := st.FinishRun(ctx, runID, len(rep.Codons), elapsed); err != nil {
			return &OutputError{Err: err}
		}
		return nil
	}

	w, closeOut, err := openOutput(o.Counts, stdout)
	if err != nil {
		return err
	}
	tgt.W = w
	if err := writers.WriteCounts(ctx, tgt, o.CountsFormat, rep); err != nil {
		_ = closeOut()
		return &OutputError{Err: err}
	}
	if err := closeOut(); err != nil && !writers.IsBrokenPipe(err) {
		return &OutputError{Err: err}
	}
	return nil
}
