// Package app wires configuration, the library model, the generation and
// decode pipelines, and the writers behind the delgen command line.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"delgen/internal/logging"
	"delgen/internal/molecule"
	"delgen/internal/version"
	"delgen/internal/writers"
)

type globalFlags struct {
	verbose bool
	quiet   bool
	logJSON bool
}

// Run executes the delgen command line and returns the process exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunWithStdin(ctx, argv, nil, stdout, stderr)
}

// RunWithStdin is Run with an explicit stdin for "-" inputs.
func RunWithStdin(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdin, stdout, stderr)
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil && code != ExitOK {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

// NewRootCmd builds the command tree.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags
	logger := zap.NewNop()

	root := &cobra.Command{
		Use:   "delgen",
		Short: "Generate DNA-encoded libraries and decode their sequencing reads",
		Long: `delgen enumerates every member of a DNA-encoded library (DEL), writes one
row per member with its codon combination, DNA tag and molecular descriptors,
and decodes sequencing reads back into codon-combination counts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New(stderr, logging.Options{Verbose: g.verbose, Quiet: g.quiet, JSON: g.logJSON})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return &UsageError{Err: err} })
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "only warnings and errors; no progress bar")
	root.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "JSON log lines")

	log := func() *zap.Logger { return logger }
	root.AddCommand(
		newGenerateCmd(&g, log, stdout, stderr),
		newDecodeCmd(&g, log, stdin, stdout, stderr),
		newInfoCmd(stdout),
		newVersionCmd(stdout),
	)
	return root
}

func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// descriptorFlag is the command-line spelling of a descriptor.
func descriptorFlag(f molecule.Flag) string { return strings.ReplaceAll(string(f), "_", "-") }

func newGenerateCmd(g *globalFlags, log func() *zap.Logger, stdout, stderr io.Writer) *cobra.Command {
	var (
		o   GenerateOptions
		all bool
	)
	selected := map[molecule.Flag]*bool{}

	cmd := &cobra.Command{
		Use:   "generate LIBRARY.yaml",
		Short: "Enumerate a library and write one row per member",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags []molecule.Flag
			for f, on := range selected {
				if *on {
					flags = append(flags, f)
				}
			}
			o.Library = args[0]
			o.Flags = molecule.NewFlagSet(all, flags...)
			o.Progress = !g.quiet
			_, err := Generate(cmd.Context(), stdout, stderr, log(), o)
			return err
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&o.Threads, "threads", "t", 0, "worker goroutines (0 = all CPUs)")
	fs.BoolVarP(&all, "all", "a", false, "compute every descriptor")
	fs.BoolVar(&o.Timing, "timing", false, "report elapsed time")
	fs.StringVarP(&o.Output, "output", "o", "", `output file ("-" for stdout; default library-properties.<format>)`)
	fs.StringVarP(&o.Format, "format", "f", writers.FormatCSV, "row format: "+strings.Join(writers.RowFormats(), "|"))
	for _, f := range molecule.Flags() {
		if f == molecule.CanonicalSMILES {
			continue
		}
		selected[f] = fs.Bool(descriptorFlag(f), false, molecule.Usage(f))
	}
	fs.SortFlags = false
	return cmd
}

func newDecodeCmd(g *globalFlags, log func() *zap.Logger, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var (
		o                  DecodeOptions
		quality            float64
		reverse1, reverse2 bool
	)
	cmd := &cobra.Command{
		Use:   "decode --r1 READS_R1.fastq[.gz] [--r2 READS_R2.fastq[.gz]]",
		Short: "Align reads to the library's read templates and count codon combinations",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			if fs.Changed("quality") {
				o.Quality = &quality
			}
			if fs.Changed("r1-reverse") {
				o.Reverse1 = &reverse1
			}
			if fs.Changed("r2-reverse") {
				o.Reverse2 = &reverse2
			}
			o.Progress = !g.quiet
			o.Stdin = stdin
			_, err := Decode(cmd.Context(), stdout, stderr, log(), o)
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.Config, "config", "c", "", "decode config (YAML)")
	fs.StringVarP(&o.Library, "library", "l", "", "library definition (YAML)")
	fs.StringVar(&o.R1, "r1", "", `first-mate FASTQ ("-" for stdin)`)
	fs.StringVar(&o.R2, "r2", "", "second-mate FASTQ; enables paired decoding")
	fs.StringVar(&o.Template1, "template1", "", "R1 reference template (N runs mark codons)")
	fs.StringVar(&o.Template2, "template2", "", "R2 reference template")
	fs.BoolVar(&reverse1, "r1-reverse", false, "R1 reads the reverse strand")
	fs.BoolVar(&reverse2, "r2-reverse", true, "R2 reads the reverse strand")
	fs.Float64Var(&quality, "quality", 0.3, "fraction of the perfect alignment score a read must exceed")
	fs.IntVarP(&o.Threads, "threads", "t", 0, "worker goroutines (0 = all CPUs)")
	fs.IntVar(&o.BatchSize, "batch-size", 0, "read pairs per work unit")
	fs.StringVarP(&o.Counts, "counts", "o", "", `codon count output ("-" for stdout)`)
	fs.StringVar(&o.CountsFormat, "counts-format", writers.FormatTSV, "count format: "+strings.Join(writers.CountFormats(), "|"))
	fs.StringVar(&o.FailedPrefix, "failed-out", "", "write failed pairs to <prefix>_R1.fastq/<prefix>_R2.fastq")
	fs.SortFlags = false
	return cmd
}

func newInfoCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "info LIBRARY.yaml",
		Short: "Describe a library",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Info(stdout, args[0])
		},
	}
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(stdout, "delgen %s\n", version.String())
			return err
		},
	}
}
