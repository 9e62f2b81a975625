package writers

import (
	"bufio"
	"fmt"
	"os"

	"delgen/internal/fastq"
	"delgen/internal/result"
)

// FailedReadPaths returns the files WriteFailedReads creates for prefix.
func FailedReadPaths(prefix string, paired bool) []string {
	if paired {
		return []string{prefix + "_R1.fastq", prefix + "_R2.fastq"}
	}
	return []string{prefix + "_R1.fastq"}
}

// WriteFailedReads exports archived pairs as FASTQ, one file per mate.
func WriteFailedReads(prefix string, pairs []result.FailedPair, paired bool) ([]string, error) {
	paths := FailedReadPaths(prefix, paired)
	for mate, path := range paths {
		if err := writeMate(path, pairs, mate); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func writeMate(path string, pairs []result.FailedPair, mate int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	bw := bufio.NewWriterSize(f, 64<<10)
	for _, p := range pairs {
		rec := p.R1
		if mate == 1 {
			rec = p.R2
		}
		if err := fastq.Write(bw, rec); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return bw.Flush()
}
