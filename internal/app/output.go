package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// openOutput returns a buffered writer for path ("-" is stdout) and a
// function that flushes and closes it.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		bw := bufio.NewWriterSize(stdout, 64<<10)
		return bw, bw.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &OutputError{Err: err}
	}
	bw := bufio.NewWriterSize(f, 64<<10)
	return bw, func() error {
		ferr := bw.Flush()
		cerr := f.Close()
		if ferr != nil {
			return ferr
		}
		if cerr != nil {
			return fmt.Errorf("close %s: %w", path, cerr)
		}
		return nil
	}, nil
}

// progressOut is where status lines go; nil when quiet.
func progressOut(stderr io.Writer, enabled bool) io.Writer {
	if !enabled {
		return nil
	}
	return stderr
}
