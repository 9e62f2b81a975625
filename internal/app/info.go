package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"delgen/internal/config"
)

// Info prints a description of the library at path.
func Info(w io.Writer, path string) error {
	lib, err := config.LoadLibrary(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range lib.Describe() {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Key, f.Value)
	}
	if ref, err := lib.ReadTemplate(); err == nil {
		fmt.Fprintf(tw, "Read template:\t%s\n", ref)
	}
	if err := tw.Flush(); err != nil {
		return &OutputError{Err: err}
	}
	return nil
}
