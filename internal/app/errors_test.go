package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"delgen/internal/enumerate"
	"delgen/internal/generate"
	"delgen/internal/library"
	"delgen/internal/result"
	"delgen/internal/writers"
)

func TestExitCode(t *testing.T) {
	worker := &generate.WorkerError{
		Outer: enumerate.Selection{Category: "A", Index: 1},
		Err:   fmt.Errorf("resolve: %w", &library.ElementNotFoundError{Category: "B", Index: 9}),
	}
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 1},
		{"usage", &UsageError{Err: errors.New("bad flag")}, 2},
		{"output", &OutputError{Err: errors.New("disk full")}, 3},
		{"broken pipe", &OutputError{Err: syscall.EPIPE}, 0},
		{"closed early", fmt.Errorf("emit: %w", writers.ErrWriterClosed), 0},
		{"closed pipe", io.ErrClosedPipe, 0},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), 130},
		{"not initialized", library.ErrNotInitialized, 2},
		{"template", &library.TemplateFormatError{Placeholder: "Z"}, 10},
		{"category not found", &library.CategoryNotFoundError{ID: "Q"}, 22},
		{"worker wraps element", worker, 32},
		{"schema", fmt.Errorf("get: %w", result.ErrSchemaViolation), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}
