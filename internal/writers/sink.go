package writers

import "errors"

// ErrWriterClosed is returned by Sink.Put when the writer finished without
// error before all input was delivered, e.g. after a broken pipe.
var ErrWriterClosed = errors.New("writer closed early")

// Sink adapts a writer goroutine to a push function that fails fast once
// the writer has finished. A Sink is used from a single goroutine.
type Sink[T any] struct {
	in       chan<- T
	done     <-chan error
	err      error
	finished bool
}

// NewSink wraps the channels returned by a Start* function.
func NewSink[T any](in chan<- T, done <-chan error) *Sink[T] {
	return &Sink[T]{in: in, done: done}
}

// Put delivers v, or returns the writer's result if it already finished.
func (s *Sink[T]) Put(v T) error {
	if s.finished {
		return s.err
	}
	select {
	case s.in <- v:
		return nil
	case err := <-s.done:
		s.finished = true
		s.err = err
		if err == nil {
			s.err = ErrWriterClosed
		}
		return s.err
	}
}

// Close ends the input and waits for the writer.
func (s *Sink[T]) Close() error {
	close(s.in)
	if !s.finished {
		s.finished = true
		s.err = <-s.done
	}
	if errors.Is(s.err, ErrWriterClosed) {
		return nil
	}
	return s.err
}
