package batches

import (
	"context"
	"iter"
)

// Source is a pull-based, forward-only producer of input items.
//
// Next returns (zero, false, nil) once the source is exhausted. It may block
// (a lazy or remote producer) and should return promptly with ctx.Err() when
// ctx is done. Close releases whatever the source holds; the executors call it
// exactly once, on every exit path.
//
// Executors pull from a Source from a single goroutine; implementations need
// not be safe for concurrent use.
type Source[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Sized is an optional Source capability: the number of items the source will
// yield, known without consuming it. It is used only to pre-size result buffers.
type Sized interface {
	Len() int
}

// FromSlice returns a Sized source over items. The slice is not copied.
func FromSlice[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

type sliceSource[T any] struct {
	items []T
	next  int
}

func (s *sliceSource[T]) Next(context.Context) (T, bool, error) {
	if s.next >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	v := s.items[s.next]
	s.next++
	return v, true, nil
}

func (s *sliceSource[T]) Close() error { return nil }

// Len reports the items not yet pulled.
func (s *sliceSource[T]) Len() int { return len(s.items) - s.next }

// FromSeq returns a source over a push iterator. The iterator is converted with
// iter.Pull on the first Next call; Close stops it, so an infinite sequence is
// released as soon as the executor stops pulling.
func FromSeq[T any](seq iter.Seq[T]) Source[T] {
	if seq == nil {
		return nil
	}
	return &seqSource[T]{seq: seq}
}

type seqSource[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
}

func (s *seqSource[T]) Next(context.Context) (T, bool, error) {
	if s.next == nil {
		s.next, s.stop = iter.Pull(s.seq)
	}
	v, ok := s.next()
	return v, ok, nil
}

func (s *seqSource[T]) Close() error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}

// FromChan returns a source draining ch until it is closed. Next gives up with
// ctx.Err() when ctx is done first. The channel is owned by the caller and is
// never closed by the source.
func FromChan[T any](ch <-chan T) Source[T] {
	if ch == nil {
		return nil
	}
	return &chanSource[T]{ch: ch}
}

type chanSource[T any] struct {
	ch <-chan T
}

func (s *chanSource[T]) Next(ctx context.Context) (T, bool, error) {
	select {
	case v, ok := <-s.ch:
		return v, ok, nil
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (s *chanSource[T]) Close() error { return nil }

// FromFunc builds a source from a next function and an optional closer.
func FromFunc[T any](next func(context.Context) (T, bool, error), closer func() error) Source[T] {
	if next == nil {
		return nil
	}
	return &funcSource[T]{next: next, closer: closer}
}

type funcSource[T any] struct {
	next   func(context.Context) (T, bool, error)
	closer func() error
}

func (s *funcSource[T]) Next(ctx context.Context) (T, bool, error) { return s.next(ctx) }

func (s *funcSource[T]) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
