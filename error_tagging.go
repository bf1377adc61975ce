package batches

import (
	"errors"
	"fmt"
)

// ItemError exposes the position of the input item whose operation failed.
type ItemError interface {
	error
	Unwrap() error
	ItemIndex() int
}

type itemError struct {
	err   error
	index int
}

func newItemError(err error, index int) error {
	if err == nil {
		return nil
	}
	return &itemError{err: err, index: index}
}

func (e *itemError) Error() string  { return e.err.Error() }
func (e *itemError) Unwrap() error  { return e.err }
func (e *itemError) ItemIndex() int { return e.index }

func (e *itemError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "item(index=%d): %+v", e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractItemIndex returns the zero-based input position carried by err.
// For joined errors the first tagged error wins.
func ExtractItemIndex(err error) (int, bool) {
	var ie ItemError
	if errors.As(err, &ie) {
		return ie.ItemIndex(), true
	}
	return 0, false
}

// sourceError marks a failure of Source.Next so callers can tell it apart from
// operation failures via errors.Is(err, ErrSource).
type sourceError struct {
	err error
}

func (e *sourceError) Error() string { return ErrSource.Error() + ": " + e.err.Error() }

func (e *sourceError) Unwrap() []error { return []error{ErrSource, e.err} }
