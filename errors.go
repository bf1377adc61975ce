package batches

import (
	"errors"
	"fmt"
)

const Namespace = "batches"

var (
	// ErrNilArgument is the parent of ErrNilSource and ErrNilOperation.
	ErrNilArgument  = errors.New(Namespace + ": required argument is nil")
	ErrNilSource    = fmt.Errorf("%w: source", ErrNilArgument)
	ErrNilOperation = fmt.Errorf("%w: operation", ErrNilArgument)

	ErrInvalidArgument   = errors.New(Namespace + ": invalid argument")
	ErrOperationPanicked = errors.New(Namespace + ": operation panicked")
	ErrSource            = errors.New(Namespace + ": source failed")
)
