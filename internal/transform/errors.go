package transform

import "errors"

var (
	// ErrUnknownName is returned when a name is not registered.
	ErrUnknownName = errors.New("unknown transform")
	// ErrUnknownAlgorithm is returned when a variant names an algorithm
	// the kind does not implement.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrMissingOption is returned when a required option is absent.
	ErrMissingOption = errors.New("missing required option")
	// ErrNotInvertible is returned when an inverse direction is requested
	// from a kind that only works forward.
	ErrNotInvertible = errors.New("transform is not invertible")
	// ErrArity is returned when a transform receives the wrong number of args.
	ErrArity = errors.New("wrong number of arguments")
	// ErrAlreadyApplied is returned by kinds that hold resources when
	// Apply is called a second time.
	ErrAlreadyApplied = errors.New("transform already applied")
)
