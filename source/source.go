// Package source provides the terminal transform kinds: a literal string,
// a file and the process's standard input. They take no arguments and are
// where every chain starts.
package source

import (
	"errors"
	"io"
	"os"

	"ciphr/internal/logging"
	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

// Literal yields its configured string once.
var Literal = &transform.Kind{
	Name: "string",
	Variants: func() []transform.Variant {
		return []transform.Variant{transform.V(nil, "string", "literal")}
	},
	New: func(cfg transform.Config) (transform.Transform, error) {
		s, err := cfg.Options.Require(transform.OptString)
		if err != nil {
			return nil, err
		}
		return &literal{value: []byte(s)}, nil
	},
}

type literal struct {
	value []byte
}

func (l *literal) Apply() (stream.PullFunc, error) {
	once := stream.ReadyOnce(l.value)
	l.value = nil
	return once.Pull, nil
}

// File reads the configured path in 256-byte chunks.
var File = &transform.Kind{
	Name: "file",
	Variants: func() []transform.Variant {
		return []transform.Variant{transform.V(nil, "file")}
	},
	New: func(cfg transform.Config) (transform.Transform, error) {
		path, err := cfg.Options.Require(transform.OptFile)
		if err != nil {
			return nil, err
		}
		return &file{path: path}, nil
	},
}

// file owns at most one open handle. The handle is closed exactly once:
// on end of file, on a read error, or when the stream is closed early.
type file struct {
	path    string
	f       *os.File
	applied bool
}

func (fl *file) Apply() (stream.PullFunc, error) {
	if fl.applied {
		return nil, transform.ErrAlreadyApplied
	}
	fl.applied = true
	f, err := os.Open(fl.path)
	if err != nil {
		return nil, err
	}
	fl.f = f
	read := stream.FromReader(f, stream.DefaultChunkSize)
	return func() ([]byte, error) {
		if fl.f == nil {
			return nil, io.EOF
		}
		chunk, err := read()
		if err != nil {
			if cerr := fl.Close(); cerr != nil && errors.Is(err, io.EOF) {
				return nil, cerr
			}
			return nil, err
		}
		return chunk, nil
	}, nil
}

// Close releases the handle if it is still open.
func (fl *file) Close() error {
	if fl.f == nil {
		return nil
	}
	f := fl.f
	fl.f = nil
	logging.L().Debug("file source closed", "path", fl.path)
	return f.Close()
}

// Stdin is where the Stdin kind reads from.
var Stdin io.Reader = os.Stdin

// StdinKind reads the process's standard input in 256-byte chunks. It
// never closes the descriptor.
var StdinKind = &transform.Kind{
	Name: "stdin",
	Variants: func() []transform.Variant {
		return []transform.Variant{transform.V(nil, "stdin")}
	},
	New: func(transform.Config) (transform.Transform, error) {
		return stdin{}, nil
	},
}

type stdin struct{}

func (stdin) Apply() (stream.PullFunc, error) {
	return stream.FromReader(Stdin, stream.DefaultChunkSize), nil
}

var _ io.Closer = (*file)(nil)
