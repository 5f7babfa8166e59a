// Package stream implements the lazy pull model shared by every transform.
// A Readable hands out chunks on demand; io.EOF marks the end of a stream
// and, once returned, is returned on every later call.
package stream

import (
	"errors"
	"io"
)

// DefaultChunkSize is the natural read size of sources, digests and ciphers.
const DefaultChunkSize = 256

// Readable is anything that yields bytes when asked.
//
// Read(n) with n > 0 returns at most n bytes. Read(n) with n <= 0 returns
// exactly one chunk of whatever granularity the producer works at.
type Readable interface {
	Read(n int) ([]byte, error)
}

// PullFunc produces the next chunk of a transform's output.
// io.EOF ends the stream. An empty chunk with a nil error is allowed and
// simply means "nothing yet".
type PullFunc func() ([]byte, error)

// Option customises a PullStream.
type Option func(*PullStream)

// WithCleanup registers fn to run once when the stream is closed.
func WithCleanup(fn func() error) Option {
	return func(s *PullStream) { s.cleanup = fn }
}

// PullStream adapts a PullFunc to the Readable contract, buffering any
// surplus between calls.
type PullStream struct {
	pull    PullFunc
	buf     []byte
	done    bool
	err     error
	cleanup func() error
	closed  bool
}

// New wraps pull in a PullStream.
func New(pull PullFunc, opts ...Option) *PullStream {
	s := &PullStream{pull: pull}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Read implements Readable.
func (s *PullStream) Read(n int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if n <= 0 {
		return s.next()
	}
	for len(s.buf) < n && !s.done {
		if err := s.fill(); err != nil {
			return nil, err
		}
	}
	if len(s.buf) == 0 {
		return nil, io.EOF
	}
	return s.take(min(n, len(s.buf))), nil
}

// Exhausted reports whether the underlying pull function has ended and
// every buffered byte has been delivered.
func (s *PullStream) Exhausted() bool {
	return s.done && len(s.buf) == 0
}

// Close runs the cleanup hook, if any, exactly once.
func (s *PullStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf = nil
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

func (s *PullStream) next() ([]byte, error) {
	if len(s.buf) > 0 {
		return s.take(len(s.buf)), nil
	}
	for !s.done {
		chunk, err := s.pull()
		if errors.Is(err, io.EOF) {
			s.finish()
			if len(chunk) > 0 {
				return chunk, nil
			}
			break
		}
		if err != nil {
			s.err = err
			return nil, err
		}
		if len(chunk) > 0 {
			return chunk, nil
		}
	}
	return nil, io.EOF
}

func (s *PullStream) fill() error {
	chunk, err := s.pull()
	if errors.Is(err, io.EOF) {
		s.finish()
		s.buf = append(s.buf, chunk...)
		return nil
	}
	if err != nil {
		s.err = err
		return err
	}
	s.buf = append(s.buf, chunk...)
	return nil
}

// finish drops the pull function so it can never be invoked again.
func (s *PullStream) finish() {
	s.done = true
	s.pull = nil
}

func (s *PullStream) take(k int) []byte {
	out := make([]byte, k)
	copy(out, s.buf)
	s.buf = s.buf[k:]
	if len(s.buf) == 0 {
		s.buf = nil
	}
	return out
}

// ReadAll reads r until io.EOF and returns everything it produced.
func ReadAll(r Readable) ([]byte, error) {
	out := []byte{}
	for {
		chunk, err := r.Read(0)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
	}
}

var _ Readable = (*PullStream)(nil)
