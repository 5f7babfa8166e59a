package stream

import (
	"errors"
	"io"
)

type reader struct {
	r Readable
}

// Reader adapts a Readable to io.Reader.
func Reader(r Readable) io.Reader {
	return &reader{r: r}
}

func (rd *reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	chunk, err := rd.r.Read(len(p))
	n := copy(p, chunk)
	return n, err
}

// FromReader returns a PullFunc reading size-byte chunks from r. A short
// final chunk is returned as is and followed by io.EOF.
func FromReader(r io.Reader, size int) PullFunc {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func() ([]byte, error) {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		switch {
		case errors.Is(err, io.ErrUnexpectedEOF):
			return buf[:n], nil
		case err != nil:
			return nil, err
		}
		return buf, nil
	}
}

// Bytes returns a Readable that yields b once.
func Bytes(b []byte) *PullStream {
	return New(ReadyOnce(b).Pull)
}
