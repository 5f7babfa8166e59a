// Package compress provides invertible compression transform kinds. The
// forward direction compresses, the inverse decompresses; both stream in
// 256-byte reads and never hold the whole input.
package compress

import (
	"bytes"
	"errors"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

// codec pairs a streaming compressor with its decompressor.
type codec struct {
	name      string
	aliases   []string
	newWriter func(io.Writer) (io.WriteCloser, error)
	newReader func(io.Reader) (io.ReadCloser, error)
}

var (
	Gzip = newKind(codec{
		name:    "gzip",
		aliases: []string{"gzip", "gz"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	})

	Zstd = newKind(codec{
		name:    "zstd",
		aliases: []string{"zstd", "zst"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
	})

	Snappy = newKind(codec{
		name:    "snappy",
		aliases: []string{"snappy", "sz"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return snappy.NewBufferedWriter(w), nil
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(snappy.NewReader(r)), nil
		},
	})

	LZ4 = newKind(codec{
		name:    "lz4",
		aliases: []string{"lz4"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(w), nil
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
	})
)

func newKind(c codec) *transform.Kind {
	return &transform.Kind{
		Name:       c.name,
		Params:     []transform.Param{transform.ParamInput},
		Invertible: true,
		Variants: func() []transform.Variant {
			return []transform.Variant{transform.V(nil, c.aliases...)}
		},
		New: func(cfg transform.Config) (transform.Transform, error) {
			in, err := cfg.Arg(0)
			if err != nil {
				return nil, err
			}
			if cfg.Direction == transform.Inverse {
				return &decompressor{in: in, newReader: c.newReader}, nil
			}
			return &compressor{in: in, newWriter: c.newWriter}, nil
		},
	}
}

type compressor struct {
	in        stream.Readable
	newWriter func(io.Writer) (io.WriteCloser, error)
}

// Apply feeds input into the compressor until it emits something, and
// closes it once when the input ends so the trailer is flushed.
func (c *compressor) Apply() (stream.PullFunc, error) {
	var buf bytes.Buffer
	w, err := c.newWriter(&buf)
	if err != nil {
		return nil, err
	}
	in := c.in
	return func() ([]byte, error) {
		if w == nil {
			return nil, io.EOF
		}
		for buf.Len() == 0 {
			chunk, err := in.Read(stream.DefaultChunkSize)
			if errors.Is(err, io.EOF) {
				cerr := w.Close()
				w = nil
				if cerr != nil {
					return nil, cerr
				}
				break
			}
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(chunk); err != nil {
				return nil, err
			}
		}
		out := bytes.Clone(buf.Bytes())
		buf.Reset()
		return out, nil
	}, nil
}

type decompressor struct {
	in        stream.Readable
	newReader func(io.Reader) (io.ReadCloser, error)
}

// Apply defers opening the decompressor until the first pull, since most
// of them read a header straight away.
func (d *decompressor) Apply() (stream.PullFunc, error) {
	var (
		pull stream.PullFunc
		rc   io.ReadCloser
	)
	in, newReader := d.in, d.newReader
	return func() ([]byte, error) {
		if pull == nil {
			r, err := newReader(stream.Reader(in))
			if err != nil {
				return nil, err
			}
			rc, pull = r, stream.FromReader(r, stream.DefaultChunkSize)
		}
		chunk, err := pull()
		if errors.Is(err, io.EOF) && rc != nil {
			cerr := rc.Close()
			rc = nil
			if cerr != nil {
				return nil, cerr
			}
		}
		return chunk, err
	}, nil
}
