// Package codec provides the base-N transform kinds. Each is invertible and
// works in fixed-size groups: encoding reads bytes and emits text, decoding
// reads text and emits bytes.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

// ErrMalformed is returned when decoding meets input that is not valid for
// the codec.
var ErrMalformed = errors.New("malformed input")

var (
	Base64 = newKind(codec{
		name:       "base64",
		aliases:    []string{"b64", "base64"},
		encodeSize: 3,
		decodeSize: 4,
		encode: func(b []byte) []byte {
			out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
			base64.StdEncoding.Encode(out, b)
			return out
		},
		decode: func(b []byte) ([]byte, error) {
			b = pad(b, 4, '=')
			out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
			n, err := base64.StdEncoding.Decode(out, b)
			if err != nil {
				return nil, err
			}
			return out[:n], nil
		},
	})

	Base16 = newKind(codec{
		name:       "base16",
		aliases:    []string{"hex", "hexidecimal", "b16", "base16"},
		encodeSize: 1,
		decodeSize: 2,
		encode: func(b []byte) []byte {
			out := make([]byte, hex.EncodedLen(len(b)))
			hex.Encode(out, b)
			return out
		},
		decode: func(b []byte) ([]byte, error) {
			b = pad(b, 2, '0')
			out := make([]byte, hex.DecodedLen(len(b)))
			if _, err := hex.Decode(out, b); err != nil {
				return nil, err
			}
			return out, nil
		},
	})

	Base8 = newKind(codec{
		name:       "base8",
		aliases:    []string{"oct", "octal", "b8", "base8"},
		encodeSize: 1,
		decodeSize: 3,
		encode:     radixEncoder(8, 3),
		decode: func(b []byte) ([]byte, error) {
			return radixDecode(b, 8)
		},
	})

	Base2 = newKind(codec{
		name:       "base2",
		aliases:    []string{"bin", "binary", "b2", "base2"},
		encodeSize: 1,
		decodeSize: 8,
		encode:     radixEncoder(2, 8),
		decode: func(b []byte) ([]byte, error) {
			return radixDecode(pad(b, 8, '0'), 2)
		},
	})
)

type codec struct {
	name       string
	aliases    []string
	encodeSize int
	decodeSize int
	encode     func([]byte) []byte
	decode     func([]byte) ([]byte, error)
}

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
				return &grouped{in: skipSpace(in, c.decodeSize), size: c.decodeSize, fn: func(b []byte) ([]byte, error) {
					out, err := c.decode(b)
					if err != nil {
						return nil, fmt.Errorf("%s: %w %q: %v", c.name, ErrMalformed, b, err)
					}
					return out, nil
				}}, nil
			}
			return &grouped{in: in, size: c.encodeSize, fn: func(b []byte) ([]byte, error) {
				return c.encode(b), nil
			}}, nil
		},
	}
}

// grouped reads size bytes at a time and maps each group through fn. A
// short final group is still mapped once before the stream ends.
type grouped struct {
	in   stream.Readable
	size int
	fn   func([]byte) ([]byte, error)
}

func (g *grouped) Apply() (stream.PullFunc, error) {
	in, size, fn := g.in, g.size, g.fn
	return func() ([]byte, error) {
		chunk, err := in.Read(size)
		if err != nil {
			return nil, err
		}
		return fn(chunk)
	}, nil
}

// skipSpace drops ASCII whitespace from in, so line-wrapped or newline
// terminated text groups on encoded characters only.
func skipSpace(in stream.Readable, size int) stream.Readable {
	return stream.New(func() ([]byte, error) {
		chunk, err := in.Read(size)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, len(chunk))
		for _, b := range chunk {
			switch b {
			case ' ', '\t', '\n', '\v', '\f', '\r':
			default:
				out = append(out, b)
			}
		}
		return out, nil
	})
}

func pad(b []byte, size int, c byte) []byte {
	if len(b) >= size {
		return b
	}
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{c}, size-len(b))...)
}

func radixEncoder(base, width int) func([]byte) []byte {
	return func(b []byte) []byte {
		out := make([]byte, 0, len(b)*width)
		for _, c := range b {
			digits := strconv.FormatUint(uint64(c), base)
			for i := len(digits); i < width; i++ {
				out = append(out, '0')
			}
			out = append(out, digits...)
		}
		return out
	}
}

func radixDecode(b []byte, base int) ([]byte, error) {
	v, err := strconv.ParseUint(string(b), base, 8)
	if err != nil {
		return nil, err
	}
	return []byte{byte(v)}, nil
}
