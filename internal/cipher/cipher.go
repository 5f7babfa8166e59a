// Package cipher provides the symmetric cipher transform kind, whose
// variants are enumerated from the algorithms linked into the binary, and
// the XOR combinator.
package cipher

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

var (
	// ErrKeySize is returned when the key argument does not fit the algorithm.
	ErrKeySize = errors.New("invalid key size")
	// ErrIVSize is returned when the iv option does not fit the algorithm.
	ErrIVSize = errors.New("invalid iv size")
	// ErrBadPadding is returned by a decrypting stream whose final block
	// does not carry valid padding.
	ErrBadPadding = errors.New("bad decrypt")
)

// Cipher encrypts (Forward) or decrypts (Inverse) its input with the fully
// read key argument.
var Cipher = &transform.Kind{
	Name:       "cipher",
	Params:     []transform.Param{transform.ParamInput, transform.ParamKey},
	Invertible: true,
	Variants:   variants,
	New: func(cfg transform.Config) (transform.Transform, error) {
		name, err := cfg.Options.Require(transform.OptVariant)
		if err != nil {
			return nil, err
		}
		s, ok := suites[name]
		if !ok {
			return nil, fmt.Errorf("%w %q", transform.ErrUnknownAlgorithm, name)
		}
		iv := make([]byte, s.ivSize)
		if v, ok := cfg.Options.Lookup(transform.OptIV); ok {
			if iv, err = hex.DecodeString(v); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIVSize, err)
			}
			if len(iv) != s.ivSize {
				return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", ErrIVSize, name, s.ivSize, len(iv))
			}
		}
		in, err := cfg.Arg(0)
		if err != nil {
			return nil, err
		}
		key, err := cfg.Arg(1)
		if err != nil {
			return nil, err
		}
		return &cipherTransform{
			name:    name,
			suite:   s,
			iv:      iv,
			decrypt: cfg.Direction == transform.Inverse,
			in:      in,
			key:     key,
		}, nil
	},
}

// variants normalises the enumerated algorithm names: lower-cased,
// de-duplicated, and aliased without separators.
func variants() []transform.Variant {
	seen := make(map[string]bool)
	var vs []transform.Variant
	for _, n := range Available() {
		n = strings.ToLower(n)
		if seen[n] {
			continue
		}
		seen[n] = true
		vs = append(vs, transform.V(
			map[string]string{transform.OptVariant: n},
			strings.ReplaceAll(n, "-", "")))
	}
	return vs
}

type cipherTransform struct {
	name    string
	suite   suite
	iv      []byte
	decrypt bool
	in      stream.Readable
	key     stream.Readable
}

func (c *cipherTransform) Apply() (stream.PullFunc, error) {
	key, err := stream.ReadAll(c.key)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	if len(key) != c.suite.keySize {
		return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", ErrKeySize, c.name, c.suite.keySize, len(key))
	}
	ctx, err := c.suite.context(key, c.iv, c.decrypt)
	if err != nil {
		return nil, err
	}
	in := c.in
	return func() ([]byte, error) {
		if ctx == nil {
			return nil, io.EOF
		}
		chunk, err := in.Read(stream.DefaultChunkSize)
		if errors.Is(err, io.EOF) {
			final := ctx
			ctx = nil
			return final.Final()
		}
		if err != nil {
			return nil, err
		}
		return ctx.Update(chunk)
	}, nil
}
