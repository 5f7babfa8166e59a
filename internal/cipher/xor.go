package cipher

import (
	"fmt"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

// XOR combines its input with a repeating key. It is its own inverse, so
// both directions run the same algorithm.
var XOR = &transform.Kind{
	Name:       "xor",
	Params:     []transform.Param{transform.ParamInput, transform.ParamKey},
	Invertible: true,
	Variants: func() []transform.Variant {
		return []transform.Variant{transform.V(nil, "xor")}
	},
	New: func(cfg transform.Config) (transform.Transform, error) {
		in, err := cfg.Arg(0)
		if err != nil {
			return nil, err
		}
		key, err := cfg.Arg(1)
		if err != nil {
			return nil, err
		}
		return &xorTransform{in: in, key: key}, nil
	},
}

type xorTransform struct {
	in  stream.Readable
	key stream.Readable
}

// Apply reads the whole key, then pulls input in key-sized chunks. The
// output always has the length of the input chunk and the key is the
// operand that repeats.
func (x *xorTransform) Apply() (stream.PullFunc, error) {
	key, err := stream.ReadAll(x.key)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: xor key is empty", ErrKeySize)
	}
	in := x.in
	return func() ([]byte, error) {
		chunk, err := in.Read(len(key))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(chunk))
		for i, b := range chunk {
			out[i] = b ^ key[i%len(key)]
		}
		return out, nil
	}, nil
}
