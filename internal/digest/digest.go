// Package digest provides the digest and HMAC transform kinds. Both drain
// their input in 256-byte reads and emit the raw digest bytes exactly once.
package digest

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"hash"
	"io"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

// Digest hashes its single input.
var Digest = &transform.Kind{
	Name:   "digest",
	Params: []transform.Param{transform.ParamInput},
	Variants: func() []transform.Variant {
		vs := make([]transform.Variant, 0, len(algorithms))
		for _, a := range algorithms {
			vs = append(vs, transform.V(map[string]string{transform.OptVariant: a.Name}, names("", a)...))
		}
		return vs
	},
	New: func(cfg transform.Config) (transform.Transform, error) {
		a, err := algorithmFor(cfg.Options, false)
		if err != nil {
			return nil, err
		}
		in, err := cfg.Arg(0)
		if err != nil {
			return nil, err
		}
		return &digester{in: in, newHash: a.New}, nil
	},
}

// HMAC authenticates its input with the fully read key argument.
var HMAC = &transform.Kind{
	Name:   "hmac",
	Params: []transform.Param{transform.ParamInput, transform.ParamKey},
	Variants: func() []transform.Variant {
		var vs []transform.Variant
		for _, a := range algorithms {
			if a.Keyable {
				vs = append(vs, transform.V(map[string]string{transform.OptVariant: a.Name}, names("hmac", a)...))
			}
		}
		return vs
	},
	New: func(cfg transform.Config) (transform.Transform, error) {
		a, err := algorithmFor(cfg.Options, true)
		if err != nil {
			return nil, err
		}
		in, err := cfg.Arg(0)
		if err != nil {
			return nil, err
		}
		key, err := cfg.Arg(1)
		if err != nil {
			return nil, err
		}
		return &digester{in: in, key: key, newHash: a.New}, nil
	},
}

func names(prefix string, a Algorithm) []string {
	if a.Alias() == a.Name {
		return []string{prefix + a.Name}
	}
	return []string{prefix + a.Alias(), prefix + a.Name}
}

func algorithmFor(opts transform.Options, keyed bool) (Algorithm, error) {
	name, err := opts.Require(transform.OptVariant)
	if err != nil {
		return Algorithm{}, err
	}
	a, ok := Lookup(name)
	if !ok || (keyed && !a.Keyable) {
		return Algorithm{}, fmt.Errorf("%w %q", transform.ErrUnknownAlgorithm, name)
	}
	return a, nil
}

type digester struct {
	in      stream.Readable
	key     stream.Readable
	newHash func() hash.Hash
}

func (d *digester) Apply() (stream.PullFunc, error) {
	in, key, newHash := d.in, d.key, d.newHash
	once := stream.NewOnce(func() ([]byte, error) {
		var h hash.Hash
		if key != nil {
			k, err := stream.ReadAll(key)
			if err != nil {
				return nil, fmt.Errorf("read key: %w", err)
			}
			h = hmac.New(newHash, k)
		} else {
			h = newHash()
		}
		for {
			chunk, err := in.Read(stream.DefaultChunkSize)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			h.Write(chunk)
		}
		return h.Sum(nil), nil
	})
	return once.Pull, nil
}
