// Package catalog is the static table of every transform kind the binary
// ships with.
package catalog

import (
	"sync"

	"ciphr/internal/cipher"
	"ciphr/internal/codec"
	"ciphr/internal/compress"
	"ciphr/internal/digest"
	"ciphr/internal/transform"
	"ciphr/source"
)

// Kinds returns every kind in registration order. Later kinds win alias
// collisions.
func Kinds() []*transform.Kind {
	return []*transform.Kind{
		source.Literal,
		source.File,
		source.StdinKind,
		transform.Cat,
		digest.Digest,
		digest.HMAC,
		codec.Base64,
		codec.Base16,
		codec.Base8,
		codec.Base2,
		cipher.Cipher,
		cipher.XOR,
		compress.Gzip,
		compress.Zstd,
		compress.Snappy,
		compress.LZ4,
	}
}

var (
	once sync.Once
	reg  *transform.Registry
)

// Registry returns the process wide registry, building it on first use.
func Registry() *transform.Registry {
	once.Do(func() {
		reg = New()
	})
	return reg
}

// New builds a fresh registry from Kinds.
func New() *transform.Registry {
	r := transform.NewRegistry(Kinds()...)
	r.Build()
	return r
}
