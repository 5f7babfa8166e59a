package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

// Algorithm is one hash function offered by the digest kinds.
type Algorithm struct {
	Name string
	New  func() hash.Hash
	// Keyable reports whether the algorithm is offered as an HMAC.
	Keyable bool
}

// Alias is the registry name of the algorithm: its name without separators.
func (a Algorithm) Alias() string {
	return strings.ReplaceAll(a.Name, "-", "")
}

var algorithms = []Algorithm{
	{Name: "md4", New: md4.New, Keyable: true},
	{Name: "md5", New: md5.New, Keyable: true},
	{Name: "sha1", New: sha1.New, Keyable: true},
	{Name: "sha224", New: sha256.New224, Keyable: true},
	{Name: "sha256", New: sha256.New, Keyable: true},
	{Name: "sha384", New: sha512.New384, Keyable: true},
	{Name: "sha512", New: sha512.New, Keyable: true},
	{Name: "sha512-224", New: sha512.New512_224, Keyable: true},
	{Name: "sha512-256", New: sha512.New512_256, Keyable: true},
	{Name: "sha3-224", New: sha3.New224, Keyable: true},
	{Name: "sha3-256", New: sha3.New256, Keyable: true},
	{Name: "sha3-384", New: sha3.New384, Keyable: true},
	{Name: "sha3-512", New: sha3.New512, Keyable: true},
	{Name: "ripemd160", New: ripemd160.New, Keyable: true},
	{Name: "blake2b-256", New: unkeyed(blake2b.New256), Keyable: true},
	{Name: "blake2b-512", New: unkeyed(blake2b.New512), Keyable: true},
	{Name: "blake2s-256", New: unkeyed(blake2s.New256), Keyable: true},
	{Name: "xxhash64", New: func() hash.Hash { return xxhash.New() }},
}

// unkeyed adapts the blake2 constructors, which only fail on oversized keys.
func unkeyed(fn func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := fn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	return append([]Algorithm(nil), algorithms...)
}

// Lookup finds an algorithm by name.
func Lookup(name string) (Algorithm, bool) {
	for _, a := range algorithms {
		if a.Name == name {
			return a, true
		}
	}
	return Algorithm{}, false
}
