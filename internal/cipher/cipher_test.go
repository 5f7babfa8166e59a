package cipher

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

func newRegistry() *transform.Registry {
	r := transform.NewRegistry(Cipher, XOR)
	r.Build()
	return r
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func open(t *testing.T, e transform.Entry, dir transform.Direction, opts map[string]string, in, key stream.Readable) (*stream.PullStream, error) {
	t.Helper()
	tr, err := e.New(dir, transform.NewOptions(opts), in, key)
	require.NoError(t, err)
	return transform.Open(tr)
}

func TestCipher_VariantsAreNormalised(t *testing.T) {
	require := require.New(t)

	seen := make(map[string]bool)
	for _, v := range variants() {
		require.Len(v.Names, 1)
		name := v.Names[0]
		require.False(seen[name], "duplicate alias %q", name)
		seen[name] = true
		require.Equal(strings.ToLower(name), name)
		require.NotContains(name, "-")
		_, ok := suites[v.Options.Get(transform.OptVariant)]
		require.True(ok, "no suite behind %q", name)
	}
	for _, name := range []string{"aes128cbc", "aes256ctr", "des3", "desede3cbc", "bfecb", "cast5ofb", "rc4", "chacha20"} {
		require.True(seen[name], name)
	}
}

func TestCipher_RoundTripEveryAlgorithm(t *testing.T) {
	r := newRegistry()
	sizes := []int{0, 1, 255, 256, 257, 1000}

	for _, v := range variants() {
		name := v.Names[0]
		s := suites[v.Options.Get(transform.OptVariant)]
		t.Run(name, func(t *testing.T) {
			e, err := r.Resolve(name)
			require.NoError(t, err)
			key := randomBytes(t, s.keySize)

			for _, size := range sizes {
				data := randomBytes(t, size)

				enc, err := open(t, e, transform.Forward, nil, stream.Bytes(data), stream.Bytes(key))
				require.NoError(t, err)
				dec, err := open(t, e, transform.Inverse, nil, enc, stream.Bytes(key))
				require.NoError(t, err)

				out, err := stream.ReadAll(dec)
				require.NoError(t, err, "size %d", size)
				require.Equal(t, data, out, "size %d", size)
			}
		})
	}
}

func TestCipher_KnownVector(t *testing.T) {
	require := require.New(t)

	// FIPS-197 appendix C.1
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plain, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	want := "69c4e0d86a7b0430d8cdb78070b4c55a"

	r := newRegistry()
	for _, name := range []string{"aes128ecb", "aes128cbc", "aes128"} {
		e, err := r.Resolve(name)
		require.NoError(err)
		s, err := open(t, e, transform.Forward, nil, stream.Bytes(plain), stream.Bytes(key))
		require.NoError(err)
		out, err := stream.ReadAll(s)
		require.NoError(err)
		// one data block plus one full padding block
		require.Len(out, 32)
		require.Equal(want, hex.EncodeToString(out[:16]), name)
	}
}

func TestCipher_ExplicitIV(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	e, err := r.Resolve("aes128cbc")
	require.NoError(err)
	key := randomBytes(t, 16)
	data := []byte("attack at dawn")

	zero, err := open(t, e, transform.Forward, nil, stream.Bytes(data), stream.Bytes(key))
	require.NoError(err)
	withIV, err := open(t, e, transform.Forward,
		map[string]string{transform.OptIV: strings.Repeat("ab", 16)},
		stream.Bytes(data), stream.Bytes(key))
	require.NoError(err)

	a, err := stream.ReadAll(zero)
	require.NoError(err)
	b, err := stream.ReadAll(withIV)
	require.NoError(err)
	require.False(bytes.Equal(a, b))

	_, err = e.New(transform.Forward, transform.NewOptions(map[string]string{transform.OptIV: "abcd"}),
		stream.Bytes(data), stream.Bytes(key))
	require.ErrorIs(err, ErrIVSize)
}

func TestCipher_WrongKeySize(t *testing.T) {
	r := newRegistry()
	e, err := r.Resolve("aes256cbc")
	require.NoError(t, err)
	_, err = open(t, e, transform.Forward, nil, stream.Bytes([]byte("x")), stream.Bytes([]byte("short")))
	require.ErrorIs(t, err, ErrKeySize)
}

func TestCipher_FinalisationErrorPropagates(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	e, err := r.Resolve("aes128cbc")
	require.NoError(err)
	key := randomBytes(t, 16)

	// 20 bytes is not a whole number of blocks
	s, err := open(t, e, transform.Inverse, nil, stream.Bytes(randomBytes(t, 20)), stream.Bytes(key))
	require.NoError(err)
	_, err = stream.ReadAll(s)
	require.ErrorIs(err, ErrBadPadding)

	// the stream stays failed
	_, err = s.Read(0)
	require.ErrorIs(err, ErrBadPadding)
}

func TestCipher_FlushOnceThenEOF(t *testing.T) {
	require := require.New(t)

	tr, err := Cipher.Construct(transform.Config{
		Options: transform.NewOptions(map[string]string{transform.OptVariant: "aes-128-cbc"}),
		Args:    []stream.Readable{stream.Bytes([]byte("abc")), stream.Bytes(randomBytes(t, 16))},
	})
	require.NoError(err)
	pull, err := tr.Apply()
	require.NoError(err)

	// "abc" is buffered until the input ends
	chunk, err := pull()
	require.NoError(err)
	require.Empty(chunk)

	chunk, err = pull()
	require.NoError(err)
	require.Len(chunk, 16)

	for i := 0; i < 3; i++ {
		_, err = pull()
		require.Equal(io.EOF, err)
	}
}

func TestCipher_UnknownVariant(t *testing.T) {
	_, err := Cipher.Construct(transform.Config{
		Options: transform.NewOptions(map[string]string{transform.OptVariant: "rot13"}),
		Args:    []stream.Readable{stream.Bytes(nil), stream.Bytes(nil)},
	})
	require.ErrorIs(t, err, transform.ErrUnknownAlgorithm)
}
