package codec

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

var kinds = []*transform.Kind{Base64, Base16, Base8, Base2}

func apply(t *testing.T, k *transform.Kind, dir transform.Direction, in stream.Readable) ([]byte, error) {
	t.Helper()
	tr, err := k.Construct(transform.Config{Direction: dir, Args: []stream.Readable{in}})
	require.NoError(t, err)
	s, err := transform.Open(tr)
	require.NoError(t, err)
	return stream.ReadAll(s)
}

func TestCodec_Encode(t *testing.T) {
	testCases := []struct {
		kind       *transform.Kind
		input, out string
	}{
		{Base64, "", ""},
		{Base64, "abc", "YWJj"},
		{Base64, "ab", "YWI="},
		{Base64, "Hello, World!", "SGVsbG8sIFdvcmxkIQ=="},
		{Base16, "abc", "616263"},
		{Base16, "\x00\xff", "00ff"},
		{Base8, "A", "101"},
		{Base8, "\x00\xff", "000377"},
		{Base2, "A", "01000001"},
		{Base2, "\x01\x80", "0000000110000000"},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.Name+"/"+tc.out, func(t *testing.T) {
			out, err := apply(t, tc.kind, transform.Forward, stream.Bytes([]byte(tc.input)))
			require.NoError(t, err)
			require.Equal(t, tc.out, string(out))
		})
	}
}

func TestCodec_Decode(t *testing.T) {
	testCases := []struct {
		kind       *transform.Kind
		input, out string
	}{
		{Base64, "YWJj", "abc"},
		{Base64, "YWI=", "ab"},
		// an undersized final group is padded before decoding
		{Base64, "YWI", "ab"},
		{Base16, "616263", "abc"},
		{Base16, "a", "\xa0"},
		{Base8, "101", "A"},
		{Base8, "7", "\x07"},
		{Base2, "01000001", "A"},
		{Base2, "1", "\x80"},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.Name+"/"+tc.input, func(t *testing.T) {
			out, err := apply(t, tc.kind, transform.Inverse, stream.Bytes([]byte(tc.input)))
			require.NoError(t, err)
			require.Equal(t, []byte(tc.out), out)
		})
	}
}

func TestCodec_DecodeMalformed(t *testing.T) {
	testCases := []struct {
		kind  *transform.Kind
		input string
	}{
		{Base64, "Y!Jj"},
		{Base16, "zz"},
		{Base8, "777"},
		{Base8, "9"},
		{Base2, "01a00001"},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.Name+"/"+tc.input, func(t *testing.T) {
			_, err := apply(t, tc.kind, transform.Inverse, stream.Bytes([]byte(tc.input)))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestCodec_DecodeSkipsWhitespace(t *testing.T) {
	testCases := []struct {
		kind       *transform.Kind
		input, out string
	}{
		{Base64, "QUJD\n", "ABC"},
		{Base64, "QUJDRA==\n", "ABCD"},
		{Base64, "QU JD\r\nRA==\r\n", "ABCD"},
		{Base16, "6162\n63\n", "abc"},
		{Base8, "101 102\n", "AB"},
		{Base2, "01000001\n", "A"},
		{Base64, "\n\n", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.Name+"/"+tc.out, func(t *testing.T) {
			out, err := apply(t, tc.kind, transform.Inverse, stream.Bytes([]byte(tc.input)))
			require.NoError(t, err)
			require.Equal(t, []byte(tc.out), out)
		})
	}
}

func TestCodec_DecodeLineWrappedBase64(t *testing.T) {
	data := make([]byte, 1000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString(data)
	var wrapped strings.Builder
	for len(encoded) > 76 {
		wrapped.WriteString(encoded[:76] + "\n")
		encoded = encoded[76:]
	}
	wrapped.WriteString(encoded + "\n")

	out, err := apply(t, Base64, transform.Inverse, stream.Bytes([]byte(wrapped.String())))
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestCodec_RoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 5, 7, 8, 9, 255, 256, 257, 1000}
	for _, k := range kinds {
		for _, size := range sizes {
			data := make([]byte, size)
			_, err := rand.Read(data)
			require.NoError(t, err)

			tr, err := k.Construct(transform.Config{Args: []stream.Readable{stream.Bytes(data)}})
			require.NoError(t, err)
			encoded, err := transform.Open(tr)
			require.NoError(t, err)

			out, err := apply(t, k, transform.Inverse, encoded)
			require.NoError(t, err, "%s size %d", k.Name, size)
			require.Equal(t, data, out, "%s size %d", k.Name, size)
		}
	}
}

func TestCodec_EndsWithUpstream(t *testing.T) {
	require := require.New(t)

	tr, err := Base16.Construct(transform.Config{Args: []stream.Readable{stream.Bytes([]byte("ab"))}})
	require.NoError(err)
	pull, err := tr.Apply()
	require.NoError(err)

	for _, want := range []string{"61", "62"} {
		chunk, err := pull()
		require.NoError(err)
		require.Equal(want, string(chunk))
	}
	_, err = pull()
	require.Equal(io.EOF, err)
}

func TestCodec_Variants(t *testing.T) {
	r := transform.NewRegistry(kinds...)
	r.Build()
	for _, name := range []string{"b64", "base64", "hex", "hexidecimal", "b16", "base16",
		"oct", "octal", "b8", "base8", "bin", "binary", "b2", "base2"} {
		e, ok := r.Lookup(name)
		require.True(t, ok, name)
		require.True(t, e.Kind.Invertible)
	}
}
