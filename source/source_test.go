package source

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ciphr/internal/stream"
	"ciphr/internal/transform"
)

func build(t *testing.T, k *transform.Kind, opts map[string]string) transform.Transform {
	t.Helper()
	tr, err := k.Construct(transform.Config{Options: transform.NewOptions(opts)})
	require.NoError(t, err)
	return tr
}

func TestLiteralOnce(t *testing.T) {
	s, err := transform.Open(build(t, Literal, map[string]string{transform.OptString: "hello"}))
	require.NoError(t, err)

	got, err := s.Read(0)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	for i := 0; i < 3; i++ {
		_, err = s.Read(0)
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestLiteralEmpty(t *testing.T) {
	s, err := transform.Open(build(t, Literal, map[string]string{transform.OptString: ""}))
	require.NoError(t, err)
	_, err = s.Read(0)
	require.ErrorIs(t, err, io.EOF)
}

func TestLiteralMissingOption(t *testing.T) {
	_, err := Literal.Construct(transform.Config{})
	require.ErrorIs(t, err, transform.ErrMissingOption)
}

func TestSourcesRejectArgs(t *testing.T) {
	_, err := Literal.Construct(transform.Config{
		Options: transform.NewOptions(map[string]string{transform.OptString: "x"}),
		Args:    []stream.Readable{stream.Bytes(nil)},
	})
	require.ErrorIs(t, err, transform.ErrArity)
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileChunks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 60)
	tr := build(t, File, map[string]string{transform.OptFile: writeFile(t, data)})
	s, err := transform.Open(tr)
	require.NoError(t, err)

	var sizes []int
	var got []byte
	for {
		chunk, err := s.Read(0)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, len(chunk))
		got = append(got, chunk...)
	}
	require.Equal(t, []int{256, 256, 88}, sizes)
	require.Equal(t, data, got)
	require.Nil(t, tr.(*file).f, "handle closed at end of file")
	require.NoError(t, s.Close())
}

func TestFilePullPastEnd(t *testing.T) {
	tr := build(t, File, map[string]string{transform.OptFile: writeFile(t, []byte("short"))})
	pull, err := tr.Apply()
	require.NoError(t, err)
	handle := tr.(*file).f
	require.NotNil(t, handle)

	chunk, err := pull()
	require.NoError(t, err)
	require.Equal(t, []byte("short"), chunk)

	for i := 0; i < 5; i++ {
		chunk, err = pull()
		require.ErrorIs(t, err, io.EOF)
		require.Empty(t, chunk)
	}
	require.Nil(t, tr.(*file).f)
	// closed by the first end of file; a second close of the handle fails
	require.ErrorIs(t, handle.Close(), os.ErrClosed)
	require.NoError(t, tr.(io.Closer).Close())
}

func TestFileEmpty(t *testing.T) {
	s, err := transform.Open(build(t, File, map[string]string{transform.OptFile: writeFile(t, nil)}))
	require.NoError(t, err)
	got, err := stream.ReadAll(s)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestFileClosedEarly(t *testing.T) {
	data := bytes.Repeat([]byte{'a'}, 1000)
	tr := build(t, File, map[string]string{transform.OptFile: writeFile(t, data)})
	s, err := transform.Open(tr)
	require.NoError(t, err)

	_, err = s.Read(10)
	require.NoError(t, err)
	require.NotNil(t, tr.(*file).f)

	require.NoError(t, s.Close())
	require.Nil(t, tr.(*file).f)
	require.NoError(t, s.Close())
}

func TestFileMissing(t *testing.T) {
	tr := build(t, File, map[string]string{transform.OptFile: filepath.Join(t.TempDir(), "nope")})
	_, err := tr.Apply()
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileAppliedTwice(t *testing.T) {
	tr := build(t, File, map[string]string{transform.OptFile: writeFile(t, []byte("x"))})
	_, err := tr.Apply()
	require.NoError(t, err)
	_, err = tr.Apply()
	require.ErrorIs(t, err, transform.ErrAlreadyApplied)
	require.NoError(t, tr.(io.Closer).Close())
}

func TestStdin(t *testing.T) {
	prev := Stdin
	t.Cleanup(func() { Stdin = prev })
	data := strings.Repeat("z", 300)
	Stdin = strings.NewReader(data)

	s, err := transform.Open(build(t, StdinKind, nil))
	require.NoError(t, err)

	first, err := s.Read(0)
	require.NoError(t, err)
	require.Len(t, first, 256)

	rest, err := stream.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, data, string(first)+string(rest))
}
