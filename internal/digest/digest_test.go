package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOfDeterministic(t *testing.T) {
	a, err := Of(strings.NewReader("hello world"))
	require.NoError(t, err)

	b, err := Of(strings.NewReader("hello world"))
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a, Size*2) // hex-encoded
}

func TestOfDiffersOnContent(t *testing.T) {
	a, err := Of(strings.NewReader("hello world"))
	require.NoError(t, err)

	b, err := Of(strings.NewReader("hello world!"))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOfEmpty(t *testing.T) {
	a, err := Of(strings.NewReader(""))
	require.NoError(t, err)
	require.Len(t, a, Size*2)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, require.AnError
}

func TestOfReadError(t *testing.T) {
	_, err := Of(errReader{})
	require.Error(t, err)
}
