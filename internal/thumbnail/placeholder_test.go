package thumbnail

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerator_Placeholder(t *testing.T) {
	gen := NewGenerator()

	withRoom, err := gen.Placeholder(true)
	require.NoError(t, err)
	empty, err := gen.Placeholder(false)
	require.NoError(t, err)
	require.NotEqual(t, withRoom, empty)

	img, err := png.Decode(bytes.NewReader(withRoom))
	require.NoError(t, err)
	require.Equal(t, 300, img.Bounds().Dx())
	require.Equal(t, 200, img.Bounds().Dy())
}

func TestGenerator_InvalidSize(t *testing.T) {
	gen := &Generator{}
	_, err := gen.Placeholder(false)
	require.Error(t, err)
}
