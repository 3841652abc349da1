package probe

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_PNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Shot.PNG")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 40, 30))))
	require.NoError(t, f.Close())

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, "png", info.Decoder)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 30, info.Height)
	assert.Positive(t, info.Size)
	assert.False(t, info.HasExif)
	assert.InDelta(t, 0.0012, info.Megapixels(), 1e-9)
}

func TestProbe_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 16)), nil))
	require.NoError(t, f.Close())

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Decoder)
	assert.Equal(t, 8, info.Width)
	assert.Equal(t, 16, info.Height)
}

func TestProbe_Undecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	info, err := Probe(path)
	assert.Error(t, err)
	require.NotNil(t, info)
	assert.False(t, info.Decodable())
	assert.Equal(t, int64(7), info.Size)
	assert.Zero(t, info.Megapixels())
}

func TestProbe_Missing(t *testing.T) {
	info, err := Probe(filepath.Join(t.TempDir(), "nope.heic"))
	assert.Error(t, err)
	assert.Nil(t, info)
}
