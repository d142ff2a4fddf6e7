package backend_test

import (
	"testing"

	"github.com/gekko3d/webrays/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileBytesMinimumWidth(t *testing.T) {
	d := backend.TileBytes(16)
	assert.Equal(t, 16, d.Width)
	assert.Equal(t, 1, d.Height)
}

func TestTileBytesGrowsWithSize(t *testing.T) {
	small := backend.TileBytes(16 * 16 * 16)
	large := backend.TileBytes(16 * 16 * 16 * 100)
	assert.GreaterOrEqual(t, large.Width*large.Height, small.Width*small.Height)
}

func TestTileInstanceBytesCapsWidth(t *testing.T) {
	d := backend.TileInstanceBytes(16 * 2000 * 2000)
	assert.LessOrEqual(t, d.Width, 512)
}

func TestReconcileDimensionsTakesMax(t *testing.T) {
	out := backend.ReconcileDimensions([]backend.TileDimensions{
		{Width: 16, Height: 4},
		{Width: 32, Height: 2},
	})
	assert.Equal(t, 32, out.Width)
	assert.Equal(t, 4, out.Height)
}

func TestCPUBackendRoundTrips(t *testing.T) {
	b := backend.NewCPUBackend()
	data := []byte{1, 2, 3, 4}
	h1, err := b.UploadTexture2D("scene_vertices", data, backend.TileDimensions{Width: 16, Height: 1})
	require.NoError(t, err)

	got, ok := b.Read("scene_vertices")
	require.True(t, ok)
	assert.Equal(t, data, got)

	h2, err := b.UploadTexture2D("scene_vertices", []byte{5, 6}, backend.TileDimensions{Width: 16, Height: 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "re-uploading under the same name keeps the same handle")

	got, _ = b.Read("scene_vertices")
	assert.Equal(t, []byte{5, 6}, got)
}

func TestCPUBackendDistinctNamesGetDistinctHandles(t *testing.T) {
	b := backend.NewCPUBackend()
	h1, err := b.UploadTexture2D("scene_vertices", []byte{1}, backend.TileDimensions{Width: 16, Height: 1})
	require.NoError(t, err)
	h2, err := b.UploadTexture2D("scene_indices", []byte{2}, backend.TileDimensions{Width: 16, Height: 1})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
