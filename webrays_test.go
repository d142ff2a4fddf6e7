package webrays_test

import (
	"testing"

	"github.com/gekko3d/webrays"
	"github.com/gekko3d/webrays/backend"
	"github.com/gekko3d/webrays/scene"
	"github.com/gekko3d/webrays/traverse"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEndSingleTriangleQuery(t *testing.T) {
	mod, err := webrays.Init(backend.KindCPU, scene.KindSAH)
	require.NoError(t, err)
	defer mod.Close()

	blas, err := mod.CreateADS(map[string]string{"type": "BLAS"})
	require.NoError(t, err)

	positions := []mgl32.Vec4{{-1, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}}
	normals := []mgl32.Vec4{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}}
	_, err = mod.AddShape(blas, positions, normals, nil, 3, []int32{0, 1, 2, 0}, 1)
	require.NoError(t, err)

	flags, err := mod.Update()
	require.NoError(t, err)
	assert.NotZero(t, flags)

	assert.Contains(t, mod.GetSceneAccessor(), "query_intersection")
	assert.Equal(t, []string{"scene_vertices", "scene_indices", "bvh_nodes"}, mod.GetSceneAccessorBindings())

	ray := traverse.Ray{Origin: mgl32.Vec3{0, 0.25, -1}, Direction: mgl32.Vec3{0, 0, 1}, TMax: 10}
	hit, err := mod.QueryIntersection(blas, ray)
	require.NoError(t, err)
	assert.Equal(t, int32(0), hit.PrimIDPacked)
	assert.InDelta(t, 1.0, hit.T, 1e-4)

	occluded, err := mod.QueryOcclusion(blas, ray)
	require.NoError(t, err)
	assert.True(t, occluded)
}

func TestUpdateIsIdempotentWhenNothingChanged(t *testing.T) {
	mod, err := webrays.Init(backend.KindCPU, scene.KindWide)
	require.NoError(t, err)
	defer mod.Close()

	blas, err := mod.CreateADS(map[string]string{"type": "BLAS"})
	require.NoError(t, err)
	positions := []mgl32.Vec4{{-1, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}}
	normals := []mgl32.Vec4{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}}
	_, err = mod.AddShape(blas, positions, normals, nil, 3, []int32{0, 1, 2, 0}, 1)
	require.NoError(t, err)

	_, err = mod.Update()
	require.NoError(t, err)
	firstText := mod.GetSceneAccessor()

	flags, err := mod.Update()
	require.NoError(t, err)
	assert.Zero(t, flags)
	assert.Equal(t, firstText, mod.GetSceneAccessor())
}

func TestBufferRequirementsScaleWithDimensions(t *testing.T) {
	rb := webrays.RayBufferRequirements(4, 4)
	assert.Equal(t, 2, rb.TextureCount)
	assert.Equal(t, 4*4*4*4*2, rb.SizeBytes)

	ib := webrays.IntersectionBufferRequirements(4, 4)
	assert.Equal(t, 4*4*4*4, ib.SizeBytes)

	ob := webrays.OcclusionBufferRequirements(4, 4)
	assert.Equal(t, 4*4*4, ob.SizeBytes)
}

func TestVersion(t *testing.T) {
	major, minor := webrays.Version()
	assert.Equal(t, 1, major)
	assert.Equal(t, 0, minor)
	assert.Equal(t, "1.0", webrays.VersionString())
}
