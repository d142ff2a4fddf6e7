package accessor_test

import (
	"testing"

	"github.com/gekko3d/webrays/accessor"
	"github.com/gekko3d/webrays/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSingleTriangleScene(t *testing.T) (*scene.Scene, uint32) {
	t.Helper()
	s := scene.New(scene.KindSAH, nil)
	blas, err := s.AddADS(scene.KindBLAS)
	require.NoError(t, err)
	positions := []mgl32.Vec4{{-1, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}}
	normals := []mgl32.Vec4{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}}
	_, err = s.AddShape(blas, positions, normals, nil, 3, []int32{0, 1, 2, 0}, 1)
	require.NoError(t, err)
	_, err = s.Update()
	require.NoError(t, err)
	return s, blas
}

func TestGetSceneAccessorIsIdempotent(t *testing.T) {
	s, _ := buildSingleTriangleScene(t)

	first, err := accessor.GetSceneAccessor(s, scene.KindSAH)
	require.NoError(t, err)
	second, err := accessor.GetSceneAccessor(s, scene.KindSAH)
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-emission with no scene mutation must be byte-identical")
}

func TestGetSceneAccessorBindingsOmitsInstancesWithoutTLAS(t *testing.T) {
	s, _ := buildSingleTriangleScene(t)
	names := accessor.GetSceneAccessorBindings(s)
	assert.Equal(t, []string{"scene_vertices", "scene_indices", "bvh_nodes"}, names)
}

func TestGetSceneAccessorBindingsIncludesInstancesWithTLAS(t *testing.T) {
	s, blas := buildSingleTriangleScene(t)
	tlas, err := s.AddADS(scene.KindTLAS)
	require.NoError(t, err)
	_, err = s.AddInstance(tlas, blas, [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0})
	require.NoError(t, err)
	_, err = s.Update()
	require.NoError(t, err)

	names := accessor.GetSceneAccessorBindings(s)
	assert.Equal(t, []string{"scene_vertices", "scene_indices", "bvh_nodes", "scene_instances"}, names)

	text, err := accessor.GetSceneAccessor(s, scene.KindSAH)
	require.NoError(t, err)
	assert.Contains(t, text, "get_instance_id")
	assert.Contains(t, text, "get_triangle_id")
}

func TestGetSceneAccessorReflectsTriangleCount(t *testing.T) {
	s, blas := buildSingleTriangleScene(t)
	positions := []mgl32.Vec4{{-1, 0, 2, 0}, {1, 0, 2, 0}, {0, 1, 2, 0}}
	normals := []mgl32.Vec4{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}}
	_, err := s.AddShape(blas, positions, normals, nil, 3, []int32{0, 1, 2, 0}, 1)
	require.NoError(t, err)
	_, err = s.Update()
	require.NoError(t, err)

	text, err := accessor.GetSceneAccessor(s, scene.KindSAH)
	require.NoError(t, err)
	assert.Contains(t, text, "TRIANGLE_COUNT: i32 = 2")
}
