package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWideBuildEmpty(t *testing.T) {
	nodes, tris := BuildWideTree(nil, DefaultWideConfig())
	assert.Nil(t, nodes)
	assert.Nil(t, tris)
}

func TestWideBuildSingleTriangle(t *testing.T) {
	prims := []BuildPrimitive{boxPrim(0, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 1, 0})}
	nodes, tris := BuildWideTree(prims, DefaultWideConfig())
	require.Len(t, nodes, 2)
	assert.Equal(t, []int{0}, tris)
	// Record 0 wraps record 1 as its only child.
	assert.Equal(t, uint8(1), nodes[0].IMask)
	assert.Equal(t, uint32(1), nodes[0].ChildNodeBaseIndex)
}

func TestWideBuildManyTrianglesPermutationComplete(t *testing.T) {
	prims := make([]BuildPrimitive, 0, 50)
	for i := 0; i < 50; i++ {
		f := float32(i)
		prims = append(prims, boxPrim(i, mgl32.Vec3{f, 0, 0}, mgl32.Vec3{f + 0.5, 1, 1}))
	}
	nodes, tris := BuildWideTree(prims, DefaultWideConfig())
	require.NotEmpty(t, nodes)
	assert.Len(t, tris, 50)

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	assert.ElementsMatch(t, want, tris)
}

func TestQuantizationEnclosesChildBounds(t *testing.T) {
	origin := mgl32.Vec3{0, 0, -3}
	scale := mgl32.Vec3{1, 1, 1}
	child := Bounds{Min: mgl32.Vec3{0.3, 1.7, -2.2}, Max: mgl32.Vec3{4.1, 3.3, -0.1}}
	lo, hi := quantizeChildBounds(origin, scale, child)

	for a := 0; a < 3; a++ {
		reconLo := origin[a] + float32(lo[a])*scale[a]
		reconHi := origin[a] + float32(hi[a])*scale[a]
		assert.LessOrEqual(t, reconLo, child.Min[a])
		assert.GreaterOrEqual(t, reconHi, child.Max[a])
	}
}

func TestQuantizeExponentDegenerateAxis(t *testing.T) {
	e, scale := quantizeExponent(5, 5)
	assert.Equal(t, int32(0), e)
	assert.Equal(t, float32(1), scale)
}

func TestWideBuildNeverEmitsOversizedLeaf(t *testing.T) {
	// The wide builder always runs a single-primitive SAH pre-pass and the
	// collapse only picks a leaf of at most PMax triangles, so tightly
	// clustered input never reaches the >3-triangle panic at emission.
	prims := make([]BuildPrimitive, 0, 4)
	for i := 0; i < 4; i++ {
		f := float32(i) * 0.001
		prims = append(prims, boxPrim(i, mgl32.Vec3{f, f, f}, mgl32.Vec3{f + 0.0005, f + 0.0005, f + 0.0005}))
	}
	assert.NotPanics(t, func() {
		BuildWideTree(prims, DefaultWideConfig())
	})
}
