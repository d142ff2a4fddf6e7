package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxPrim(i int, min, max mgl32.Vec3) BuildPrimitive {
	return NewBuildPrimitive(i, Bounds{Min: min, Max: max})
}

func TestSingleTriangleLeaf(t *testing.T) {
	prims := []BuildPrimitive{boxPrim(0, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 1, 0})}
	root, ordered := BuildSAHTree(prims, DefaultSAHConfig())
	require.NotNil(t, root)
	assert.True(t, root.IsLeaf())
	assert.Equal(t, []int{0}, ordered)
}

func TestEmptyBuild(t *testing.T) {
	root, ordered := BuildSAHTree(nil, DefaultSAHConfig())
	assert.Nil(t, root)
	assert.Empty(t, ordered)
}

func TestTwoFarObjectsSplit(t *testing.T) {
	prims := []BuildPrimitive{
		boxPrim(0, mgl32.Vec3{-100, -1, -1}, mgl32.Vec3{-98, 1, 1}),
		boxPrim(1, mgl32.Vec3{100, -1, -1}, mgl32.Vec3{102, 1, 1}),
	}
	root, ordered := BuildSAHTree(prims, DefaultSAHConfig())
	require.NotNil(t, root)
	assert.False(t, root.IsLeaf())
	assert.Len(t, ordered, 2)
	assert.ElementsMatch(t, []int{0, 1}, ordered)

	nodes := FlattenSAH(root)
	require.Len(t, nodes, 3)
	assert.Equal(t, uint16(0), nodes[0].NPrimitives)
	assert.Greater(t, nodes[0].Offset, int32(1))
	assert.Greater(t, nodes[1].NPrimitives, uint16(0))
}

func TestDegenerateCentroidRangeFallsBackToMedianSplit(t *testing.T) {
	// Three primitives whose centroids all coincide on every axis: the
	// binned SAH pass would be degenerate, so the builder must fall back
	// to a median split and still terminate with every primitive placed.
	prims := []BuildPrimitive{
		boxPrim(0, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}),
		boxPrim(1, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}),
		boxPrim(2, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}),
	}
	cfg := SAHConfig{MaxPrimsInNode: 1, NBuckets: 64}
	root, ordered := BuildSAHTree(prims, cfg)
	require.NotNil(t, root)
	assert.Len(t, ordered, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, ordered)
}

func TestPermutationIsCompleteAndNonOverlapping(t *testing.T) {
	prims := make([]BuildPrimitive, 0, 37)
	for i := 0; i < 37; i++ {
		f := float32(i)
		prims = append(prims, boxPrim(i, mgl32.Vec3{f, 0, 0}, mgl32.Vec3{f + 0.5, 1, 1}))
	}
	root, ordered := BuildSAHTree(prims, DefaultSAHConfig())
	nodes := FlattenSAH(root)
	assert.ElementsMatch(t, ordered, func() []int {
		want := make([]int, 37)
		for i := range want {
			want[i] = i
		}
		return want
	}())

	seen := make([]bool, 37)
	var walk func(i int32)
	walk = func(i int32) {
		n := nodes[i]
		if n.NPrimitives > 0 {
			for k := 0; k < int(n.NPrimitives); k++ {
				idx := int(n.Offset) + k
				require.False(t, seen[idx], "triangle slot %d visited twice", idx)
				seen[idx] = true
			}
			return
		}
		walk(i + 1)
		walk(n.Offset)
	}
	walk(0)
	for i, s := range seen {
		assert.True(t, s, "slot %d never covered by a leaf", i)
	}
}

func TestInteriorChildIndicesAreDownstreamOfSelf(t *testing.T) {
	prims := make([]BuildPrimitive, 0, 20)
	for i := 0; i < 20; i++ {
		f := float32(i)
		prims = append(prims, boxPrim(i, mgl32.Vec3{f, f, f}, mgl32.Vec3{f + 1, f + 1, f + 1}))
	}
	root, _ := BuildSAHTree(prims, DefaultSAHConfig())
	nodes := FlattenSAH(root)
	for i, n := range nodes {
		if n.NPrimitives == 0 {
			assert.Greater(t, int(n.Offset), i+1)
			assert.Less(t, int(n.Offset), len(nodes))
		}
	}
}
