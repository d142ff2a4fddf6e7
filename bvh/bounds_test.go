package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBoundsUnion(t *testing.T) {
	a := PointBounds(mgl32.Vec3{0, 0, 0})
	b := PointBounds(mgl32.Vec3{1, 2, 3})
	u := a.Union(b)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, u.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, u.Max)
}

func TestSurfaceArea(t *testing.T) {
	b := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	// 2*(1*2 + 1*3 + 2*3) = 2*11 = 22
	assert.InDelta(t, 22.0, b.SurfaceArea(), 1e-5)
}

func TestMaximumExtentTieBreak(t *testing.T) {
	b := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, 0, b.MaximumExtent())
}

func TestOffsetDegenerateAxis(t *testing.T) {
	b := Bounds{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{0, 1, 1}}
	o := b.Offset(mgl32.Vec3{5, 0.5, 0.5})
	assert.Equal(t, float32(0), o[0])
	assert.InDelta(t, 0.5, o[1], 1e-6)
}

func TestTriangleBounds(t *testing.T) {
	b := TriangleBounds(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, b.Max)
}
