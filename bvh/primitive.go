package bvh

import "github.com/go-gl/mathgl/mgl32"

// BuildPrimitive is the builders' per-input-triangle working record: one is
// created per triangle at the start of a build and discarded after flatten.
type BuildPrimitive struct {
	Index    int // index into the BLAS triangle array
	Bounds   Bounds
	Centroid mgl32.Vec3
}

func NewBuildPrimitive(index int, bounds Bounds) BuildPrimitive {
	return BuildPrimitive{Index: index, Bounds: bounds, Centroid: bounds.Centroid()}
}
