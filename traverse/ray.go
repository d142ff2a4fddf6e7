// Package traverse implements the traversal contract (spec component G):
// the ray/triangle and ray/box intersection tests and the CPU stack-based
// traversal loops for both BVH flavors, including TLAS->BLAS instance
// descent. This is the CPU-side twin of the shader text accessor emits
// (package accessor); both must agree on the same algorithm.
package traverse

import "github.com/go-gl/mathgl/mgl32"

// Ray is the spec 3 "Ray representation". The core never mutates Origin or
// Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	TMax      float32
}

// TriHit is a confirmed ray/triangle intersection's barycentric coordinates
// and distance (spec 4.G "Ray/triangle").
type TriHit struct {
	B1, B2, T float32
	Hit       bool
}

// IntersectTriangle implements the Möller-Trumbore test of spec 4.G. A zero
// denominator yields an infinite invd (or NaN where a numerator is also
// zero); the bound checks are written so both fail, so it never needs a
// special branch.
func IntersectTriangle(origin, dir, v0, v1, v2 mgl32.Vec3, tmax float32) TriHit {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	s1 := dir.Cross(e2)
	divisor := s1.Dot(e1)
	invd := 1.0 / divisor

	dv := origin.Sub(v0)
	b1 := dv.Dot(s1) * invd
	s2 := dv.Cross(e1)
	b2 := dir.Dot(s2) * invd
	t := e2.Dot(s2) * invd

	if !(b1 >= 0 && b1 <= 1 && b2 >= 0 && b1+b2 <= 1 && t >= 0 && t <= tmax) {
		return TriHit{B1: 0, B2: 0, T: tmax, Hit: false}
	}
	return TriHit{B1: b1, B2: b2, T: t, Hit: true}
}
