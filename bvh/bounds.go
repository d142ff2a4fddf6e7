// Package bvh implements the host-side acceleration-structure builders: the
// SAH binary builder, the 8-wide compressed builder, and the geometry and
// bounds primitives they share.
package bvh

import "github.com/go-gl/mathgl/mgl32"

// Bounds is an axis-aligned bounding box. The zero value is NOT the identity
// box; use NewBounds for that.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

const inf = float32(1e30)

// NewBounds returns the identity bounds (min=+1e30, max=-1e30, standing in
// for +/-infinity), so that Union with anything yields that thing's bounds.
func NewBounds() Bounds {
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func PointBounds(p mgl32.Vec3) Bounds {
	return Bounds{Min: p, Max: p}
}

func vmin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min32(a[0], b[0]), min32(a[1], b[1]), min32(a[2], b[2])}
}

func vmax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max32(a[0], b[0]), max32(a[1], b[1]), max32(a[2], b[2])}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Union returns the smallest bounds enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Min: vmin(b.Min, o.Min), Max: vmax(b.Max, o.Max)}
}

// UnionPoint returns the smallest bounds enclosing b and p.
func (b Bounds) UnionPoint(p mgl32.Vec3) Bounds {
	return Bounds{Min: vmin(b.Min, p), Max: vmax(b.Max, p)}
}

func (b Bounds) Diagonal() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// SurfaceArea returns 2*(dx*dy + dx*dz + dy*dz). A degenerate (identity)
// box has a negative diagonal and is reported as zero area.
func (b Bounds) SurfaceArea() float32 {
	d := b.Diagonal()
	if d[0] < 0 || d[1] < 0 || d[2] < 0 {
		return 0
	}
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// MaximumExtent returns the index of the largest diagonal component,
// breaking ties x>y>z (lowest index wins).
func (b Bounds) MaximumExtent() int {
	d := b.Diagonal()
	axis := 0
	if d[1] > d[axis] {
		axis = 1
	}
	if d[2] > d[axis] {
		axis = 2
	}
	return axis
}

// Offset returns the component-wise position of p relative to the box,
// (p-min)/(max-min), with zero substituted on degenerate axes so callers
// that use this only for binning never see NaN/Inf.
func (b Bounds) Offset(p mgl32.Vec3) mgl32.Vec3 {
	o := p.Sub(b.Min)
	for i := 0; i < 3; i++ {
		extent := b.Max[i] - b.Min[i]
		if extent > 0 {
			o[i] /= extent
		} else {
			o[i] = 0
		}
	}
	return o
}

func (b Bounds) Centroid() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// TriangleBounds returns the union of the three vertex positions.
func TriangleBounds(v0, v1, v2 mgl32.Vec3) Bounds {
	return PointBounds(v0).UnionPoint(v1).UnionPoint(v2)
}
