package traverse

import "github.com/go-gl/mathgl/mgl32"

// IntersectBounds implements the per-axis slab test of spec 4.G
// "Ray/AABB": dirfrac swaps near/far on negative direction components, and
// a running [t0,t1] interval narrows as each axis is folded in. Miss iff
// t0>t1 once all three axes have been applied.
func IntersectBounds(origin, dir, boundsMin, boundsMax mgl32.Vec3, tmax float32) (hit bool, tNear float32) {
	t0, t1 := float32(0), tmax
	for a := 0; a < 3; a++ {
		if dir[a] == 0 {
			if origin[a] < boundsMin[a] || origin[a] > boundsMax[a] {
				return false, 0
			}
			continue
		}
		dirfrac := 1.0 / dir[a]
		tNearA := (boundsMin[a] - origin[a]) * dirfrac
		tFarA := (boundsMax[a] - origin[a]) * dirfrac
		if dirfrac < 0 {
			tNearA, tFarA = tFarA, tNearA
		}
		if tNearA > t0 {
			t0 = tNearA
		}
		if tFarA < t1 {
			t1 = tFarA
		}
		if t0 > t1 {
			return false, 0
		}
	}
	return true, t0
}
