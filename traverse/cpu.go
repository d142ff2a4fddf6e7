package traverse

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/gekko3d/webrays/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// sahStackDepth and wideStackDepth are the design-constant stack depth
	// caps of spec 4.G; a BVH deeper than this is a build-time error, not a
	// retryable traversal failure.
	sahStackDepth  = 32
	wideStackDepth = 16

	// instanceTriangleSplitBit is where the TLAS descent repack (spec 4.G)
	// splits the packed primitive id: triangle index in the low bits,
	// instance index in the high bits.
	instanceTriangleSplitBit = 24

	// metaSlotBase mirrors the wide-record meta-byte encoding of the bvh
	// package's builder: an internal child's low 5 meta bits hold
	// metaSlotBase+relativeSlot.
	metaSlotBase = 24
)

// ClosestHit is the spec 4.G "Closest-hit result": four 32-bit words with
// PrimIDPacked == -1 as the miss sentinel.
type ClosestHit struct {
	PrimIDPacked int32
	B1, B2, T    float32
}

func missHit(tmax float32) ClosestHit {
	return ClosestHit{PrimIDPacked: -1, T: tmax}
}

// QueryIntersectionBLAS runs closest-hit traversal against a single BLAS
// with no instance transform, per the builder kind it was built with.
func QueryIntersectionBLAS(b *scene.BLAS, ray Ray) ClosestHit {
	switch {
	case b.WideNodes != nil:
		return traverseWide(b, ray, true).hit
	default:
		return traverseSAH(b, ray, true).hit
	}
}

// QueryOcclusionBLAS runs any-hit traversal against a single BLAS.
func QueryOcclusionBLAS(b *scene.BLAS, ray Ray) bool {
	switch {
	case b.WideNodes != nil:
		return traverseWide(b, ray, false).occluded
	default:
		return traverseSAH(b, ray, false).occluded
	}
}

// QueryIntersection runs closest-hit traversal against a BLAS or TLAS
// handle (spec 6 query_intersection / 4.G TLAS descent).
func QueryIntersection(s *scene.Scene, handle uint32, ray Ray) (ClosestHit, error) {
	if !scene.IsTLASHandle(handle) {
		b, err := s.BLASByHandle(handle)
		if err != nil {
			return ClosestHit{}, err
		}
		return QueryIntersectionBLAS(b, ray), nil
	}

	tlas, err := s.TLASByHandle(handle)
	if err != nil {
		return ClosestHit{}, err
	}

	best := missHit(ray.TMax)
	for instIdx, inst := range tlas.Instances {
		b, err := s.BLASByHandle(uint32(inst.BLASID))
		if err != nil {
			return ClosestHit{}, fmt.Errorf("traverse: instance %d: %w", instIdx, err)
		}
		localRay := transformRayToObject(inst, ray)
		localRay.TMax = best.T
		h := QueryIntersectionBLAS(b, localRay)
		if h.PrimIDPacked < 0 {
			continue
		}
		best = ClosestHit{
			PrimIDPacked: h.PrimIDPacked | int32(instIdx)<<instanceTriangleSplitBit,
			B1:           h.B1,
			B2:           h.B2,
			T:            h.T,
		}
	}
	return best, nil
}

// QueryOcclusion runs any-hit traversal against a BLAS or TLAS handle (spec
// 6 query_occlusion).
func QueryOcclusion(s *scene.Scene, handle uint32, ray Ray) (bool, error) {
	if !scene.IsTLASHandle(handle) {
		b, err := s.BLASByHandle(handle)
		if err != nil {
			return false, err
		}
		return QueryOcclusionBLAS(b, ray), nil
	}

	tlas, err := s.TLASByHandle(handle)
	if err != nil {
		return false, err
	}
	for instIdx, inst := range tlas.Instances {
		b, err := s.BLASByHandle(uint32(inst.BLASID))
		if err != nil {
			return false, fmt.Errorf("traverse: instance %d: %w", instIdx, err)
		}
		localRay := transformRayToObject(inst, ray)
		if QueryOcclusionBLAS(b, localRay) {
			return true, nil
		}
	}
	return false, nil
}

// transformRayToObject brings ray into an instance's BLAS space using the
// inverse of its object-to-world transform (spec 4.G "TLAS descent").
func transformRayToObject(inst scene.Instance, ray Ray) Ray {
	inv := inst.ObjectToWorld().Inv()
	origin := inv.Mul4x1(ray.Origin.Vec4(1)).Vec3()
	linear := inv.Mat3()
	dir := linear.Mul3x1(ray.Direction)
	return Ray{Origin: origin, Direction: dir, TMax: ray.TMax}
}

type sahState struct {
	hit      ClosestHit
	occluded bool
}

func traverseSAH(b *scene.BLAS, ray Ray, closestHit bool) sahState {
	state := sahState{hit: missHit(ray.TMax)}
	if len(b.LinearNodes) == 0 {
		return state
	}

	tmax := ray.TMax
	dirNeg := [3]bool{ray.Direction[0] < 0, ray.Direction[1] < 0, ray.Direction[2] < 0}

	var stack [sahStackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.LinearNodes[idx]

		hitBounds, _ := IntersectBounds(ray.Origin, ray.Direction, n.Bounds.Min, n.Bounds.Max, tmax)
		if !hitBounds {
			continue
		}

		if n.NPrimitives > 0 {
			for i := 0; i < int(n.NPrimitives); i++ {
				tri := b.Triangles[int(n.Offset)+i]
				v0 := b.Positions[tri.V0].Vec3()
				v1 := b.Positions[tri.V1].Vec3()
				v2 := b.Positions[tri.V2].Vec3()
				th := IntersectTriangle(ray.Origin, ray.Direction, v0, v1, v2, tmax)
				if !th.Hit {
					continue
				}
				if !closestHit {
					state.occluded = true
					return state
				}
				tmax = th.T
				state.hit = ClosestHit{PrimIDPacked: int32(n.Offset) + int32(i), B1: th.B1, B2: th.B2, T: th.T}
			}
			continue
		}

		left := idx + 1
		right := n.Offset
		if dirNeg[n.Axis] {
			stack[sp] = left
			sp++
			stack[sp] = right
			sp++
		} else {
			stack[sp] = right
			sp++
			stack[sp] = left
			sp++
		}
	}

	if closestHit {
		state.hit.T = tmax
		if state.hit.PrimIDPacked < 0 {
			state.hit.T = ray.TMax
		}
	}
	return state
}

// traverseWide walks the 8-wide compressed node array (spec 4.D record
// layout, spec 4.G wide traversal). Record 1 is the real root; record 0 is
// the single-child wrapper BuildWideTree emits, so the stack starts there.
// Unlike the GPU shader form, the CPU stack holds plain node indices rather
// than (base_index, hitmask) groups: since every internal child slot of a
// wide record already resolves to a concrete node index
// (ChildNodeBaseIndex + slot), there is nothing a group indirection buys on
// the CPU side that a node-index stack doesn't give directly.
func traverseWide(b *scene.BLAS, ray Ray, closestHit bool) sahState {
	state := sahState{hit: missHit(ray.TMax)}
	if len(b.WideNodes) == 0 {
		return state
	}
	tmax := ray.TMax

	// A GPU stack entry is a group of up to 8 child nodes, so this
	// node-index stack holds 8 entries per group to cover the same depth.
	var stack [wideStackDepth * 8]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		node := b.WideNodes[stack[sp]]

		origin := node.Origin
		scale := mgl32.Vec3{expScale(node.ExpX), expScale(node.ExpY), expScale(node.ExpZ)}

		for s := 0; s < 8; s++ {
			if node.IMask&(1<<uint(s)) == 0 && node.Meta[s] == 0 {
				continue
			}
			childMin := mgl32.Vec3{
				origin[0] + float32(node.LoX[s])*scale[0],
				origin[1] + float32(node.LoY[s])*scale[1],
				origin[2] + float32(node.LoZ[s])*scale[2],
			}
			childMax := mgl32.Vec3{
				origin[0] + float32(node.HiX[s])*scale[0],
				origin[1] + float32(node.HiY[s])*scale[1],
				origin[2] + float32(node.HiZ[s])*scale[2],
			}
			hitChild, _ := IntersectBounds(ray.Origin, ray.Direction, childMin, childMax, tmax)

			if node.IMask&(1<<uint(s)) != 0 {
				if hitChild && sp < len(stack) {
					childSlot := int(node.Meta[s]&0x1F) - metaSlotBase
					stack[sp] = int32(int(node.ChildNodeBaseIndex) + childSlot)
					sp++
				}
				continue
			}
			if !hitChild {
				continue
			}

			// The top 3 bits of a leaf meta byte are a unary occupancy mask
			// (0b001/0b011/0b111 for 1/2/3 triangles), not a literal count.
			nTris := bits.OnesCount8(node.Meta[s] >> 5)
			triOff := int(node.Meta[s] & 0x1F)
			for i := 0; i < nTris; i++ {
				triIdx := int(node.TriangleBaseIndex) + triOff + i
				if triIdx >= len(b.Triangles) {
					continue
				}
				tri := b.Triangles[triIdx]
				v0 := b.Positions[tri.V0].Vec3()
				v1 := b.Positions[tri.V1].Vec3()
				v2 := b.Positions[tri.V2].Vec3()
				th := IntersectTriangle(ray.Origin, ray.Direction, v0, v1, v2, tmax)
				if !th.Hit {
					continue
				}
				if !closestHit {
					state.occluded = true
					return state
				}
				tmax = th.T
				state.hit = ClosestHit{PrimIDPacked: int32(triIdx), B1: th.B1, B2: th.B2, T: th.T}
			}
		}
	}

	if closestHit && state.hit.PrimIDPacked < 0 {
		state.hit.T = ray.TMax
	}
	return state
}

func expScale(e uint8) float32 {
	return math.Float32frombits(uint32(e) << 23)
}
