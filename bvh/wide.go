package bvh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// WideConfig tunes the 8-wide compressed builder's cost model (spec 4.D).
type WideConfig struct {
	CNode float32
	CTri  float32
	PMax  int
}

func DefaultWideConfig() WideConfig {
	return WideConfig{CNode: 1.0, CTri: 0.3, PMax: 3}
}

type selection uint8

const (
	selLeaf selection = iota
	selDistribute
	selInternal
)

// costInfo is the per-binary-node bottom-up DP table of spec 4.D: for every
// one of the 8 possible "how many of the parent's slots does this subtree
// fill" targets, the cheapest way to do it.
type costInfo struct {
	cost                 [8]float32
	selection            [8]selection
	distribute0          [8]int
	distribute1          [8]int
	numPrimitives        int
	firstPrimitiveOffset int
}

// buildCostTable runs the bottom-up cost recurrence of spec 4.D over the
// 1-primitive-per-leaf binary tree produced by BuildSAHTree with
// singlePrimSAHConfig.
//
// The spec's j-loop is written as j∈[1,6]; that leaves cost[7] unpopulated,
// and the top-level collapse needs a fully populated 8-entry table to offer
// a subtree's full 8-slot capacity to its parent. This implementation runs
// the loop through j=7 so every index is populated by the same recurrence;
// see DESIGN.md for the resolution of this spec gap.
func buildCostTable(root *BinaryNode, aRoot float32, cfg WideConfig) map[*BinaryNode]*costInfo {
	info := make(map[*BinaryNode]*costInfo)
	var rec func(n *BinaryNode) *costInfo
	rec = func(n *BinaryNode) *costInfo {
		if ci, ok := info[n]; ok {
			return ci
		}
		ci := &costInfo{}
		if n.IsLeaf() {
			ci.numPrimitives = n.NPrimitives
			ci.firstPrimitiveOffset = n.FirstPrimOffset
			a := n.Bounds.SurfaceArea() / aRoot
			c := a * cfg.CTri * float32(n.NPrimitives)
			for i := 0; i < 8; i++ {
				ci.cost[i] = c
				ci.selection[i] = selLeaf
			}
			info[n] = ci
			return ci
		}

		left := rec(n.Left)
		right := rec(n.Right)
		ci.numPrimitives = left.numPrimitives + right.numPrimitives
		ci.firstPrimitiveOffset = left.firstPrimitiveOffset
		a := n.Bounds.SurfaceArea() / aRoot

		costLeaf := float32(math.Inf(1))
		if ci.numPrimitives <= cfg.PMax {
			costLeaf = a * cfg.CTri * float32(ci.numPrimitives)
		}

		bestDistribute := float32(math.Inf(1))
		bd0, bd1 := 0, 0
		for k := 0; k < 7; k++ {
			c := left.cost[k] + right.cost[6-k]
			if c < bestDistribute {
				bestDistribute = c
				bd0, bd1 = k, 6-k
			}
		}
		costInternal := bestDistribute + a*cfg.CNode
		if costLeaf <= costInternal {
			ci.cost[0] = costLeaf
			ci.selection[0] = selLeaf
		} else {
			ci.cost[0] = costInternal
			ci.selection[0] = selInternal
		}
		ci.distribute0[0], ci.distribute1[0] = bd0, bd1

		for j := 1; j < 8; j++ {
			best := float32(math.Inf(1))
			k0, k1 := 0, 0
			for k := 0; k < j; k++ {
				c := left.cost[k] + right.cost[j-1-k]
				if c < best {
					best = c
					k0, k1 = k, j-1-k
				}
			}
			if best < ci.cost[j-1] {
				ci.cost[j] = best
				ci.selection[j] = selDistribute
				ci.distribute0[j], ci.distribute1[j] = k0, k1
			} else {
				ci.cost[j] = ci.cost[j-1]
				ci.selection[j] = ci.selection[j-1]
				ci.distribute0[j] = ci.distribute0[j-1]
				ci.distribute1[j] = ci.distribute1[j-1]
			}
		}
		info[n] = ci
		return ci
	}
	rec(root)
	return info
}

type frontierChild struct {
	node *BinaryNode
	kind selection // selLeaf or selInternal; never selDistribute
}

// fetch8 walks the binary tree starting at n, using idx to index n's cost
// table, expanding a node only while its selection at that index is
// DISTRIBUTE. Whatever it stops on becomes one of the wide node's up-to-8
// children (spec 4.D "Collapse").
func fetch8(n *BinaryNode, idx int, info map[*BinaryNode]*costInfo, out *[]frontierChild) {
	ci := info[n]
	if ci.selection[idx] != selDistribute {
		out2 := append(*out, frontierChild{node: n, kind: ci.selection[idx]})
		*out = out2
		return
	}
	fetch8(n.Left, ci.distribute0[idx], info, out)
	fetch8(n.Right, ci.distribute1[idx], info, out)
}

// WideNode is the 80-byte "Wide BVH record" of spec 3.
type WideNode struct {
	Origin             mgl32.Vec3
	ExpX, ExpY, ExpZ   uint8
	IMask              uint8
	ChildNodeBaseIndex uint32
	TriangleBaseIndex  uint32
	Meta               [8]byte
	LoX, LoY, LoZ      [8]uint8
	HiX, HiY, HiZ      [8]uint8
}

func quantizeExponent(lo, hi float32) (exponent int32, scale float32) {
	delta := hi - lo
	if delta <= 0 {
		return 0, 1
	}
	exponent = int32(math.Ceil(math.Log2(float64(delta) / 255.0)))
	scale = float32(math.Pow(2, float64(exponent)))
	return
}

func expByte(scale float32) uint8 {
	return uint8(math.Float32bits(scale) >> 23)
}

func quantizeChildBounds(origin mgl32.Vec3, scale mgl32.Vec3, child Bounds) (lo, hi [3]uint8) {
	for a := 0; a < 3; a++ {
		if scale[a] <= 0 {
			continue
		}
		loF := math.Floor(float64((child.Min[a] - origin[a]) / scale[a]))
		hiF := math.Ceil(float64((child.Max[a] - origin[a]) / scale[a]))
		lo[a] = clampByte(loF)
		hi[a] = clampByte(hiF)
	}
	return
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

const (
	metaInternalTag = 0b001 << 5
	metaSlotBase    = 24
)

var unaryCount = map[int]byte{1: 0b001 << 5, 2: 0b011 << 5, 3: 0b111 << 5}

type pendingWideNode struct {
	arrayIndex int
	binNode    *BinaryNode
}

// BuildWideTree runs the full 4.D pipeline: a 1-primitive-per-leaf SAH
// binary build, the bottom-up cost table, and the collapse/quantize pass.
// It returns the wide node array (record 0 is the spec's single-child root
// wrapper, record 1 the real root) and the final triangle permutation
// (orderedTriangles[i] is the original BuildPrimitive.Index assigned to
// triangle slot i).
func BuildWideTree(prims []BuildPrimitive, cfg WideConfig) ([]WideNode, []int) {
	if len(prims) == 0 {
		return nil, nil
	}

	sahPrims := make([]BuildPrimitive, len(prims))
	copy(sahPrims, prims)
	root, orderedPrims := BuildSAHTree(sahPrims, singlePrimSAHConfig())

	aRoot := root.Bounds.SurfaceArea()
	if aRoot <= 0 {
		aRoot = 1
	}
	info := buildCostTable(root, aRoot, cfg)

	nodes := make([]WideNode, 2)
	var triangleOut []int
	cursor := 2

	queue := []pendingWideNode{{arrayIndex: 1, binNode: root}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		var frontier []frontierChild
		fetch8(item.binNode, 7, info, &frontier)

		node := emitWideNode(item.binNode.Bounds, frontier, info, orderedPrims, &triangleOut, &cursor, &nodes, &queue)
		nodes[item.arrayIndex] = node
	}

	// Record 0: the root wrapper with a single populated child slot (0)
	// pointing at record 1, per spec's root-slot convention.
	nodes[0] = wrapRootNode(root.Bounds)

	return nodes, triangleOut
}

func wrapRootNode(rootBounds Bounds) WideNode {
	var n WideNode
	n.Origin = rootBounds.Min
	ex, sx := quantizeExponent(rootBounds.Min[0], rootBounds.Max[0])
	ey, sy := quantizeExponent(rootBounds.Min[1], rootBounds.Max[1])
	ez, sz := quantizeExponent(rootBounds.Min[2], rootBounds.Max[2])
	n.ExpX, n.ExpY, n.ExpZ = expByte(sx), expByte(sy), expByte(sz)
	_ = ex
	_ = ey
	_ = ez
	lo, hi := quantizeChildBounds(n.Origin, mgl32.Vec3{sx, sy, sz}, rootBounds)
	n.LoX[0], n.LoY[0], n.LoZ[0] = lo[0], lo[1], lo[2]
	n.HiX[0], n.HiY[0], n.HiZ[0] = hi[0], hi[1], hi[2]
	n.IMask = 1
	n.ChildNodeBaseIndex = 1
	n.Meta[0] = byte(metaInternalTag | (metaSlotBase + 0))
	return n
}

func emitWideNode(bounds Bounds, frontier []frontierChild, info map[*BinaryNode]*costInfo,
	orderedPrims []int, triangleOut *[]int, cursor *int, nodes *[]WideNode, queue *[]pendingWideNode) WideNode {

	var node WideNode
	node.Origin = bounds.Min
	_, sx := quantizeExponent(bounds.Min[0], bounds.Max[0])
	_, sy := quantizeExponent(bounds.Min[1], bounds.Max[1])
	_, sz := quantizeExponent(bounds.Min[2], bounds.Max[2])
	node.ExpX, node.ExpY, node.ExpZ = expByte(sx), expByte(sy), expByte(sz)
	scale := mgl32.Vec3{sx, sy, sz}

	internalSlots := 0
	for _, fc := range frontier {
		if fc.kind == selInternal {
			internalSlots++
		}
	}

	childBaseIndex := *cursor
	*cursor += internalSlots
	for len(*nodes) < *cursor {
		*nodes = append(*nodes, WideNode{})
	}
	node.ChildNodeBaseIndex = uint32(childBaseIndex)
	node.TriangleBaseIndex = uint32(len(*triangleOut))

	nextInternalSlot := 0
	nextTriOffset := 0
	for s, fc := range frontier {
		lo, hi := quantizeChildBounds(node.Origin, scale, fc.node.Bounds)
		setSlot(&node, s, lo, hi)

		if fc.kind == selInternal {
			node.IMask |= 1 << uint(s)
			node.Meta[s] = byte(metaInternalTag | (metaSlotBase + nextInternalSlot))
			*queue = append(*queue, pendingWideNode{
				arrayIndex: childBaseIndex + nextInternalSlot,
				binNode:    fc.node,
			})
			nextInternalSlot++
			continue
		}

		ci := info[fc.node]
		if ci.numPrimitives > 3 {
			panic("webrays/bvh: wide builder leaf exceeds 3 triangles, precondition violated")
		}
		for i := 0; i < ci.numPrimitives; i++ {
			*triangleOut = append(*triangleOut, orderedPrims[ci.firstPrimitiveOffset+i])
		}
		node.Meta[s] = unaryCount[ci.numPrimitives] | byte(nextTriOffset)
		nextTriOffset += ci.numPrimitives
	}

	return node
}

func setSlot(n *WideNode, slot int, lo, hi [3]uint8) {
	n.LoX[slot], n.LoY[slot], n.LoZ[slot] = lo[0], lo[1], lo[2]
	n.HiX[slot], n.HiY[slot], n.HiZ[slot] = hi[0], hi[1], hi[2]
}
