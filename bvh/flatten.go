package bvh

import (
	"encoding/binary"
	"math"
)

// LinearNode is the 32-byte SAH flavor of spec 3 "Linear BVH record".
// Interior nodes have NPrimitives==0; the left child is the immediate
// successor in the array and SecondChildOffset points at the right child.
type LinearNode struct {
	Bounds Bounds
	// Offset is primitivesOffset for a leaf, secondChildOffset for an
	// interior node.
	Offset      int32
	NPrimitives uint16
	Axis        uint8
}

// FlattenSAH walks a binary pointer tree depth-first (left-first) and
// produces the contiguous linear node array the traversal contract (4.G)
// consumes.
func FlattenSAH(root *BinaryNode) []LinearNode {
	if root == nil {
		return nil
	}
	nodes := make([]LinearNode, 0, countNodes(root))
	flattenSAHRecursive(root, &nodes)
	return nodes
}

func countNodes(n *BinaryNode) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return 1 + countNodes(n.Left) + countNodes(n.Right)
}

func flattenSAHRecursive(n *BinaryNode, nodes *[]LinearNode) int {
	self := len(*nodes)
	*nodes = append(*nodes, LinearNode{Bounds: n.Bounds})

	if n.IsLeaf() {
		(*nodes)[self].Offset = int32(n.FirstPrimOffset)
		(*nodes)[self].NPrimitives = uint16(n.NPrimitives)
		return self
	}

	flattenSAHRecursive(n.Left, nodes)
	secondChild := flattenSAHRecursive(n.Right, nodes)

	(*nodes)[self].Axis = uint8(n.SplitAxis)
	(*nodes)[self].Offset = int32(secondChild)
	(*nodes)[self].NPrimitives = 0
	return self
}

// ToBytes encodes a LinearNode as the 32-byte on-wire record described in
// spec 3: bounds(min,max), offset union, nPrimitives, axis, pad.
func (n LinearNode) ToBytes() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(n.Bounds.Min[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(n.Bounds.Min[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(n.Bounds.Min[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(n.Bounds.Max[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(n.Bounds.Max[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(n.Bounds.Max[2]))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(n.Offset))
	binary.LittleEndian.PutUint16(buf[28:30], n.NPrimitives)
	buf[30] = n.Axis
	buf[31] = 0
	return buf
}

// EncodeLinearNodes packs a full SAH node array into its upload-ready byte
// form, 32 bytes per node.
func EncodeLinearNodes(nodes []LinearNode) []byte {
	out := make([]byte, 0, 32*len(nodes))
	for _, n := range nodes {
		out = append(out, n.ToBytes()...)
	}
	return out
}
