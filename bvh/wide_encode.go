package bvh

import (
	"encoding/binary"
	"math"
)

// ToBytes encodes a WideNode as the 80-byte on-wire record of spec 3:
// origin(12) + ex,ey,ez,imask(4) + child_node_base_index(4) +
// triangle_base_index(4) + meta[2](8) + childBBOX[12](48).
func (n WideNode) ToBytes() []byte {
	buf := make([]byte, 80)

	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(n.Origin[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(n.Origin[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(n.Origin[2]))

	buf[12] = n.ExpX
	buf[13] = n.ExpY
	buf[14] = n.ExpZ
	buf[15] = n.IMask

	binary.LittleEndian.PutUint32(buf[16:20], n.ChildNodeBaseIndex)
	binary.LittleEndian.PutUint32(buf[20:24], n.TriangleBaseIndex)

	binary.LittleEndian.PutUint32(buf[24:28], bytesToU32(n.Meta[0:4]))
	binary.LittleEndian.PutUint32(buf[28:32], bytesToU32(n.Meta[4:8]))

	planes := [6][8]uint8{n.LoX, n.LoY, n.LoZ, n.HiX, n.HiY, n.HiZ}
	off := 32
	for _, plane := range planes {
		binary.LittleEndian.PutUint32(buf[off:off+4], bytesToU32(plane[0:4]))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], bytesToU32(plane[4:8]))
		off += 8
	}

	return buf
}

func bytesToU32(b []uint8) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// EncodeWideNodes packs a full wide-node array into its upload-ready byte
// form, 80 bytes per node.
func EncodeWideNodes(nodes []WideNode) []byte {
	out := make([]byte, 0, 80*len(nodes))
	for _, n := range nodes {
		out = append(out, n.ToBytes()...)
	}
	return out
}
