package scene

import (
	"encoding/binary"
	"math"
)

// PositionBytes encodes b's (px,py,pz,u) vertex array as its upload-ready
// byte form: one 16-byte texel per vertex, addressed by the accessor as
// the blas_id*2+0 layer of scene_vertices (spec 4.E flattening).
func (b *BLAS) PositionBytes() []byte {
	out := make([]byte, 16*len(b.Positions))
	for i, p := range b.Positions {
		off := i * 16
		binary.LittleEndian.PutUint32(out[off:off+4], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(out[off+4:off+8], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(out[off+8:off+12], math.Float32bits(p[2]))
		binary.LittleEndian.PutUint32(out[off+12:off+16], math.Float32bits(p[3]))
	}
	return out
}

// NormalBytes is PositionBytes' (nx,ny,nz,v) counterpart, the blas_id*2+1
// layer of scene_vertices.
func (b *BLAS) NormalBytes() []byte {
	out := make([]byte, 16*len(b.Normals))
	for i, n := range b.Normals {
		off := i * 16
		binary.LittleEndian.PutUint32(out[off:off+4], math.Float32bits(n[0]))
		binary.LittleEndian.PutUint32(out[off+4:off+8], math.Float32bits(n[1]))
		binary.LittleEndian.PutUint32(out[off+8:off+12], math.Float32bits(n[2]))
		binary.LittleEndian.PutUint32(out[off+12:off+16], math.Float32bits(n[3]))
	}
	return out
}

// IndexBytes encodes b's (post-build, permuted) triangle array as its
// upload-ready byte form: one 16-byte (v0,v1,v2,material) texel per
// triangle, layer = blas_id in scene_indices.
func (b *BLAS) IndexBytes() []byte {
	out := make([]byte, 16*len(b.Triangles))
	for i, t := range b.Triangles {
		off := i * 16
		binary.LittleEndian.PutUint32(out[off:off+4], uint32(t.V0))
		binary.LittleEndian.PutUint32(out[off+4:off+8], uint32(t.V1))
		binary.LittleEndian.PutUint32(out[off+8:off+12], uint32(t.V2))
		binary.LittleEndian.PutUint32(out[off+12:off+16], uint32(t.Material))
	}
	return out
}

// InstanceBytes encodes t's instances as their upload-ready byte form: 4
// 16-byte texels per instance. The first three are rows 0-2 of the
// row-major 3x4 object-to-world transform (xyz plus that row's
// translation component in w, matching Instance.ObjectToWorld's
// column-major assembly); the fourth texel's x holds the owning BLAS id.
func (t *TLAS) InstanceBytes() []byte {
	out := make([]byte, 64*len(t.Instances))
	for i, inst := range t.Instances {
		off := i * 64
		tr := inst.Transform
		putRow := func(rowOff int, x, y, z, w float32) {
			binary.LittleEndian.PutUint32(out[rowOff:rowOff+4], math.Float32bits(x))
			binary.LittleEndian.PutUint32(out[rowOff+4:rowOff+8], math.Float32bits(y))
			binary.LittleEndian.PutUint32(out[rowOff+8:rowOff+12], math.Float32bits(z))
			binary.LittleEndian.PutUint32(out[rowOff+12:rowOff+16], math.Float32bits(w))
		}
		putRow(off, tr[0], tr[1], tr[2], tr[3])
		putRow(off+16, tr[4], tr[5], tr[6], tr[7])
		putRow(off+32, tr[8], tr[9], tr[10], tr[11])
		binary.LittleEndian.PutUint32(out[off+48:off+52], uint32(inst.BLASID))
	}
	return out
}
