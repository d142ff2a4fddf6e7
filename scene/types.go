// Package scene implements the scene/ADS registry (spec component F): BLAS
// and TLAS bookkeeping, handle allocation, dirty tracking, and the Update
// operation that drives the bvh builders and the accessor emitter.
package scene

import (
	"github.com/gekko3d/webrays/bvh"
	"github.com/go-gl/mathgl/mgl32"
)

// ADSKind distinguishes a BLAS from a TLAS at creation time.
type ADSKind int

const (
	KindBLAS ADSKind = iota
	KindTLAS
)

// BVHKind selects which of the two BLAS builders (spec 4.C, 4.D) a scene
// uses. The choice is scene-wide, matching spec 3's Scene record.
type BVHKind int

const (
	KindSAH BVHKind = iota
	KindWide
)

const (
	MaxBLASCount = 256
	MaxTLASCount = 8

	// TLASMask is the discriminator bit on TLAS handles (spec 3 "Handles").
	TLASMask = 0x80000000
)

// UpdateFlags is the bitset of spec 3 "Update flags".
type UpdateFlags uint32

const (
	FlagAccessorBindings UpdateFlags = 1 << iota
	FlagAccessorCode
	FlagInstanceUpdate
	FlagInstanceAdd
)

// Triangle is the ordered vertex-index triple plus material tag of spec 3.
// V0/V1/V2 are absolute offsets into the owning BLAS's vertex arrays.
type Triangle struct {
	V0, V1, V2 int32
	Material   int32
}

// ShapeRecord is the per-AddShape bookkeeping record of spec 3. After a
// build, VertexOffset/NumVertices still delimit this shape's vertex range,
// but TriangleOffset/NumTriangles no longer describe a contiguous range in
// the (now permuted) triangle array.
type ShapeRecord struct {
	ShapeID        int
	VertexOffset   int
	NumVertices    int
	TriangleOffset int
	NumTriangles   int
}

// Instance is one TLAS entry: a row-major 3x4 object-to-world transform
// referencing a built BLAS.
type Instance struct {
	Transform [12]float32
	BLASID    int32
}

// ObjectToWorld reconstructs the 4x4 homogeneous matrix from the stored 3x4
// row-major transform.
func (inst Instance) ObjectToWorld() mgl32.Mat4 {
	t := inst.Transform
	// mgl32.Mat4 is column-major; the stored transform is row-major 3x4.
	return mgl32.Mat4{
		t[0], t[4], t[8], 0,
		t[1], t[5], t[9], 0,
		t[2], t[6], t[10], 0,
		t[3], t[7], t[11], 1,
	}
}

// BLAS is the bottom-level acceleration structure of spec 3: one mesh
// collection's vertex/normal/triangle arrays plus its built node array.
type BLAS struct {
	Kind   BVHKind
	Shapes []ShapeRecord

	// Positions is (px,py,pz,u) and Normals is (nx,ny,nz,v), parallel and
	// equal length per spec invariant 2.
	Positions []mgl32.Vec4
	Normals   []mgl32.Vec4
	Triangles []Triangle

	// Populated by Scene.Update. NodeBytes is the upload-ready encoded form (spec
	// 4.E); LinearNodes/WideNodes is whichever decoded form matches Kind,
	// kept around so the CPU traversal path (component G) doesn't need to
	// re-decode the wire bytes on every query.
	NodeBytes  []byte
	LinearNodes []bvh.LinearNode
	WideNodes   []bvh.WideNode
	TotalNodes int

	NeedsRebuild bool

	shapeIDGenerator int

	// Per-texture dimension caches, populated by the flattener/tiling pass
	// (spec 4.E); kept on the BLAS per spec 3's data model.
	VertexTextureSize int
	IndexTextureSize  int
	NodeTextureSize   int
}

// TLAS is the top-level acceleration structure of spec 3: a flat instance
// list with no internal spatial index.
type TLAS struct {
	Instances []Instance

	InstanceTextureSize int
}
