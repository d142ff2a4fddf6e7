package scene

import (
	"fmt"

	"github.com/gekko3d/webrays/backend"
	"github.com/gekko3d/webrays/bvh"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene is the process-level registry of spec 3: BLAS/TLAS handle arrays,
// dirty flags, and the scene-wide BVH kind.
type Scene struct {
	log Logger

	blas     []*BLAS
	blasKind BVHKind

	tlas []*TLAS

	updateFlags UpdateFlags
	needsUpdate bool

	dirtyBLAS map[int]bool
}

// New returns an empty scene. A nil logger is replaced with a no-op one.
func New(kind BVHKind, log Logger) *Scene {
	if log == nil {
		log = noopLogger{}
	}
	return &Scene{
		log:       log,
		blasKind:  kind,
		dirtyBLAS: make(map[int]bool),
	}
}

// IsTLASHandle reports whether h carries the TLAS discriminator bit (spec
// 3 "Handles").
func IsTLASHandle(h uint32) bool { return h&TLASMask != 0 }

func blasIndex(h uint32) int { return int(h) }
func tlasIndex(h uint32) int { return int(h &^ TLASMask) }

// AddADS creates a new BLAS or TLAS and returns its handle (spec 4.F
// AddADS).
func (s *Scene) AddADS(kind ADSKind) (uint32, error) {
	switch kind {
	case KindBLAS:
		if len(s.blas) >= MaxBLASCount {
			return 0, &CapacityError{Kind: KindBLAS, Limit: MaxBLASCount}
		}
		b := &BLAS{Kind: s.blasKind, NeedsRebuild: false}
		idx := len(s.blas)
		s.blas = append(s.blas, b)
		return uint32(idx), nil
	case KindTLAS:
		if len(s.tlas) >= MaxTLASCount {
			return 0, &CapacityError{Kind: KindTLAS, Limit: MaxTLASCount}
		}
		idx := len(s.tlas)
		s.tlas = append(s.tlas, &TLAS{})
		return uint32(idx) | TLASMask, nil
	default:
		return 0, fmt.Errorf("scene: unknown ADS kind %v", kind)
	}
}

func (s *Scene) lookupBLAS(h uint32) (*BLAS, error) {
	if IsTLASHandle(h) {
		return nil, &HandleError{Handle: h, Reason: "expected a BLAS handle, got a TLAS handle"}
	}
	i := blasIndex(h)
	if i < 0 || i >= len(s.blas) {
		return nil, &HandleError{Handle: h, Reason: "BLAS index out of range"}
	}
	return s.blas[i], nil
}

func (s *Scene) lookupTLAS(h uint32) (*TLAS, error) {
	if !IsTLASHandle(h) {
		return nil, &HandleError{Handle: h, Reason: "expected a TLAS handle, got a BLAS handle"}
	}
	i := tlasIndex(h)
	if i < 0 || i >= len(s.tlas) {
		return nil, &HandleError{Handle: h, Reason: "TLAS index out of range"}
	}
	return s.tlas[i], nil
}

// AddShape appends a triangle mesh to a BLAS (spec 4.F AddShape). Vertex
// indices in indicesV0V1V2Mat are local to this shape; they are biased by
// the BLAS's current vertex count before storage, per spec 3 "Triangle".
func (s *Scene) AddShape(blasHandle uint32, positions []mgl32.Vec4, normals []mgl32.Vec4,
	uvs []mgl32.Vec2, numVertices int, indicesV0V1V2Mat []int32, numTriangles int) (int, error) {

	if positions == nil {
		return 0, &ArgumentError{Argument: "positions"}
	}
	if indicesV0V1V2Mat == nil {
		return 0, &ArgumentError{Argument: "indices"}
	}
	if len(positions) < numVertices {
		return 0, &ArgumentError{Argument: "positions shorter than numVertices"}
	}
	if normals != nil && len(normals) < numVertices {
		return 0, &ArgumentError{Argument: "normals shorter than numVertices"}
	}
	if uvs != nil && len(uvs) < numVertices {
		return 0, &ArgumentError{Argument: "uvs shorter than numVertices"}
	}
	if len(indicesV0V1V2Mat) < 4*numTriangles {
		return 0, &ArgumentError{Argument: "indices shorter than 4*numTriangles"}
	}
	b, err := s.lookupBLAS(blasHandle)
	if err != nil {
		return 0, err
	}

	vertexOffset := len(b.Positions)
	triangleOffset := len(b.Triangles)

	for i := 0; i < numVertices; i++ {
		pos := positions[i]
		var normal mgl32.Vec4
		if normals != nil {
			normal = normals[i]
		}
		if uvs != nil {
			u, v := uvs[i][0], uvs[i][1]
			pos[3] = u
			normal[3] = v
		}
		b.Positions = append(b.Positions, pos)
		b.Normals = append(b.Normals, normal)
	}

	for i := 0; i < numTriangles; i++ {
		base := i * 4
		b.Triangles = append(b.Triangles, Triangle{
			V0:       indicesV0V1V2Mat[base+0] + int32(vertexOffset),
			V1:       indicesV0V1V2Mat[base+1] + int32(vertexOffset),
			V2:       indicesV0V1V2Mat[base+2] + int32(vertexOffset),
			Material: indicesV0V1V2Mat[base+3],
		})
	}

	shapeID := b.shapeIDGenerator
	b.shapeIDGenerator++
	b.Shapes = append(b.Shapes, ShapeRecord{
		ShapeID:        shapeID,
		VertexOffset:   vertexOffset,
		NumVertices:    numVertices,
		TriangleOffset: triangleOffset,
		NumTriangles:   numTriangles,
	})

	b.NeedsRebuild = true
	blasIdx := blasIndex(blasHandle)
	s.dirtyBLAS[blasIdx] = true
	s.needsUpdate = true
	s.updateFlags |= FlagAccessorCode | FlagAccessorBindings
	s.log.Debugf("scene: added shape %d to BLAS %d (%d verts, %d tris)", shapeID, blasIdx, numVertices, numTriangles)

	return shapeID, nil
}

// AddInstance appends an instance to a TLAS (spec 4.F AddInstance).
func (s *Scene) AddInstance(tlasHandle uint32, blasHandle uint32, transform [12]float32) (int, error) {
	tlas, err := s.lookupTLAS(tlasHandle)
	if err != nil {
		return 0, err
	}
	if _, err := s.lookupBLAS(blasHandle); err != nil {
		return 0, err
	}

	id := len(tlas.Instances)
	tlas.Instances = append(tlas.Instances, Instance{Transform: transform, BLASID: int32(blasIndex(blasHandle))})
	tlas.InstanceTextureSize = backend.TileInstanceBytes(len(tlas.InstanceBytes())).Width

	s.needsUpdate = true
	s.updateFlags |= FlagInstanceAdd
	return id, nil
}

// UpdateInstance rewrites an existing instance's transform in place (spec
// 4.F UpdateInstance). Per the open question in spec 9, updating an
// instance on a TLAS with no instances yet is treated as an error.
func (s *Scene) UpdateInstance(tlasHandle uint32, instanceID int, transform [12]float32) error {
	tlas, err := s.lookupTLAS(tlasHandle)
	if err != nil {
		return err
	}
	if instanceID < 0 || instanceID >= len(tlas.Instances) {
		return &InstanceError{TLASHandle: tlasHandle, InstanceID: instanceID, InstanceSize: len(tlas.Instances)}
	}
	tlas.Instances[instanceID].Transform = transform

	s.needsUpdate = true
	s.updateFlags |= FlagInstanceUpdate
	return nil
}

// Update rebuilds every dirty BLAS and clears the flags it handled,
// returning the flags that were set (spec 4.F Update). Instance data is
// not packed here: TLAS.InstanceBytes encodes it when the caller uploads.
func (s *Scene) Update() (UpdateFlags, error) {
	if !s.needsUpdate {
		return 0, nil
	}

	handled := s.updateFlags

	for idx := range s.dirtyBLAS {
		b := s.blas[idx]
		if !b.NeedsRebuild {
			continue
		}
		if err := s.buildBLAS(b); err != nil {
			return 0, fmt.Errorf("scene: building BLAS %d: %w", idx, err)
		}
		b.NeedsRebuild = false
		s.log.Infof("scene: built BLAS %d (%d nodes, %d triangles)", idx, b.TotalNodes, len(b.Triangles))
	}
	s.dirtyBLAS = make(map[int]bool)

	s.updateFlags &^= handled
	if s.updateFlags == 0 {
		s.needsUpdate = false
	}

	return handled, nil
}

// buildBLAS runs the scene-wide builder over b's triangles and replaces
// b.Triangles with the builder's permutation, so leaf offsets in the flat
// node array index directly into the stored array (spec invariant 3).
func (s *Scene) buildBLAS(b *BLAS) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// The only panic the builders raise is the wide builder's
			// >3-triangle leaf precondition violation (spec 7 "Build
			// precondition violation"); surface it as a normal error so a
			// failed Update leaves prior state untouched per spec 7.
			err = fmt.Errorf("scene: build precondition violated: %v", r)
		}
	}()

	prims := make([]bvh.BuildPrimitive, len(b.Triangles))
	for i, tri := range b.Triangles {
		v0 := b.Positions[tri.V0].Vec3()
		v1 := b.Positions[tri.V1].Vec3()
		v2 := b.Positions[tri.V2].Vec3()
		prims[i] = bvh.NewBuildPrimitive(i, bvh.TriangleBounds(v0, v1, v2))
	}

	var orderedIdx []int
	switch b.Kind {
	case KindSAH:
		root, ordered := bvh.BuildSAHTree(prims, bvh.DefaultSAHConfig())
		nodes := bvh.FlattenSAH(root)
		b.NodeBytes = bvh.EncodeLinearNodes(nodes)
		b.LinearNodes = nodes
		b.WideNodes = nil
		b.TotalNodes = len(nodes)
		orderedIdx = ordered
	case KindWide:
		nodes, ordered := bvh.BuildWideTree(prims, bvh.DefaultWideConfig())
		b.NodeBytes = bvh.EncodeWideNodes(nodes)
		b.WideNodes = nodes
		b.LinearNodes = nil
		b.TotalNodes = len(nodes)
		orderedIdx = ordered
	default:
		return fmt.Errorf("scene: unknown BVH kind %v", b.Kind)
	}

	if len(orderedIdx) != len(b.Triangles) {
		// Empty BLAS: build succeeds, total_nodes=0 per spec 8 boundary
		// behaviors; nothing to permute.
		return nil
	}
	permuted := make([]Triangle, len(orderedIdx))
	for i, srcIdx := range orderedIdx {
		permuted[i] = b.Triangles[srcIdx]
	}
	b.Triangles = permuted

	// Tile every flattened array so the accessor's (i%W, i/W, layer)
	// addressing has a real width to divide by (spec 4.E).
	b.NodeTextureSize = backend.TileBytes(len(b.NodeBytes)).Width
	b.VertexTextureSize = backend.TileBytes(len(b.PositionBytes())).Width
	b.IndexTextureSize = backend.TileBytes(len(b.IndexBytes())).Width
	return nil
}

// NeedsUpdate reports whether any mutation is pending an Update call.
func (s *Scene) NeedsUpdate() bool { return s.needsUpdate }

// BLASCount and TLASCount expose registry sizes for bindings/accessor
// emission (spec 4.H constants).
func (s *Scene) BLASCount() int { return len(s.blas) }
func (s *Scene) TLASCount() int { return len(s.tlas) }

// BLASByHandle and TLASByHandle give read access to built structures, e.g.
// for traversal or accessor emission in other packages.
func (s *Scene) BLASByHandle(h uint32) (*BLAS, error) { return s.lookupBLAS(h) }
func (s *Scene) TLASByHandle(h uint32) (*TLAS, error) { return s.lookupTLAS(h) }

// AnyTLAS reports whether the scene has at least one TLAS, used to decide
// whether the accessor needs to emit the scene_instances binding (spec
// 4.H).
func (s *Scene) AnyTLAS() bool { return len(s.tlas) > 0 }
