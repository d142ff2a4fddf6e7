// Package webrays is the host API (spec 6): a thin dispatch layer wiring
// together the scene registry (package scene), CPU traversal (package
// traverse), accessor-text emission (package accessor), and the GPU/CPU
// upload capability (package backend) behind one entry point.
package webrays

import (
	"fmt"

	"github.com/gekko3d/webrays/accessor"
	"github.com/gekko3d/webrays/backend"
	"github.com/gekko3d/webrays/scene"
	"github.com/gekko3d/webrays/traverse"
	"github.com/go-gl/mathgl/mgl32"
)

// Module is the per-process instance the spec 6 `init` returns a handle
// to. Go callers hold it directly rather than through an opaque integer,
// per the handle-type-discrimination design note: keep a typed value
// in-process, reserve packed integer handles for the ADS layer's own
// external-facing ids.
type Module struct {
	log     Logger
	backend backend.Backend
	scene   *scene.Scene
	bvhKind scene.BVHKind

	accessorText     string
	accessorBindings []string
}

// Init constructs a Module bound to backendKind (spec 6 init). bvhKind
// selects which BLAS builder every AddADS(BLAS) in this scene uses; the
// spec's language-neutral signature only names backend_kind, but a
// same-process Go binding is free to make the per-scene BVH choice
// explicit rather than hide it behind a second call.
func Init(backendKind backend.Kind, bvhKind scene.BVHKind) (*Module, error) {
	be, err := backend.New(backendKind)
	if err != nil {
		return nil, err
	}
	log := NewDefaultLogger("webrays", false)
	return &Module{
		log:     log,
		backend: be,
		scene:   scene.New(bvhKind, sceneLoggerAdapter{log}),
		bvhKind: bvhKind,
	}, nil
}

// InitWithBackend constructs a Module around an already-built backend
// (e.g. a *backend.WebGPUBackend bound to a live *wgpu.Device), for
// callers that need backend construction parameters the Kind-only Init
// can't express.
func InitWithBackend(be backend.Backend, bvhKind scene.BVHKind) *Module {
	log := NewDefaultLogger("webrays", false)
	return &Module{
		log:     log,
		backend: be,
		scene:   scene.New(bvhKind, sceneLoggerAdapter{log}),
		bvhKind: bvhKind,
	}
}

func (m *Module) SetDebugLogging(enabled bool) { m.log.SetDebug(enabled) }

// CreateADS implements spec 6 create_ads: descriptors is a (key, value)
// list whose only recognized key is "type" ∈ {"BLAS","TLAS"}, defaulting
// to "BLAS".
func (m *Module) CreateADS(descriptors map[string]string) (uint32, error) {
	kind := scene.KindBLAS
	if v, ok := descriptors["type"]; ok {
		switch v {
		case "BLAS":
			kind = scene.KindBLAS
		case "TLAS":
			kind = scene.KindTLAS
		default:
			return 0, fmt.Errorf("webrays: unrecognized ads type %q", v)
		}
	}
	return m.scene.AddADS(kind)
}

// AddShape implements spec 6 add_shape. Go slices already carry their own
// element layout, so unlike the C-ABI form this binding takes typed
// position/normal/uv slices instead of (pointer, stride) pairs.
func (m *Module) AddShape(blas uint32, positions, normals []mgl32.Vec4, uvs []mgl32.Vec2,
	numVertices int, indicesV0V1V2Mat []int32, numTriangles int) (int, error) {
	return m.scene.AddShape(blas, positions, normals, uvs, numVertices, indicesV0V1V2Mat, numTriangles)
}

// AddInstance implements spec 6 add_instance.
func (m *Module) AddInstance(tlas, blas uint32, transform12 [12]float32) (int, error) {
	return m.scene.AddInstance(tlas, blas, transform12)
}

// UpdateInstance implements spec 6 update_instance.
func (m *Module) UpdateInstance(tlas uint32, instanceID int, transform12 [12]float32) error {
	return m.scene.UpdateInstance(tlas, instanceID, transform12)
}

// Update implements spec 6 update: rebuilds dirty BLAS, then re-uploads
// the arrays to the backend and re-emits the accessor text whenever a
// shape or instance was added or an instance transform changed, per spec
// 4.F.
func (m *Module) Update() (scene.UpdateFlags, error) {
	flags, err := m.scene.Update()
	if err != nil {
		return 0, err
	}
	if flags == 0 {
		return 0, nil
	}

	if flags&(scene.FlagAccessorCode|scene.FlagAccessorBindings|scene.FlagInstanceAdd|scene.FlagInstanceUpdate) != 0 {
		if err := m.reuploadArrays(); err != nil {
			return 0, &BackendError{Op: "reupload", Err: err}
		}
		text, err := accessor.GetSceneAccessor(m.scene, m.bvhKind)
		if err != nil {
			return 0, err
		}
		m.accessorText = text
		m.accessorBindings = accessor.GetSceneAccessorBindings(m.scene)
	}
	return flags, nil
}

// reuploadArrays pushes every BLAS's node/vertex/index bytes, and every
// TLAS's instance bytes, through the backend capability (spec 5: "the
// core only hands the adapter byte ranges to upload").
func (m *Module) reuploadArrays() error {
	for i := 0; i < m.scene.BLASCount(); i++ {
		b, err := m.scene.BLASByHandle(uint32(i))
		if err != nil {
			return err
		}
		nodeDims := backend.TileBytes(len(b.NodeBytes))
		if _, err := m.backend.UploadTexture2D(fmt.Sprintf("bvh_nodes_%d", i), b.NodeBytes, nodeDims); err != nil {
			return err
		}

		posBytes, normalBytes := b.PositionBytes(), b.NormalBytes()
		vertexDims := backend.TileBytes(len(posBytes))
		if _, err := m.backend.UploadTexture2D(fmt.Sprintf("scene_vertices_pos_%d", i), posBytes, vertexDims); err != nil {
			return err
		}
		if _, err := m.backend.UploadTexture2D(fmt.Sprintf("scene_vertices_normal_%d", i), normalBytes, vertexDims); err != nil {
			return err
		}

		indexBytes := b.IndexBytes()
		indexDims := backend.TileBytes(len(indexBytes))
		if _, err := m.backend.UploadTexture2D(fmt.Sprintf("scene_indices_%d", i), indexBytes, indexDims); err != nil {
			return err
		}
	}

	for i := 0; i < m.scene.TLASCount(); i++ {
		t, err := m.scene.TLASByHandle(uint32(i) | scene.TLASMask)
		if err != nil {
			return err
		}
		if len(t.Instances) == 0 {
			continue
		}
		instanceBytes := t.InstanceBytes()
		instanceDims := backend.TileInstanceBytes(len(instanceBytes))
		if _, err := m.backend.UploadTexture2D(fmt.Sprintf("scene_instances_%d", i), instanceBytes, instanceDims); err != nil {
			return err
		}
	}
	return nil
}

// QueryIntersection implements spec 6 query_intersection for a single ray
// (the buffer-oriented form is the caller's responsibility to loop; see
// RayBufferRequirements).
func (m *Module) QueryIntersection(ads uint32, ray traverse.Ray) (traverse.ClosestHit, error) {
	return traverse.QueryIntersection(m.scene, ads, ray)
}

// QueryOcclusion implements spec 6 query_occlusion for a single ray.
func (m *Module) QueryOcclusion(ads uint32, ray traverse.Ray) (bool, error) {
	return traverse.QueryOcclusion(m.scene, ads, ray)
}

// GetSceneAccessor implements spec 6 get_scene_accessor.
func (m *Module) GetSceneAccessor() string { return m.accessorText }

// GetSceneAccessorBindings implements spec 6 get_scene_accessor_bindings.
func (m *Module) GetSceneAccessorBindings() []string { return m.accessorBindings }

// Scene exposes the underlying registry for callers that need direct
// BLAS/TLAS inspection (e.g. the demo, or a renderer reading back
// per-BLAS texture sizes).
func (m *Module) Scene() *scene.Scene { return m.scene }

func (m *Module) Close() {
	if m.backend != nil {
		m.backend.Release()
	}
}
