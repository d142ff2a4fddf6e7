// Package accessor implements the scene-accessor text emitter (spec
// component H): a parameterized GPU shader-text fragment declaring the
// binding contract and the traversal/geometry query functions a renderer
// calls against an uploaded scene. Its query_intersection/query_occlusion
// bodies describe the same algorithm package traverse runs on the CPU; the
// two must agree, but this package only emits text, it never executes it.
package accessor

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gekko3d/webrays/scene"
)

//go:embed base.wgsl
var baseTemplate string

//go:embed sah_traverse.wgsl
var sahTraverseTemplate string

//go:embed wide_traverse.wgsl
var wideTraverseTemplate string

//go:embed tlas_ext.wgsl
var tlasExtTemplate string

// instanceTriangleSplitBit mirrors traverse.instanceTriangleSplitBit; kept
// independent to avoid a cross-package dependency for a single constant.
const instanceTriangleSplitBit = 24

// stack depths mirror package traverse's sahStackDepth/wideStackDepth.
const (
	sahTraverseStackSize  = 32
	wideTraverseStackSize = 16
)

// BindingKind is the spec 6 "Binding kinds" enum for emitted accessor
// bindings.
type BindingKind int

const (
	BindingCPUBuffer BindingKind = iota
	BindingGLTexture2D
	BindingGLTexture2DArray
	BindingGLUniformBlock
	BindingGLStorageBuffer
)

// Binding is one entry of spec 6 get_scene_accessor_bindings: a textual
// name, its expected binding kind for the given backend, and the byte
// payload to upload for it.
type Binding struct {
	Name string
	Kind BindingKind
	Data []byte
}

// Constants is the compile-time parameter block spec 4.H lists: texture
// sizes, counts, and the TLAS bit layout, substituted into the emitted
// text.
type Constants struct {
	PrimitiveTextureSize     int
	NodeTextureSize          int
	SceneTextureSize         int
	InstanceTextureSize      int
	InstanceCount            int
	TriangleCount            int
	BVHNodeCount             int
	TraverseStackSize        int
	TLASIDMask               uint32
	InstanceTriangleSplitBit int
}

// ConstantsFromScene aggregates the compile-time constants across every
// BLAS/TLAS currently registered in s. Texture sizes take the maximum over
// BLAS records since the emitted accessor addresses any of them through
// one shared binding.
func ConstantsFromScene(s *scene.Scene, kind scene.BVHKind) Constants {
	c := Constants{
		TLASIDMask:               scene.TLASMask,
		InstanceTriangleSplitBit: instanceTriangleSplitBit,
	}
	switch kind {
	case scene.KindWide:
		c.TraverseStackSize = wideTraverseStackSize
	default:
		c.TraverseStackSize = sahTraverseStackSize
	}

	for i := 0; i < s.BLASCount(); i++ {
		b, err := s.BLASByHandle(uint32(i))
		if err != nil {
			continue
		}
		c.TriangleCount += len(b.Triangles)
		c.BVHNodeCount += b.TotalNodes
		c.PrimitiveTextureSize = maxInt(c.PrimitiveTextureSize, b.VertexTextureSize)
		c.NodeTextureSize = maxInt(c.NodeTextureSize, b.NodeTextureSize)
		c.SceneTextureSize = maxInt(c.SceneTextureSize, b.IndexTextureSize)
	}
	for i := 0; i < s.TLASCount(); i++ {
		t, err := s.TLASByHandle(uint32(i) | scene.TLASMask)
		if err != nil {
			continue
		}
		c.InstanceCount += len(t.Instances)
		c.InstanceTextureSize = maxInt(c.InstanceTextureSize, t.InstanceTextureSize)
	}
	return c
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GetSceneAccessor renders the accessor text for the current scene state
// (spec 6 get_scene_accessor). Re-emission given unchanged constants
// produces byte-identical text (spec 8 invariant 8): the substitution is a
// pure function of Constants and s.AnyTLAS(), with no embedded timestamps
// or nondeterministic ordering.
func GetSceneAccessor(s *scene.Scene, kind scene.BVHKind) (string, error) {
	c := ConstantsFromScene(s, kind)

	traverseTemplate := sahTraverseTemplate
	if kind == scene.KindWide {
		traverseTemplate = wideTraverseTemplate
	}
	body := baseTemplate + "\n" + traverseTemplate

	tlasComment := ""
	resolveBlasIDBody := "\treturn i32(ads);"
	transformPositionBody := "\treturn p;"
	transformDirectionBody := "\treturn d;"
	intersectionDispatch := ""
	occlusionDispatch := ""
	if s.AnyTLAS() {
		tlasComment = ", scene_instances"
		body = body + "\n" + tlasExtTemplate
		resolveBlasIDBody = "\tif (instance_id >= 0) {\n\t\treturn get_blas_id(ads, instance_id);\n\t}\n\treturn i32(ads);"
		transformPositionBody = "\tif (instance_id >= 0) {\n\t\treturn transform_position_to_world(ads, instance_id, p);\n\t}\n\treturn p;"
		transformDirectionBody = "\tif (instance_id >= 0) {\n\t\treturn transform_direction_to_world(ads, instance_id, d);\n\t}\n\treturn d;"
		intersectionDispatch = "\tif (wr_is_tlas(ads)) {\n\t\treturn query_instance_intersection(ads, origin, dir, tmax);\n\t}\n"
		occlusionDispatch = "\tif (wr_is_tlas(ads)) {\n\t\treturn query_instance_occlusion(ads, origin, dir, tmax);\n\t}\n"
	}

	replacer := strings.NewReplacer(
		"__PRIMITIVE_TEXTURE_SIZE__", strconv.Itoa(c.PrimitiveTextureSize),
		"__NODE_TEXTURE_SIZE__", strconv.Itoa(c.NodeTextureSize),
		"__SCENE_TEXTURE_SIZE__", strconv.Itoa(c.SceneTextureSize),
		"__INSTANCE_TEXTURE_SIZE__", strconv.Itoa(c.InstanceTextureSize),
		"__INSTANCE_COUNT__", strconv.Itoa(c.InstanceCount),
		"__TRIANGLE_COUNT__", strconv.Itoa(c.TriangleCount),
		"__BVH_NODE_COUNT__", strconv.Itoa(c.BVHNodeCount),
		"__TRAVERSE_STACK_SIZE__", strconv.Itoa(c.TraverseStackSize),
		"__TLAS_ID_MASK__", fmt.Sprintf("%du", c.TLASIDMask),
		"__INSTANCE_TRIANGLE_SPLIT_BIT__", strconv.Itoa(c.InstanceTriangleSplitBit),
		"__TLAS_BINDING_COMMENT__", tlasComment,
		"__RESOLVE_BLAS_ID_BODY__", resolveBlasIDBody,
		"__TRANSFORM_POSITION_BODY__", transformPositionBody,
		"__TRANSFORM_DIRECTION_BODY__", transformDirectionBody,
		"__TLAS_INTERSECTION_DISPATCH__", intersectionDispatch,
		"__TLAS_OCCLUSION_DISPATCH__", occlusionDispatch,
	)
	return replacer.Replace(body), nil
}

// GetSceneAccessorBindings returns the binding list of spec 4.H: the
// textual names a caller must provide buffers for, in the fixed order
// scene_vertices, scene_indices, bvh_nodes, and (only when the scene has
// at least one TLAS) scene_instances.
func GetSceneAccessorBindings(s *scene.Scene) []string {
	names := []string{"scene_vertices", "scene_indices", "bvh_nodes"}
	if s.AnyTLAS() {
		names = append(names, "scene_instances")
	}
	return names
}
