package backend

import "fmt"

// Kind enumerates the spec 6 init(backend_kind) values. Only CPU and GLES
// are required behaviors; this module substitutes WEBGPU for GLES as its
// GPU-resident backend since the dependency stack has no GLES bindings
// (see DESIGN.md).
type Kind int

const (
	KindNone Kind = iota
	KindCPU
	KindGLES
	KindGL
	KindVulkan
	KindWEBGPU
)

func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindGLES:
		return "GL_ES"
	case KindGL:
		return "GL"
	case KindVulkan:
		return "VULKAN"
	case KindWEBGPU:
		return "WEBGPU"
	default:
		return "NONE"
	}
}

// TextureHandle is the opaque identifier a backend hands back for an
// uploaded array, stored in the binding table (spec 5 "Shared resources").
type TextureHandle uint32

// Backend is the capability the scene/accessor layer uploads flattened
// byte arrays through (spec 9 "Process-wide function-pointer table":
// treat the backend as a capability passed by reference, not a global).
type Backend interface {
	Kind() Kind
	// UploadTexture2D uploads data tiled to (width, height) under name,
	// returning a stable handle for later rebinding. Calling it again
	// with the same name replaces the prior upload.
	UploadTexture2D(name string, data []byte, dims TileDimensions) (TextureHandle, error)
	Release()
}

// UnsupportedKindError reports a backend_kind this build cannot construct.
type UnsupportedKindError struct {
	Kind Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("backend: unsupported kind %s", e.Kind)
}

// New constructs the backend for kind. Only CPU is constructed here; WEBGPU
// (which stands in for the GPU-resident GL_ES requirement, see DESIGN.md)
// needs a *wgpu.Device and is built with NewWebGPUBackend, so New returns
// an error for it. Every other kind is an UnsupportedKindError.
func New(kind Kind) (Backend, error) {
	switch kind {
	case KindCPU:
		return NewCPUBackend(), nil
	case KindWEBGPU:
		return nil, fmt.Errorf("backend: WEBGPU requires an explicit *wgpu.Device, use NewWebGPUBackend")
	default:
		return nil, &UnsupportedKindError{Kind: kind}
	}
}
