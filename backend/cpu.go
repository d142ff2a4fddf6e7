package backend

// CPUBackend is the required spec 6 CPU backend_kind: it holds uploaded
// arrays as plain byte slices for in-process traversal (package traverse
// reads scene.BLAS/scene.TLAS fields directly, not through this backend,
// but host-API callers that query buffer contents through the backend
// capability get them from here).
type CPUBackend struct {
	textures map[string]cpuTexture
	next     TextureHandle
}

type cpuTexture struct {
	handle TextureHandle
	data   []byte
	dims   TileDimensions
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{textures: make(map[string]cpuTexture)}
}

func (b *CPUBackend) Kind() Kind { return KindCPU }

func (b *CPUBackend) UploadTexture2D(name string, data []byte, dims TileDimensions) (TextureHandle, error) {
	existing, ok := b.textures[name]
	handle := existing.handle
	if !ok {
		b.next++
		handle = b.next
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	b.textures[name] = cpuTexture{handle: handle, data: buf, dims: dims}
	return handle, nil
}

// Read returns the bytes last uploaded under name, for callers that read
// back through the backend capability instead of the scene directly.
func (b *CPUBackend) Read(name string) ([]byte, bool) {
	t, ok := b.textures[name]
	if !ok {
		return nil, false
	}
	return t.data, true
}

func (b *CPUBackend) Release() {
	b.textures = nil
}
