package backend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// webgpuHeadroom mirrors the teacher GPU manager's buffer-growth headroom
// so repeated small Update() calls don't reallocate every frame.
const webgpuHeadroom = 64 * 1024

// WebGPUBackend uploads flattened arrays as wgpu storage buffers, sized
// with the same geometric growth the teacher's GpuBufferManager.ensureBuffer
// uses: allocate max(needed, 1.5x current) and copy forward on resize, so a
// growing scene doesn't reallocate every Update().
type WebGPUBackend struct {
	device  *wgpu.Device
	buffers map[string]*wgpu.Buffer
	next    TextureHandle
	handles map[string]TextureHandle
}

func NewWebGPUBackend(device *wgpu.Device) *WebGPUBackend {
	return &WebGPUBackend{
		device:  device,
		buffers: make(map[string]*wgpu.Buffer),
		handles: make(map[string]TextureHandle),
	}
}

func (b *WebGPUBackend) Kind() Kind { return KindWEBGPU }

func (b *WebGPUBackend) UploadTexture2D(name string, data []byte, dims TileDimensions) (TextureHandle, error) {
	if err := b.ensureBuffer(name, data); err != nil {
		return 0, fmt.Errorf("backend: uploading %q: %w", name, err)
	}
	handle, ok := b.handles[name]
	if !ok {
		b.next++
		handle = b.next
		b.handles[name] = handle
	}
	return handle, nil
}

// ensureBuffer grows or writes the named buffer, following the teacher's
// GpuBufferManager.ensureBuffer: pad to a 4-byte multiple, add headroom,
// grow geometrically (1.5x) on resize, and copy the old content forward
// with a device-side copy whenever the buffer grows, before writing data.
func (b *WebGPUBackend) ensureBuffer(name string, data []byte) error {
	needed := uint64(len(data) + webgpuHeadroom)
	if rem := needed % 4; rem != 0 {
		needed += 4 - rem
	}

	current := b.buffers[name]
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

	if current == nil || current.GetSize() < needed {
		newSize := needed
		if current != nil {
			if grown := uint64(float64(current.GetSize()) * 1.5); grown > newSize {
				newSize = grown
			}
		}
		newBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            name,
			Size:             newSize,
			Usage:            usage,
			MappedAtCreation: false,
		})
		if err != nil {
			return err
		}
		if current != nil {
			encoder, err := b.device.CreateCommandEncoder(nil)
			if err != nil {
				return err
			}
			encoder.CopyBufferToBuffer(current, 0, newBuf, 0, current.GetSize())
			cmdBuf, err := encoder.Finish(nil)
			if err != nil {
				return err
			}
			b.device.GetQueue().Submit(cmdBuf)
			current.Release()
		}
		b.buffers[name] = newBuf
	}

	if len(data) > 0 {
		b.device.GetQueue().WriteBuffer(b.buffers[name], 0, data)
	}
	return nil
}

func (b *WebGPUBackend) Release() {
	for _, buf := range b.buffers {
		buf.Release()
	}
	b.buffers = nil
}
