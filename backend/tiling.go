// Package backend abstracts the GPU/CPU upload surface scene arrays are
// flattened onto (spec 4.E / 6): 2-D texture tiling geometry, and the two
// required backend adapters (CPU and WEBGPU, the latter an ecosystem
// stand-in for the spec's GL_ES requirement since this stack has no GLES
// bindings; see DESIGN.md).
package backend

import "math"

// TileDimensions is the (width, height) a flattened byte array tiles into,
// per spec 4.E: n_px = ceil(size_bytes/16), tex_w = max(16,
// next_pow2(ceil(sqrt(n_px)))), tex_h = ceil(n_px / tex_w).
type TileDimensions struct {
	Width, Height int
}

// TileBytes computes the 2-D tiling geometry for one flattened array.
func TileBytes(sizeBytes int) TileDimensions {
	if sizeBytes <= 0 {
		return TileDimensions{Width: 16, Height: 1}
	}
	nPx := (sizeBytes + 15) / 16
	w := nextPow2(int(math.Ceil(math.Sqrt(float64(nPx)))))
	if w < 16 {
		w = 16
	}
	h := (nPx + w - 1) / w
	if h < 1 {
		h = 1
	}
	return TileDimensions{Width: w, Height: h}
}

// ReconcileDimensions takes the per-BLAS tiling of each array in a scene
// and returns the (W, H) that a shared texture array binding must use: the
// max of both dimensions across every BLAS, per spec 4.E.
func ReconcileDimensions(perBLAS []TileDimensions) TileDimensions {
	var out TileDimensions
	for _, d := range perBLAS {
		if d.Width > out.Width {
			out.Width = d.Width
		}
		if d.Height > out.Height {
			out.Height = d.Height
		}
	}
	if out.Width == 0 {
		out.Width = 16
	}
	if out.Height == 0 {
		out.Height = 1
	}
	return out
}

// instanceTextureWidthCap is the spec 4.E cap on instance-texture width.
const instanceTextureWidthCap = 512

// TileInstanceBytes tiles TLAS instance data, capping width at 512 per
// spec 4.E ("Instance data is similarly tiled, with width capped at
// 512...").
func TileInstanceBytes(sizeBytes int) TileDimensions {
	d := TileBytes(sizeBytes)
	if d.Width > instanceTextureWidthCap {
		nPx := (sizeBytes + 15) / 16
		d.Width = instanceTextureWidthCap
		d.Height = (nPx + d.Width - 1) / d.Width
	}
	return d
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
