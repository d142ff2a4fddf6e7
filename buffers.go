package webrays

// BufferRequirements describes the dimensions and byte size a caller must
// allocate for one of the spec 6 {ray,intersection,occlusion}_buffer_
// requirements queries, and spec 6 "Buffer formats".
type BufferRequirements struct {
	Width, Height int
	TextureCount  int
	SizeBytes     int
	Format        string
}

// RayBufferRequirements sizes the two RGBA32F ray textures (spec 6: "a
// (origin.xyz, tmin_offset) and a (direction.xyz, tmax) pair").
func RayBufferRequirements(width, height int) BufferRequirements {
	perTexture := width * height * 4 * 4
	return BufferRequirements{
		Width: width, Height: height,
		TextureCount: 2,
		SizeBytes:    perTexture * 2,
		Format:       "RGBA32F",
	}
}

// IntersectionBufferRequirements sizes the one RGBA32I intersection
// texture (spec 6: "(prim_id_packed, raw(b1), raw(b2), raw(t))").
func IntersectionBufferRequirements(width, height int) BufferRequirements {
	return BufferRequirements{
		Width: width, Height: height,
		TextureCount: 1,
		SizeBytes:    width * height * 4 * 4,
		Format:       "RGBA32I",
	}
}

// OcclusionBufferRequirements sizes the one R32I occlusion texture (spec
// 6: "per-pixel 0 or 1").
func OcclusionBufferRequirements(width, height int) BufferRequirements {
	return BufferRequirements{
		Width: width, Height: height,
		TextureCount: 1,
		SizeBytes:    width * height * 4,
		Format:       "R32I",
	}
}
