package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityTransform() [12]float32 {
	return [12]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

func addSingleTriangle(t *testing.T, s *Scene, blas uint32) {
	t.Helper()
	positions := []mgl32.Vec4{
		{-1, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	indices := []int32{0, 1, 2, 0}
	_, err := s.AddShape(blas, positions, nil, nil, 3, indices, 1)
	require.NoError(t, err)
}

func TestHandleDiscrimination(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)
	tlas, err := s.AddADS(KindTLAS)
	require.NoError(t, err)

	assert.False(t, IsTLASHandle(blas))
	assert.True(t, IsTLASHandle(tlas))
	assert.NotEqual(t, blas, tlas)
}

func TestAddADSCapacity(t *testing.T) {
	s := New(KindSAH, nil)
	for i := 0; i < MaxTLASCount; i++ {
		_, err := s.AddADS(KindTLAS)
		require.NoError(t, err)
	}
	_, err := s.AddADS(KindTLAS)
	assert.Error(t, err)
	var capErr *CapacityError
	assert.ErrorAs(t, err, &capErr)
}

func TestAddShapeRejectsTLASHandle(t *testing.T) {
	s := New(KindSAH, nil)
	tlas, err := s.AddADS(KindTLAS)
	require.NoError(t, err)

	_, err = s.AddShape(tlas, []mgl32.Vec4{{0, 0, 0, 0}}, nil, nil, 1, []int32{0, 0, 0, 0}, 0)
	assert.Error(t, err)
	var handleErr *HandleError
	assert.ErrorAs(t, err, &handleErr)
}

func TestAddShapeRejectsNilBuffers(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)

	_, err = s.AddShape(blas, nil, nil, nil, 0, []int32{}, 0)
	assert.Error(t, err)

	_, err = s.AddShape(blas, []mgl32.Vec4{}, nil, nil, 0, nil, 0)
	assert.Error(t, err)
}

func TestUpdateBuildsAndSetsFlags(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)
	addSingleTriangle(t, s, blas)

	flags, err := s.Update()
	require.NoError(t, err)
	assert.NotZero(t, flags&FlagAccessorCode)

	b, err := s.BLASByHandle(blas)
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalNodes)
	assert.Len(t, b.Triangles, 1)
}

func TestUpdateIdempotentWhenNoMutation(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)
	addSingleTriangle(t, s, blas)

	_, err = s.Update()
	require.NoError(t, err)
	b, _ := s.BLASByHandle(blas)
	first := append([]byte(nil), b.NodeBytes...)

	flags, err := s.Update()
	require.NoError(t, err)
	assert.Equal(t, UpdateFlags(0), flags)
	assert.Equal(t, first, b.NodeBytes)
}

func TestAddInstanceAndUpdateInstance(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)
	addSingleTriangle(t, s, blas)
	tlas, err := s.AddADS(KindTLAS)
	require.NoError(t, err)

	id, err := s.AddInstance(tlas, blas, identityTransform())
	require.NoError(t, err)

	newTransform := identityTransform()
	newTransform[3] = 3 // translate X by 3
	require.NoError(t, s.UpdateInstance(tlas, id, newTransform))

	tl, err := s.TLASByHandle(tlas)
	require.NoError(t, err)
	assert.Equal(t, newTransform, tl.Instances[id].Transform)
}

func TestUpdateInstanceOutOfRangeIsError(t *testing.T) {
	s := New(KindSAH, nil)
	tlas, err := s.AddADS(KindTLAS)
	require.NoError(t, err)

	err = s.UpdateInstance(tlas, 0, identityTransform())
	assert.Error(t, err)
	var instErr *InstanceError
	assert.ErrorAs(t, err, &instErr)
}

func TestEmptyBLASBuildsToZeroNodes(t *testing.T) {
	s := New(KindSAH, nil)
	blas, err := s.AddADS(KindBLAS)
	require.NoError(t, err)

	// Mark dirty without adding any shape, matching "Empty BLAS" boundary
	// behavior (spec 8): build succeeds with zero nodes.
	b, _ := s.BLASByHandle(blas)
	b.NeedsRebuild = true
	s.dirtyBLAS[int(blas)] = true
	s.needsUpdate = true

	_, err = s.Update()
	require.NoError(t, err)
	assert.Equal(t, 0, b.TotalNodes)
}
