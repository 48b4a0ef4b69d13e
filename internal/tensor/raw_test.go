package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)

	assert.True(t, r.Shape().Equal(Shape{2, 3}))
	assert.Equal(t, Float32, r.DType())
	assert.Equal(t, 6, r.NumElements())
	assert.Len(t, r.Data(), 24)
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32)
	assert.Error(t, err)

	_, err = NewRaw(Shape{-1, 3}, Float32)
	assert.Error(t, err)
}

func TestNewRawFromBytes(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x80, 0x3f, // 1.0
		0x00, 0x00, 0x00, 0x40, // 2.0
	}
	r, err := NewRawFromBytes(Shape{2}, Float32, data)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, r.AsFloat32())

	_, err = NewRawFromBytes(Shape{3}, Float32, data)
	assert.Error(t, err, "size mismatch must be rejected")
}

func TestFromInt64(t *testing.T) {
	r, err := FromInt64(Shape{3}, []int64{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5, 6}, r.AsInt64())

	_, err = FromInt64(Shape{2}, []int64{1})
	assert.Error(t, err)
}

func TestInts(t *testing.T) {
	i64, err := FromInt64(Shape{2}, []int64{7, 8})
	require.NoError(t, err)
	got, err := i64.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, got)

	i32, err := NewRaw(Shape{2}, Int32)
	require.NoError(t, err)
	copy(i32.AsInt32(), []int32{9, 10})
	got, err = i32.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 10}, got)

	f32, err := FromFloat32(Shape{1}, []float32{1})
	require.NoError(t, err)
	_, err = f32.Ints()
	assert.Error(t, err)
}

func TestShapeHelpers(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, "[2,3,4]", s.String())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(Shape{2, 3}))

	var scalar Shape
	assert.Equal(t, 1, scalar.NumElements())
}
