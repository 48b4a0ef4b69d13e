// Package tensor provides the public API for the tensor types used by
// the lumen graph compiler: shapes, element types, and raw host-memory
// tensors for weights and constants. It carries no arithmetic; lumen
// compiles graphs, it does not execute them.
package tensor

import (
	"github.com/lumen-ml/lumen/internal/tensor"
)

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape is the dimension list of a tensor.
type Shape = tensor.Shape

// RawTensor is a flat, row-major tensor value held in host memory.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 creates a Float32 tensor from a value slice.
func FromFloat32(shape Shape, values []float32) (*RawTensor, error) {
	return tensor.FromFloat32(shape, values)
}

// FromInt64 creates an Int64 tensor from a value slice.
func FromInt64(shape Shape, values []int64) (*RawTensor, error) {
	return tensor.FromInt64(shape, values)
}
