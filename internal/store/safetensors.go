package store

import (
	"fmt"
	"io"
	"os"

	"github.com/nlpodyssey/safetensors"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// OpenSafetensors reads a .safetensors file and returns a store with all
// of its tensors loaded into memory.
func OpenSafetensors(path string) (*MemStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open safetensors file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read safetensors file: %w", err)
	}
	st, err := safetensors.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read safetensors file: %w", err)
	}

	s := NewMemStore()
	for _, raw := range st.Tensors() {
		t, err := fromSafetensor(raw.TensorView)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", raw.Name, err)
		}
		s.Put(raw.Name, t)
	}
	return s, nil
}

func fromSafetensor(raw safetensors.TensorView) (*tensor.RawTensor, error) {
	dt, err := dataType(raw.DType())
	if err != nil {
		return nil, err
	}
	dims := raw.Shape()
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	if len(shape) == 0 {
		// Scalars become single-element vectors; the graph has no rank-0 type.
		shape = []int{1}
	}
	return tensor.NewRawFromBytes(shape, dt, raw.Data())
}

func dataType(dt safetensors.DType) (tensor.DataType, error) {
	switch dt {
	case safetensors.F32:
		return tensor.Float32, nil
	case safetensors.F64:
		return tensor.Float64, nil
	case safetensors.I32:
		return tensor.Int32, nil
	case safetensors.I64:
		return tensor.Int64, nil
	case safetensors.U8:
		return tensor.Uint8, nil
	case safetensors.BOOL:
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unsupported safetensors dtype %s", dt)
	}
}
