package lower

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// NormalizeAxis resolves a possibly negative axis against a rank: a
// negative axis a addresses dimension rank+a. The result must land in
// [0, rank]; rank itself is permitted because Flatten may collapse all
// dimensions into the leading output dimension.
func NormalizeAxis(axis, rank int) (int, error) {
	normalized := axis
	if axis < 0 {
		normalized = rank + axis
	}
	if normalized < 0 || normalized > rank {
		return 0, fmt.Errorf("axis %d out of range for rank %d", axis, rank)
	}
	return normalized, nil
}

// BroadcastAxis computes the alignment axis for expanding a shape of
// srcRank into one of dstRank. An axis of -1, or no declared axis at all,
// selects trailing alignment: the source dimensions align with the
// highest-indexed dimensions of the destination.
func BroadcastAxis(declared int64, hasDeclared bool, dstRank, srcRank int) (int, error) {
	if !hasDeclared || declared == -1 {
		return dstRank - srcRank, nil
	}
	return NormalizeAxis(int(declared), dstRank)
}

// InferReshape resolves a requested shape against the input it reshapes.
// An entry of 0 copies the input dimension at the same index. After zeros
// are resolved, at most one entry may be -1; it is inferred so the element
// count is preserved. Multiple wildcards, a wildcard the element count
// does not divide evenly by, or a 0 at an index the input does not have,
// all fail with ErrInvalidReshape.
func InferReshape(requested []int64, oldDims tensor.Shape) (tensor.Shape, error) {
	total := oldDims.NumElements()

	dims := make([]int64, len(requested))
	copy(dims, requested)

	wildcards := 0
	product := int64(1)
	for i, d := range dims {
		if d == 0 {
			if i >= len(oldDims) {
				return nil, fmt.Errorf("entry %d copies an input dimension, but input rank is %d: %w",
					i, len(oldDims), ErrInvalidReshape)
			}
			d = int64(oldDims[i])
			dims[i] = d
		}
		if d == -1 {
			wildcards++
			continue
		}
		product *= d
	}

	if wildcards > 1 {
		return nil, fmt.Errorf("more than one -1 entry in %v: %w", requested, ErrInvalidReshape)
	}
	if wildcards == 1 {
		if product <= 0 || int64(total)%product != 0 {
			return nil, fmt.Errorf("cannot infer -1 entry: %d elements not divisible by %d: %w",
				total, product, ErrInvalidReshape)
		}
	}

	out := make(tensor.Shape, len(dims))
	for i, d := range dims {
		if d == -1 {
			d = int64(total) / product
		}
		out[i] = int(d)
	}
	return out, nil
}
