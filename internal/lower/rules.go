package lower

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// Layout permutations used by LRN, which operates channel-last.
var (
	nchw2nhwc = []int{0, 2, 3, 1}
	nhwc2nchw = []int{0, 3, 1, 2}
)

func lowerRelu(e *Engine, op Operator, _ AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}
	node, err := e.builder.CreateRelu(displayName(op), ins[0])
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

func lowerSigmoid(e *Engine, op Operator, _ AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}
	node, err := e.builder.CreateSigmoid(displayName(op), ins[0])
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

// lowerSum handles the fixed-arity elementwise sum. Variadic Sum is a
// deliberate non-goal; any other arity is rejected outright.
func lowerSum(e *Engine, op Operator, _ AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 2)
	if err != nil {
		return nil, err
	}
	node, err := e.builder.CreateAdd(displayName(op), ins[0], ins[1])
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

// lowerSoftmax flattens all trailing dimensions into one axis before
// applying, so inputs with extra singleton dimensions (N x C x 1 x 1)
// are accepted.
func lowerSoftmax(e *Engine, op Operator, _ AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}
	name := displayName(op)
	flat, err := e.builder.CreateFlatten(name, ins[0], 1)
	if err != nil {
		return nil, err
	}
	node, err := e.builder.CreateSoftMax(name, graph.NodeValue{Node: flat})
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

// lowerLRN transposes to channel-last, normalizes, and transposes back.
// Only the primary output is produced; the scale output some formats emit
// is intentionally not bound.
func lowerLRN(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}

	size, err := dict.Int("size")
	if err != nil {
		return nil, err
	}
	alpha, err := dict.Float("alpha")
	if err != nil {
		return nil, err
	}
	beta, err := dict.Float("beta")
	if err != nil {
		return nil, err
	}
	k, err := dict.Float("bias")
	if err != nil {
		return nil, err
	}

	name := displayName(op)
	tr, err := e.builder.CreateTranspose(name, ins[0], nchw2nhwc)
	if err != nil {
		return nil, err
	}
	lrn, err := e.builder.CreateLRN(name, graph.NodeValue{Node: tr}, int(size)/2, alpha, beta, k)
	if err != nil {
		return nil, err
	}
	back, err := e.builder.CreateTranspose(name, graph.NodeValue{Node: lrn}, nhwc2nchw)
	if err != nil {
		return nil, err
	}
	return []graph.NodeValue{{Node: back}}, nil
}

// arithmeticRule builds the rule for one binary arithmetic kind. When the
// format requires broadcasting, the second operand is expanded to the
// first operand's shape at the resolved alignment axis.
func arithmeticRule(kind graph.Kind) RuleFunc {
	return func(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
		ins, err := e.inputs(op, 2)
		if err != nil {
			return nil, err
		}
		name := displayName(op)

		broadcast := true
		if e.opts.Broadcast != nil {
			if broadcast, err = e.opts.Broadcast(dict); err != nil {
				return nil, err
			}
		}

		rhs := ins[1]
		if broadcast {
			var declared int64 = -1
			if dict.Has("axis") {
				if declared, err = dict.Int("axis"); err != nil {
					return nil, err
				}
			}
			axis, err := BroadcastAxis(declared, dict.Has("axis"), len(ins[0].Shape()), len(rhs.Shape()))
			if err != nil {
				return nil, err
			}
			bc, err := e.builder.CreateBroadcast(name, rhs, ins[0].Shape(), axis)
			if err != nil {
				return nil, err
			}
			rhs = graph.NodeValue{Node: bc}
		}

		var node *graph.Node
		switch kind {
		case graph.KindAdd:
			node, err = e.builder.CreateAdd(name, ins[0], rhs)
		case graph.KindSub:
			node, err = e.builder.CreateSub(name, ins[0], rhs)
		case graph.KindMul:
			node, err = e.builder.CreateMul(name, ins[0], rhs)
		case graph.KindDiv:
			node, err = e.builder.CreateDiv(name, ins[0], rhs)
		default:
			return nil, fmt.Errorf("not an arithmetic kind: %s", kind)
		}
		if err != nil {
			return nil, err
		}
		return results(node), nil
	}
}

// lowerSplit partitions the input along an axis, one slice per declared
// output. Each slice is a single-result node, so every output name binds
// to result slot 0 of its respective slice.
func lowerSplit(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}

	declared, err := dict.IntDefault("axis", 0)
	if err != nil {
		return nil, err
	}
	axis, err := NormalizeAxis(int(declared), len(ins[0].Shape()))
	if err != nil {
		return nil, err
	}

	sizes64, err := dict.Shape("split")
	if err != nil {
		return nil, err
	}
	sizes := make([]int, len(sizes64))
	for i, s := range sizes64 {
		sizes[i] = int(s)
	}

	nodes, err := e.builder.CreateSplit(displayName(op), ins[0], len(op.Outputs()), axis, sizes)
	if err != nil {
		return nil, err
	}
	values := make([]graph.NodeValue, len(nodes))
	for i, n := range nodes {
		values[i] = graph.NodeValue{Node: n}
	}
	return values, nil
}

// lowerReshape resolves the target shape from the "shape" attribute, or,
// when that is absent, element-by-element from a second, statically known
// integer tensor input. Both sources go through the same 0 and -1
// resolution. Only the first declared output is bound; the old-shape
// output some formats emit is intentionally dropped.
func lowerReshape(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
	names := op.Inputs()
	if len(names) != 1 && len(names) != 2 {
		return nil, fmt.Errorf("have %d inputs, want 1 or 2: %w", len(names), ErrUnsupportedArity)
	}
	in, err := e.bindings.Resolve(names[0])
	if err != nil {
		return nil, err
	}

	var dims tensor.Shape
	switch {
	case dict.Has("shape"):
		requested, err := dict.Shape("shape")
		if err != nil {
			return nil, err
		}
		if dims, err = InferReshape(requested, in.Shape()); err != nil {
			return nil, err
		}
	case len(names) == 2:
		if e.opts.Tensors == nil {
			return nil, fmt.Errorf("shape tensor %q: no tensor store: %w", names[1], ErrUnknownValue)
		}
		t, ok := e.opts.Tensors.Tensor(names[1])
		if !ok {
			return nil, fmt.Errorf("shape tensor %q: %w", names[1], ErrUnknownValue)
		}
		ints, err := t.Ints()
		if err != nil {
			return nil, fmt.Errorf("shape tensor %q: %w", names[1], err)
		}
		if dims, err = InferReshape(ints, in.Shape()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("attribute %q: %w", "shape", ErrMissingAttribute)
	}

	node, err := e.builder.CreateReshape(displayName(op), in, dims)
	if err != nil {
		return nil, err
	}
	return []graph.NodeValue{{Node: node}}, nil
}

// lowerTranspose reads the permutation from the format's attribute key.
// An absent or empty permutation means full axis reversal.
func lowerTranspose(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}

	perm64, err := dict.Shape(e.opts.PermAttr)
	if err != nil {
		return nil, err
	}
	var perm []int
	if len(perm64) > 0 {
		perm = make([]int, len(perm64))
		for i, p := range perm64 {
			perm[i] = int(p)
		}
	} else {
		rank := len(ins[0].Shape())
		perm = make([]int, rank)
		for i := range perm {
			perm[i] = rank - 1 - i
		}
	}

	node, err := e.builder.CreateTranspose(displayName(op), ins[0], perm)
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

func lowerFlatten(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}
	declared, err := dict.IntDefault("axis", 1)
	if err != nil {
		return nil, err
	}
	axis, err := NormalizeAxis(int(declared), len(ins[0].Shape()))
	if err != nil {
		return nil, err
	}
	node, err := e.builder.CreateFlatten(displayName(op), ins[0], axis)
	if err != nil {
		return nil, err
	}
	return results(node), nil
}

// lowerDropout rebinds the output name to the input value: dropout has no
// effect at inference time and no node is created. The mask output some
// formats declare stays unbound.
func lowerDropout(e *Engine, op Operator, _ AttributeDictionary) ([]graph.NodeValue, error) {
	ins, err := e.inputs(op, 1)
	if err != nil {
		return nil, err
	}
	return []graph.NodeValue{ins[0]}, nil
}
