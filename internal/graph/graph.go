package graph

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// Graph is a dataflow graph under construction. It acts as the builder for
// all node kinds: each Create method validates its operands, computes the
// result types and appends a new immutable node.
//
// A Graph is not safe for concurrent use; one lowering pass owns one Graph.
type Graph struct {
	name  string
	nodes []*Node
	names map[string]int
}

// NewGraph creates an empty graph with the given display name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		names: make(map[string]int),
	}
}

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeCount returns the number of nodes created so far.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// uniqueName derives a graph-unique node name from base. The first use of
// a base keeps it verbatim; later uses get a numeric suffix. Deterministic
// for a fixed creation order.
func (g *Graph) uniqueName(base string, kind Kind) string {
	if base == "" {
		base = kind.String()
	}
	n, seen := g.names[base]
	g.names[base] = n + 1
	if !seen {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

func (g *Graph) add(n *Node) *Node {
	g.nodes = append(g.nodes, n)
	return n
}

// CreateVariable creates a node representing an externally supplied value
// (a graph input or a weight).
func (g *Graph) CreateVariable(name string, ty Type) (*Node, error) {
	if err := ty.Dims.Validate(); err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return g.add(&Node{
		kind:    KindVariable,
		name:    g.uniqueName(name, KindVariable),
		results: []Type{ty},
	}), nil
}

// CreateRelu creates a rectifier activation node.
func (g *Graph) CreateRelu(name string, in NodeValue) (*Node, error) {
	return g.createUnary(KindRelu, name, in)
}

// CreateSigmoid creates a logistic activation node.
func (g *Graph) CreateSigmoid(name string, in NodeValue) (*Node, error) {
	return g.createUnary(KindSigmoid, name, in)
}

func (g *Graph) createUnary(kind Kind, name string, in NodeValue) (*Node, error) {
	return g.add(&Node{
		kind:    kind,
		name:    g.uniqueName(name, kind),
		inputs:  []NodeValue{in},
		results: []Type{in.Type()},
	}), nil
}

// CreateAdd creates an elementwise addition node.
func (g *Graph) CreateAdd(name string, lhs, rhs NodeValue) (*Node, error) {
	return g.createBinary(KindAdd, name, lhs, rhs)
}

// CreateSub creates an elementwise subtraction node.
func (g *Graph) CreateSub(name string, lhs, rhs NodeValue) (*Node, error) {
	return g.createBinary(KindSub, name, lhs, rhs)
}

// CreateMul creates an elementwise multiplication node.
func (g *Graph) CreateMul(name string, lhs, rhs NodeValue) (*Node, error) {
	return g.createBinary(KindMul, name, lhs, rhs)
}

// CreateDiv creates an elementwise division node.
func (g *Graph) CreateDiv(name string, lhs, rhs NodeValue) (*Node, error) {
	return g.createBinary(KindDiv, name, lhs, rhs)
}

func (g *Graph) createBinary(kind Kind, name string, lhs, rhs NodeValue) (*Node, error) {
	if !lhs.Shape().Equal(rhs.Shape()) {
		return nil, fmt.Errorf("%s %q: operand shapes %v and %v do not match",
			kind, name, lhs.Shape(), rhs.Shape())
	}
	return g.add(&Node{
		kind:    kind,
		name:    g.uniqueName(name, kind),
		inputs:  []NodeValue{lhs, rhs},
		results: []Type{lhs.Type()},
	}), nil
}

// CreateSoftMax creates a normalized-exponential node over the last axis
// of a rank-2 input.
func (g *Graph) CreateSoftMax(name string, in NodeValue) (*Node, error) {
	if len(in.Shape()) != 2 {
		return nil, fmt.Errorf("softmax %q: input must be rank 2, got %v", name, in.Shape())
	}
	return g.add(&Node{
		kind:    KindSoftMax,
		name:    g.uniqueName(name, KindSoftMax),
		inputs:  []NodeValue{in},
		results: []Type{in.Type()},
	}), nil
}

// CreateLRN creates a local response normalization node over a
// channel-last (NHWC) rank-4 input. halfWindow is the per-side window
// extent; k is the additive bias.
func (g *Graph) CreateLRN(name string, in NodeValue, halfWindow int, alpha, beta, k float32) (*Node, error) {
	if len(in.Shape()) != 4 {
		return nil, fmt.Errorf("lrn %q: input must be rank 4, got %v", name, in.Shape())
	}
	return g.add(&Node{
		kind:    KindLRN,
		name:    g.uniqueName(name, KindLRN),
		inputs:  []NodeValue{in},
		results: []Type{in.Type()},
		size:    halfWindow,
		alpha:   alpha,
		beta:    beta,
		k:       k,
	}), nil
}

// CreateBroadcast creates a node expanding in to the target shape, with
// in's dimensions aligned starting at axis. Each aligned dimension must
// either match the target or be 1.
func (g *Graph) CreateBroadcast(name string, in NodeValue, target tensor.Shape, axis int) (*Node, error) {
	dims := in.Shape()
	if axis < 0 || axis+len(dims) > len(target) {
		return nil, fmt.Errorf("broadcast %q: axis %d places shape %v outside target %v",
			name, axis, dims, target)
	}
	for i, d := range dims {
		if t := target[axis+i]; d != t && d != 1 {
			return nil, fmt.Errorf("broadcast %q: dimension %d (%d) incompatible with target %d",
				name, i, d, t)
		}
	}
	return g.add(&Node{
		kind:    KindBroadcast,
		name:    g.uniqueName(name, KindBroadcast),
		inputs:  []NodeValue{in},
		results: []Type{{Dims: target.Clone(), DType: in.DType()}},
		axis:    axis,
	}), nil
}

// CreateReshape creates a node reinterpreting in with new dimensions.
// The element count must be preserved.
func (g *Graph) CreateReshape(name string, in NodeValue, dims tensor.Shape) (*Node, error) {
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("reshape %q: %w", name, err)
	}
	if dims.NumElements() != in.Shape().NumElements() {
		return nil, fmt.Errorf("reshape %q: %v has %d elements, input %v has %d",
			name, dims, dims.NumElements(), in.Shape(), in.Shape().NumElements())
	}
	return g.add(&Node{
		kind:    KindReshape,
		name:    g.uniqueName(name, KindReshape),
		inputs:  []NodeValue{in},
		results: []Type{{Dims: dims.Clone(), DType: in.DType()}},
	}), nil
}

// CreateTranspose creates a node permuting in's dimensions by perm.
func (g *Graph) CreateTranspose(name string, in NodeValue, perm []int) (*Node, error) {
	dims := in.Shape()
	if len(perm) != len(dims) {
		return nil, fmt.Errorf("transpose %q: permutation %v does not cover rank %d",
			name, perm, len(dims))
	}
	seen := make([]bool, len(dims))
	out := make(tensor.Shape, len(dims))
	for i, p := range perm {
		if p < 0 || p >= len(dims) || seen[p] {
			return nil, fmt.Errorf("transpose %q: invalid permutation %v", name, perm)
		}
		seen[p] = true
		out[i] = dims[p]
	}
	return g.add(&Node{
		kind:    KindTranspose,
		name:    g.uniqueName(name, KindTranspose),
		inputs:  []NodeValue{in},
		results: []Type{{Dims: out, DType: in.DType()}},
		perm:    append([]int(nil), perm...),
	}), nil
}

// CreateFlatten creates a node collapsing in to rank 2: dimensions before
// axis form the first output dimension, the rest form the second.
func (g *Graph) CreateFlatten(name string, in NodeValue, axis int) (*Node, error) {
	dims := in.Shape()
	if axis < 0 || axis > len(dims) {
		return nil, fmt.Errorf("flatten %q: axis %d out of range for shape %v", name, axis, dims)
	}
	lead, trail := 1, 1
	for _, d := range dims[:axis] {
		lead *= d
	}
	for _, d := range dims[axis:] {
		trail *= d
	}
	return g.add(&Node{
		kind:    KindFlatten,
		name:    g.uniqueName(name, KindFlatten),
		inputs:  []NodeValue{in},
		results: []Type{{Dims: tensor.Shape{lead, trail}, DType: in.DType()}},
		axis:    axis,
	}), nil
}

// CreateSplit partitions in along axis into numOutputs slice nodes and
// returns them in order. When sizes is empty the axis extent is divided
// evenly; a remainder that does not divide goes to the last piece. When
// sizes is given it must have numOutputs entries summing to the extent.
func (g *Graph) CreateSplit(name string, in NodeValue, numOutputs, axis int, sizes []int) ([]*Node, error) {
	dims := in.Shape()
	if axis < 0 || axis >= len(dims) {
		return nil, fmt.Errorf("split %q: axis %d out of range for shape %v", name, axis, dims)
	}
	if numOutputs < 1 {
		return nil, fmt.Errorf("split %q: needs at least one output, got %d", name, numOutputs)
	}
	extent := dims[axis]

	if len(sizes) == 0 {
		base := extent / numOutputs
		if base == 0 {
			return nil, fmt.Errorf("split %q: cannot divide extent %d into %d pieces",
				name, extent, numOutputs)
		}
		sizes = make([]int, numOutputs)
		for i := range sizes {
			sizes[i] = base
		}
		sizes[numOutputs-1] += extent % numOutputs
	} else {
		if len(sizes) != numOutputs {
			return nil, fmt.Errorf("split %q: %d sizes for %d outputs", name, len(sizes), numOutputs)
		}
		total := 0
		for _, s := range sizes {
			total += s
		}
		if total != extent {
			return nil, fmt.Errorf("split %q: sizes %v sum to %d, axis extent is %d",
				name, sizes, total, extent)
		}
	}

	outputs := make([]*Node, 0, numOutputs)
	offset := 0
	for _, size := range sizes {
		start := make([]int, len(dims))
		start[axis] = offset
		out := dims.Clone()
		out[axis] = size
		outputs = append(outputs, g.add(&Node{
			kind:    KindSlice,
			name:    g.uniqueName(name, KindSlice),
			inputs:  []NodeValue{in},
			results: []Type{{Dims: out, DType: in.DType()}},
			axis:    axis,
			start:   start,
		}))
		offset += size
	}
	return outputs, nil
}
