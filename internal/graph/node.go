package graph

import "github.com/lumen-ml/lumen/internal/tensor"

// Kind identifies the operation performed by a node.
type Kind int

// Node kinds understood by the builder.
const (
	KindVariable Kind = iota
	KindRelu
	KindSigmoid
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindSoftMax
	KindLRN
	KindBroadcast
	KindReshape
	KindTranspose
	KindFlatten
	KindSlice
)

// String returns the dump name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindRelu:
		return "Relu"
	case KindSigmoid:
		return "Sigmoid"
	case KindAdd:
		return "Add"
	case KindSub:
		return "Sub"
	case KindMul:
		return "Mul"
	case KindDiv:
		return "Div"
	case KindSoftMax:
		return "SoftMax"
	case KindLRN:
		return "LRN"
	case KindBroadcast:
		return "Broadcast"
	case KindReshape:
		return "Reshape"
	case KindTranspose:
		return "Transpose"
	case KindFlatten:
		return "Flatten"
	case KindSlice:
		return "Slice"
	default:
		return "Unknown"
	}
}

// Type describes one result of a node: its dimensions and element type.
type Type struct {
	Dims  tensor.Shape
	DType tensor.DataType
}

// Equal checks if two types are identical.
func (t Type) Equal(other Type) bool {
	return t.DType == other.DType && t.Dims.Equal(other.Dims)
}

// Node is a single operation in the dataflow graph. Nodes are created
// through the Graph's Create methods and are immutable afterwards.
type Node struct {
	kind    Kind
	name    string
	inputs  []NodeValue
	results []Type

	// Kind-specific parameters, valid only for the kinds that set them.
	axis  int     // Flatten, Broadcast
	perm  []int   // Transpose
	start []int   // Slice offsets, one per dimension
	size  int     // LRN half window
	alpha float32 // LRN
	beta  float32 // LRN
	k     float32 // LRN bias
}

// Kind returns the node's operation kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the node's unique display name.
func (n *Node) Name() string { return n.name }

// Inputs returns the node's input values.
func (n *Node) Inputs() []NodeValue { return n.inputs }

// NumResults returns how many result slots the node produces.
func (n *Node) NumResults() int { return len(n.results) }

// ResultType returns the type of result slot res.
func (n *Node) ResultType(res int) Type { return n.results[res] }

// NodeValue references one result slot of one node. Two NodeValues are
// equal iff they reference the same node and the same slot.
type NodeValue struct {
	Node *Node
	Res  int
}

// Type returns the type of the referenced result.
func (nv NodeValue) Type() Type {
	return nv.Node.ResultType(nv.Res)
}

// Shape returns the dimensions of the referenced result.
func (nv NodeValue) Shape() tensor.Shape {
	return nv.Type().Dims
}

// DType returns the element type of the referenced result.
func (nv NodeValue) DType() tensor.DataType {
	return nv.Type().DType
}

// IsValid reports whether the value references a node at all.
func (nv NodeValue) IsValid() bool {
	return nv.Node != nil
}
