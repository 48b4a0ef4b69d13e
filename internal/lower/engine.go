package lower

import (
	"fmt"
	"sort"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/store"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// Operator is the capability the engine needs from one serialized
// operator, implemented once per source format as a thin adapter.
type Operator interface {
	// TypeName is the operator's type, e.g. "Relu" or "Reshape".
	TypeName() string
	// Name is the operator's own name; may be empty.
	Name() string
	// Inputs are the declared input value names, in order.
	Inputs() []string
	// Outputs are the declared output value names, in order.
	Outputs() []string
}

// Builder is the graph construction surface the engine lowers onto,
// satisfied by *graph.Graph.
type Builder interface {
	CreateRelu(name string, in graph.NodeValue) (*graph.Node, error)
	CreateSigmoid(name string, in graph.NodeValue) (*graph.Node, error)
	CreateAdd(name string, lhs, rhs graph.NodeValue) (*graph.Node, error)
	CreateSub(name string, lhs, rhs graph.NodeValue) (*graph.Node, error)
	CreateMul(name string, lhs, rhs graph.NodeValue) (*graph.Node, error)
	CreateDiv(name string, lhs, rhs graph.NodeValue) (*graph.Node, error)
	CreateSoftMax(name string, in graph.NodeValue) (*graph.Node, error)
	CreateLRN(name string, in graph.NodeValue, halfWindow int, alpha, beta, k float32) (*graph.Node, error)
	CreateBroadcast(name string, in graph.NodeValue, target tensor.Shape, axis int) (*graph.Node, error)
	CreateReshape(name string, in graph.NodeValue, dims tensor.Shape) (*graph.Node, error)
	CreateTranspose(name string, in graph.NodeValue, perm []int) (*graph.Node, error)
	CreateFlatten(name string, in graph.NodeValue, axis int) (*graph.Node, error)
	CreateSplit(name string, in graph.NodeValue, numOutputs, axis int, sizes []int) ([]*graph.Node, error)
}

// Options carries the per-format knobs of the common engine.
type Options struct {
	// PermAttr is the attribute key holding the Transpose permutation.
	// ONNX calls it "perm", Caffe2 calls it "axes". Defaults to "perm".
	PermAttr string

	// Broadcast decides whether an arithmetic operator requires broadcast
	// materialization of its second operand. Nil means always required.
	Broadcast func(dict AttributeDictionary) (bool, error)

	// Tensors resolves statically known tensors, consulted when Reshape
	// reads its target shape from a tensor input.
	Tensors store.Store
}

// RuleFunc lowers one operator and returns its produced values in output
// order. Rules never write to the binding table themselves; the engine
// maps the returned sequence onto the operator's declared output names.
type RuleFunc func(e *Engine, op Operator, dict AttributeDictionary) ([]graph.NodeValue, error)

// Engine lowers serialized operators common to all source formats onto a
// graph builder. It owns nothing shared: builder and binding table are
// injected and scoped to one lowering pass.
type Engine struct {
	builder  Builder
	bindings *Bindings
	opts     Options
	rules    map[string]RuleFunc
}

// New creates an engine over the given builder and binding table.
func New(builder Builder, bindings *Bindings, opts Options) *Engine {
	if opts.PermAttr == "" {
		opts.PermAttr = "perm"
	}
	e := &Engine{
		builder:  builder,
		bindings: bindings,
		opts:     opts,
	}
	e.rules = map[string]RuleFunc{
		"Relu":      lowerRelu,
		"Sigmoid":   lowerSigmoid,
		"Sum":       lowerSum,
		"Softmax":   lowerSoftmax,
		"LRN":       lowerLRN,
		"Add":       arithmeticRule(graph.KindAdd),
		"Sub":       arithmeticRule(graph.KindSub),
		"Mul":       arithmeticRule(graph.KindMul),
		"Div":       arithmeticRule(graph.KindDiv),
		"Split":     lowerSplit,
		"Reshape":   lowerReshape,
		"Transpose": lowerTranspose,
		"Flatten":   lowerFlatten,
		"Dropout":   lowerDropout,
	}
	return e
}

// Bindings returns the engine's value binding table.
func (e *Engine) Bindings() *Bindings {
	return e.bindings
}

// Supported returns the sorted operator type names this engine lowers.
func (e *Engine) Supported() []string {
	types := make([]string, 0, len(e.rules))
	for name := range e.rules {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// TryLower lowers op if its type is recognized, binding the produced
// values to the operator's declared output names. It returns false, and
// performs no graph mutation, for unrecognized types so the caller may
// attempt format-specific rules. A rule failure aborts the pass: nothing
// is bound and the partially built graph must be discarded.
func (e *Engine) TryLower(op Operator, dict AttributeDictionary) (bool, error) {
	rule, ok := e.rules[op.TypeName()]
	if !ok {
		return false, nil
	}

	values, err := rule(e, op, dict)
	if err != nil {
		return true, fmt.Errorf("node %s (%s): %w", displayName(op), op.TypeName(), err)
	}

	e.bindOutputs(op, values)
	return true, nil
}

// bindOutputs maps produced values onto declared output names in order.
// A rule may return fewer values than the operator declares; the extra
// declared outputs stay unbound (secondary outputs some formats emit).
func (e *Engine) bindOutputs(op Operator, values []graph.NodeValue) {
	outputs := op.Outputs()
	for i, v := range values {
		if i < len(outputs) {
			e.bindings.Bind(outputs[i], v)
		}
	}
}

// inputs resolves the operator's declared inputs. want constrains the
// declared input count; pass a negative want to accept any arity.
func (e *Engine) inputs(op Operator, want int) ([]graph.NodeValue, error) {
	names := op.Inputs()
	if want >= 0 && len(names) != want {
		return nil, fmt.Errorf("have %d inputs, want %d: %w", len(names), want, ErrUnsupportedArity)
	}
	values := make([]graph.NodeValue, len(names))
	for i, name := range names {
		v, err := e.bindings.Resolve(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// displayName derives the deterministic diagnostic name for an operator:
// its own name when present, its type name otherwise.
func displayName(op Operator) string {
	if name := op.Name(); name != "" {
		return name
	}
	return op.TypeName()
}

// results returns one NodeValue per result slot of node, in slot order.
func results(node *graph.Node) []graph.NodeValue {
	values := make([]graph.NodeValue, node.NumResults())
	for i := range values {
		values[i] = graph.NodeValue{Node: node, Res: i}
	}
	return values
}
