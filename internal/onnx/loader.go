package onnx

import (
	"errors"
	"fmt"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/lower"
	"github.com/lumen-ml/lumen/internal/store"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// Options configures model loading.
type Options struct {
	// InputShapes supplies or overrides shapes for graph inputs. Required
	// for inputs whose declared dimensions are symbolic ("batch_size").
	InputShapes map[string]tensor.Shape

	// ExtraWeights supplies weights from outside the model file, for
	// example a safetensors checkpoint. They override initializers of
	// the same name.
	ExtraWeights *store.MemStore
}

// Model is a loaded ONNX model: the lowered graph plus its interface
// names and weight store.
type Model struct {
	Graph   *graph.Graph
	Inputs  []string
	Outputs []string
	Weights *store.MemStore

	values map[string]graph.NodeValue
}

// Output returns the graph value bound to a declared output name.
func (m *Model) Output(name string) (graph.NodeValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Load parses an ONNX file and lowers it into a graph.
func Load(path string, opts Options) (*Model, error) {
	proto, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return LoadProto(proto, opts)
}

// LoadBytes parses serialized model bytes and lowers them into a graph.
func LoadBytes(data []byte, opts Options) (*Model, error) {
	proto, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return LoadProto(proto, opts)
}

// LoadProto lowers a parsed model. Operators are dispatched through the
// common engine first; ONNX-specific forms (Identity, Constant) are
// handled here, and anything left is unsupported.
func LoadProto(model *ModelProto, opts Options) (*Model, error) {
	gp := model.Graph
	if gp == nil {
		return nil, errors.New("model has no graph")
	}

	weights := store.NewMemStore()
	for i := range gp.Initializers {
		t, err := rawTensor(&gp.Initializers[i])
		if err != nil {
			return nil, fmt.Errorf("initializer %q: %w", gp.Initializers[i].Name, err)
		}
		weights.Put(gp.Initializers[i].Name, t)
	}
	if opts.ExtraWeights != nil {
		weights.Merge(opts.ExtraWeights)
	}

	// Real exporters re-declare every initializer as a graph input; only
	// the names without a stored tensor are true placeholders.
	declared := make(map[string]graph.Type)
	var inputs []string
	for _, vi := range gp.Inputs {
		if _, ok := weights.Tensor(vi.Name); ok {
			continue
		}
		ty, err := placeholderType(vi, opts.InputShapes[vi.Name])
		if err != nil {
			return nil, err
		}
		declared[vi.Name] = ty
		inputs = append(inputs, vi.Name)
	}

	name := gp.Name
	if name == "" {
		name = "onnx"
	}
	g := graph.NewGraph(name)

	bindings := lower.NewBindings(func(name string) (graph.NodeValue, error) {
		ty, ok := declared[name]
		if !ok {
			t, stored := weights.Tensor(name)
			if !stored {
				return graph.NodeValue{}, fmt.Errorf("no stored tensor or declared input %q", name)
			}
			ty = graph.Type{Dims: t.Shape(), DType: t.DType()}
		}
		n, err := g.CreateVariable(name, ty)
		if err != nil {
			return graph.NodeValue{}, err
		}
		return graph.NodeValue{Node: n}, nil
	})

	engine := lower.New(g, bindings, lower.Options{
		PermAttr:  "perm",
		Broadcast: broadcastGate,
		Tensors:   weights,
	})

	for i := range gp.Nodes {
		node := &gp.Nodes[i]
		handled, err := engine.TryLower(operator{node}, attributes(node))
		if err != nil {
			return nil, err
		}
		if !handled {
			if err := lowerFallback(engine, weights, node); err != nil {
				return nil, err
			}
		}
	}

	m := &Model{
		Graph:   g,
		Inputs:  inputs,
		Weights: weights,
		values:  make(map[string]graph.NodeValue, len(gp.Outputs)),
	}
	for _, vi := range gp.Outputs {
		v, err := bindings.Resolve(vi.Name)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", vi.Name, err)
		}
		m.Outputs = append(m.Outputs, vi.Name)
		m.values[vi.Name] = v
	}
	return m, nil
}

// operator adapts a NodeProto to the engine's view of an operator.
type operator struct {
	n *NodeProto
}

func (o operator) TypeName() string  { return o.n.OpType }
func (o operator) Name() string      { return o.n.Name }
func (o operator) Inputs() []string  { return o.n.Inputs }
func (o operator) Outputs() []string { return o.n.Outputs }

// broadcastGate reads the pre-opset-7 broadcast flag. Modern models omit
// it, and multidirectional broadcast subsumes it, so it defaults on.
func broadcastGate(dict lower.AttributeDictionary) (bool, error) {
	v, err := dict.IntDefault("broadcast", 1)
	return v != 0, err
}

// attributes builds the engine's dictionary from a node's attributes.
// Tensor-valued attributes have no dictionary form; fallback rules read
// those from the node directly.
func attributes(node *NodeProto) lower.AttributeDictionary {
	dict := make(lower.AttributeDictionary, len(node.Attributes))
	for i := range node.Attributes {
		a := &node.Attributes[i]
		switch a.Type {
		case AttrInt:
			dict[a.Name] = lower.IntAttr(a.I)
		case AttrFloat:
			dict[a.Name] = lower.FloatAttr(a.F)
		case AttrString:
			dict[a.Name] = lower.StringAttr(string(a.S))
		case AttrInts:
			dict[a.Name] = lower.ShapeAttr(a.Ints...)
		case AttrUndefined:
			// Old exporters leave the type tag unset.
			switch {
			case len(a.Ints) > 0:
				dict[a.Name] = lower.ShapeAttr(a.Ints...)
			case len(a.S) > 0:
				dict[a.Name] = lower.StringAttr(string(a.S))
			case a.F != 0:
				dict[a.Name] = lower.FloatAttr(a.F)
			default:
				dict[a.Name] = lower.IntAttr(a.I)
			}
		}
	}
	return dict
}

// lowerFallback handles the operator forms specific to ONNX.
func lowerFallback(engine *lower.Engine, weights *store.MemStore, node *NodeProto) error {
	switch node.OpType {
	case "Identity":
		if len(node.Inputs) != 1 || len(node.Outputs) != 1 {
			return fmt.Errorf("node %s (Identity): %w", nodeName(node), lower.ErrUnsupportedArity)
		}
		v, err := engine.Bindings().Resolve(node.Inputs[0])
		if err != nil {
			return fmt.Errorf("node %s (Identity): %w", nodeName(node), err)
		}
		engine.Bindings().Bind(node.Outputs[0], v)
		return nil

	case "Constant":
		if len(node.Outputs) != 1 {
			return fmt.Errorf("node %s (Constant): %w", nodeName(node), lower.ErrUnsupportedArity)
		}
		for i := range node.Attributes {
			a := &node.Attributes[i]
			if a.Name != "value" || a.T == nil {
				continue
			}
			t, err := rawTensor(a.T)
			if err != nil {
				return fmt.Errorf("node %s (Constant): %w", nodeName(node), err)
			}
			// Absorbed into the store; a Variable materializes on first use.
			weights.Put(node.Outputs[0], t)
			return nil
		}
		return fmt.Errorf("node %s (Constant): value: %w", nodeName(node), lower.ErrMissingAttribute)
	}

	return fmt.Errorf("node %s (%s): %w", nodeName(node), node.OpType, lower.ErrUnsupportedOperator)
}

func nodeName(node *NodeProto) string {
	if node.Name != "" {
		return node.Name
	}
	return node.OpType
}

// placeholderType resolves the graph type of a true (non-weight) input.
func placeholderType(vi ValueInfo, override tensor.Shape) (graph.Type, error) {
	dt := tensor.Float32
	if vi.ElemType != 0 {
		var err error
		if dt, err = elemType(vi.ElemType); err != nil {
			return graph.Type{}, fmt.Errorf("input %q: %w", vi.Name, err)
		}
	}
	if override != nil {
		return graph.Type{Dims: override.Clone(), DType: dt}, nil
	}
	if len(vi.Dims) == 0 {
		return graph.Type{Dims: tensor.Shape{1}, DType: dt}, nil
	}
	dims := make(tensor.Shape, len(vi.Dims))
	for i, d := range vi.Dims {
		if d <= 0 {
			return graph.Type{}, fmt.Errorf("input %q has a symbolic dimension; declare its shape", vi.Name)
		}
		dims[i] = int(d)
	}
	return graph.Type{Dims: dims, DType: dt}, nil
}

// rawTensor converts a serialized tensor to its in-memory form.
func rawTensor(t *TensorProto) (*tensor.RawTensor, error) {
	dt, err := elemType(t.DataType)
	if err != nil {
		return nil, err
	}
	shape := make(tensor.Shape, len(t.Dims))
	for i, d := range t.Dims {
		shape[i] = int(d)
	}
	if len(shape) == 0 {
		shape = tensor.Shape{1}
	}

	switch {
	case len(t.RawData) > 0:
		return tensor.NewRawFromBytes(shape, dt, append([]byte(nil), t.RawData...))
	case len(t.FloatData) > 0:
		return tensor.FromFloat32(shape, t.FloatData)
	case len(t.Int64Data) > 0:
		return tensor.FromInt64(shape, t.Int64Data)
	case len(t.Int32Data) > 0:
		r, err := tensor.NewRaw(shape, tensor.Int32)
		if err != nil {
			return nil, err
		}
		if len(t.Int32Data) != r.NumElements() {
			return nil, fmt.Errorf("got %d values for shape %v", len(t.Int32Data), shape)
		}
		copy(r.AsInt32(), t.Int32Data)
		return r, nil
	default:
		// All-zero tensors may serialize without a payload.
		return tensor.NewRaw(shape, dt)
	}
}

func elemType(dt int32) (tensor.DataType, error) {
	switch dt {
	case TensorFloat:
		return tensor.Float32, nil
	case TensorDouble:
		return tensor.Float64, nil
	case TensorInt32:
		return tensor.Int32, nil
	case TensorInt64:
		return tensor.Int64, nil
	case TensorUint8:
		return tensor.Uint8, nil
	case TensorBool:
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("unsupported element type %d", dt)
	}
}
