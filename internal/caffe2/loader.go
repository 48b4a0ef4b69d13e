package caffe2

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
	// InputShapes declares shapes for the predict net's external inputs.
	// NetDefs carry no shape information, so every non-weight input
	// needs an entry.
	InputShapes map[string]tensor.Shape

	// ExtraWeights supplies weights from outside the nets, for example
	// a safetensors checkpoint. They override init-net fills of the
	// same name.
	ExtraWeights *store.MemStore
}

// Model is a loaded Caffe2 model: the lowered graph plus its interface
// names and weight store.
type Model struct {
	Graph   *graph.Graph
	Inputs  []string
	Outputs []string
	Weights *store.MemStore

	values map[string]graph.NodeValue
}

// Output returns the graph value bound to an external output name.
func (m *Model) Output(name string) (graph.NodeValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Load parses a predict net and an optional init net ("" to skip) and
// lowers them into a graph.
func Load(predictPath, initPath string, opts Options) (*Model, error) {
	predict, err := ParseNetFile(predictPath)
	if err != nil {
		return nil, err
	}
	var initNet *NetDef
	if initPath != "" {
		if initNet, err = ParseNetFile(initPath); err != nil {
			return nil, err
		}
	}
	return LoadNets(predict, initNet, opts)
}

// LoadNets lowers a parsed predict net. The init net's fill operators
// are evaluated first to populate the weight store.
func LoadNets(predict, initNet *NetDef, opts Options) (*Model, error) {
	if predict == nil {
		return nil, errors.New("no predict net")
	}

	weights := store.NewMemStore()
	if initNet != nil {
		for i := range initNet.Ops {
			if err := runFill(weights, &initNet.Ops[i]); err != nil {
				return nil, err
			}
		}
	}
	if opts.ExtraWeights != nil {
		weights.Merge(opts.ExtraWeights)
	}

	var inputs []string
	for _, name := range predict.ExternalInputs {
		if _, ok := weights.Tensor(name); ok {
			continue
		}
		if _, ok := opts.InputShapes[name]; !ok {
			return nil, fmt.Errorf("external input %q has no declared shape", name)
		}
		inputs = append(inputs, name)
	}

	name := predict.Name
	if name == "" {
		name = "caffe2"
	}
	g := graph.NewGraph(name)

	bindings := lower.NewBindings(func(name string) (graph.NodeValue, error) {
		var ty graph.Type
		if t, ok := weights.Tensor(name); ok {
			ty = graph.Type{Dims: t.Shape(), DType: t.DType()}
		} else if dims, ok := opts.InputShapes[name]; ok {
			ty = graph.Type{Dims: dims.Clone(), DType: tensor.Float32}
		} else {
			return graph.NodeValue{}, fmt.Errorf("no stored tensor or declared input %q", name)
		}
		n, err := g.CreateVariable(name, ty)
		if err != nil {
			return graph.NodeValue{}, err
		}
		return graph.NodeValue{Node: n}, nil
	})

	engine := lower.New(g, bindings, lower.Options{
		PermAttr:  "axes",
		Broadcast: broadcastGate,
		Tensors:   weights,
	})

	for i := range predict.Ops {
		op := &predict.Ops[i]
		handled, err := engine.TryLower(operator{op}, arguments(op))
		if err != nil {
			return nil, err
		}
		if !handled {
			if err := lowerFallback(engine, op); err != nil {
				return nil, err
			}
		}
	}

	m := &Model{
		Graph:   g,
		Inputs:  inputs,
		Weights: weights,
		values:  make(map[string]graph.NodeValue, len(predict.ExternalOutputs)),
	}
	for _, out := range predict.ExternalOutputs {
		v, err := bindings.Resolve(out)
		if err != nil {
			return nil, fmt.Errorf("external output %q: %w", out, err)
		}
		m.Outputs = append(m.Outputs, out)
		m.values[out] = v
	}
	return m, nil
}

// operator adapts an OperatorDef to the engine's view of an operator.
type operator struct {
	op *OperatorDef
}

func (o operator) TypeName() string  { return o.op.Type }
func (o operator) Name() string      { return o.op.Name }
func (o operator) Inputs() []string  { return o.op.Inputs }
func (o operator) Outputs() []string { return o.op.Outputs }

// broadcastGate reads the Caffe2 broadcast argument. Unlike ONNX,
// arithmetic only broadcasts when a node opts in.
func broadcastGate(dict lower.AttributeDictionary) (bool, error) {
	v, err := dict.IntDefault("broadcast", 0)
	return v != 0, err
}

// arguments builds the engine's dictionary from an operator's args,
// classifying each by which field its writer populated.
func arguments(op *OperatorDef) lower.AttributeDictionary {
	dict := make(lower.AttributeDictionary, len(op.Args))
	for i := range op.Args {
		a := &op.Args[i]
		switch {
		case len(a.Ints) > 0:
			dict[a.Name] = lower.ShapeAttr(a.Ints...)
		case len(a.S) > 0:
			dict[a.Name] = lower.StringAttr(string(a.S))
		case a.HasF:
			dict[a.Name] = lower.FloatAttr(a.F)
		case a.HasI:
			dict[a.Name] = lower.IntAttr(a.I)
		}
	}
	return dict
}

// lowerFallback handles the pass-through operator forms specific to
// Caffe2.
func lowerFallback(engine *lower.Engine, op *OperatorDef) error {
	switch op.Type {
	case "Copy", "Alias", "StopGradient":
		if len(op.Inputs) != 1 || len(op.Outputs) != 1 {
			return fmt.Errorf("op %s (%s): %w", opName(op), op.Type, lower.ErrUnsupportedArity)
		}
		v, err := engine.Bindings().Resolve(op.Inputs[0])
		if err != nil {
			return fmt.Errorf("op %s (%s): %w", opName(op), op.Type, err)
		}
		engine.Bindings().Bind(op.Outputs[0], v)
		return nil
	}
	return fmt.Errorf("op %s (%s): %w", opName(op), op.Type, lower.ErrUnsupportedOperator)
}

func opName(op *OperatorDef) string {
	if op.Name != "" {
		return op.Name
	}
	return op.Type
}

// runFill evaluates one init-net fill operator into the weight store.
func runFill(weights *store.MemStore, op *OperatorDef) error {
	if len(op.Outputs) != 1 {
		return fmt.Errorf("fill %s (%s): %w", opName(op), op.Type, lower.ErrUnsupportedArity)
	}
	args := arguments(op)
	dims, err := args.Shape("shape")
	if err != nil {
		return fmt.Errorf("fill %s (%s): %w", opName(op), op.Type, err)
	}
	shape := make(tensor.Shape, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	if len(shape) == 0 {
		shape = tensor.Shape{1}
	}

	var t *tensor.RawTensor
	switch op.Type {
	case "GivenTensorFill":
		t, err = tensor.FromFloat32(shape, floatValues(op))
	case "GivenTensorIntFill":
		t, err = int32Tensor(shape, intValues(op))
	case "GivenTensorInt64Fill":
		t, err = tensor.FromInt64(shape, intValues(op))
	case "ConstantFill":
		value, ferr := args.FloatDefault("value", 0)
		if ferr != nil {
			return fmt.Errorf("fill %s (%s): %w", opName(op), op.Type, ferr)
		}
		if t, err = tensor.NewRaw(shape, tensor.Float32); err == nil {
			data := t.AsFloat32()
			for i := range data {
				data[i] = value
			}
		}
	case "XavierFill", "UniformFill", "GaussianFill":
		// Training-time initializers; only the shape matters here.
		t, err = tensor.NewRaw(shape, tensor.Float32)
	default:
		return fmt.Errorf("fill %s (%s): %w", opName(op), op.Type, lower.ErrUnsupportedOperator)
	}
	if err != nil {
		return fmt.Errorf("fill %s (%s): %w", opName(op), op.Type, err)
	}

	weights.Put(op.Outputs[0], t)
	return nil
}

func floatValues(op *OperatorDef) []float32 {
	for i := range op.Args {
		if op.Args[i].Name == "values" {
			return op.Args[i].Floats
		}
	}
	return nil
}

func intValues(op *OperatorDef) []int64 {
	for i := range op.Args {
		if op.Args[i].Name == "values" {
			return op.Args[i].Ints
		}
	}
	return nil
}

func int32Tensor(shape tensor.Shape, values []int64) (*tensor.RawTensor, error) {
	t, err := tensor.NewRaw(shape, tensor.Int32)
	if err != nil {
		return nil, err
	}
	if len(values) != t.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v", len(values), shape)
	}
	dst := t.AsInt32()
	for i, v := range values {
		dst[i] = int32(v) //nolint:gosec // G115: fill values are declared int32 by the writer.
	}
	return t, nil
}
