package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/lower"
	"github.com/lumen-ml/lumen/internal/tensor"
)

// addReluModel builds t2 = Identity(Relu(X + B)) with B a stored weight
// broadcast over X.
func addReluModel() []byte {
	var e enc
	e.int(1, 8)
	e.msg(7, func(g *enc) {
		g.str(2, "add_relu")
		g.floatInitializer(5, "B", []int64{4, 5}, make([]float32, 20))
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(1, "B")
			n.str(2, "t0")
			n.str(4, "Add")
		})
		g.msg(1, func(n *enc) {
			n.str(1, "t0")
			n.str(2, "t1")
			n.str(4, "Relu")
		})
		g.msg(1, func(n *enc) {
			n.str(1, "t1")
			n.str(2, "t2")
			n.str(4, "Identity")
		})
		g.valueInfo(11, "X", TensorFloat, []int64{2, 3, 4, 5})
		g.valueInfo(11, "B", TensorFloat, []int64{4, 5})
		g.valueInfo(12, "t2", TensorFloat, []int64{2, 3, 4, 5})
	})
	return e.b
}

func TestLoadAddRelu(t *testing.T) {
	m, err := LoadBytes(addReluModel(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "add_relu", m.Graph.Name())
	assert.Equal(t, []string{"X"}, m.Inputs, "stored weights are not placeholders")
	assert.Equal(t, []string{"t2"}, m.Outputs)

	out, ok := m.Output("t2")
	require.True(t, ok)
	assert.Equal(t, graph.KindRelu, out.Node.Kind(), "Identity rebinds without a node")
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3, 4, 5}))

	add := out.Node.Inputs()[0].Node
	require.Equal(t, graph.KindAdd, add.Kind())
	assert.Equal(t, graph.KindBroadcast, add.Inputs()[1].Node.Kind(),
		"the lower-rank operand is expanded to the full shape")

	_, ok = m.Weights.Tensor("B")
	assert.True(t, ok)
}

func TestLoadConstantFeedsReshape(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.str(2, "const_reshape")
		g.msg(1, func(n *enc) {
			n.str(2, "shape")
			n.str(4, "Constant")
			n.msg(5, func(a *enc) {
				a.str(1, "value")
				a.int(20, AttrTensor)
				a.msg(5, func(tp *enc) {
					tp.int(1, 2)
					tp.int(2, TensorInt64)
					tp.packedInts(7, []int64{6, 4})
				})
			})
		})
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(1, "shape")
			n.str(2, "Y")
			n.str(4, "Reshape")
		})
		g.valueInfo(11, "X", TensorFloat, []int64{2, 3, 4})
		g.valueInfo(12, "Y", TensorFloat, []int64{6, 4})
	})

	m, err := LoadBytes(e.b, Options{})
	require.NoError(t, err)

	out, ok := m.Output("Y")
	require.True(t, ok)
	assert.Equal(t, graph.KindReshape, out.Node.Kind())
	assert.True(t, out.Shape().Equal(tensor.Shape{6, 4}))
}

func TestLoadUnsupportedOperator(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(2, "Y")
			n.str(3, "pool1")
			n.str(4, "MaxPool")
		})
		g.valueInfo(11, "X", TensorFloat, []int64{1, 3, 8, 8})
		g.valueInfo(12, "Y", TensorFloat, []int64{1, 3, 4, 4})
	})

	_, err := LoadBytes(e.b, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, lower.ErrUnsupportedOperator)
	assert.Contains(t, err.Error(), "pool1")
	assert.Contains(t, err.Error(), "MaxPool")
}

func TestLoadSymbolicInputNeedsShape(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(2, "Y")
			n.str(4, "Relu")
		})
		g.valueInfo(11, "X", TensorFloat, []int64{-1, 784})
		g.valueInfo(12, "Y", TensorFloat, []int64{-1, 784})
	})

	_, err := LoadBytes(e.b, Options{})
	require.Error(t, err, "symbolic batch dimension with no declared shape")

	m, err := LoadBytes(e.b, Options{
		InputShapes: map[string]tensor.Shape{"X": {32, 784}},
	})
	require.NoError(t, err)
	out, _ := m.Output("Y")
	assert.True(t, out.Shape().Equal(tensor.Shape{32, 784}))
}

func TestLoadBroadcastGate(t *testing.T) {
	// Pre-opset-7 models can disable broadcast per node; equal shapes
	// then lower without a Broadcast node.
	var e enc
	e.msg(7, func(g *enc) {
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(1, "Y")
			n.str(2, "Z")
			n.str(4, "Mul")
			n.msg(5, func(a *enc) {
				a.str(1, "broadcast")
				a.int(20, AttrInt)
				a.int(3, 0)
			})
		})
		g.valueInfo(11, "X", TensorFloat, []int64{2, 3})
		g.valueInfo(11, "Y", TensorFloat, []int64{2, 3})
		g.valueInfo(12, "Z", TensorFloat, []int64{2, 3})
	})

	m, err := LoadBytes(e.b, Options{})
	require.NoError(t, err)
	for _, n := range m.Graph.Nodes() {
		assert.NotEqual(t, graph.KindBroadcast, n.Kind())
	}
}

func TestLoadNoGraph(t *testing.T) {
	_, err := LoadProto(&ModelProto{}, Options{})
	assert.Error(t, err)
}

func TestAttributeDictionaryConstruction(t *testing.T) {
	node := &NodeProto{
		OpType: "Transpose",
		Attributes: []AttributeProto{
			{Name: "perm", Type: AttrInts, Ints: []int64{1, 0}},
			{Name: "axis", Type: AttrInt, I: 1},
			{Name: "mode", Type: AttrString, S: []byte("constant")},
			{Name: "untyped", Type: AttrUndefined, Ints: []int64{2, 2}},
		},
	}

	dict := attributes(node)

	perm, err := dict.Shape("perm")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 0}, perm)

	axis, err := dict.Int("axis")
	require.NoError(t, err)
	assert.Equal(t, int64(1), axis)

	mode, err := dict.Str("mode")
	require.NoError(t, err)
	assert.Equal(t, "constant", mode)

	untyped, err := dict.Shape("untyped")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2}, untyped, "untagged attributes infer from populated fields")
}
