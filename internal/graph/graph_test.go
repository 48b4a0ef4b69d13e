package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/tensor"
)

func variable(t *testing.T, g *Graph, name string, dims ...int) NodeValue {
	t.Helper()
	n, err := g.CreateVariable(name, Type{Dims: dims, DType: tensor.Float32})
	require.NoError(t, err)
	return NodeValue{Node: n, Res: 0}
}

func TestUniqueNames(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 2, 3)
	a, err := g.CreateRelu("relu", in)
	require.NoError(t, err)
	b, err := g.CreateRelu("relu", in)
	require.NoError(t, err)
	c, err := g.CreateRelu("relu", in)
	require.NoError(t, err)

	assert.Equal(t, "relu", a.Name())
	assert.Equal(t, "relu_1", b.Name())
	assert.Equal(t, "relu_2", c.Name())
}

func TestBinaryShapeMismatch(t *testing.T) {
	g := NewGraph("test")

	lhs := variable(t, g, "lhs", 2, 3)
	rhs := variable(t, g, "rhs", 2, 4)

	_, err := g.CreateAdd("add", lhs, rhs)
	assert.Error(t, err)

	same := variable(t, g, "same", 2, 3)
	n, err := g.CreateAdd("add", lhs, same)
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{2, 3}))
}

func TestCreateBroadcast(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 3, 1)
	n, err := g.CreateBroadcast("bc", in, tensor.Shape{2, 3, 4}, 1)
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{2, 3, 4}))

	// Aligned dimension neither matching nor 1.
	bad := variable(t, g, "bad", 5)
	_, err = g.CreateBroadcast("bc", bad, tensor.Shape{2, 3}, 1)
	assert.Error(t, err)

	// Axis pushes the input outside the target rank.
	_, err = g.CreateBroadcast("bc", in, tensor.Shape{2, 3, 4}, 2)
	assert.Error(t, err)
}

func TestCreateReshape(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 2, 3, 4)
	n, err := g.CreateReshape("rs", in, tensor.Shape{6, 4})
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{6, 4}))

	_, err = g.CreateReshape("rs", in, tensor.Shape{5, 5})
	assert.Error(t, err, "element count mismatch must be rejected")

	_, err = g.CreateReshape("rs", in, tensor.Shape{-1, 4})
	assert.Error(t, err, "wildcards must be resolved before reaching the builder")
}

func TestCreateTranspose(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 2, 3, 4)
	n, err := g.CreateTranspose("tr", in, []int{2, 0, 1})
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{4, 2, 3}))

	_, err = g.CreateTranspose("tr", in, []int{0, 1})
	assert.Error(t, err)

	_, err = g.CreateTranspose("tr", in, []int{0, 0, 1})
	assert.Error(t, err)
}

func TestCreateFlatten(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 2, 3, 4)
	n, err := g.CreateFlatten("fl", in, 1)
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{2, 12}))

	n, err = g.CreateFlatten("fl", in, 0)
	require.NoError(t, err)
	assert.True(t, n.ResultType(0).Dims.Equal(tensor.Shape{1, 24}))
}

func TestCreateSplitEven(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 9, 2)
	outs, err := g.CreateSplit("sp", in, 3, 0, nil)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	total := 0
	for _, out := range outs {
		assert.Equal(t, KindSlice, out.Kind())
		total += out.ResultType(0).Dims[0]
	}
	assert.Equal(t, 9, total, "split pieces must cover the axis extent")
}

func TestCreateSplitRemainder(t *testing.T) {
	g := NewGraph("test")

	// 10 into 3 pieces: remainder goes to the last piece.
	in := variable(t, g, "in", 10)
	outs, err := g.CreateSplit("sp", in, 3, 0, nil)
	require.NoError(t, err)
	require.Len(t, outs, 3)
	assert.Equal(t, 3, outs[0].ResultType(0).Dims[0])
	assert.Equal(t, 3, outs[1].ResultType(0).Dims[0])
	assert.Equal(t, 4, outs[2].ResultType(0).Dims[0])
}

func TestCreateSplitExplicitSizes(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 9)
	outs, err := g.CreateSplit("sp", in, 3, 0, []int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, outs[0].ResultType(0).Dims[0])
	assert.Equal(t, 3, outs[1].ResultType(0).Dims[0])
	assert.Equal(t, 4, outs[2].ResultType(0).Dims[0])

	_, err = g.CreateSplit("sp", in, 3, 0, []int{2, 3, 5})
	assert.Error(t, err, "sizes not summing to the extent must be rejected")

	_, err = g.CreateSplit("sp", in, 2, 0, []int{2, 3, 4})
	assert.Error(t, err, "size count must match output count")
}

func TestNodeValueEquality(t *testing.T) {
	g := NewGraph("test")

	in := variable(t, g, "in", 4)
	a := NodeValue{Node: in.Node, Res: 0}
	b := NodeValue{Node: in.Node, Res: 0}
	assert.Equal(t, a, b)

	other := variable(t, g, "other", 4)
	assert.NotEqual(t, a, other)
}
