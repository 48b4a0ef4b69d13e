package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/graph"
	"github.com/lumen-ml/lumen/internal/tensor"
)

func testValue(t *testing.T, g *graph.Graph, name string) graph.NodeValue {
	t.Helper()
	n, err := g.CreateVariable(name, graph.Type{Dims: tensor.Shape{1}, DType: tensor.Float32})
	require.NoError(t, err)
	return graph.NodeValue{Node: n}
}

func TestBindResolve(t *testing.T) {
	g := graph.NewGraph("test")
	b := NewBindings(nil)

	v := testValue(t, g, "v")
	b.Bind("x", v)

	got, err := b.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestBindShadowing(t *testing.T) {
	g := graph.NewGraph("test")
	b := NewBindings(nil)

	first := testValue(t, g, "first")
	second := testValue(t, g, "second")

	b.Bind("x", first)
	b.Bind("x", second)

	got, err := b.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, second, got, "later bindings shadow earlier ones")
	assert.Equal(t, 1, b.Len())
}

func TestResolveMaterializes(t *testing.T) {
	g := graph.NewGraph("test")
	calls := 0
	b := NewBindings(func(name string) (graph.NodeValue, error) {
		calls++
		n, err := g.CreateVariable(name, graph.Type{Dims: tensor.Shape{2}, DType: tensor.Float32})
		if err != nil {
			return graph.NodeValue{}, err
		}
		return graph.NodeValue{Node: n}, nil
	})

	v1, err := b.Resolve("weight")
	require.NoError(t, err)
	v2, err := b.Resolve("weight")
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "repeated resolution must return the same value")
	assert.Equal(t, 1, calls, "materialization runs once per name")
}

func TestResolveUnknown(t *testing.T) {
	b := NewBindings(nil)
	_, err := b.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownValue)

	b = NewBindings(func(string) (graph.NodeValue, error) {
		return graph.NodeValue{}, errors.New("not a weight")
	})
	_, err = b.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownValue)
}
