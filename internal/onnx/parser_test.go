package onnx

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ml/lumen/internal/pbwire"
)

// enc builds protobuf wire data for test models.
type enc struct {
	b []byte
}

func (e *enc) uvarint(v uint64) {
	for v >= 0x80 {
		e.b = append(e.b, byte(v)|0x80)
		v >>= 7
	}
	e.b = append(e.b, byte(v))
}

func (e *enc) field(num, wire int) { e.uvarint(uint64(num<<3 | wire)) }

func (e *enc) int(num int, v int64) {
	e.field(num, pbwire.Varint)
	e.uvarint(uint64(v))
}

func (e *enc) blob(num int, b []byte) {
	e.field(num, pbwire.Bytes)
	e.uvarint(uint64(len(b)))
	e.b = append(e.b, b...)
}

func (e *enc) str(num int, s string) { e.blob(num, []byte(s)) }

func (e *enc) f32(num int, v float32) {
	e.field(num, pbwire.Fixed32)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	e.b = append(e.b, buf[:]...)
}

// msg encodes a nested message built by fn.
func (e *enc) msg(num int, fn func(*enc)) {
	var sub enc
	fn(&sub)
	e.blob(num, sub.b)
}

// valueInfo encodes the ValueInfoProto nesting for a graph input or
// output. Non-positive dims encode as a symbolic name.
func (e *enc) valueInfo(num int, name string, elem int64, dims []int64) {
	e.msg(num, func(v *enc) {
		v.str(1, name)
		v.msg(2, func(ty *enc) {
			ty.msg(1, func(tt *enc) {
				tt.int(1, elem)
				tt.msg(2, func(sh *enc) {
					for _, d := range dims {
						sh.msg(1, func(dim *enc) {
							if d > 0 {
								dim.int(1, d)
							} else {
								dim.str(2, "batch")
							}
						})
					}
				})
			})
		})
	})
}

// floatInitializer encodes a float32 TensorProto with raw payload.
func (e *enc) floatInitializer(num int, name string, dims []int64, values []float32) {
	e.msg(num, func(t *enc) {
		for _, d := range dims {
			t.int(1, d)
		}
		t.int(2, TensorFloat)
		t.str(8, name)
		raw := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
		}
		t.blob(9, raw)
	})
}

// packedInts encodes a packed repeated-varint field.
func (e *enc) packedInts(num int, values []int64) {
	var sub enc
	for _, v := range values {
		sub.uvarint(uint64(v))
	}
	e.blob(num, sub.b)
}

func TestParseModelHeader(t *testing.T) {
	var e enc
	e.int(1, 8)
	e.str(2, "pytorch")
	e.str(3, "2.1.0")
	e.msg(8, func(o *enc) {
		o.str(1, "")
		o.int(2, 13)
	})
	e.msg(7, func(g *enc) {
		g.str(2, "net")
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	assert.Equal(t, int64(8), m.IRVersion)
	assert.Equal(t, "pytorch", m.ProducerName)
	assert.Equal(t, "2.1.0", m.ProducerVersion)
	assert.Equal(t, int64(13), m.OpsetVersion())
	require.NotNil(t, m.Graph)
	assert.Equal(t, "net", m.Graph.Name)
}

func TestParseNodeAndAttributes(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.msg(1, func(n *enc) {
			n.str(1, "X")
			n.str(1, "W")
			n.str(2, "Y")
			n.str(3, "conv1")
			n.str(4, "Conv")
			n.msg(5, func(a *enc) {
				a.str(1, "kernel_shape")
				a.int(20, AttrInts)
				a.packedInts(8, []int64{3, 3})
			})
			n.msg(5, func(a *enc) {
				a.str(1, "alpha")
				a.int(20, AttrFloat)
				a.f32(2, 0.5)
			})
		})
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	require.Len(t, m.Graph.Nodes, 1)

	node := m.Graph.Nodes[0]
	assert.Equal(t, "Conv", node.OpType)
	assert.Equal(t, "conv1", node.Name)
	assert.Equal(t, []string{"X", "W"}, node.Inputs)
	assert.Equal(t, []string{"Y"}, node.Outputs)

	require.Len(t, node.Attributes, 2)
	assert.Equal(t, []int64{3, 3}, node.Attributes[0].Ints)
	assert.Equal(t, int32(AttrInts), node.Attributes[0].Type)
	assert.InDelta(t, 0.5, node.Attributes[1].F, 1e-6)
}

func TestParseInitializerRawData(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.floatInitializer(5, "W", []int64{2, 2}, []float32{1, 2, 3, 4})
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	require.Len(t, m.Graph.Initializers, 1)

	w := m.Graph.Initializers[0]
	assert.Equal(t, "W", w.Name)
	assert.Equal(t, int32(TensorFloat), w.DataType)
	assert.Equal(t, []int64{2, 2}, w.Dims)
	assert.Len(t, w.RawData, 16)
}

func TestParseInitializerLegacyFields(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.msg(5, func(tp *enc) {
			tp.int(1, 3)
			tp.int(2, TensorInt64)
			tp.str(8, "shape")
			tp.packedInts(7, []int64{6, 4, 1})
		})
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	require.Len(t, m.Graph.Initializers, 1)
	assert.Equal(t, []int64{6, 4, 1}, m.Graph.Initializers[0].Int64Data)
}

func TestParseValueInfoFlattening(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.valueInfo(11, "X", TensorFloat, []int64{-1, 784})
		g.valueInfo(12, "Y", TensorFloat, []int64{10})
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	require.Len(t, m.Graph.Inputs, 1)
	require.Len(t, m.Graph.Outputs, 1)

	in := m.Graph.Inputs[0]
	assert.Equal(t, "X", in.Name)
	assert.Equal(t, int32(TensorFloat), in.ElemType)
	assert.Equal(t, []int64{-1, 784}, in.Dims, "symbolic dims decode as -1")
	assert.Equal(t, []int64{10}, m.Graph.Outputs[0].Dims)
}

func TestParseSkipsUnknownFields(t *testing.T) {
	var e enc
	e.int(1, 7)
	e.str(6, "doc string the loader ignores")
	e.msg(14, func(p *enc) { // metadata_props
		p.str(1, "key")
		p.str(2, "value")
	})

	m, err := Parse(e.b)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.IRVersion)
}

func TestParseTruncated(t *testing.T) {
	var e enc
	e.msg(7, func(g *enc) {
		g.str(2, "net")
	})

	_, err := Parse(e.b[:len(e.b)-2])
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Nil(t, m.Graph)
}

func TestParseFile(t *testing.T) {
	var e enc
	e.int(1, 7)
	e.msg(7, func(g *enc) {
		g.str(2, "ondisk")
	})

	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(path, e.b, 0o600))

	m, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ondisk", m.Graph.Name)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)
}
