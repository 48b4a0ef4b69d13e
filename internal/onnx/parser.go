package onnx

import (
	"fmt"
	"os"

	"github.com/lumen-ml/lumen/internal/pbwire"
)

// ParseFile parses a serialized ONNX model from disk.
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return Parse(data)
}

// Parse parses a serialized ONNX model.
func Parse(data []byte) (*ModelProto, error) {
	m, err := parseModel(pbwire.NewDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("parse onnx model: %w", err)
	}
	return m, nil
}

func parseModel(d *pbwire.Decoder) (*ModelProto, error) {
	m := &ModelProto{}
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			m.IRVersion, err = d.Int64()
		case 2:
			m.ProducerName, err = d.Str()
		case 3:
			m.ProducerVersion, err = d.Str()
		case 7:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				m.Graph, err = parseGraph(sub)
			}
		case 8:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var opset OperatorSetID
				if opset, err = parseOpset(sub); err == nil {
					m.Opsets = append(m.Opsets, opset)
				}
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func parseOpset(d *pbwire.Decoder) (OperatorSetID, error) {
	var o OperatorSetID
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return o, err
		}
		switch field {
		case 1:
			o.Domain, err = d.Str()
		case 2:
			o.Version, err = d.Int64()
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func parseGraph(d *pbwire.Decoder) (*GraphProto, error) {
	g := &GraphProto{}
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var node NodeProto
				if node, err = parseNode(sub); err == nil {
					g.Nodes = append(g.Nodes, node)
				}
			}
		case 2:
			g.Name, err = d.Str()
		case 5:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var t TensorProto
				if t, err = parseTensor(sub); err == nil {
					g.Initializers = append(g.Initializers, t)
				}
			}
		case 11, 12:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var vi ValueInfo
				if vi, err = parseValueInfo(sub); err == nil {
					if field == 11 {
						g.Inputs = append(g.Inputs, vi)
					} else {
						g.Outputs = append(g.Outputs, vi)
					}
				}
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func parseNode(d *pbwire.Decoder) (NodeProto, error) {
	var n NodeProto
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return n, err
		}
		switch field {
		case 1:
			var s string
			if s, err = d.Str(); err == nil {
				n.Inputs = append(n.Inputs, s)
			}
		case 2:
			var s string
			if s, err = d.Str(); err == nil {
				n.Outputs = append(n.Outputs, s)
			}
		case 3:
			n.Name, err = d.Str()
		case 4:
			n.OpType, err = d.Str()
		case 5:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var attr AttributeProto
				if attr, err = parseAttribute(sub); err == nil {
					n.Attributes = append(n.Attributes, attr)
				}
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func parseTensor(d *pbwire.Decoder) (TensorProto, error) {
	var t TensorProto
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return t, err
		}
		switch field {
		case 1:
			t.Dims, err = d.Int64s(t.Dims, wire)
		case 2:
			t.DataType, err = d.Int32()
		case 4:
			t.FloatData, err = d.Float32s(t.FloatData, wire)
		case 5:
			var raw []int64
			if raw, err = d.Int64s(nil, wire); err == nil {
				for _, v := range raw {
					t.Int32Data = append(t.Int32Data, int32(v)) //nolint:gosec // G115: field is declared int32 in the schema.
				}
			}
		case 7:
			t.Int64Data, err = d.Int64s(t.Int64Data, wire)
		case 8:
			t.Name, err = d.Str()
		case 9:
			t.RawData, err = d.Bytes()
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return t, err
		}
	}
	return t, nil
}

// parseValueInfo flattens the TypeProto/TensorTypeProto/TensorShapeProto
// nesting into a name, element type and dimension list. Dimensions given
// as symbolic names ("batch_size") decode as -1.
func parseValueInfo(d *pbwire.Decoder) (ValueInfo, error) {
	var vi ValueInfo
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return vi, err
		}
		switch field {
		case 1:
			vi.Name, err = d.Str()
		case 2:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				err = parseTypeInto(sub, &vi)
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return vi, err
		}
	}
	return vi, nil
}

func parseTypeInto(d *pbwire.Decoder, vi *ValueInfo) error {
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return err
		}
		if field != 1 { // tensor_type
			if err := d.Skip(wire); err != nil {
				return err
			}
			continue
		}
		sub, err := d.Msg()
		if err != nil {
			return err
		}
		if err := parseTensorTypeInto(sub, vi); err != nil {
			return err
		}
	}
	return nil
}

func parseTensorTypeInto(d *pbwire.Decoder, vi *ValueInfo) error {
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			vi.ElemType, err = d.Int32()
		case 2:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				vi.Dims, err = parseShapeDims(sub)
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseShapeDims(d *pbwire.Decoder) ([]int64, error) {
	var dims []int64
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return nil, err
		}
		if field != 1 { // dim
			if err := d.Skip(wire); err != nil {
				return nil, err
			}
			continue
		}
		sub, err := d.Msg()
		if err != nil {
			return nil, err
		}
		dim, err := parseDim(sub)
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	return dims, nil
}

func parseDim(d *pbwire.Decoder) (int64, error) {
	value := int64(-1)
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return 0, err
		}
		switch field {
		case 1: // dim_value
			value, err = d.Int64()
		case 2: // dim_param, symbolic
			_, err = d.Str()
			value = -1
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return 0, err
		}
	}
	return value, nil
}

func parseAttribute(d *pbwire.Decoder) (AttributeProto, error) {
	var a AttributeProto
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return a, err
		}
		switch field {
		case 1:
			a.Name, err = d.Str()
		case 2:
			a.F, err = d.Float32()
		case 3:
			a.I, err = d.Int64()
		case 4:
			a.S, err = d.Bytes()
		case 5:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var t TensorProto
				if t, err = parseTensor(sub); err == nil {
					a.T = &t
				}
			}
		case 7:
			a.Floats, err = d.Float32s(a.Floats, wire)
		case 8:
			a.Ints, err = d.Int64s(a.Ints, wire)
		case 9:
			var b []byte
			if b, err = d.Bytes(); err == nil {
				a.Strings = append(a.Strings, b)
			}
		case 20:
			a.Type, err = d.Int32()
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return a, err
		}
	}
	return a, nil
}
