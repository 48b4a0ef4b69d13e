package caffe2

import (
	"fmt"
	"os"

	"github.com/lumen-ml/lumen/internal/pbwire"
)

// ParseNetFile parses a serialized NetDef from disk.
func ParseNetFile(path string) (*NetDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read net: %w", err)
	}
	return ParseNet(data)
}

// ParseNet parses a serialized NetDef.
func ParseNet(data []byte) (*NetDef, error) {
	n, err := parseNet(pbwire.NewDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("parse caffe2 net: %w", err)
	}
	return n, nil
}

func parseNet(d *pbwire.Decoder) (*NetDef, error) {
	n := &NetDef{}
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return nil, err
		}
		switch field {
		case 1:
			n.Name, err = d.Str()
		case 2:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var op OperatorDef
				if op, err = parseOperator(sub); err == nil {
					n.Ops = append(n.Ops, op)
				}
			}
		case 7:
			var s string
			if s, err = d.Str(); err == nil {
				n.ExternalInputs = append(n.ExternalInputs, s)
			}
		case 8:
			var s string
			if s, err = d.Str(); err == nil {
				n.ExternalOutputs = append(n.ExternalOutputs, s)
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

func parseOperator(d *pbwire.Decoder) (OperatorDef, error) {
	var op OperatorDef
	for d.More() {
		field, wire, err := d.Tag()
		if err != nil {
			return op, err
		}
		switch field {
		case 1:
			var s string
			if s, err = d.Str(); err == nil {
				op.Inputs = append(op.Inputs, s)
			}
		case 2:
			var s string
			if s, err = d.Str(); err == nil {
				op.Outputs = append(op.Outputs, s)
			}
		case 3:
			op.Name, err = d.Str()
		case 4:
			op.Type, err = d.Str()
		case 5:
			var sub *pbwire.Decoder
			if sub, err = d.Msg(); err == nil {
				var arg Argument
				if arg, err = parseArgument(sub); err == nil {
					op.Args = append(op.Args, arg)
				}
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return op, err
		}
	}
	return op, nil
}

func parseArgument(d *pbwire.Decoder) (Argument, error) {
	var a Argument
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
			a.HasF = true
		case 3:
			a.I, err = d.Int64()
			a.HasI = true
		case 4:
			a.S, err = d.Bytes()
		case 5:
			a.Floats, err = d.Float32s(a.Floats, wire)
		case 6:
			a.Ints, err = d.Int64s(a.Ints, wire)
		case 7:
			var b []byte
			if b, err = d.Bytes(); err == nil {
				a.Strings = append(a.Strings, b)
			}
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return a, err
		}
	}
	return a, nil
}
