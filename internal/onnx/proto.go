package onnx

// Hand-decoded subset of the ONNX protobuf schema. Only the fields the
// loader consumes are kept; everything else is skipped at the wire level.

// ModelProto is the top-level container of a serialized model.
type ModelProto struct {
	IRVersion       int64
	ProducerName    string
	ProducerVersion string
	Opsets          []OperatorSetID
	Graph           *GraphProto
}

// OpsetVersion returns the default-domain opset the model declares,
// or zero when none is present.
func (m *ModelProto) OpsetVersion() int64 {
	for _, opset := range m.Opsets {
		if opset.Domain == "" || opset.Domain == "ai.onnx" {
			return opset.Version
		}
	}
	return 0
}

// OperatorSetID pins an operator-set version for a domain.
type OperatorSetID struct {
	Domain  string
	Version int64
}

// GraphProto is the serialized computation graph.
type GraphProto struct {
	Name         string
	Nodes        []NodeProto
	Inputs       []ValueInfo
	Outputs      []ValueInfo
	Initializers []TensorProto
}

// NodeProto is one serialized operator.
type NodeProto struct {
	Name       string
	OpType     string
	Inputs     []string
	Outputs    []string
	Attributes []AttributeProto
}

// TensorProto carries a weight or constant tensor. Exporters store the
// payload either as raw little-endian bytes or in one of the typed
// legacy fields.
type TensorProto struct {
	Name      string
	DataType  int32
	Dims      []int64
	RawData   []byte
	FloatData []float32
	Int32Data []int32
	Int64Data []int64
}

// ValueInfo describes a declared graph input or output. The nested
// TypeProto/TensorTypeProto/TensorShapeProto chain of the schema is
// flattened during decoding. A symbolic (named) dimension decodes as -1.
type ValueInfo struct {
	Name     string
	ElemType int32
	Dims     []int64
}

// AttributeProto is one operator attribute.
type AttributeProto struct {
	Name    string
	Type    int32
	F       float32
	I       int64
	S       []byte
	T       *TensorProto
	Floats  []float32
	Ints    []int64
	Strings [][]byte
}

// TensorProto.DataType values.
const (
	TensorFloat  = 1
	TensorUint8  = 2
	TensorInt32  = 6
	TensorInt64  = 7
	TensorBool   = 9
	TensorDouble = 11
)

// AttributeProto.Type values.
const (
	AttrUndefined = 0
	AttrFloat     = 1
	AttrInt       = 2
	AttrString    = 3
	AttrTensor    = 4
	AttrFloats    = 6
	AttrInts      = 7
	AttrStrings   = 8
)
