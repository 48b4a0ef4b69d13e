package caffe2

// Hand-decoded subset of the Caffe2 protobuf schema. A model ships as
// two NetDefs: the predict net holding the operator list and the init
// net whose fill operators produce the weights.

// NetDef is a serialized operator network.
type NetDef struct {
	Name            string
	Ops             []OperatorDef
	ExternalInputs  []string
	ExternalOutputs []string
}

// OperatorDef is one serialized operator.
type OperatorDef struct {
	Inputs  []string
	Outputs []string
	Name    string
	Type    string
	Args    []Argument
}

// Argument is one operator argument. Caffe2 arguments carry no type
// tag; presence of the scalar fields is tracked so a stored zero is
// distinguishable from an absent field.
type Argument struct {
	Name    string
	F       float32
	I       int64
	S       []byte
	Floats  []float32
	Ints    []int64
	Strings [][]byte
	HasF    bool
	HasI    bool
}
