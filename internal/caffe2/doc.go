// Package caffe2 loads Caffe2 models into lumen graphs.
//
// A Caffe2 model is a pair of NetDefs: the predict net lists the
// operators and the init net fills the weight tensors. Both are decoded
// with the shared wire decoder in internal/pbwire, the init net is
// evaluated into a tensor store, and the predict net is lowered through
// the common engine in internal/lower. Caffe2 conventions differ from
// ONNX in two ways the engine is parameterized over: the transpose
// permutation argument is named "axes", and arithmetic broadcast is off
// unless a node sets the "broadcast" argument.
package caffe2
