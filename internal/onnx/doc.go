// Package onnx loads ONNX models into lumen graphs.
//
// It decodes the .onnx protobuf wire format with a hand-written parser
// (no external protobuf dependency), stores initializers in a tensor
// store, and lowers each serialized operator through the common engine
// in internal/lower. Operator forms specific to ONNX that the common
// engine does not cover, such as Identity and Constant, are handled by
// a fallback tier before a node is rejected as unsupported.
//
// Example usage:
//
//	model, err := onnx.Load("mnist.onnx", onnx.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Graph.Dump())
package onnx
