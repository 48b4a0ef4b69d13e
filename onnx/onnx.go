// Package onnx provides the public API for loading ONNX models.
//
// Loading parses the .onnx protobuf file and lowers every operator
// into a lumen graph. Models whose inputs carry symbolic dimensions
// ("batch_size") need those shapes declared in Options.
//
// Example:
//
//	model, err := onnx.Load("mnist.onnx", onnx.Options{
//	    InputShapes: map[string]tensor.Shape{"data": {1, 1, 28, 28}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Graph.Dump())
package onnx

import (
	internalonnx "github.com/lumen-ml/lumen/internal/onnx"
)

// Options configures model loading.
type Options = internalonnx.Options

// Model is a loaded model: the lowered graph plus its interface names
// and weight store.
type Model = internalonnx.Model

// Load parses an ONNX file and lowers it into a graph.
func Load(path string, opts Options) (*Model, error) {
	return internalonnx.Load(path, opts)
}

// LoadBytes parses serialized model bytes and lowers them into a graph.
func LoadBytes(data []byte, opts Options) (*Model, error) {
	return internalonnx.LoadBytes(data, opts)
}
