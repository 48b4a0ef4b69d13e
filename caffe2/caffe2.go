// Package caffe2 provides the public API for loading Caffe2 models.
//
// A Caffe2 model ships as two NetDefs: the predict net listing the
// operators and the init net filling the weights. NetDefs carry no
// shape information, so every true input's shape must be declared in
// Options.
//
// Example:
//
//	model, err := caffe2.Load("predict_net.pb", "init_net.pb", caffe2.Options{
//	    InputShapes: map[string]tensor.Shape{"data": {1, 3, 224, 224}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Graph.Dump())
package caffe2

import (
	internalcaffe2 "github.com/lumen-ml/lumen/internal/caffe2"
)

// Options configures model loading.
type Options = internalcaffe2.Options

// Model is a loaded model: the lowered graph plus its interface names
// and weight store.
type Model = internalcaffe2.Model

// Load parses a predict net and an optional init net ("" to skip) and
// lowers them into a graph.
func Load(predictPath, initPath string, opts Options) (*Model, error) {
	return internalcaffe2.Load(predictPath, initPath, opts)
}
