// Package graph provides the public API for lumen's dataflow graph:
// the container the format loaders lower models into. Nodes carry
// deterministic names and shape-typed results; Dump renders a stable
// textual listing of the whole graph.
package graph

import (
	"github.com/lumen-ml/lumen/internal/graph"
)

// Graph is a dataflow graph under construction.
type Graph = graph.Graph

// Node is one operation or variable in a graph.
type Node = graph.Node

// NodeValue designates one result slot of a node.
type NodeValue = graph.NodeValue

// Kind identifies what a node computes.
type Kind = graph.Kind

// Type describes one node result: its shape and element type.
type Type = graph.Type

// Node kinds.
const (
	KindVariable  Kind = graph.KindVariable
	KindRelu      Kind = graph.KindRelu
	KindSigmoid   Kind = graph.KindSigmoid
	KindAdd       Kind = graph.KindAdd
	KindSub       Kind = graph.KindSub
	KindMul       Kind = graph.KindMul
	KindDiv       Kind = graph.KindDiv
	KindSoftMax   Kind = graph.KindSoftMax
	KindLRN       Kind = graph.KindLRN
	KindBroadcast Kind = graph.KindBroadcast
	KindReshape   Kind = graph.KindReshape
	KindTranspose Kind = graph.KindTranspose
	KindFlatten   Kind = graph.KindFlatten
	KindSlice     Kind = graph.KindSlice
)

// New creates an empty graph with the given name.
func New(name string) *Graph {
	return graph.NewGraph(name)
}
