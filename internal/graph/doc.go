// Package graph implements the dataflow graph that operator lowering
// produces. A Graph doubles as the node builder: every Create method
// validates operands, computes result shapes and appends an immutable
// node. NodeValue references one result slot of one node and is how
// node inputs are wired together.
package graph
