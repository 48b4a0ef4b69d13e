// Package lower implements the operator-lowering engine: the single pass
// that walks a serialized operator list and produces the dataflow graph.
//
// The engine handles the operators whose semantics are common to all
// source formats. Format-specific loaders (ONNX, Caffe2) adapt their
// operator representation to the Operator and AttributeDictionary
// capabilities, call TryLower per operator in declaration order, and fall
// back to their own rules when the engine does not recognize a type.
//
// Lowering is strictly single-pass: an operator's inputs must already be
// bound in the value binding table, or resolvable through the table's
// materialization fallback (graph inputs and weights). A failed rule
// aborts the whole pass; the partially built graph must be discarded.
package lower
