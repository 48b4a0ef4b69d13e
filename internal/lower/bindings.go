package lower

import (
	"fmt"

	"github.com/lumen-ml/lumen/internal/graph"
)

// MaterializeFunc turns an input name that no prior operator produced into
// a graph value, typically by creating a Variable node for a weight or a
// graph input. It returns an error when the name is unknown to it as well.
type MaterializeFunc func(name string) (graph.NodeValue, error)

// Bindings is the value binding table for one lowering pass: the single
// source of truth for which node result an output name refers to. Later
// bindings of the same name shadow earlier ones.
type Bindings struct {
	values      map[string]graph.NodeValue
	materialize MaterializeFunc
}

// NewBindings creates an empty table. materialize may be nil, in which
// case unresolved names fail immediately with ErrUnknownValue.
func NewBindings(materialize MaterializeFunc) *Bindings {
	return &Bindings{
		values:      make(map[string]graph.NodeValue),
		materialize: materialize,
	}
}

// Bind maps name to v, overwriting any previous binding. Overwriting is
// the designed mechanism for operators that redefine names in place.
func (b *Bindings) Bind(name string, v graph.NodeValue) {
	b.values[name] = v
}

// Has reports whether name is bound, without triggering materialization.
func (b *Bindings) Has(name string) bool {
	_, ok := b.values[name]
	return ok
}

// Len returns the number of bound names.
func (b *Bindings) Len() int {
	return len(b.values)
}

// Resolve returns the value bound to name. An unbound name is delegated
// to the materialization fallback; the materialized value is bound so
// repeated resolution yields the same NodeValue.
func (b *Bindings) Resolve(name string) (graph.NodeValue, error) {
	if v, ok := b.values[name]; ok {
		return v, nil
	}
	if b.materialize == nil {
		return graph.NodeValue{}, fmt.Errorf("%q: %w", name, ErrUnknownValue)
	}
	v, err := b.materialize(name)
	if err != nil {
		return graph.NodeValue{}, fmt.Errorf("%q: %w: %v", name, ErrUnknownValue, err)
	}
	b.values[name] = v
	return v, nil
}
