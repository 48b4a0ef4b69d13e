// Package store holds statically known tensors (weights, constants) by
// name. Loaders populate a store from model initializers or from
// safetensors files; the lowering engine consults it when an operator
// reads a value that no prior operator produced.
package store

import (
	"sort"

	"github.com/lumen-ml/lumen/internal/tensor"
)

// Store is a read-only name to tensor lookup.
type Store interface {
	// Tensor returns the tensor bound to name, if any.
	Tensor(name string) (*tensor.RawTensor, bool)
}

// MemStore is an in-memory Store.
type MemStore struct {
	tensors map[string]*tensor.RawTensor
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tensors: make(map[string]*tensor.RawTensor)}
}

// Put binds name to t, replacing any previous binding.
func (s *MemStore) Put(name string, t *tensor.RawTensor) {
	s.tensors[name] = t
}

// Merge copies every binding from other into s, replacing duplicates.
func (s *MemStore) Merge(other *MemStore) {
	for name, t := range other.tensors {
		s.tensors[name] = t
	}
}

// Tensor returns the tensor bound to name, if any.
func (s *MemStore) Tensor(name string) (*tensor.RawTensor, bool) {
	t, ok := s.tensors[name]
	return t, ok
}

// Len returns the number of stored tensors.
func (s *MemStore) Len() int {
	return len(s.tensors)
}

// Names returns all bound names in sorted order.
func (s *MemStore) Names() []string {
	names := make([]string, 0, len(s.tensors))
	for name := range s.tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
