package mup

import "github.com/born-ml/born-mup/internal/tree"

// LR holds the learning-rate multipliers of one parameter.
type LR struct {
	SGD  float64 `yaml:"sgd"`
	Adam float64 `yaml:"adam"`
}

// Registry stores one LR per (parent scope, parameter name).
type Registry struct {
	entries tree.Nested[LR]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: tree.Nested[LR]{}}
}

// Set records the multipliers for (parent, name), replacing any previous entry.
func (r *Registry) Set(parent, name string, sgd, adam float64) {
	r.entries.Set(parent, name, LR{SGD: sgd, Adam: adam})
}

// Get returns the multipliers for (parent, name).
func (r *Registry) Get(parent, name string) (LR, bool) {
	return r.entries.Get(parent, name)
}

// Len returns the number of recorded parameters.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// All returns a snapshot of every entry.
func (r *Registry) All() tree.Nested[LR] {
	return r.entries.Clone()
}

// SGD returns the SGD multipliers with the parameter tree's structure.
func (r *Registry) SGD() tree.Nested[float64] {
	return tree.Map(r.entries, func(_, _ string, lr LR) float64 { return lr.SGD })
}

// Adam returns the Adam multipliers with the parameter tree's structure.
func (r *Registry) Adam() tree.Nested[float64] {
	return tree.Map(r.entries, func(_, _ string, lr LR) float64 { return lr.Adam })
}

// ReadoutMults maps a readout module's scope to its width multiplier.
type ReadoutMults map[string]float64

// Get returns the multiplier recorded for parent.
func (m ReadoutMults) Get(parent string) (float64, bool) {
	v, ok := m[parent]
	return v, ok
}
