// Package tree implements two-level parameter trees keyed by scope and name.
//
// A model's parameters live at "scope/name" paths, e.g. "mlp/linear_1/w".
// Nested stores them as scope ("mlp/linear_1") -> name ("w") -> value, which
// is the layout shared by parameter trees, gradient trees, shape trees and the
// per-parameter learning-rate trees.
package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/born-mup/internal/tensor"
)

// Separator splits scopes in a full parameter name.
const Separator = "/"

// ErrStructureMismatch is returned when two trees combined by Map2 do not have
// exactly the same scopes and names.
var ErrStructureMismatch = errors.New("tree structure mismatch")

// Nested is a scope -> name -> value tree.
type Nested[V any] map[string]map[string]V

// Tree is a tree of tensors (parameters, gradients or updates).
type Tree = Nested[*tensor.Tensor]

// Set stores v at (scope, name), creating the scope when needed.
func (n Nested[V]) Set(scope, name string, v V) {
	inner, ok := n[scope]
	if !ok {
		inner = make(map[string]V)
		n[scope] = inner
	}
	inner[name] = v
}

// Get returns the value at (scope, name).
func (n Nested[V]) Get(scope, name string) (V, bool) {
	v, ok := n[scope][name]
	return v, ok
}

// Len returns the number of leaves.
func (n Nested[V]) Len() int {
	total := 0
	for _, inner := range n {
		total += len(inner)
	}
	return total
}

// Walk visits every leaf in sorted (scope, name) order.
func (n Nested[V]) Walk(fn func(scope, name string, v V)) {
	for _, scope := range sortedKeys(n) {
		inner := n[scope]
		for _, name := range sortedKeys(inner) {
			fn(scope, name, inner[name])
		}
	}
}

// Clone returns a copy of the tree structure. Values are copied shallowly.
func (n Nested[V]) Clone() Nested[V] {
	out := make(Nested[V], len(n))
	for scope, inner := range n {
		c := make(map[string]V, len(inner))
		for name, v := range inner {
			c[name] = v
		}
		out[scope] = c
	}
	return out
}

// Map applies fn to every leaf and returns a tree with the same structure.
func Map[A, B any](in Nested[A], fn func(scope, name string, a A) B) Nested[B] {
	out := make(Nested[B], len(in))
	for scope, inner := range in {
		m := make(map[string]B, len(inner))
		for name, a := range inner {
			m[name] = fn(scope, name, a)
		}
		out[scope] = m
	}
	return out
}

// Map2 combines two trees with identical structure leaf by leaf.
//
// Any scope or name present in one tree but not the other is an
// ErrStructureMismatch. Errors returned by fn abort the walk.
func Map2[A, B, C any](a Nested[A], b Nested[B], fn func(scope, name string, a A, b B) (C, error)) (Nested[C], error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d scopes vs %d", ErrStructureMismatch, len(a), len(b))
	}

	out := make(Nested[C], len(a))
	for _, scope := range sortedKeys(a) {
		innerA := a[scope]
		innerB, ok := b[scope]
		if !ok {
			return nil, fmt.Errorf("%w: scope %q missing from second tree", ErrStructureMismatch, scope)
		}
		if len(innerA) != len(innerB) {
			return nil, fmt.Errorf("%w: scope %q has %d vs %d leaves", ErrStructureMismatch, scope, len(innerA), len(innerB))
		}

		m := make(map[string]C, len(innerA))
		for _, name := range sortedKeys(innerA) {
			vb, ok := innerB[name]
			if !ok {
				return nil, fmt.Errorf("%w: %q missing from second tree", ErrStructureMismatch, JoinName(scope, name))
			}
			vc, err := fn(scope, name, innerA[name], vb)
			if err != nil {
				return nil, err
			}
			m[name] = vc
		}
		out[scope] = m
	}
	return out, nil
}

// Shapes returns the shape of every tensor in t.
func Shapes(t Tree) Nested[tensor.Shape] {
	return Map(t, func(_, _ string, x *tensor.Tensor) tensor.Shape {
		return x.Shape().Clone()
	})
}

// SplitName splits a full parameter name at its last separator into
// (scope, name). ok is false when the name contains no separator or either
// side is empty.
func SplitName(full string) (scope, name string, ok bool) {
	i := strings.LastIndex(full, Separator)
	if i <= 0 || i == len(full)-1 {
		return "", "", false
	}
	return full[:i], full[i+1:], true
}

// JoinName is the inverse of SplitName.
func JoinName(scope, name string) string {
	return scope + Separator + name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
