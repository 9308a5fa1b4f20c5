// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tree provides the scope -> name -> value trees holding parameters,
// gradients, shapes and learning rates.
package tree

import (
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Separator splits scopes in a full parameter name.
const Separator = tree.Separator

// ErrStructureMismatch is returned when combined trees differ in structure.
var ErrStructureMismatch = tree.ErrStructureMismatch

// Nested is a scope -> name -> value tree.
type Nested[V any] = tree.Nested[V]

// Tree is a tree of tensors.
type Tree = tree.Tree

// Map applies fn to every leaf.
func Map[A, B any](in Nested[A], fn func(scope, name string, a A) B) Nested[B] {
	return tree.Map(in, fn)
}

// Map2 combines two trees with identical structure leaf by leaf.
func Map2[A, B, C any](a Nested[A], b Nested[B], fn func(scope, name string, a A, b B) (C, error)) (Nested[C], error) {
	return tree.Map2(a, b, fn)
}

// Shapes returns the shape of every tensor in t.
func Shapes(t Tree) Nested[tensor.Shape] {
	return tree.Shapes(t)
}

// SplitName splits a full name at its last separator.
func SplitName(full string) (scope, name string, ok bool) {
	return tree.SplitName(full)
}

// JoinName joins a scope and a local name.
func JoinName(scope, name string) string {
	return tree.JoinName(scope, name)
}
