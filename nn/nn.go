// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the parameter creation mechanism and the modules
// born-mup models are built from.
//
// # Basic Usage
//
//	model := nn.Transform(func(b *nn.Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
//	    return nn.NewMLP("mlp", []int{256, 256}, 10).Forward(b, x)
//	})
//
//	params, err := model.Init(seed, x)
//	out, err := model.Apply(params, x)
//
// # Hooks
//
// Creators run when a parameter is first created and may swap its
// initializer. Getters run on every read and may transform the value:
//
//	release := b.PushGetter(getter)
//	defer release()
package nn

import (
	"github.com/born-ml/born-mup/internal/nn"
	"github.com/born-ml/born-mup/internal/tree"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Kind is the module capability flag.
type Kind = nn.Kind

// Module kinds.
const (
	KindModule  Kind = nn.KindModule
	KindReadout Kind = nn.KindReadout
)

// ModuleInfo describes the module owning a parameter.
type ModuleInfo = nn.ModuleInfo

// ParamContext is handed to hooks for every parameter.
type ParamContext = nn.ParamContext

// Builder creates and reads parameters during a forward pass.
type Builder = nn.Builder

// Creator, Getter and their continuations.
type (
	Creator     = nn.Creator
	NextCreator = nn.NextCreator
	Getter      = nn.Getter
	NextGetter  = nn.NextGetter
)

// ForwardFunc is a model's forward computation.
type ForwardFunc = nn.ForwardFunc

// Transformed is a model split into Init and Apply.
type Transformed = nn.Transformed

// Transform turns fn into an init/apply pair.
func Transform(fn ForwardFunc) Transformed {
	return nn.Transform(fn)
}

// NewBuilder creates a Builder in init mode.
func NewBuilder(seed uint64) *Builder {
	return nn.NewBuilder(seed)
}

// NewApplyBuilder creates a Builder reading from params.
func NewApplyBuilder(params tree.Tree) *Builder {
	return nn.NewApplyBuilder(params)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer.
//
// Example:
//
//	layer := nn.NewLinear("hidden", 128)
func NewLinear(name string, outFeatures int) *Linear {
	return nn.NewLinear(name, outFeatures)
}

// NewReadout creates an output linear layer with the readout capability.
func NewReadout(name string, outFeatures int) *Linear {
	return nn.NewReadout(name, outFeatures)
}

// MLP is a tanh multilayer perceptron topped by a readout layer.
type MLP = nn.MLP

// NewMLP creates an MLP.
func NewMLP(name string, hidden []int, outFeatures int) *MLP {
	return nn.NewMLP(name, hidden, outFeatures)
}

// Embedding is a lookup table mapping indices to dense vectors.
type Embedding = nn.Embedding

// NewEmbedding creates an embedding layer with a [numEmbed, embedDim] table.
func NewEmbedding(name string, numEmbed, embedDim int) *Embedding {
	return nn.NewEmbedding(name, numEmbed, embedDim)
}

// Initialization

// Initializer produces the initial value of a parameter.
type Initializer = nn.Initializer

// InitFunc adapts a function to Initializer.
type InitFunc = nn.InitFunc

// Initializers.
type (
	Normal   = nn.Normal
	Uniform  = nn.Uniform
	Xavier   = nn.Xavier
	Constant = nn.Constant
)

// Zeros is the usual bias initializer.
var Zeros = nn.Zeros

// ScaleStd wraps init so every generated value is multiplied by factor.
func ScaleStd(init Initializer, factor float64) Initializer {
	return nn.ScaleStd(init, factor)
}

// LeCunNormal returns N(0, 1/fanIn).
func LeCunNormal(fanIn int) Initializer {
	return nn.LeCunNormal(fanIn)
}
