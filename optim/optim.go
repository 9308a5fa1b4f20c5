// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient transformations for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Chain: Sequential composition of transformations
//   - Optimizer: Stateful helper applying a transformation step by step
//
// # Basic Usage
//
//	opt, err := optim.NewOptimizer(
//	    optim.Adam(optim.AdamConfig{LR: 0.001}),
//	    params,
//	)
//
//	for step := range steps {
//	    grads := computeGrads(opt.Params(), batch)
//	    if err := opt.Step(grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/born-ml/born-mup/internal/optim"
	"github.com/born-ml/born-mup/internal/tree"
)

// GradientTransformation turns gradients into parameter updates.
type GradientTransformation = optim.GradientTransformation

// State is the opaque per-transformation state.
type State = optim.State

// EmptyState is the state of stateless transformations.
type EmptyState = optim.EmptyState

// Funcs adapts a pair of functions to GradientTransformation.
type Funcs = optim.Funcs

// ChainState holds the state of every stage of a Chain.
type ChainState = optim.ChainState

// Chain composes transformations in order.
func Chain(ts ...GradientTransformation) GradientTransformation {
	return optim.Chain(ts...)
}

// SGD (Stochastic Gradient Descent)

// SGDConfig contains configuration for SGD.
type SGDConfig = optim.SGDConfig

// SGDState holds SGD velocity buffers.
type SGDState = optim.SGDState

// SGD creates an SGD transformation.
//
// Example:
//
//	tx := optim.SGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
func SGD(config SGDConfig) GradientTransformation {
	return optim.SGD(config)
}

// Adam (Adaptive Moment Estimation)

// AdamConfig contains configuration for Adam.
type AdamConfig = optim.AdamConfig

// AdamState holds Adam moment estimates.
type AdamState = optim.AdamState

// Adam creates an Adam transformation with bias correction.
//
// Example:
//
//	tx := optim.Adam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
func Adam(config AdamConfig) GradientTransformation {
	return optim.Adam(config)
}

// ApplyUpdates returns params + updates.
func ApplyUpdates(params, updates tree.Tree) (tree.Tree, error) {
	return optim.ApplyUpdates(params, updates)
}

// Optimizer holds parameters and transformation state between steps.
type Optimizer = optim.Optimizer

// NewOptimizer initializes tx for params.
func NewOptimizer(tx GradientTransformation, params tree.Tree) (*Optimizer, error) {
	return optim.NewOptimizer(tx, params)
}
