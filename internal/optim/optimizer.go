// Package optim implements gradient transformations for training neural
// networks.
//
// This package provides:
//   - GradientTransformation: Init/Update pair turning gradients into updates
//   - Chain: Sequential composition, each stage sees the previous output
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Optimizer: Stateful wrapper holding params and transformation state
//
// Updates are returned ready to add to the parameters: already multiplied by
// the learning rate and negated.
//
// Example usage:
//
//	opt, err := optim.NewOptimizer(optim.Adam(optim.AdamConfig{LR: 1e-3}), params)
//
//	// Training loop
//	for step := range steps {
//	    grads := computeGrads(opt.Params(), batch)
//	    if err := opt.Step(grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// State is the opaque per-transformation optimizer state.
type State any

// EmptyState is the state of stateless transformations.
type EmptyState struct{}

// GradientTransformation turns a gradient tree into an update tree.
type GradientTransformation interface {
	// Init creates the initial state for params.
	Init(params tree.Tree) (State, error)

	// Update maps updates (gradients for the first stage) to new updates.
	// params may be nil for transformations that don't read them.
	Update(updates tree.Tree, state State, params tree.Tree) (tree.Tree, State, error)
}

// Funcs adapts a pair of functions to GradientTransformation.
type Funcs struct {
	InitFn   func(params tree.Tree) (State, error)
	UpdateFn func(updates tree.Tree, state State, params tree.Tree) (tree.Tree, State, error)
}

// Init calls InitFn.
func (f Funcs) Init(params tree.Tree) (State, error) {
	return f.InitFn(params)
}

// Update calls UpdateFn.
func (f Funcs) Update(updates tree.Tree, state State, params tree.Tree) (tree.Tree, State, error) {
	return f.UpdateFn(updates, state, params)
}

// ChainState holds the state of every stage of a Chain.
type ChainState []State

// Chain composes transformations so each one receives the previous output.
func Chain(ts ...GradientTransformation) GradientTransformation {
	return Funcs{
		InitFn: func(params tree.Tree) (State, error) {
			states := make(ChainState, len(ts))
			for i, t := range ts {
				s, err := t.Init(params)
				if err != nil {
					return nil, fmt.Errorf("chain stage %d: %w", i, err)
				}
				states[i] = s
			}
			return states, nil
		},
		UpdateFn: func(updates tree.Tree, state State, params tree.Tree) (tree.Tree, State, error) {
			states, ok := state.(ChainState)
			if !ok || len(states) != len(ts) {
				return nil, nil, fmt.Errorf("chain: unexpected state %T", state)
			}

			next := make(ChainState, len(ts))
			for i, t := range ts {
				var err error
				updates, next[i], err = t.Update(updates, states[i], params)
				if err != nil {
					return nil, nil, fmt.Errorf("chain stage %d: %w", i, err)
				}
			}
			return updates, next, nil
		},
	}
}

// ApplyUpdates returns params + updates. Both trees must share a structure.
func ApplyUpdates(params, updates tree.Tree) (tree.Tree, error) {
	return tree.Map2(params, updates, func(_, _ string, p, u *tensor.Tensor) (*tensor.Tensor, error) {
		return p.Add(u), nil
	})
}

// Optimizer applies a GradientTransformation to a parameter tree in place of
// the caller's bookkeeping.
type Optimizer struct {
	tx     GradientTransformation
	state  State
	params tree.Tree
	steps  int
}

// NewOptimizer initializes tx for params.
func NewOptimizer(tx GradientTransformation, params tree.Tree) (*Optimizer, error) {
	state, err := tx.Init(params)
	if err != nil {
		return nil, err
	}
	return &Optimizer{tx: tx, state: state, params: params}, nil
}

// Step performs a single optimization step with grads.
func (o *Optimizer) Step(grads tree.Tree) error {
	updates, state, err := o.tx.Update(grads, o.state, o.params)
	if err != nil {
		return err
	}
	params, err := ApplyUpdates(o.params, updates)
	if err != nil {
		return err
	}

	o.params, o.state = params, state
	o.steps++
	return nil
}

// Params returns the current parameters.
func (o *Optimizer) Params() tree.Tree {
	return o.params
}

// Steps returns the number of completed steps.
func (o *Optimizer) Steps() int {
	return o.steps
}
