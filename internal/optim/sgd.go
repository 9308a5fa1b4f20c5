package optim

import (
	"fmt"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// SGDState holds the velocity buffers of SGD with momentum.
type SGDState struct {
	Velocity tree.Tree
}

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	update = -lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	update = -lr * velocity
//
// Example:
//
//	tx := optim.SGD(optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func SGD(config SGDConfig) GradientTransformation {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.01
	}

	return Funcs{
		InitFn: func(params tree.Tree) (State, error) {
			if config.Momentum == 0 {
				return EmptyState{}, nil
			}
			velocity := tree.Map(params, func(_, _ string, p *tensor.Tensor) *tensor.Tensor {
				return tensor.Zeros(p.Shape(), p.DType())
			})
			return SGDState{Velocity: velocity}, nil
		},
		UpdateFn: func(grads tree.Tree, state State, _ tree.Tree) (tree.Tree, State, error) {
			if config.Momentum == 0 {
				updates := tree.Map(grads, func(_, _ string, g *tensor.Tensor) *tensor.Tensor {
					return g.Scale(-config.LR)
				})
				return updates, state, nil
			}

			s, ok := state.(SGDState)
			if !ok {
				return nil, nil, fmt.Errorf("sgd: unexpected state %T", state)
			}

			// velocity = momentum * velocity + grad
			velocity, err := tree.Map2(s.Velocity, grads, func(_, _ string, v, g *tensor.Tensor) (*tensor.Tensor, error) {
				return v.Scale(config.Momentum).Add(g), nil
			})
			if err != nil {
				return nil, nil, err
			}

			updates := tree.Map(velocity, func(_, _ string, v *tensor.Tensor) *tensor.Tensor {
				return v.Scale(-config.LR)
			})
			return updates, SGDState{Velocity: velocity}, nil
		},
	}
}
