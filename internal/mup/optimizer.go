package mup

import (
	"github.com/born-ml/born-mup/internal/optim"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
	"github.com/pkg/errors"
)

// WrapOptimizer scales every update produced by base by the parameter's
// recorded learning-rate multiplier: the Adam multipliers when adam is true,
// the SGD ones otherwise.
//
// The multipliers are captured when wrapping; the update tree must have the
// same structure as the recorded parameters.
func (m *Mup) WrapOptimizer(base optim.GradientTransformation, adam bool) (optim.GradientTransformation, error) {
	if m.lrs.Len() == 0 {
		return nil, errors.WithStack(ErrEmptyRegistry)
	}

	scales := m.lrs.SGD()
	if adam {
		scales = m.lrs.Adam()
	}

	return optim.Chain(base, scaleByTree(scales)), nil
}

func scaleByTree(scales tree.Nested[float64]) optim.GradientTransformation {
	return optim.Funcs{
		InitFn: func(tree.Tree) (optim.State, error) {
			return optim.EmptyState{}, nil
		},
		UpdateFn: func(updates tree.Tree, state optim.State, _ tree.Tree) (tree.Tree, optim.State, error) {
			scaled, err := tree.Map2(updates, scales, func(_, _ string, u *tensor.Tensor, scale float64) (*tensor.Tensor, error) {
				return u.Scale(scale), nil
			})
			if err != nil {
				return nil, nil, err
			}
			return scaled, state, nil
		},
	}
}
