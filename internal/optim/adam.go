package optim

import (
	"fmt"
	"math"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// AdamState holds the moment estimates and timestep of Adam.
type AdamState struct {
	Count int       // Timestep for bias correction
	M     tree.Tree // First moment estimates
	V     tree.Tree // Second moment estimates
}

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	update = -lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
func Adam(config AdamConfig) GradientTransformation {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	beta1, beta2 := config.Betas[0], config.Betas[1]

	return Funcs{
		InitFn: func(params tree.Tree) (State, error) {
			zeros := func(_, _ string, p *tensor.Tensor) *tensor.Tensor {
				return tensor.Zeros(p.Shape(), tensor.Float64)
			}
			return AdamState{M: tree.Map(params, zeros), V: tree.Map(params, zeros)}, nil
		},
		UpdateFn: func(grads tree.Tree, state State, _ tree.Tree) (tree.Tree, State, error) {
			s, ok := state.(AdamState)
			if !ok {
				return nil, nil, fmt.Errorf("adam: unexpected state %T", state)
			}

			count := s.Count + 1
			biasCorrection1 := 1.0 - math.Pow(beta1, float64(count))
			biasCorrection2 := 1.0 - math.Pow(beta2, float64(count))

			m, err := tree.Map2(s.M, grads, func(_, _ string, m, g *tensor.Tensor) (*tensor.Tensor, error) {
				return m.Scale(beta1).Add(g.Scale(1 - beta1)), nil
			})
			if err != nil {
				return nil, nil, err
			}
			v, err := tree.Map2(s.V, grads, func(_, _ string, v, g *tensor.Tensor) (*tensor.Tensor, error) {
				return v.Scale(beta2).Add(g.Mul(g).Scale(1 - beta2)), nil
			})
			if err != nil {
				return nil, nil, err
			}

			updates, err := tree.Map2(m, v, func(_, _ string, m, v *tensor.Tensor) (*tensor.Tensor, error) {
				out := tensor.Zeros(m.Shape(), tensor.Float64)
				md, vd, od := m.Data(), v.Data(), out.Data()
				for i := range od {
					mHat := md[i] / biasCorrection1
					vHat := vd[i] / biasCorrection2
					od[i] = -config.LR * mHat / (math.Sqrt(vHat) + config.Eps)
				}
				return out, nil
			})
			if err != nil {
				return nil, nil, err
			}

			return updates, AdamState{Count: count, M: m, V: v}, nil
		},
	}
}
