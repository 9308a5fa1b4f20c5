package nn

import (
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// ForwardFunc is a model's forward computation.
type ForwardFunc func(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error)

// Transformed is a ForwardFunc split into parameter initialization and
// application.
type Transformed struct {
	fn ForwardFunc
}

// Transform turns fn into an init/apply pair.
func Transform(fn ForwardFunc) Transformed {
	return Transformed{fn: fn}
}

// Init runs the forward pass once on x, creating every parameter, and returns
// the parameter tree.
func (t Transformed) Init(seed uint64, x *tensor.Tensor) (tree.Tree, error) {
	b := NewBuilder(seed)
	if _, err := t.fn(b, x); err != nil {
		return nil, err
	}
	return b.Params(), nil
}

// Apply runs the forward pass on x reading parameters from params.
func (t Transformed) Apply(params tree.Tree, x *tensor.Tensor) (*tensor.Tensor, error) {
	return t.fn(NewApplyBuilder(params), x)
}
