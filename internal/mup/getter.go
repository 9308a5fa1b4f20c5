package mup

import (
	"github.com/born-ml/born-mup/internal/nn"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Getter returns the forward-pass interceptor.
//
// Parameters of readout modules are divided by the multiplier recorded for
// their scope. Everything else passes through unchanged.
func (m *Mup) Getter() nn.Getter {
	return m.get
}

func (m *Mup) get(next nn.NextGetter, value *tensor.Tensor, ctx nn.ParamContext) (*tensor.Tensor, error) {
	val, err := next(value)
	if err != nil {
		return nil, err
	}
	if !ctx.Module.IsReadout() {
		return val, nil
	}

	parent, _, ok := tree.SplitName(ctx.FullName)
	if !ok {
		return val, nil
	}
	widthMult, ok := m.readoutMults.Get(parent)
	if !ok || widthMult == 0 {
		return val, nil
	}

	return val.DivScalar(widthMult), nil
}

// Apply installs the muP hooks on b until release is called.
//
// The getter is always installed. The creator is installed only while a
// session is open, so the same region serves initialization and training.
func (m *Mup) Apply(b *nn.Builder) (release func()) {
	releaseGetter := b.PushGetter(m.Getter())
	if !m.active {
		return releaseGetter
	}

	releaseCreator := b.PushCreator(m.Creator())
	return func() {
		releaseCreator()
		releaseGetter()
	}
}

// Transform turns fn into a model whose every Init and Apply runs inside
// Apply.
func (m *Mup) Transform(fn nn.ForwardFunc) nn.Transformed {
	return nn.Transform(func(b *nn.Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
		release := m.Apply(b)
		defer release()

		return fn(b, x)
	})
}
