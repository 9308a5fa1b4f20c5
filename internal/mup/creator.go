package mup

import (
	"github.com/born-ml/born-mup/internal/nn"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
	"github.com/pkg/errors"
)

// Creator returns the initialization interceptor.
//
// For every created parameter it records learning-rate multipliers and, for
// readout weights with a single infinite dimension, divides the initializer's
// standard deviation by the width multiplier and records that multiplier for
// the readout scope.
func (m *Mup) Creator() nn.Creator {
	return m.create
}

func (m *Mup) create(next nn.NextCreator, shape tensor.Shape, dtype tensor.DataType, init nn.Initializer, ctx nn.ParamContext) (*tensor.Tensor, error) {
	if !m.active {
		return nil, errors.Wrapf(ErrNoActiveSession, "creating %s", ctx.FullName)
	}

	parent, name, ok := tree.SplitName(ctx.FullName)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidName, "%q", ctx.FullName)
	}

	base, ok := m.baseShapes.Get(parent, name)
	if !ok {
		return nil, errors.Wrapf(ErrMissingBaseShape, "%s", ctx.FullName)
	}

	ratios, err := Analyze(ctx.FullName, base, shape)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	m.setLRs(parent, name, LearningRates(ratios))

	if ctx.Module.IsReadout() && ratios.Count == 1 {
		widthMult := ratios.WidthMult()
		init = nn.ScaleStd(init, 1/widthMult)
		m.readoutMults[parent] = widthMult
		m.logger.Debug("mup readout multiplier", "scope", parent, "width_mult", widthMult)
	}

	return next(shape, dtype, init)
}
