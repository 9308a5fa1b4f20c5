// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package mup_test

import (
	"testing"

	"github.com/born-ml/born-mup/mup"
	"github.com/born-ml/born-mup/nn"
	"github.com/born-ml/born-mup/optim"
	"github.com/born-ml/born-mup/tensor"
	"github.com/born-ml/born-mup/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublicAPI walks the documented usage through the public packages.
func TestPublicAPI(t *testing.T) {
	forward := func(width int) nn.ForwardFunc {
		return func(b *nn.Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
			return nn.NewMLP("mlp", []int{width}, 1).Forward(b, x)
		}
	}
	x := tensor.Full(tensor.Shape{2, 3}, 1, tensor.Float32)

	baseParams, err := nn.Transform(forward(16)).Init(0, x)
	require.NoError(t, err)

	tracker := mup.New()
	model := tracker.Transform(forward(64))

	_, err = tracker.WrapOptimizer(optim.SGD(optim.SGDConfig{}), false)
	assert.ErrorIs(t, err, mup.ErrEmptyRegistry)

	var params tree.Tree
	err = tracker.InitContext(mup.Shapes(baseParams), func() (err error) {
		params, err = model.Init(1, x)
		return err
	})
	require.NoError(t, err)

	mult, ok := tracker.ReadoutMult("mlp/readout")
	require.True(t, ok)
	assert.Equal(t, 4.0, mult)

	tx, err := tracker.WrapOptimizer(optim.SGD(optim.SGDConfig{LR: 0.1}), false)
	require.NoError(t, err)
	opt, err := optim.NewOptimizer(tx, params)
	require.NoError(t, err)

	zeros := tree.Map(params, func(_, _ string, p *tensor.Tensor) *tensor.Tensor {
		return tensor.Zeros(p.Shape(), tensor.Float64)
	})
	require.NoError(t, opt.Step(zeros))

	out, err := model.Apply(opt.Params(), x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, out.Shape())

	_, err = mup.Analyze("a/b", tensor.Shape{1, 1, 1}, tensor.Shape{2, 2, 2})
	assert.ErrorIs(t, err, mup.ErrTooManyInfiniteDims)
}
