// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mup provides maximal update parametrization (muP) for born-mup
// models.
//
// # Overview
//
// muP makes hyperparameters tuned on a small base model transfer to wider
// versions of it. For every parameter, the ratio between its shape and its
// shape in the base model decides:
//   - its SGD and Adam learning-rate multipliers;
//   - for readout layers growing along one dimension, a smaller initial
//     standard deviation and an output multiplier applied on every read.
//
// # Basic Usage
//
//	tracker := mup.New()
//	model := tracker.Transform(forward)
//
//	var params tree.Tree
//	err := tracker.InitContext(mup.Shapes(baseParams), func() (err error) {
//	    params, err = model.Init(seed, x)
//	    return err
//	})
//
//	tx, err := tracker.WrapOptimizer(optim.Adam(optim.AdamConfig{LR: 1e-3}), true)
//	opt, err := optim.NewOptimizer(tx, params)
package mup

import (
	"github.com/born-ml/born-mup/internal/mup"
	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Mup tracks base shapes, learning-rate multipliers and readout multipliers.
type Mup = mup.Mup

// Option configures a Mup.
type Option = mup.Option

// New creates a Mup.
func New(opts ...Option) *Mup {
	return mup.New(opts...)
}

// WithLogger sets the structured logger for session and registry events.
var WithLogger = mup.WithLogger

// BaseShapes maps parent scope -> parameter name -> base shape.
type BaseShapes = mup.BaseShapes

// Shapes returns the shape tree of params.
func Shapes(params tree.Tree) BaseShapes {
	return mup.Shapes(params)
}

// LR holds the learning-rate multipliers of one parameter.
type LR = mup.LR

// Registry stores learning-rate multipliers per parameter.
type Registry = mup.Registry

// ReadoutMults maps readout scopes to width multipliers.
type ReadoutMults = mup.ReadoutMults

// Ratios describes how a shape differs from its base shape.
type Ratios = mup.Ratios

// Analyze compares a parameter's base and actual shapes.
func Analyze(param string, base, actual tensor.Shape) (Ratios, error) {
	return mup.Analyze(param, base, actual)
}

// LearningRates derives multipliers from shape ratios.
func LearningRates(r Ratios) LR {
	return mup.LearningRates(r)
}

// Load reads a checkpoint written by Mup.Save and returns its parameters
// with a Mup holding the saved multipliers.
func Load(path string, opts ...Option) (*Mup, tree.Tree, error) {
	return mup.Load(path, opts...)
}

// LoadBaseShapes reads the parameter shapes of a .born checkpoint.
func LoadBaseShapes(path string) (BaseShapes, error) {
	return mup.LoadBaseShapes(path)
}

// DimensionError reports more than two infinite dimensions.
type DimensionError = mup.DimensionError

// Errors.
var (
	ErrSessionReuse        = mup.ErrSessionReuse
	ErrSessionActive       = mup.ErrSessionActive
	ErrNoActiveSession     = mup.ErrNoActiveSession
	ErrMissingBaseShape    = mup.ErrMissingBaseShape
	ErrTooManyInfiniteDims = mup.ErrTooManyInfiniteDims
	ErrEmptyRegistry       = mup.ErrEmptyRegistry
	ErrInvalidName         = mup.ErrInvalidName
	ErrNoMupMeta           = mup.ErrNoMupMeta
)
