// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense tensors used by
// born-mup models and optimizers.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32)
//	y := tensor.Full(tensor.Shape{2, 3}, 1, tensor.Float32)
//	z := x.Add(y) // Element-wise addition
package tensor

import (
	"github.com/born-ml/born-mup/internal/tensor"
)

// Type aliases for public API

// Tensor is a dense, row-major multi-dimensional array.
type Tensor = tensor.Tensor

// DataType represents the precision of a tensor's values.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) *Tensor {
	return tensor.Zeros(shape, dtype)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, dtype DataType) *Tensor {
	return tensor.Full(shape, value, dtype)
}

// FromSlice creates a tensor from a Go slice, copying it.
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.FromSlice(data, shape, dtype)
}
