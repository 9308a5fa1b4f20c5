package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}

	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.True(t, s.Equal(Shape{2, 3, 4}))
	assert.False(t, s.Equal(Shape{2, 3}))
	assert.False(t, s.Equal(Shape{2, 3, 5}))
	assert.Equal(t, "(2, 3, 4)", s.String())

	clone := s.Clone()
	clone[0] = 9
	assert.Equal(t, 2, s[0], "Clone must not alias")

	require.NoError(t, s.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64)
	require.NoError(t, err)

	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, 6, x.NumElements())
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 2.0, x.At(0, 1))

	_, err = FromSlice([]float64{1, 2, 3}, Shape{2, 2}, Float64)
	assert.Error(t, err)
}

func TestFloat32Rounding(t *testing.T) {
	x, err := FromSlice([]float64{0.1}, Shape{1}, Float32)
	require.NoError(t, err)

	assert.Equal(t, float64(float32(0.1)), x.Data()[0])
	assert.Equal(t, "float32", x.DType().String())
	assert.Equal(t, 4, Float32.Size())
}

func TestElementwiseOps(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4}, Shape{4}, Float64)
	b, _ := FromSlice([]float64{4, 3, 2, 1}, Shape{4}, Float64)

	assert.Equal(t, []float64{5, 5, 5, 5}, a.Add(b).Data())
	assert.Equal(t, []float64{-3, -1, 1, 3}, a.Sub(b).Data())
	assert.Equal(t, []float64{4, 6, 6, 4}, a.Mul(b).Data())
	assert.Equal(t, []float64{2, 4, 6, 8}, a.Scale(2).Data())
	assert.Equal(t, []float64{0.5, 1, 1.5, 2}, a.DivScalar(2).Data())
	assert.Equal(t, []float64{1, 4, 9, 16}, a.Map(func(v float64) float64 { return v * v }).Data())
	assert.Equal(t, 10.0, a.Sum())

	// Inputs are never modified.
	assert.Equal(t, []float64{1, 2, 3, 4}, a.Data())

	c := Zeros(Shape{3}, Float64)
	assert.Panics(t, func() { a.Add(c) })
	assert.Panics(t, func() { a.DivScalar(0) })
}

func TestMatMul(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64)
	b, _ := FromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2}, Float64)

	out := a.MatMul(b)
	assert.Equal(t, Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, out.Data())

	assert.Panics(t, func() { a.MatMul(a) })
}

func TestAddBias(t *testing.T) {
	x := Full(Shape{2, 3}, 1, Float64)
	bias, _ := FromSlice([]float64{1, 2, 3}, Shape{3}, Float64)

	out := x.AddBias(bias)
	assert.Equal(t, []float64{2, 3, 4, 2, 3, 4}, out.Data())

	assert.Panics(t, func() { x.AddBias(Zeros(Shape{2}, Float64)) })
}
