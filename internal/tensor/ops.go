package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Scale returns t * c.
func (t *Tensor) Scale(c float64) *Tensor {
	out := t.Clone()
	floats.Scale(c, out.data)
	out.roundInPlace()
	return out
}

// DivScalar returns t / c.
func (t *Tensor) DivScalar(c float64) *Tensor {
	if c == 0 {
		panic("DivScalar: division by zero")
	}
	return t.Scale(1 / c)
}

// Add returns the elementwise sum t + other.
func (t *Tensor) Add(other *Tensor) *Tensor {
	t.mustMatch("Add", other)
	out := t.Clone()
	floats.Add(out.data, other.data)
	out.roundInPlace()
	return out
}

// Sub returns the elementwise difference t - other.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	t.mustMatch("Sub", other)
	out := t.Clone()
	floats.Sub(out.data, other.data)
	out.roundInPlace()
	return out
}

// Mul returns the elementwise product t * other.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	t.mustMatch("Mul", other)
	out := t.Clone()
	floats.Mul(out.data, other.data)
	out.roundInPlace()
	return out
}

// Map applies fn to every element and returns the result.
func (t *Tensor) Map(fn func(float64) float64) *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = t.dtype.round(fn(v))
	}
	return out
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.data)
}

// MatMul computes the matrix product of two 2D tensors.
//
// [m, k] @ [k, n] = [m, n]
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("MatMul: expected 2D tensors, got %v and %v", t.shape, other.shape))
	}
	if t.shape[1] != other.shape[0] {
		panic(fmt.Sprintf("MatMul: inner dimensions differ: %v @ %v", t.shape, other.shape))
	}

	a := mat.NewDense(t.shape[0], t.shape[1], t.data)
	b := mat.NewDense(other.shape[0], other.shape[1], other.data)

	out := Zeros(Shape{t.shape[0], other.shape[1]}, t.dtype)
	c := mat.NewDense(t.shape[0], other.shape[1], out.data)
	c.Mul(a, b)
	out.roundInPlace()
	return out
}

// AddBias adds a 1D bias along the last dimension of a 2D tensor.
//
// [m, n] + [n] = [m, n]
func (t *Tensor) AddBias(bias *Tensor) *Tensor {
	if len(t.shape) != 2 || len(bias.shape) != 1 || bias.shape[0] != t.shape[1] {
		panic(fmt.Sprintf("AddBias: cannot add bias %v to %v", bias.shape, t.shape))
	}

	out := t.Clone()
	cols := t.shape[1]
	for r := 0; r < t.shape[0]; r++ {
		floats.Add(out.data[r*cols:(r+1)*cols], bias.data)
	}
	out.roundInPlace()
	return out
}

func (t *Tensor) mustMatch(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, t.shape, other.shape))
	}
}

func (t *Tensor) roundInPlace() {
	if t.dtype == Float64 {
		return
	}
	for i, v := range t.data {
		t.data[i] = t.dtype.round(v)
	}
}
