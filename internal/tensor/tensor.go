// Package tensor provides the dense tensor type shared by the nn, optim and
// mup packages.
//
// Tensors are row-major float64 buffers tagged with a shape and a DataType.
// Elementwise arithmetic is delegated to gonum's floats package and matrix
// products to gonum's mat package.
package tensor

import "fmt"

// Tensor is a dense, row-major multi-dimensional array.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4}, tensor.Float32)
//	u := t.Scale(2) // new tensor, t is unchanged
type Tensor struct {
	shape Shape
	dtype DataType
	data  []float64
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(err) // Shapes come from module definitions, not user data
	}
	return &Tensor{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]float64, shape.NumElements()),
	}
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, 3.14, tensor.Float64)
func Full(shape Shape, value float64, dtype DataType) *Tensor {
	t := Zeros(shape, dtype)
	v := dtype.round(value)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	t := Zeros(shape, dtype)
	for i, v := range data {
		t.data[i] = dtype.round(v)
	}
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying buffer.
//
// Writes through the returned slice modify the tensor and bypass dtype
// rounding.
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("At: expected %d indices, got %d", len(t.shape), len(idx)))
	}
	offset, stride := 0, 1
	for i := len(idx) - 1; i >= 0; i-- {
		if idx[i] < 0 || idx[i] >= t.shape[i] {
			panic(fmt.Sprintf("At: index %d out of range for dimension %d of shape %v", idx[i], i, t.shape))
		}
		offset += idx[i] * stride
		stride *= t.shape[i]
	}
	return t.data[offset]
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), dtype: t.dtype, data: data}
}

// String implements fmt.Stringer with a compact summary.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(%s, %v)", t.dtype, t.shape)
}
