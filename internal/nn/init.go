package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/born-mup/internal/tensor"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer produces the initial value of a parameter.
//
// src is the Builder's random source; deterministic initializers ignore it.
type Initializer interface {
	Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor
}

// InitFunc adapts a function to the Initializer interface.
type InitFunc func(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor

// Init calls f.
func (f InitFunc) Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor {
	return f(shape, dtype, src)
}

// Normal draws values from N(Mean, Std²).
type Normal struct {
	Mean float64
	Std  float64
}

// Init implements Initializer.
func (n Normal) Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor {
	dist := distuv.Normal{Mu: n.Mean, Sigma: n.Std, Src: src}
	return sample(shape, dtype, dist.Rand)
}

// Uniform draws values from U(Min, Max).
type Uniform struct {
	Min float64
	Max float64
}

// Init implements Initializer.
func (u Uniform) Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor {
	dist := distuv.Uniform{Min: u.Min, Max: u.Max, Src: src}
	return sample(shape, dtype, dist.Rand)
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// The first dimension of the shape is fan-in and the last one fan-out.
type Xavier struct{}

// Init implements Initializer.
func (Xavier) Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor {
	fanIn, fanOut := 1, 1
	if len(shape) > 0 {
		fanIn, fanOut = shape[0], shape[len(shape)-1]
	}
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return Uniform{Min: -bound, Max: bound}.Init(shape, dtype, src)
}

// Constant fills the parameter with a single value.
type Constant float64

// Init implements Initializer.
func (c Constant) Init(shape tensor.Shape, dtype tensor.DataType, _ rand.Source) *tensor.Tensor {
	return tensor.Full(shape, float64(c), dtype)
}

// Zeros is the usual bias initializer.
var Zeros Initializer = Constant(0)

// ScaleStd wraps init so every generated value is multiplied by factor.
//
// For a zero-mean initializer the generated standard deviation becomes
// |factor| times the original.
func ScaleStd(init Initializer, factor float64) Initializer {
	return scaledInit{inner: init, factor: factor}
}

type scaledInit struct {
	inner  Initializer
	factor float64
}

func (s scaledInit) Init(shape tensor.Shape, dtype tensor.DataType, src rand.Source) *tensor.Tensor {
	return s.inner.Init(shape, dtype, src).Scale(s.factor)
}

// LeCunNormal returns N(0, 1/fanIn), the default weight initializer of Linear.
func LeCunNormal(fanIn int) Initializer {
	return Normal{Std: 1 / math.Sqrt(float64(fanIn))}
}

func sample(shape tensor.Shape, dtype tensor.DataType, draw func() float64) *tensor.Tensor {
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = draw()
	}
	t, err := tensor.FromSlice(data, shape, dtype)
	if err != nil {
		panic(err) // Length always matches shape
	}
	return t
}
