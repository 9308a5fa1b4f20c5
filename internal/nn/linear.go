package nn

import (
	"fmt"
	"math"
	"strconv"

	"github.com/born-ml/born-mup/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// in_features is taken from the input on first use. Weights default to
// N(0, 1/in_features), biases to zeros.
//
// Example:
//
//	layer := nn.NewLinear("hidden", 128)
//	output, err := layer.Forward(b, input) // shape: [32, 128]
type Linear struct {
	name        string
	kind        Kind
	outFeatures int
	withBias    bool
	dtype       tensor.DataType
	wInit       Initializer // nil means LeCunNormal(in_features)
	bInit       Initializer
}

// NewLinear creates a new Linear layer.
func NewLinear(name string, outFeatures int) *Linear {
	return &Linear{
		name:        name,
		kind:        KindModule,
		outFeatures: outFeatures,
		withBias:    true,
		dtype:       tensor.Float32,
		bInit:       Zeros,
	}
}

// NewReadout creates an output Linear layer with the readout capability.
func NewReadout(name string, outFeatures int) *Linear {
	l := NewLinear(name, outFeatures)
	l.kind = KindReadout
	return l
}

// WithWeightInit overrides the weight initializer.
func (l *Linear) WithWeightInit(init Initializer) *Linear {
	l.wInit = init
	return l
}

// WithoutBias drops the bias parameter.
func (l *Linear) WithoutBias() *Linear {
	l.withBias = false
	return l
}

// Name returns the module name.
func (l *Linear) Name() string {
	return l.name
}

// Kind returns the module kind.
func (l *Linear) Kind() Kind {
	return l.kind
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
	inputShape := x.Shape()
	if len(inputShape) != 2 {
		return nil, fmt.Errorf("linear %q: expected 2D input [batch, features], got shape %v", l.name, inputShape)
	}
	inFeatures := inputShape[1]

	var out *tensor.Tensor
	err := b.WithModule(l.name, l.kind, func() error {
		wInit := l.wInit
		if wInit == nil {
			wInit = LeCunNormal(inFeatures)
		}
		w, err := b.Param("w", tensor.Shape{inFeatures, l.outFeatures}, l.dtype, wInit)
		if err != nil {
			return err
		}
		out = x.MatMul(w)

		if l.withBias {
			bias, err := b.Param("b", tensor.Shape{l.outFeatures}, l.dtype, l.bInit)
			if err != nil {
				return err
			}
			out = out.AddBias(bias)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MLP is a stack of Linear layers with tanh activations, topped by a Readout.
//
// Layers are named "linear_0", "linear_1", ... and "readout" inside the MLP's
// own scope.
type MLP struct {
	name   string
	layers []*Linear
}

// NewMLP creates an MLP with the given hidden widths and output size.
func NewMLP(name string, hidden []int, outFeatures int) *MLP {
	layers := make([]*Linear, 0, len(hidden)+1)
	for i, width := range hidden {
		layers = append(layers, NewLinear("linear_"+strconv.Itoa(i), width))
	}
	layers = append(layers, NewReadout("readout", outFeatures))
	return &MLP{name: name, layers: layers}
}

// Layers returns the layers in forward order, the readout last.
func (m *MLP) Layers() []*Linear {
	return m.layers
}

// Forward runs every layer in order.
func (m *MLP) Forward(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
	var out *tensor.Tensor
	err := b.WithModule(m.name, KindModule, func() error {
		h := x
		for i, layer := range m.layers {
			next, err := layer.Forward(b, h)
			if err != nil {
				return err
			}
			if i < len(m.layers)-1 {
				next = next.Map(math.Tanh)
			}
			h = next
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
