// Package nn implements the parameter creation and read mechanism used by
// models, plus a few modules built on it.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Builder: Creates parameters on first use and reads them afterwards,
//     running the installed Creator and Getter hooks
//   - Kind: Module capability flag (plain module or readout)
//   - Initializers: Normal, Uniform, Xavier, Constant, Zeros, ScaleStd
//   - Linear, Readout and MLP modules
//
// A model is a ForwardFunc turned into an init/apply pair with Transform:
//
//	model := nn.Transform(func(b *nn.Builder, x *tensor.Tensor) (*tensor.Tensor, error) {
//	    return nn.NewMLP("mlp", []int{256, 256}, 10).Forward(b, x)
//	})
//	params, err := model.Init(seed, x)
//	out, err := model.Apply(params, x)
package nn

import "github.com/born-ml/born-mup/internal/tensor"

// Kind is the capability flag attached to every module.
type Kind int

const (
	// KindModule is an ordinary module.
	KindModule Kind = iota
	// KindReadout marks an output layer whose weights are rescaled by width.
	KindReadout
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindReadout:
		return "readout"
	default:
		return "unknown"
	}
}

// ModuleInfo describes the module owning a parameter.
type ModuleInfo struct {
	Name string // Full scope, e.g. "mlp/readout"
	Kind Kind
}

// IsReadout reports whether the module has the readout capability.
func (m ModuleInfo) IsReadout() bool {
	return m.Kind == KindReadout
}

// ParamContext is handed to Creator and Getter hooks for every parameter.
type ParamContext struct {
	FullName string // Scope and local name, e.g. "mlp/readout/w"
	Module   ModuleInfo
}

// Module is the base interface for all neural network components.
//
// Modules look up their parameters through the Builder on every call, so the
// same module value works for both Init and Apply.
type Module interface {
	Forward(b *Builder, x *tensor.Tensor) (*tensor.Tensor, error)
}
