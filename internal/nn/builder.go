package nn

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Common errors.
var (
	ErrNoModule      = errors.New("parameter requested outside of a module")
	ErrMissingParam  = errors.New("parameter not found in params")
	ErrShapeMismatch = errors.New("parameter shape mismatch")
)

// NextCreator materializes a parameter. It is the rest of the creator chain.
type NextCreator func(shape tensor.Shape, dtype tensor.DataType, init Initializer) (*tensor.Tensor, error)

// Creator intercepts parameter creation.
//
// A creator may replace the initializer before calling next, and must return
// whatever next returns unless it fails.
type Creator func(next NextCreator, shape tensor.Shape, dtype tensor.DataType, init Initializer, ctx ParamContext) (*tensor.Tensor, error)

// NextGetter reads a parameter value. It is the rest of the getter chain.
type NextGetter func(value *tensor.Tensor) (*tensor.Tensor, error)

// Getter intercepts every parameter read during a forward pass.
type Getter func(next NextGetter, value *tensor.Tensor, ctx ParamContext) (*tensor.Tensor, error)

// Builder hands parameters to modules during a forward pass.
//
// In init mode missing parameters are created through the creator chain and
// stored; in apply mode they must already exist. Every read goes through the
// getter chain. A Builder is used by a single goroutine.
type Builder struct {
	params       tree.Tree
	initializing bool
	src          rand.Source

	creators []*hook[Creator]
	getters  []*hook[Getter]
	modules  []ModuleInfo
}

type hook[F any] struct {
	fn F
}

// NewBuilder creates a Builder in init mode seeded with seed.
func NewBuilder(seed uint64) *Builder {
	return &Builder{
		params:       tree.Tree{},
		initializing: true,
		src:          rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// NewApplyBuilder creates a Builder that reads from params and never creates.
func NewApplyBuilder(params tree.Tree) *Builder {
	return &Builder{params: params}
}

// Initializing reports whether missing parameters are created.
func (b *Builder) Initializing() bool {
	return b.initializing
}

// Params returns the parameter tree built so far.
func (b *Builder) Params() tree.Tree {
	return b.params
}

// PushCreator installs c until release is called.
//
// Creators installed earlier run first and see later ones as part of next.
// release is idempotent.
func (b *Builder) PushCreator(c Creator) (release func()) {
	h := &hook[Creator]{fn: c}
	b.creators = append(b.creators, h)
	return func() { b.creators = remove(b.creators, h) }
}

// PushGetter installs g until release is called.
//
// Getters installed earlier run first. release is idempotent.
func (b *Builder) PushGetter(g Getter) (release func()) {
	h := &hook[Getter]{fn: g}
	b.getters = append(b.getters, h)
	return func() { b.getters = remove(b.getters, h) }
}

// WithModule runs fn with a module scope named name pushed on the stack.
//
// Nested modules are joined with "/", e.g. "mlp/linear_0".
func (b *Builder) WithModule(name string, kind Kind, fn func() error) error {
	scope := name
	if len(b.modules) > 0 {
		scope = tree.JoinName(b.modules[len(b.modules)-1].Name, name)
	}
	b.modules = append(b.modules, ModuleInfo{Name: scope, Kind: kind})
	defer func() { b.modules = b.modules[:len(b.modules)-1] }()

	return fn()
}

// Param returns the parameter name of the current module.
//
// The returned value has passed through every installed getter and may differ
// from the stored parameter.
func (b *Builder) Param(name string, shape tensor.Shape, dtype tensor.DataType, init Initializer) (*tensor.Tensor, error) {
	if len(b.modules) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoModule, name)
	}
	module := b.modules[len(b.modules)-1]
	ctx := ParamContext{FullName: tree.JoinName(module.Name, name), Module: module}

	value, ok := b.params.Get(module.Name, name)
	if !ok {
		if !b.initializing {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, ctx.FullName)
		}

		created, err := b.create(shape, dtype, init, ctx)
		if err != nil {
			return nil, err
		}
		b.params.Set(module.Name, name, created)
		value = created
	}

	if !value.Shape().Equal(shape) {
		return nil, fmt.Errorf("%w: %s is %v, requested %v", ErrShapeMismatch, ctx.FullName, value.Shape(), shape)
	}

	return b.get(value, ctx)
}

func (b *Builder) create(shape tensor.Shape, dtype tensor.DataType, init Initializer, ctx ParamContext) (*tensor.Tensor, error) {
	// Snapshot so hooks released during creation don't shift the chain.
	creators := append([]*hook[Creator](nil), b.creators...)

	var next func(i int) NextCreator
	next = func(i int) NextCreator {
		if i == len(creators) {
			return func(shape tensor.Shape, dtype tensor.DataType, init Initializer) (*tensor.Tensor, error) {
				return init.Init(shape, dtype, b.src), nil
			}
		}
		return func(shape tensor.Shape, dtype tensor.DataType, init Initializer) (*tensor.Tensor, error) {
			return creators[i].fn(next(i+1), shape, dtype, init, ctx)
		}
	}
	return next(0)(shape, dtype, init)
}

func (b *Builder) get(value *tensor.Tensor, ctx ParamContext) (*tensor.Tensor, error) {
	getters := append([]*hook[Getter](nil), b.getters...)

	var next func(i int) NextGetter
	next = func(i int) NextGetter {
		if i == len(getters) {
			return func(value *tensor.Tensor) (*tensor.Tensor, error) {
				return value, nil
			}
		}
		return func(value *tensor.Tensor) (*tensor.Tensor, error) {
			return getters[i].fn(next(i+1), value, ctx)
		}
	}
	return next(0)(value)
}

func remove[F any](hooks []*hook[F], h *hook[F]) []*hook[F] {
	for i, other := range hooks {
		if other == h {
			return append(hooks[:i:i], hooks[i+1:]...)
		}
	}
	return hooks
}
