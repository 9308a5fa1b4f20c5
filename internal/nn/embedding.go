package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/born-mup/internal/tensor"
)

// Embedding is a lookup table that maps discrete indices to dense vectors.
//
// Architecture:
//   - Table: [NumEmbed, EmbedDim] parameter named "table"
//   - Forward: indices [n] -> embeddings [n, EmbedDim]
//
// Indices are carried in a float tensor and must hold whole numbers in
// [0, NumEmbed). The table defaults to N(0, 1).
//
// Example:
//
//	embed := nn.NewEmbedding("embed", 10000, 256)
//	ids, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, tensor.Float32)
//	vectors, err := embed.Forward(b, ids) // shape: [3, 256]
type Embedding struct {
	name     string
	numEmbed int
	embedDim int
	dtype    tensor.DataType
	init     Initializer
}

// NewEmbedding creates a new Embedding layer.
func NewEmbedding(name string, numEmbed, embedDim int) *Embedding {
	return &Embedding{
		name:     name,
		numEmbed: numEmbed,
		embedDim: embedDim,
		dtype:    tensor.Float32,
		init:     Normal{Std: 1},
	}
}

// WithInit overrides the table initializer.
func (e *Embedding) WithInit(init Initializer) *Embedding {
	e.init = init
	return e
}

// Name returns the module name.
func (e *Embedding) Name() string {
	return e.name
}

// Forward looks up one table row per index.
func (e *Embedding) Forward(b *Builder, ids *tensor.Tensor) (*tensor.Tensor, error) {
	if len(ids.Shape()) != 1 {
		return nil, fmt.Errorf("embedding %q: expected 1D indices, got shape %v", e.name, ids.Shape())
	}

	var out *tensor.Tensor
	err := b.WithModule(e.name, KindModule, func() error {
		table, err := b.Param("table", tensor.Shape{e.numEmbed, e.embedDim}, e.dtype, e.init)
		if err != nil {
			return err
		}

		rows := table.Data()
		data := make([]float64, 0, ids.NumElements()*e.embedDim)
		for i, v := range ids.Data() {
			if v != math.Trunc(v) || v < 0 || v >= float64(e.numEmbed) {
				return fmt.Errorf("embedding %q: index %v at position %d outside [0, %d)", e.name, v, i, e.numEmbed)
			}
			idx := int(v)
			data = append(data, rows[idx*e.embedDim:(idx+1)*e.embedDim]...)
		}
		out, err = tensor.FromSlice(data, tensor.Shape{ids.NumElements(), e.embedDim}, e.dtype)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
