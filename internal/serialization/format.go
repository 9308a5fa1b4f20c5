package serialization

import (
	"fmt"
	"time"

	"github.com/born-ml/born-mup/internal/tensor"
	"github.com/born-ml/born-mup/internal/tree"
)

// Format constants.
const (
	MagicBytes       = "BORN"
	FormatVersion    = 2
	FixedHeaderSize  = 64   // 0x40 bytes
	HeaderAlignment  = 64   // Tensor data starts on a 64-byte boundary
	ChecksumSize     = 32   // SHA-256
	ChecksumOffset   = 0x20 // Checksum offset in the fixed header
	headerSizeOffset = 0x10
	dataSizeOffset   = 0x18
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Flags for the .born format.
const (
	FlagHasMetadata uint32 = 1 << 2 // bit 2: custom metadata included
	FlagHasMup      uint32 = 1 << 3 // bit 3: muP multipliers included
)

// Header represents the JSON header in a .born file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	Version       string            `json:"version"`    // Version of the writer
	ModelType     string            `json:"model_type"` // e.g. "mlp"
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Mup           *MupMeta          `json:"mup,omitempty"`
}

// MupMeta holds the muP multipliers recorded for the saved parameters.
type MupMeta struct {
	LearningRates tree.Nested[LRMeta] `json:"learning_rates"`
	ReadoutMults  map[string]float64  `json:"readout_mults,omitempty"`
}

// LRMeta is the learning-rate multiplier pair of one parameter.
type LRMeta struct {
	SGD  float64 `json:"sgd"`
	Adam float64 `json:"adam"`
}

// TensorMeta describes a tensor in the .born file.
type TensorMeta struct {
	Name   string `json:"name"`   // Full parameter name, e.g. "mlp/linear_0/w"
	DType  string `json:"dtype"`  // "float32" or "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// Shapes returns the parameter shape tree described by the header.
func (h Header) Shapes() (tree.Nested[tensor.Shape], error) {
	shapes := tree.Nested[tensor.Shape]{}
	for _, meta := range h.Tensors {
		scope, name, ok := tree.SplitName(meta.Name)
		if !ok {
			return nil, &ValidationError{Type: "invalid_name", Tensor: meta.Name, Details: "missing scope"}
		}
		shapes.Set(scope, name, tensor.Shape(meta.Shape).Clone())
	}
	return shapes, nil
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, error) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, nil
	case DTypeFloat64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported dtype: %s", s)
	}
}

func alignedOffset(pos int64) int64 {
	return pos + (HeaderAlignment-(pos%HeaderAlignment))%HeaderAlignment
}
