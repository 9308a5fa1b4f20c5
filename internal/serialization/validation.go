package serialization

import (
	"fmt"
	"sort"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxDataSize      = 1 << 40           // 1TB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// validateTensors checks tensor metadata against the data section: every
// tensor must have a known dtype, a size matching its shape, and a region that
// stays inside the data section without overlapping another tensor.
func validateTensors(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]bool, len(tensors))
	for _, t := range tensors {
		if t.Name == "" || len(t.Name) > MaxTensorNameLen {
			return &ValidationError{Type: "invalid_name", Tensor: t.Name, Details: fmt.Sprintf("length %d", len(t.Name))}
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_name", Tensor: t.Name, Details: "name appears twice"}
		}
		seen[t.Name] = true

		dtype, err := stringToDtype(t.DType)
		if err != nil {
			return &ValidationError{Type: "invalid_dtype", Tensor: t.Name, Details: err.Error()}
		}
		var n int64 = 1
		for _, dim := range t.Shape {
			if dim <= 0 || int64(dim) > dataSize/n {
				return &ValidationError{Type: "invalid_shape", Tensor: t.Name, Details: fmt.Sprintf("shape %v for %d data bytes", t.Shape, dataSize)}
			}
			n *= int64(dim)
		}
		if want := n * int64(dtype.Size()); t.Size != want {
			return &ValidationError{
				Type:    "size_mismatch",
				Tensor:  t.Name,
				Details: fmt.Sprintf("size %d, shape %v needs %d", t.Size, t.Shape, want),
			}
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}
		if t.Offset > dataSize-t.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}
