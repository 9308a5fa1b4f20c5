package tensor

// DataType represents runtime type information for tensors.
//
// Storage is always float64; the data type decides the precision values are
// rounded to when they are written.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// round converts v to the precision of the data type.
func (dt DataType) round(v float64) float64 {
	if dt == Float32 {
		return float64(float32(v))
	}
	return v
}
