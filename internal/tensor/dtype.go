package tensor

import "fmt"

// DataType identifies the element type of a RawTensor.
type DataType int

const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the size of one element in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic(fmt.Sprintf("unknown data type %d", dt))
	}
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// DType is the constraint satisfied by Go types usable as tensor elements.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// inferDataType maps a Go type parameter to its DataType.
func inferDataType[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic(fmt.Sprintf("unsupported tensor element type %T", zero))
	}
}
