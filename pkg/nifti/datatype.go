package nifti

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Datatype identifies the numeric encoding of the raw sample buffer, using
// the standard NIfTI datatype codes.
type Datatype uint16

// The closed set of supported sample encodings.
const (
	DatatypeUint8   Datatype = 2
	DatatypeInt16   Datatype = 4
	DatatypeInt32   Datatype = 8
	DatatypeFloat32 Datatype = 16
	DatatypeFloat64 Datatype = 64
	DatatypeInt8    Datatype = 256
	DatatypeUint16  Datatype = 512
	DatatypeUint32  Datatype = 768
)

// String returns a short name for the datatype, or the numeric code for
// unknown values.
func (d Datatype) String() string {
	switch d {
	case DatatypeUint8:
		return "uint8"
	case DatatypeInt8:
		return "int8"
	case DatatypeInt16:
		return "int16"
	case DatatypeUint16:
		return "uint16"
	case DatatypeInt32:
		return "int32"
	case DatatypeUint32:
		return "uint32"
	case DatatypeFloat32:
		return "float32"
	case DatatypeFloat64:
		return "float64"
	}
	return fmt.Sprintf("datatype(%d)", uint16(d))
}

// sampleReader reinterprets one raw sample at the start of a byte slice.
type sampleReader struct {
	// size is the sample width in bytes
	size int

	// read converts the first size bytes of b to float64
	read func(b []byte, order binary.ByteOrder) float64
}

var float32Reader = sampleReader{
	size: 4,
	read: func(b []byte, order binary.ByteOrder) float64 {
		return float64(math.Float32frombits(order.Uint32(b)))
	},
}

// readerFor maps a datatype code to its sample reader. The switch is
// exhaustive over the supported set; any other code reports ok == false and
// returns the float32 reader as the fallback interpretation, so the caller
// can keep decoding while flagging the condition.
func readerFor(code Datatype) (r sampleReader, ok bool) {
	switch code {
	case DatatypeUint8:
		return sampleReader{1, func(b []byte, _ binary.ByteOrder) float64 {
			return float64(b[0])
		}}, true
	case DatatypeInt8:
		return sampleReader{1, func(b []byte, _ binary.ByteOrder) float64 {
			return float64(int8(b[0]))
		}}, true
	case DatatypeInt16:
		return sampleReader{2, func(b []byte, order binary.ByteOrder) float64 {
			return float64(int16(order.Uint16(b)))
		}}, true
	case DatatypeUint16:
		return sampleReader{2, func(b []byte, order binary.ByteOrder) float64 {
			return float64(order.Uint16(b))
		}}, true
	case DatatypeInt32:
		return sampleReader{4, func(b []byte, order binary.ByteOrder) float64 {
			return float64(int32(order.Uint32(b)))
		}}, true
	case DatatypeUint32:
		return sampleReader{4, func(b []byte, order binary.ByteOrder) float64 {
			return float64(order.Uint32(b))
		}}, true
	case DatatypeFloat32:
		return float32Reader, true
	case DatatypeFloat64:
		return sampleReader{8, func(b []byte, order binary.ByteOrder) float64 {
			return math.Float64frombits(order.Uint64(b))
		}}, true
	default:
		return float32Reader, false
	}
}
