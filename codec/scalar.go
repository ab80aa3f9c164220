package codec

import (
	"math"

	"github.com/plugkit/atom/errors"
	"github.com/plugkit/atom/codec/internal/wire"
)

// ScalarKind enumerates the closed set of fixed-width scalar shapes.
type ScalarKind uint8

const (
	ScalarInt32 ScalarKind = iota + 1
	ScalarInt64
	ScalarFloat32
	ScalarFloat64
	ScalarBool
	ScalarURID
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarInt32:
		return "int32"
	case ScalarInt64:
		return "int64"
	case ScalarFloat32:
		return "float32"
	case ScalarFloat64:
		return "float64"
	case ScalarBool:
		return "bool"
	case ScalarURID:
		return "urid"
	}
	return "invalid"
}

// Scalar is a decoded scalar value, copied out of the buffer. The raw
// payload lives in Bits; the typed accessors reinterpret it per Kind.
// There is no implicit numeric coercion between kinds.
type Scalar struct {
	Bits uint64
	Type URID
	Kind ScalarKind
}

func (s Scalar) Int32() int32     { return int32(uint32(s.Bits)) }
func (s Scalar) Int64() int64     { return int64(s.Bits) }
func (s Scalar) Float32() float32 { return math.Float32frombits(uint32(s.Bits)) }
func (s Scalar) Float64() float64 { return math.Float64frombits(s.Bits) }
func (s Scalar) Bool() bool       { return uint32(s.Bits) != 0 }
func (s Scalar) URID() URID       { return URID(uint32(s.Bits)) }

// scalarKind classifies typ against the vocabulary.
func (t CoreTypes) scalarKind(typ URID) (ScalarKind, bool) {
	switch typ {
	case t.Int:
		return ScalarInt32, true
	case t.Long:
		return ScalarInt64, true
	case t.Float:
		return ScalarFloat32, true
	case t.Double:
		return ScalarFloat64, true
	case t.Bool:
		return ScalarBool, true
	case t.URID:
		return ScalarURID, true
	}
	return 0, false
}

// decodeScalar interprets body as the scalar kind tagged by typ. off is
// the body's buffer offset, used only for error reporting.
func (t CoreTypes) decodeScalar(typ URID, body []byte, off uint32) (Scalar, error) {
	kind, ok := t.scalarKind(typ)
	if !ok {
		return Scalar{}, errors.New(errors.PhaseRead, errors.KindUnexpectedType).
			Offset(off).
			Detail("type %d is not a scalar kind", typ).
			Build()
	}

	width, _ := t.scalarSize(typ)
	if uint32(len(body)) < width {
		return Scalar{}, errors.Truncated(errors.PhaseRead, off, width, uint32(len(body)))
	}

	var bits uint64
	if width == 8 {
		bits = wire.ByteOrder.Uint64(body)
	} else {
		bits = uint64(wire.ByteOrder.Uint32(body))
	}

	return Scalar{Type: typ, Kind: kind, Bits: bits}, nil
}

// putScalarBits writes the low width bytes of bits at dst.
func putScalarBits(dst []byte, width uint32, bits uint64) {
	if width == 8 {
		wire.ByteOrder.PutUint64(dst, bits)
	} else {
		wire.ByteOrder.PutUint32(dst, uint32(bits))
	}
}
