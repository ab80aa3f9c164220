package wire

import (
	"encoding/binary"
	"math"
)

const (
	// HeaderSize is the fixed atom header: type URID (4) + body size (4).
	HeaderSize = 8

	// Align is the boundary every atom header starts on. Body sizes
	// exclude the padding that restores this alignment.
	Align = 8
)

// ByteOrder is the wire byte order. The format follows the host
// platform's native order; cross-architecture exchange is out of scope.
var ByteOrder = binary.NativeEndian

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Pad returns the number of padding bytes needed after n to reach the
// next Align boundary.
func Pad(n uint32) uint32 {
	return (Align - n%Align) % Align
}

// Padded returns n rounded up to the next Align boundary, reporting
// overflow instead of wrapping.
func Padded(n uint32) (uint32, bool) {
	return SafeAddU32(n, Pad(n))
}
