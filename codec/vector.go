package codec

import (
	"unsafe"

	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

// VectorView is a validated view of a Vector atom: a homogeneous run
// of fixed-width elements. Validation is eager; a view only exists for
// a vector whose body length is exactly 8 + childSize*count.
type VectorView struct {
	r         *Reader
	data      []byte
	off       uint32
	childType URID
	childSize uint32
	count     uint32
}

// Vector parses the atom as a vector.
func (a Atom) Vector() (VectorView, error) {
	if a.hdr.Type != a.r.types.Vector {
		return VectorView{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Vector))
	}
	body := a.Body()
	if len(body) < 8 {
		return VectorView{}, errors.Malformed(a.off, "vector body shorter than its 8-byte header")
	}
	childSize := wire.ByteOrder.Uint32(body[0:])
	childType := URID(wire.ByteOrder.Uint32(body[4:]))
	if childSize == 0 {
		return VectorView{}, errors.Malformed(a.off, "vector child size is zero")
	}
	rest := body[8:]
	if uint32(len(rest))%childSize != 0 {
		return VectorView{}, errors.Malformed(a.off,
			"vector body size %d is not 8 + %d*count", a.hdr.Size, childSize)
	}
	return VectorView{
		r:         a.r,
		data:      rest,
		off:       a.off,
		childType: childType,
		childSize: childSize,
		count:     uint32(len(rest)) / childSize,
	}, nil
}

// ChildType returns the element type URID.
func (v VectorView) ChildType() URID {
	return v.childType
}

// ChildSize returns the element width in bytes.
func (v VectorView) ChildSize() uint32 {
	return v.childSize
}

// Len returns the element count.
func (v VectorView) Len() int {
	return int(v.count)
}

// Element returns the i-th element's bytes without copying.
func (v VectorView) Element(i int) ([]byte, error) {
	if i < 0 || uint32(i) >= v.count {
		return nil, errors.New(errors.PhaseRead, errors.KindMalformedContainer).
			Offset(v.off).
			Detail("element index %d out of range (count %d)", i, v.count).
			Build()
	}
	start := uint32(i) * v.childSize
	return v.data[start : start+v.childSize], nil
}

// Iter returns an element iterator. The iterator never mutates the
// buffer; calling Iter again restarts from the first element.
func (v VectorView) Iter() VectorIter {
	return VectorIter{v: v}
}

// VectorIter yields the elements of a vector in order.
type VectorIter struct {
	v VectorView
	i uint32
}

// Next returns the next element's bytes, or false when exhausted.
func (it *VectorIter) Next() ([]byte, bool) {
	if it.i >= it.v.count {
		return nil, false
	}
	start := it.i * it.v.childSize
	it.i++
	return it.v.data[start : start+it.v.childSize], true
}

// typedRun reinterprets the packed element run, checking the locked
// child type and width first.
func (v VectorView) typedRun(want URID, width uint32) ([]byte, error) {
	if v.childType != want || v.childSize != width {
		return nil, errors.UnexpectedType(v.off, uint32(v.childType), uint32(want))
	}
	if v.count == 0 {
		return nil, nil
	}
	if uintptr(unsafe.Pointer(&v.data[0]))%uintptr(width) != 0 {
		return nil, errors.Malformed(v.off, "vector element run is misaligned")
	}
	return v.data, nil
}

// Int32s returns the elements of an Int vector as a zero-copy slice.
func (v VectorView) Int32s() ([]int32, error) {
	run, err := v.typedRun(v.r.types.Int, 4)
	if err != nil || run == nil {
		return nil, err
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&run[0])), v.count), nil
}

// Int64s returns the elements of a Long vector as a zero-copy slice.
func (v VectorView) Int64s() ([]int64, error) {
	run, err := v.typedRun(v.r.types.Long, 8)
	if err != nil || run == nil {
		return nil, err
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&run[0])), v.count), nil
}

// Float32s returns the elements of a Float vector as a zero-copy slice.
func (v VectorView) Float32s() ([]float32, error) {
	run, err := v.typedRun(v.r.types.Float, 4)
	if err != nil || run == nil {
		return nil, err
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&run[0])), v.count), nil
}

// Float64s returns the elements of a Double vector as a zero-copy slice.
func (v VectorView) Float64s() ([]float64, error) {
	run, err := v.typedRun(v.r.types.Double, 8)
	if err != nil || run == nil {
		return nil, err
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&run[0])), v.count), nil
}
