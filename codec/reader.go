package codec

import (
	"github.com/plugkit/atom/codec/internal/wire"
	"github.com/plugkit/atom/errors"
)

// Reader parses an existing buffer into typed views. It never mutates
// the buffer, never copies payload bytes for container access, and
// bounds-checks every read, so a malformed buffer yields an error
// rather than an out-of-range access.
//
// A Reader holds only an immutable borrow of the buffer; any number of
// readers may walk the same bytes concurrently.
type Reader struct {
	types CoreTypes
	buf   []byte
}

// NewReader returns a reader over buf. The CoreTypes must come from
// the same registry instance the producer used.
func NewReader(types CoreTypes, buf []byte) *Reader {
	return &Reader{types: types, buf: buf}
}

// Len returns the buffer length in bytes.
func (r *Reader) Len() uint32 {
	return uint32(len(r.buf))
}

// headerWithin parses an atom header at off and validates that the
// whole padded atom fits before end.
func (r *Reader) headerWithin(off, end uint32) (Header, uint32, error) {
	if end > uint32(len(r.buf)) {
		end = uint32(len(r.buf))
	}
	if off > end || end-off < wire.HeaderSize {
		var have uint32
		if off <= end {
			have = end - off
		}
		return Header{}, 0, errors.Truncated(errors.PhaseRead, off, wire.HeaderSize, have)
	}

	hdr := Header{
		Type: URID(wire.ByteOrder.Uint32(r.buf[off:])),
		Size: wire.ByteOrder.Uint32(r.buf[off+4:]),
	}

	padded, ok := wire.Padded(hdr.Size)
	var next uint32
	if ok {
		next, ok = wire.SafeAddU32(off+wire.HeaderSize, padded)
	}
	if !ok || next > end {
		return Header{}, 0, errors.Truncated(errors.PhaseRead, off, hdr.Size, end-(off+wire.HeaderSize))
	}
	return hdr, next, nil
}

// Header reads the atom header at off. It returns the header and the
// offset of the next atom, past the body and its alignment padding.
func (r *Reader) Header(off uint32) (Header, uint32, error) {
	return r.headerWithin(off, uint32(len(r.buf)))
}

// Atom returns a typed view of the atom at off.
func (r *Reader) Atom(off uint32) (Atom, error) {
	hdr, next, err := r.headerWithin(off, uint32(len(r.buf)))
	if err != nil {
		return Atom{}, err
	}
	return Atom{r: r, off: off, hdr: hdr, next: next}, nil
}

// childAtom parses a child atom bounded by its container's body. Any
// overrun of the container bound is the container's malformation, not
// a buffer truncation.
func (r *Reader) childAtom(off, end uint32) (Atom, error) {
	hdr, next, err := r.headerWithin(off, end)
	if err != nil {
		return Atom{}, errors.New(errors.PhaseRead, errors.KindMalformedContainer).
			Offset(off).
			Cause(err).
			Detail("child atom overruns container bound %d", end).
			Build()
	}
	return Atom{r: r, off: off, hdr: hdr, next: next}, nil
}

// Scalar reads the atom at off as a scalar value.
func (r *Reader) Scalar(off uint32) (Scalar, error) {
	a, err := r.Atom(off)
	if err != nil {
		return Scalar{}, err
	}
	return a.Scalar()
}

// Atom is a zero-copy view of one atom in a Reader's buffer. The view
// is a pure function of the immutable buffer: re-deriving it from the
// same offset yields the identical view.
type Atom struct {
	r    *Reader
	hdr  Header
	off  uint32
	next uint32
}

// Type returns the atom's type URID.
func (a Atom) Type() URID {
	return a.hdr.Type
}

// Size returns the exact body length, excluding header and padding.
func (a Atom) Size() uint32 {
	return a.hdr.Size
}

// Offset returns the buffer offset of the atom's header.
func (a Atom) Offset() uint32 {
	return a.off
}

// NextOffset returns the offset just past the atom's padded body.
func (a Atom) NextOffset() uint32 {
	return a.next
}

// Body returns the body bytes without copying.
func (a Atom) Body() []byte {
	start := a.off + wire.HeaderSize
	return a.r.buf[start : start+a.hdr.Size]
}

// Scalar decodes the atom as one of the fixed-width scalar kinds. It
// fails with unexpected_type for container and byte-string atoms.
func (a Atom) Scalar() (Scalar, error) {
	return a.r.types.decodeScalar(a.hdr.Type, a.Body(), a.off+wire.HeaderSize)
}

// scalarAs decodes the atom checking for one specific type tag.
func (a Atom) scalarAs(want URID) (Scalar, error) {
	if a.hdr.Type != want {
		return Scalar{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(want))
	}
	return a.Scalar()
}

// Int32 decodes a 32-bit signed integer atom.
func (a Atom) Int32() (int32, error) {
	s, err := a.scalarAs(a.r.types.Int)
	return s.Int32(), err
}

// Int64 decodes a 64-bit signed integer atom.
func (a Atom) Int64() (int64, error) {
	s, err := a.scalarAs(a.r.types.Long)
	return s.Int64(), err
}

// Float32 decodes a single-precision float atom.
func (a Atom) Float32() (float32, error) {
	s, err := a.scalarAs(a.r.types.Float)
	return s.Float32(), err
}

// Float64 decodes a double-precision float atom.
func (a Atom) Float64() (float64, error) {
	s, err := a.scalarAs(a.r.types.Double)
	return s.Float64(), err
}

// Bool decodes a boolean atom.
func (a Atom) Bool() (bool, error) {
	s, err := a.scalarAs(a.r.types.Bool)
	return s.Bool(), err
}

// URID decodes a URID atom.
func (a Atom) URID() (URID, error) {
	s, err := a.scalarAs(a.r.types.URID)
	return s.URID(), err
}

// Text decodes a String atom: the body without its NUL terminator.
// The returned string is a copy; use Body for a zero-copy view.
func (a Atom) Text() (string, error) {
	if a.hdr.Type != a.r.types.String {
		return "", errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.String))
	}
	body := a.Body()
	if len(body) == 0 || body[len(body)-1] != 0 {
		return "", errors.Malformed(a.off, "string body is not NUL-terminated")
	}
	return string(body[:len(body)-1]), nil
}

// Chunk returns the raw bytes of a Chunk atom without copying.
func (a Atom) Chunk() ([]byte, error) {
	if a.hdr.Type != a.r.types.Chunk {
		return nil, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Chunk))
	}
	return a.Body(), nil
}

// LiteralValue is a decoded Literal atom: text qualified by a datatype
// or language URID.
type LiteralValue struct {
	Text     string
	Datatype URID
	Lang     URID
}

// Literal decodes a Literal atom.
func (a Atom) Literal() (LiteralValue, error) {
	if a.hdr.Type != a.r.types.Literal {
		return LiteralValue{}, errors.UnexpectedType(a.off, uint32(a.hdr.Type), uint32(a.r.types.Literal))
	}
	body := a.Body()
	if len(body) < 9 || body[len(body)-1] != 0 {
		return LiteralValue{}, errors.Malformed(a.off, "literal body too short or not NUL-terminated")
	}
	return LiteralValue{
		Datatype: URID(wire.ByteOrder.Uint32(body[0:])),
		Lang:     URID(wire.ByteOrder.Uint32(body[4:])),
		Text:     string(body[8 : len(body)-1]),
	}, nil
}

// IsContainer reports whether the atom is one of the container shapes.
func (a Atom) IsContainer() bool {
	return a.r.types.isContainer(a.hdr.Type)
}
